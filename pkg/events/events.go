// Package events defines the event types published while a workflow is
// edited and exercised. Consumers subscribe through the event bus; the
// canvas core publishes fire-and-forget.
package events

import (
	"time"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic is the single stream all editing lifecycle events flow on.
const Topic = "flowgrid.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Canvas editing events.
	NodeAddedEvent         EventType = "canvas.node.added"
	NodeMovedEvent         EventType = "canvas.node.moved"
	NodeConfigUpdatedEvent EventType = "canvas.node.config_updated"
	NodeRemovedEvent       EventType = "canvas.node.removed"
	ConnectionAddedEvent   EventType = "canvas.connection.added"
	ConnectionRemovedEvent EventType = "canvas.connection.removed"

	// Workflow lifecycle events.
	WorkflowSavedEvent  EventType = "workflow.saved"
	WorkflowTestedEvent EventType = "workflow.tested"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id,omitempty"`
}

func newBase(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now(),
		WorkflowID: workflowID,
	}
}

type NodeAdded struct {
	BaseEvent

	Node *models.Node `json:"node"`
}

func NewNodeAdded(workflowID string, node *models.Node) *NodeAdded {
	return &NodeAdded{BaseEvent: newBase(NodeAddedEvent, workflowID), Node: node}
}

func (e NodeAdded) GetType() EventType { return NodeAddedEvent }

type NodeMoved struct {
	BaseEvent

	NodeID   string          `json:"node_id"`
	Position models.Position `json:"position"`
}

func NewNodeMoved(workflowID, nodeID string, pos models.Position) *NodeMoved {
	return &NodeMoved{BaseEvent: newBase(NodeMovedEvent, workflowID), NodeID: nodeID, Position: pos}
}

func (e NodeMoved) GetType() EventType { return NodeMovedEvent }

type NodeConfigUpdated struct {
	BaseEvent

	NodeID string         `json:"node_id"`
	Config map[string]any `json:"config"`
}

func NewNodeConfigUpdated(workflowID, nodeID string, config map[string]any) *NodeConfigUpdated {
	return &NodeConfigUpdated{BaseEvent: newBase(NodeConfigUpdatedEvent, workflowID), NodeID: nodeID, Config: config}
}

func (e NodeConfigUpdated) GetType() EventType { return NodeConfigUpdatedEvent }

type NodeRemoved struct {
	BaseEvent

	NodeID string `json:"node_id"`
	// RemovedConnections lists the connection ids deleted in the same
	// operation, so subscribers never observe dangling references.
	RemovedConnections []string `json:"removed_connections,omitempty"`
}

func NewNodeRemoved(workflowID, nodeID string, removedConnections []string) *NodeRemoved {
	return &NodeRemoved{
		BaseEvent:          newBase(NodeRemovedEvent, workflowID),
		NodeID:             nodeID,
		RemovedConnections: removedConnections,
	}
}

func (e NodeRemoved) GetType() EventType { return NodeRemovedEvent }

type ConnectionAdded struct {
	BaseEvent

	Connection *models.Connection `json:"connection"`
}

func NewConnectionAdded(workflowID string, conn *models.Connection) *ConnectionAdded {
	return &ConnectionAdded{BaseEvent: newBase(ConnectionAddedEvent, workflowID), Connection: conn}
}

func (e ConnectionAdded) GetType() EventType { return ConnectionAddedEvent }

type ConnectionRemoved struct {
	BaseEvent

	ConnectionID string `json:"connection_id"`
}

func NewConnectionRemoved(workflowID, connectionID string) *ConnectionRemoved {
	return &ConnectionRemoved{BaseEvent: newBase(ConnectionRemovedEvent, workflowID), ConnectionID: connectionID}
}

func (e ConnectionRemoved) GetType() EventType { return ConnectionRemovedEvent }

type WorkflowSaved struct {
	BaseEvent

	NodeCount       int `json:"node_count"`
	ConnectionCount int `json:"connection_count"`
}

func NewWorkflowSaved(workflowID string, nodeCount, connectionCount int) *WorkflowSaved {
	return &WorkflowSaved{
		BaseEvent:       newBase(WorkflowSavedEvent, workflowID),
		NodeCount:       nodeCount,
		ConnectionCount: connectionCount,
	}
}

func (e WorkflowSaved) GetType() EventType { return WorkflowSavedEvent }

type WorkflowTested struct {
	BaseEvent

	Success  bool    `json:"success"`
	Duration float64 `json:"duration"`
}

func NewWorkflowTested(workflowID string, result *models.TestResult) *WorkflowTested {
	return &WorkflowTested{
		BaseEvent: newBase(WorkflowTestedEvent, workflowID),
		Success:   result.Success,
		Duration:  result.Duration,
	}
}

func (e WorkflowTested) GetType() EventType { return WorkflowTestedEvent }
