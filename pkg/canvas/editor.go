package canvas

import (
	"context"
	"log/slog"

	"github.com/flowgrid/flowgrid/pkg/catalog"
	"github.com/flowgrid/flowgrid/pkg/eventbus"
	"github.com/flowgrid/flowgrid/pkg/events"
	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/nodeconfig"
)

// ConfigSession is one open configuration panel: the field schema
// loaded for a node plus the state needed to validate and apply values
// later. The session survives the node being deleted; Apply then
// reports the discard instead of resurrecting the node.
type ConfigSession struct {
	NodeID string
	Fields []models.Field

	editor *Editor
}

// Validate checks candidate values against the session's schema without
// applying them.
func (s *ConfigSession) Validate(values map[string]any) map[string]string {
	return nodeconfig.Validate(s.Fields, values)
}

// Apply validates and merges values into the node's configuration. A
// *nodeconfig.ValidationError blocks the merge; nodeconfig.ErrNodeGone
// means the node was deleted while the panel was open and the values
// are discarded.
func (s *ConfigSession) Apply(values map[string]any) error {
	if err := s.editor.resolver.Apply(s.editor.graph, s.NodeID, s.Fields, values); err != nil {
		return err
	}

	s.editor.emit(events.NewNodeConfigUpdated(s.editor.workflowID, s.NodeID, values))

	return nil
}

// Editor composes the viewport, graph store, drag controller, and
// configuration resolver into one editing session. Pointer events come
// in as screen coordinates; all graph mutations happen synchronously in
// response. Mutations are announced on the event bus fire-and-forget -
// a failed publish is logged and never blocks editing.
//
// The editor never persists anything; its owner pulls Snapshot() for
// saving and test runs.
type Editor struct {
	logger    *slog.Logger
	graph     *Graph
	viewport  *Viewport
	drag      *DragController
	resolver  *nodeconfig.Resolver
	publisher eventbus.EventPublisher

	workflowID string
}

// NewEditor creates an editor over an empty graph. The publisher may be
// nil, in which case mutation events are dropped.
func NewEditor(logger *slog.Logger, provider catalog.Provider, publisher eventbus.EventPublisher) *Editor {
	graph := NewGraph()
	viewport := NewViewport()

	return &Editor{
		logger:    logger,
		graph:     graph,
		viewport:  viewport,
		drag:      NewDragController(graph, viewport),
		resolver:  nodeconfig.NewResolver(provider, logger),
		publisher: publisher,
	}
}

// Graph exposes the underlying graph store.
func (e *Editor) Graph() *Graph { return e.graph }

// Viewport exposes the viewport transform.
func (e *Editor) Viewport() *Viewport { return e.viewport }

// Load replaces the editing session with a persisted workflow. The
// viewport is not reset: zoom and pan are session state, independent of
// which graph is loaded.
func (e *Editor) Load(workflow *models.Workflow) error {
	if err := e.graph.Load(workflow.Nodes, workflow.Connections); err != nil {
		return err
	}

	e.workflowID = workflow.ID

	return nil
}

// Snapshot hands the current aggregate back for persistence.
func (e *Editor) Snapshot() ([]*models.Node, []*models.Connection) {
	return e.graph.Snapshot()
}

// NodeAt hit-tests the node boxes against a screen position. Nodes
// added later are drawn on top, so the scan runs in reverse insertion
// order and the topmost hit wins.
func (e *Editor) NodeAt(screen models.Position) (*models.Node, bool) {
	canvasPoint := e.viewport.ScreenToCanvas(screen)
	nodes := e.graph.Nodes()

	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		if canvasPoint.X >= node.Position.X && canvasPoint.X <= node.Position.X+NodeWidth &&
			canvasPoint.Y >= node.Position.Y && canvasPoint.Y <= node.Position.Y+NodeHeight {
			return node, true
		}
	}

	return nil, false
}

// PointerDown routes a pointer-down event: over a node it selects the
// node and starts a drag; over empty background it starts a pan (which
// clears the selection).
func (e *Editor) PointerDown(screen models.Position) {
	if node, ok := e.NodeAt(screen); ok {
		e.graph.Select(node.ID)
		e.drag.StartNodeDrag(node.ID, screen)

		return
	}

	e.drag.StartPan(screen)
}

// PointerMove advances the active gesture, if any.
func (e *Editor) PointerMove(screen models.Position) {
	e.drag.Move(screen)
}

// PointerUp ends the active gesture unconditionally. A completed node
// drag announces the final position.
func (e *Editor) PointerUp() {
	if nodeID, ok := e.drag.DraggingNode(); ok {
		if node, exists := e.graph.Node(nodeID); exists {
			e.emit(events.NewNodeMoved(e.workflowID, nodeID, node.Position))
		}
	}

	e.drag.Release()
}

// AddNode creates and selects a node bound to a catalog service/action
// pair.
func (e *Editor) AddNode(nodeType models.NodeType, service, action string) *models.Node {
	node := e.graph.AddNode(nodeType, service, action)
	e.emit(events.NewNodeAdded(e.workflowID, node))

	return node
}

// DeleteNode removes a node and its connections in one operation.
func (e *Editor) DeleteNode(id string) bool {
	removed := make([]string, 0)
	for _, conn := range e.graph.ConnectionsForNode(id) {
		removed = append(removed, conn.ID)
	}

	if !e.graph.DeleteNode(id) {
		return false
	}

	e.emit(events.NewNodeRemoved(e.workflowID, id, removed))

	return true
}

// Connect adds a directed connection between two existing nodes.
func (e *Editor) Connect(sourceID, targetID string) (*models.Connection, error) {
	conn, err := e.graph.AddConnection(sourceID, targetID)
	if err != nil {
		return nil, err
	}

	e.emit(events.NewConnectionAdded(e.workflowID, conn))

	return conn, nil
}

// Disconnect removes a single connection.
func (e *Editor) Disconnect(id string) bool {
	if !e.graph.DeleteConnection(id) {
		return false
	}

	e.emit(events.NewConnectionRemoved(e.workflowID, id))

	return true
}

// OpenConfig loads the field schema for a node and returns the
// configuration session. A catalog failure degrades to an empty,
// still-usable session with a logged warning; only an unknown node id
// is an error.
func (e *Editor) OpenConfig(ctx context.Context, nodeID string) (*ConfigSession, error) {
	node, ok := e.graph.Node(nodeID)
	if !ok {
		return nil, nodeconfig.ErrNodeGone
	}

	fields, err := e.resolver.LoadFieldSchema(ctx, node)
	if err != nil {
		e.logger.WarnContext(ctx, "Field schema unavailable, node treated as unconfigurable",
			"node_id", nodeID, "service", node.Service, "action", node.Action, "error", err)
	}

	return &ConfigSession{NodeID: nodeID, Fields: fields, editor: e}, nil
}

// ConnectionPaths derives the visual path of every renderable
// connection, keyed by connection id. Paths reflect the endpoints'
// current positions; connections with a missing endpoint are skipped.
func (e *Editor) ConnectionPaths() map[string]Path {
	paths := make(map[string]Path)

	for _, conn := range e.graph.Connections() {
		if path, ok := ConnectionPath(e.graph, conn); ok {
			paths[conn.ID] = path
		}
	}

	return paths
}

func (e *Editor) emit(event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(context.Background(), e.workflowID, event); err != nil {
		e.logger.Warn("Failed to publish editor event", "event_type", event.GetType(), "error", err)
	}
}
