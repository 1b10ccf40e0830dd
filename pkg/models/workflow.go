package models

import "time"

// Workflow is the aggregate root edited on the canvas: a set of nodes
// and the connections between them, plus the metadata the persistence
// layer adds. The canvas core never writes storage itself; it hands a
// snapshot of Nodes and Connections back to its owner for saving.
type Workflow struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"        validate:"required,min=3"`
	Description string        `json:"description"`
	Enabled     bool          `json:"enabled"`
	Nodes       []*Node       `json:"nodes"`
	Connections []*Connection `json:"connections"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	LastRun     *time.Time    `json:"last_run,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
