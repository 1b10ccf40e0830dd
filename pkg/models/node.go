// Package models defines the core domain models for the workflow builder.
package models

// NodeType distinguishes trigger nodes from action nodes. A node's type
// is fixed at creation time.
type NodeType string

const (
	NodeTypeTrigger NodeType = "trigger"
	NodeTypeAction  NodeType = "action"
)

// Position is a point in canvas (world) coordinates. Canvas coordinates
// are independent of the current zoom and pan.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the componentwise sum of two positions.
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the componentwise difference of two positions.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns the position multiplied by a scalar.
func (p Position) Scale(f float64) Position {
	return Position{X: p.X * f, Y: p.Y * f}
}

// Node is a single trigger or action step placed on the canvas. Service
// and Action name an entry in the external service catalog and are
// immutable after creation; Position and Config are mutated by editing.
type Node struct {
	ID       string         `json:"id"       validate:"required"`
	Type     NodeType       `json:"type"     validate:"required,oneof=trigger action"`
	Service  string         `json:"service"  validate:"required"`
	Action   string         `json:"action"   validate:"required"`
	Position Position       `json:"position"`
	Config   map[string]any `json:"config"`
}

// IsTrigger reports whether the node is a trigger node.
func (n *Node) IsTrigger() bool {
	return n.Type == NodeTypeTrigger
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	clone := *n
	clone.Config = make(map[string]any, len(n.Config))

	for k, v := range n.Config {
		clone.Config[k] = v
	}

	return &clone
}
