package models

// Connection is a directed edge from one node's output to another
// node's input. It holds back-references only; it does not own its
// endpoint nodes.
type Connection struct {
	ID           string `json:"id"             validate:"required"`
	SourceNodeID string `json:"source_node_id" validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
}

// References reports whether the connection touches the given node id
// as source or target.
func (c *Connection) References(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}
