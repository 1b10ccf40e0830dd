package canvas

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/google/uuid"
)

// Node box dimensions in canvas units. Connection anchors and hit
// testing are derived from these.
const (
	NodeWidth  = 300.0
	NodeHeight = 80.0
)

// Referential errors reported at the store boundary. The failed
// operation does not mutate the graph.
var (
	ErrSourceNodeNotFound = errors.New("source node not found")
	ErrTargetNodeNotFound = errors.New("target node not found")
)

// Graph is the in-memory node/connection collection for one workflow,
// indexed by id. All mutations go through its operations, each of which
// is applied fully or not at all; deleting a node removes every
// connection referencing it in the same operation, so no dangling
// reference is ever observable. Insertion order is preserved for
// iteration.
//
// A Graph is owned by a single editing session and is not safe for
// concurrent use.
type Graph struct {
	nodes       map[string]*models.Node
	nodeOrder   []string
	connections map[string]*models.Connection
	connOrder   []string
	selected    string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[string]*models.Node),
		connections: make(map[string]*models.Connection),
	}
}

// Load replaces the graph contents with a persisted aggregate. Entities
// are copied in, so later edits do not leak into the caller's data. A
// connection referencing an unknown node id fails the whole load and
// leaves the graph empty rather than admitting a dangling reference.
func (g *Graph) Load(nodes []*models.Node, connections []*models.Connection) error {
	g.nodes = make(map[string]*models.Node, len(nodes))
	g.nodeOrder = g.nodeOrder[:0]
	g.connections = make(map[string]*models.Connection, len(connections))
	g.connOrder = g.connOrder[:0]
	g.selected = ""

	for _, node := range nodes {
		clone := node.Clone()
		if clone.Config == nil {
			clone.Config = make(map[string]any)
		}

		g.nodes[clone.ID] = clone
		g.nodeOrder = append(g.nodeOrder, clone.ID)
	}

	for _, conn := range connections {
		if _, ok := g.nodes[conn.SourceNodeID]; !ok {
			g.clear()

			return fmt.Errorf("connection %s: %w: %s", conn.ID, ErrSourceNodeNotFound, conn.SourceNodeID)
		}

		if _, ok := g.nodes[conn.TargetNodeID]; !ok {
			g.clear()

			return fmt.Errorf("connection %s: %w: %s", conn.ID, ErrTargetNodeNotFound, conn.TargetNodeID)
		}

		clone := *conn
		g.connections[clone.ID] = &clone
		g.connOrder = append(g.connOrder, clone.ID)
	}

	return nil
}

func (g *Graph) clear() {
	g.nodes = make(map[string]*models.Node)
	g.nodeOrder = nil
	g.connections = make(map[string]*models.Connection)
	g.connOrder = nil
	g.selected = ""
}

// AddNode creates a node of the given type bound to a catalog
// service/action pair, places it at a randomized position within the
// default visible region, and selects it.
func (g *Graph) AddNode(nodeType models.NodeType, service, action string) *models.Node {
	node := &models.Node{
		ID:      uuid.New().String(),
		Type:    nodeType,
		Service: service,
		Action:  action,
		Position: models.Position{
			X: 200 + rand.Float64()*200,
			Y: 200 + rand.Float64()*200,
		},
		Config: make(map[string]any),
	}

	g.nodes[node.ID] = node
	g.nodeOrder = append(g.nodeOrder, node.ID)
	g.selected = node.ID

	return node
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*models.Node, bool) {
	node, ok := g.nodes[id]

	return node, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*models.Node {
	nodes := make([]*models.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}

	return nodes
}

// MoveNode overwrites a node's position, clamping each component to be
// non-negative so interactive drags cannot push nodes off-canvas to the
// top or left. An unknown id is a silent no-op.
func (g *Graph) MoveNode(id string, pos models.Position) {
	node, ok := g.nodes[id]
	if !ok {
		return
	}

	node.Position = models.Position{
		X: max(pos.X, 0),
		Y: max(pos.Y, 0),
	}
}

// UpdateNodeConfig shallow-merges partial into the node's config:
// incoming keys overwrite, untouched keys survive. Reports whether the
// node exists.
func (g *Graph) UpdateNodeConfig(id string, partial map[string]any) bool {
	node, ok := g.nodes[id]
	if !ok {
		return false
	}

	if node.Config == nil {
		node.Config = make(map[string]any, len(partial))
	}

	for k, v := range partial {
		node.Config[k] = v
	}

	return true
}

// DeleteNode removes the node and, in the same operation, every
// connection whose source or target is the node. Selection is cleared
// when it pointed at the deleted node. Reports whether a node was
// removed.
func (g *Graph) DeleteNode(id string) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}

	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)

	kept := g.connOrder[:0]

	for _, connID := range g.connOrder {
		if g.connections[connID].References(id) {
			delete(g.connections, connID)

			continue
		}

		kept = append(kept, connID)
	}

	g.connOrder = kept

	if g.selected == id {
		g.selected = ""
	}

	return true
}

// AddConnection creates a directed connection between two existing
// nodes. Either endpoint missing is a referential error and nothing is
// mutated. Self-loops and duplicate connections are permitted.
func (g *Graph) AddConnection(sourceID, targetID string) (*models.Connection, error) {
	if _, ok := g.nodes[sourceID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNodeNotFound, sourceID)
	}

	if _, ok := g.nodes[targetID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetNodeNotFound, targetID)
	}

	conn := &models.Connection{
		ID:           uuid.New().String(),
		SourceNodeID: sourceID,
		TargetNodeID: targetID,
	}

	g.connections[conn.ID] = conn
	g.connOrder = append(g.connOrder, conn.ID)

	return conn, nil
}

// DeleteConnection removes a single connection. Reports whether one was
// removed.
func (g *Graph) DeleteConnection(id string) bool {
	if _, ok := g.connections[id]; !ok {
		return false
	}

	delete(g.connections, id)
	g.connOrder = removeID(g.connOrder, id)

	return true
}

// Connections returns all connections in insertion order.
func (g *Graph) Connections() []*models.Connection {
	conns := make([]*models.Connection, 0, len(g.connOrder))
	for _, id := range g.connOrder {
		conns = append(conns, g.connections[id])
	}

	return conns
}

// ConnectionsForNode returns every connection where the node is source
// or target, in insertion order.
func (g *Graph) ConnectionsForNode(id string) []*models.Connection {
	conns := make([]*models.Connection, 0)

	for _, connID := range g.connOrder {
		if conn := g.connections[connID]; conn.References(id) {
			conns = append(conns, conn)
		}
	}

	return conns
}

// Select marks the node as selected. Reports whether the node exists;
// selection is unchanged otherwise.
func (g *Graph) Select(id string) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}

	g.selected = id

	return true
}

// ClearSelection deselects any selected node.
func (g *Graph) ClearSelection() {
	g.selected = ""
}

// SelectedNode returns the currently selected node, or nil.
func (g *Graph) SelectedNode() *models.Node {
	if g.selected == "" {
		return nil
	}

	return g.nodes[g.selected]
}

// Snapshot returns deep copies of the current nodes and connections in
// insertion order, suitable for handing to the persistence layer.
func (g *Graph) Snapshot() ([]*models.Node, []*models.Connection) {
	nodes := make([]*models.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id].Clone())
	}

	conns := make([]*models.Connection, 0, len(g.connOrder))

	for _, id := range g.connOrder {
		clone := *g.connections[id]
		conns = append(conns, &clone)
	}

	return nodes, conns
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}

	return ids
}
