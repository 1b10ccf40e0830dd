package canvas

import "github.com/flowgrid/flowgrid/pkg/models"

type dragState int

const (
	stateIdle dragState = iota
	stateDraggingNode
	statePanning
)

// DragController turns pointer movement into graph and viewport
// updates. It is a three-state machine: Idle, dragging one node, or
// panning the canvas. Node drag and pan are mutually exclusive, and
// pointer release returns to Idle unconditionally from any state -
// there is no other cancellation and no timeout.
type DragController struct {
	graph    *Graph
	viewport *Viewport

	state dragState

	// nodeID and offset are set while dragging a node. The offset is
	// the screen-pixel distance between the pointer and the node's
	// screen anchor at drag start, so the node does not jump to the
	// pointer on the first move.
	nodeID string
	offset models.Position

	// lastPointer is the previous pointer position (screen pixels)
	// while panning.
	lastPointer models.Position
}

// NewDragController returns an idle controller bound to a graph and
// viewport.
func NewDragController(graph *Graph, viewport *Viewport) *DragController {
	return &DragController{graph: graph, viewport: viewport}
}

// StartNodeDrag transitions Idle -> DraggingNode for a pointer-down
// over the given node, capturing the pointer offset from the node's
// screen anchor. Reports whether the drag started; it does not when the
// node is unknown or another gesture is active.
func (d *DragController) StartNodeDrag(nodeID string, pointer models.Position) bool {
	if d.state != stateIdle {
		return false
	}

	node, ok := d.graph.Node(nodeID)
	if !ok {
		return false
	}

	d.state = stateDraggingNode
	d.nodeID = nodeID
	d.offset = pointer.Sub(d.viewport.CanvasToScreen(node.Position))

	return true
}

// StartPan transitions Idle -> Panning for a pointer-down over empty
// canvas background. Clears node selection, matching the canvas
// behavior of clicking outside every node. Reports whether the pan
// started.
func (d *DragController) StartPan(pointer models.Position) bool {
	if d.state != stateIdle {
		return false
	}

	d.state = statePanning
	d.lastPointer = pointer
	d.graph.ClearSelection()

	return true
}

// Move processes a pointer-move event in screen pixels. While dragging
// a node it writes the inverse-transformed position (minus the captured
// offset) through Graph.MoveNode; while panning it adds the screen
// delta divided by zoom to the pan offset. Idle moves are ignored.
func (d *DragController) Move(pointer models.Position) {
	switch d.state {
	case stateDraggingNode:
		d.graph.MoveNode(d.nodeID, d.viewport.ScreenToCanvas(pointer.Sub(d.offset)))
	case statePanning:
		delta := pointer.Sub(d.lastPointer)
		d.viewport.Pan = d.viewport.Pan.Add(delta.Scale(1 / d.viewport.Zoom))
		d.lastPointer = pointer
	case stateIdle:
	}
}

// Release transitions to Idle from any state on pointer-up.
func (d *DragController) Release() {
	d.state = stateIdle
	d.nodeID = ""
}

// DraggingNode returns the id of the node being dragged, if any.
func (d *DragController) DraggingNode() (string, bool) {
	return d.nodeID, d.state == stateDraggingNode
}

// Panning reports whether a pan gesture is active.
func (d *DragController) Panning() bool {
	return d.state == statePanning
}

// Idle reports whether no gesture is active.
func (d *DragController) Idle() bool {
	return d.state == stateIdle
}
