package canvas

import (
	"testing"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dragFixture(t *testing.T) (*Graph, *Viewport, *DragController, *models.Node) {
	t.Helper()

	graph := NewGraph()
	viewport := NewViewport()
	node := graph.AddNode(models.NodeTypeAction, "Slack", "Send Message")
	graph.MoveNode(node.ID, models.Position{X: 100, Y: 100})

	return graph, viewport, NewDragController(graph, viewport), node
}

func TestDragController_NodeDrag_NoJump(t *testing.T) {
	graph, _, drag, node := dragFixture(t)

	// Grab the node 10,5 pixels from its top-left corner.
	grab := models.Position{X: 110, Y: 105}
	require.True(t, drag.StartNodeDrag(node.ID, grab))

	// Moving without displacement keeps the node in place.
	drag.Move(grab)

	current, _ := graph.Node(node.ID)
	assert.InDelta(t, 100.0, current.Position.X, 1e-9)
	assert.InDelta(t, 100.0, current.Position.Y, 1e-9)

	// The node follows the pointer delta exactly.
	drag.Move(models.Position{X: 140, Y: 125})

	current, _ = graph.Node(node.ID)
	assert.InDelta(t, 130.0, current.Position.X, 1e-9)
	assert.InDelta(t, 120.0, current.Position.Y, 1e-9)
}

func TestDragController_NodeDrag_Zoomed(t *testing.T) {
	graph, viewport, drag, node := dragFixture(t)
	viewport.Zoom = 2

	// The node's screen anchor is at (200, 200) under zoom 2.
	require.True(t, drag.StartNodeDrag(node.ID, models.Position{X: 200, Y: 200}))

	// A 40-pixel screen move is a 20-unit canvas move.
	drag.Move(models.Position{X: 240, Y: 200})

	current, _ := graph.Node(node.ID)
	assert.InDelta(t, 120.0, current.Position.X, 1e-9)
	assert.InDelta(t, 100.0, current.Position.Y, 1e-9)
}

func TestDragController_StartNodeDrag_UnknownNode(t *testing.T) {
	_, _, drag, _ := dragFixture(t)

	assert.False(t, drag.StartNodeDrag("missing", models.Position{}))
	assert.True(t, drag.Idle())
}

func TestDragController_GesturesAreExclusive(t *testing.T) {
	_, _, drag, node := dragFixture(t)

	require.True(t, drag.StartNodeDrag(node.ID, models.Position{X: 110, Y: 105}))

	// A second gesture cannot start until release.
	assert.False(t, drag.StartPan(models.Position{}))
	assert.False(t, drag.StartNodeDrag(node.ID, models.Position{}))

	drag.Release()
	assert.True(t, drag.Idle())
	assert.True(t, drag.StartPan(models.Position{}))
}

func TestDragController_Pan(t *testing.T) {
	_, viewport, drag, _ := dragFixture(t)

	require.True(t, drag.StartPan(models.Position{X: 300, Y: 300}))
	drag.Move(models.Position{X: 320, Y: 290})

	assert.InDelta(t, 20.0, viewport.Pan.X, 1e-9)
	assert.InDelta(t, -10.0, viewport.Pan.Y, 1e-9)

	// Deltas accumulate from the last pointer position.
	drag.Move(models.Position{X: 330, Y: 290})
	assert.InDelta(t, 30.0, viewport.Pan.X, 1e-9)
	assert.InDelta(t, -10.0, viewport.Pan.Y, 1e-9)
}

func TestDragController_Pan_ZoomCompensated(t *testing.T) {
	_, viewport, drag, _ := dragFixture(t)
	viewport.Zoom = 2

	require.True(t, drag.StartPan(models.Position{X: 0, Y: 0}))
	drag.Move(models.Position{X: 40, Y: 0})

	// Screen delta divided by zoom: the content tracks the pointer.
	assert.InDelta(t, 20.0, viewport.Pan.X, 1e-9)
}

func TestDragController_StartPan_ClearsSelection(t *testing.T) {
	graph, _, drag, node := dragFixture(t)
	require.True(t, graph.Select(node.ID))

	require.True(t, drag.StartPan(models.Position{}))

	assert.Nil(t, graph.SelectedNode())
}

func TestDragController_Release_FromAnyState(t *testing.T) {
	_, _, drag, node := dragFixture(t)

	drag.Release()
	assert.True(t, drag.Idle())

	require.True(t, drag.StartNodeDrag(node.ID, models.Position{X: 110, Y: 105}))
	drag.Release()
	assert.True(t, drag.Idle())

	_, dragging := drag.DraggingNode()
	assert.False(t, dragging)

	require.True(t, drag.StartPan(models.Position{}))
	drag.Release()
	assert.True(t, drag.Idle())
	assert.False(t, drag.Panning())
}

func TestDragController_MoveWhileIdle_IsIgnored(t *testing.T) {
	graph, viewport, drag, node := dragFixture(t)
	before := viewport.Pan

	drag.Move(models.Position{X: 999, Y: 999})

	current, _ := graph.Node(node.ID)
	assert.InDelta(t, 100.0, current.Position.X, 1e-9)
	assert.Equal(t, before, viewport.Pan)
}
