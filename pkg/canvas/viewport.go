// Package canvas implements the interactive editing core of the
// workflow builder: the viewport transform, the node/connection graph
// store, the drag state machine, connection path derivation, and the
// editor that composes them.
package canvas

import "github.com/flowgrid/flowgrid/pkg/models"

const (
	// MinZoom and MaxZoom bound the zoom factor; ZoomStep is the
	// multiplier applied per zoom in/out command.
	MinZoom  = 0.5
	MaxZoom  = 2.0
	ZoomStep = 1.2
)

// Viewport holds the zoom factor and pan offset of one editing session.
// Pan is stored in canvas units; the render transform is
//
//	screen = (canvas + pan) * zoom
//
// and every conversion here is the exact inverse of that composition.
// Viewport state is session-local and is not saved with the workflow.
type Viewport struct {
	Zoom float64
	Pan  models.Position
}

// NewViewport returns a viewport at zoom 1 with no pan.
func NewViewport() *Viewport {
	return &Viewport{Zoom: 1}
}

// ScreenToCanvas converts a pointer position in screen pixels to canvas
// coordinates under the current transform.
func (v *Viewport) ScreenToCanvas(screen models.Position) models.Position {
	return screen.Scale(1 / v.Zoom).Sub(v.Pan)
}

// CanvasToScreen converts a canvas position to screen pixels under the
// current transform.
func (v *Viewport) CanvasToScreen(canvas models.Position) models.Position {
	return canvas.Add(v.Pan).Scale(v.Zoom)
}

// ZoomIn multiplies the zoom factor by ZoomStep, clamped to MaxZoom.
func (v *Viewport) ZoomIn() {
	v.Zoom = min(v.Zoom*ZoomStep, MaxZoom)
}

// ZoomOut divides the zoom factor by ZoomStep, clamped to MinZoom.
func (v *Viewport) ZoomOut() {
	v.Zoom = max(v.Zoom/ZoomStep, MinZoom)
}

// Reset restores zoom 1 and zero pan.
func (v *Viewport) Reset() {
	v.Zoom = 1
	v.Pan = models.Position{}
}
