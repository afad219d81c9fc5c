package render

import (
	"github.com/fogleman/fauxgl"
	"github.com/soypat/orbital/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// View is the camera state shared by the render passes of one frame.
type View struct {
	// MVP maps world coordinates to clip space.
	MVP fauxgl.Matrix
	// Eye is the camera position in world coordinates.
	Eye       r3.Vec
	Near, Far float64
}

// Backend executes the render passes. Calls arrive from a single goroutine.
//
// DrawOpaque renders solid geometry into an offscreen color and depth target.
// DrawVolume accumulates the tetrahedral density cloud against that depth.
// Composite combines both targets into the visible frame and is cheap
// compared to the draw passes.
type Backend interface {
	Resize(width, height int) error
	SetMesh(s mesh.Snapshot) error
	DrawOpaque(v View) error
	DrawVolume(v View, brightness float64) error
	Composite(width, height int) error
}

// Camera supplies the view transform of a frame.
type Camera interface {
	// ViewMatrix maps world coordinates to eye coordinates.
	ViewMatrix() fauxgl.Matrix
	// Distance is the camera distance to the scene center.
	Distance() float64
}
