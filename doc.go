// Package canvas provides a GPU-accelerated 2D vector graphics canvas
// for the GoGPU ecosystem.
//
// # Overview
//
// canvas records draw calls into a compact per-frame tape and plays the
// whole frame back on the GPU in a single pass. Recording does the heavy
// lifting up front: every shape is staged as vertices and a uniform
// block at DrawX time, so playback only walks the op tape issuing draw
// calls.
//
// # Quick Start
//
//	import "github.com/gogpu/canvas"
//
//	c, err := canvas.NewWithDevice(device, queue, 800, 600)
//	if err != nil {
//		// handle error
//	}
//	defer c.Destroy()
//
//	// Record a frame.
//	c.DrawRect(canvas.RectWH(10, 10, 200, 100),
//		canvas.NewPaint().WithColor(canvas.RGB(255, 0, 0)))
//
//	// Play it back.
//	rendered, err := c.ExecuteDrawOps(target)
//
// # Drawing Model
//
// The canvas keeps a save/restore stack holding the current transform
// and clip bounds. ClipRect narrows the clip; clips that cannot be
// expressed as an axis-aligned rectangle are rendered through the
// stencil buffer. SaveLayer redirects drawing to an offscreen texture
// that is composited back with an alpha when the matching Restore runs.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Angles in radians
//
// # Concurrency
//
// A Canvas is not safe for concurrent use. Record and play back frames
// from a single goroutine.
package canvas

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
