// Package tape implements the CPU-side recording structures of the deferred
// canvas: the op tape, the growable vertex staging buffers, the uniform
// stream, and the resource queue.
//
// Everything in this package is index-synchronized: the tape holds one byte
// tag per recorded operation, and each tag's side data (vertices, uniform
// blocks, clip references, layer alphas, resources) lives in a parallel
// structure consumed during playback with its own monotonic cursor. No op
// stores the length or offset of its side data; correctness depends on
// recording and playback staying append/consume paired.
package tape

// Op is a single-byte operation tag in the tape. Tags are grouped by their
// high nibble:
//
//	0x1X: draw operations
//	0x2X: clip operations
//	0x3X: layer operations
type Op byte

// Op constants define all recordable operations. Each op's side data is
// documented with the structure that holds it.
const (
	// OpRect draws a filled axis-aligned rectangle.
	// Side data: 6 vertices (LayoutPosColor), 1 uniform block.
	OpRect Op = 0x10

	// OpRoundRect draws a filled rounded rectangle as a distance-field quad.
	// Side data: 6 vertices (LayoutPosColorUV), 1 uniform block.
	OpRoundRect Op = 0x11

	// OpCircle draws a filled circle as a distance-field quad.
	// Side data: 6 vertices (LayoutPosColorUV), 1 uniform block.
	OpCircle Op = 0x12

	// OpArc draws a stroked circular arc as a distance-field quad.
	// Side data: 6 vertices (LayoutPosColorUV), 1 uniform block.
	OpArc Op = 0x13

	// OpBezier draws a stroked cubic Bezier flattened at record time.
	// Side data: N vertices (LayoutPosColor), 1 count, 1 uniform block.
	OpBezier Op = 0x14

	// OpLine draws a stroked line segment.
	// Side data: 6 vertices (LayoutPosColor), 1 uniform block.
	OpLine Op = 0x15

	// OpImage draws a textured quad from a queued image resource.
	// Side data: 6 vertices (LayoutPosColorUV), 1 uniform block, 1 resource.
	OpImage Op = 0x16

	// OpGlyphs draws a run of baked glyph quads from the glyph atlas.
	// Side data: N vertices (LayoutPosUV), 1 count, 1 uniform block,
	// 1 resource (the atlas texture).
	OpGlyphs Op = 0x17

	// OpMesh draws producer-supplied triangles.
	// Side data: N vertices (LayoutPosColor), 1 count, 1 uniform block.
	OpMesh Op = 0x18

	// OpCustom invokes a queued custom draw handler.
	// Side data: 1 resource.
	OpCustom Op = 0x19

	// OpClipPush narrows the clip by one stencil level.
	// Side data: 1 clip reference; 6 vertices (LayoutPosColor) covering the
	// new clip rectangle when the reference is positive, none when negative.
	OpClipPush Op = 0x20

	// OpClipPop restores the clip to an enclosing stencil level.
	// Side data: 1 clip reference; 6 vertices (LayoutPosColor) covering the
	// outgoing clip rectangle when the reference is positive, none when
	// negative.
	OpClipPop Op = 0x21

	// OpLayerPush redirects drawing to a fresh offscreen attachment.
	// Side data: 1 layer alpha.
	OpLayerPush Op = 0x30

	// OpLayerPop composites the top attachment onto the one below it,
	// scaled by the layer alpha recorded at push time.
	// Side data: 1 uniform block.
	OpLayerPop Op = 0x31
)

// String returns a human-readable name for the op.
func (op Op) String() string {
	switch op {
	case OpRect:
		return "Rect"
	case OpRoundRect:
		return "RoundRect"
	case OpCircle:
		return "Circle"
	case OpArc:
		return "Arc"
	case OpBezier:
		return "Bezier"
	case OpLine:
		return "Line"
	case OpImage:
		return "Image"
	case OpGlyphs:
		return "Glyphs"
	case OpMesh:
		return "Mesh"
	case OpCustom:
		return "Custom"
	case OpClipPush:
		return "ClipPush"
	case OpClipPop:
		return "ClipPop"
	case OpLayerPush:
		return "LayerPush"
	case OpLayerPop:
		return "LayerPop"
	default:
		return "Unknown"
	}
}

// IsDraw returns true for operations that issue a color-writing draw call.
func (op Op) IsDraw() bool {
	return op >= OpRect && op <= OpCustom
}

// IsClip returns true for clip stencil operations.
func (op Op) IsClip() bool {
	return op == OpClipPush || op == OpClipPop
}

// IsLayer returns true for layer compositing operations.
func (op Op) IsLayer() bool {
	return op == OpLayerPush || op == OpLayerPop
}

// Layout returns the vertex layout the op's geometry was appended to, and
// false for ops that carry no geometry of their own (layer ops, OpCustom).
// Clip ops use LayoutPosColor with the color ignored: their pipeline masks
// color writes entirely.
func (op Op) Layout() (VertexLayout, bool) {
	switch op {
	case OpRect, OpBezier, OpLine, OpMesh, OpClipPush, OpClipPop:
		return LayoutPosColor, true
	case OpRoundRect, OpCircle, OpArc, OpImage:
		return LayoutPosColorUV, true
	case OpGlyphs:
		return LayoutPosUV, true
	default:
		return 0, false
	}
}

// FixedVertexCount returns the number of vertices a single instance of the
// op contributes, and false for ops with a recorded per-op count (OpBezier,
// OpGlyphs, OpMesh) or no geometry at all.
func (op Op) FixedVertexCount() (int, bool) {
	switch op {
	case OpRect, OpRoundRect, OpCircle, OpArc, OpLine, OpImage, OpClipPush, OpClipPop:
		return 6, true
	default:
		return 0, false
	}
}

// HasUniform returns true for ops that append one parameter block to the
// uniform stream at record time.
func (op Op) HasUniform() bool {
	switch op {
	case OpRect, OpRoundRect, OpCircle, OpArc, OpBezier, OpLine, OpImage,
		OpGlyphs, OpMesh, OpLayerPop:
		return true
	default:
		return false
	}
}

// ConsumesResource returns true for ops that pop one entry from the
// resource queue during playback.
func (op Op) ConsumesResource() bool {
	return op == OpImage || op == OpGlyphs || op == OpCustom
}
