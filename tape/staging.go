package tape

import (
	"encoding/binary"
	"math"
)

// VertexLayout identifies one of the three vertex record layouts the canvas
// batches. Each layout owns its own staging buffer and its own GPU buffer.
type VertexLayout uint8

const (
	// LayoutPosColor is position (2 x float32) + packed premultiplied RGBA8.
	// Stride 12 bytes. Used by solid shapes, meshes, and clip quads.
	LayoutPosColor VertexLayout = iota

	// LayoutPosColorUV is LayoutPosColor + texture/field coordinates
	// (2 x float32). Stride 20 bytes. Used by distance-field shapes and
	// textured quads.
	LayoutPosColorUV

	// LayoutPosUV is position + texture coordinates, no color (glyph color
	// comes from the op's uniform block). Stride 16 bytes.
	LayoutPosUV

	// NumVertexLayouts is the number of distinct layouts.
	NumVertexLayouts = 3
)

// Stride returns the byte size of one vertex record in this layout.
func (l VertexLayout) Stride() int {
	switch l {
	case LayoutPosColor:
		return 12
	case LayoutPosColorUV:
		return 20
	case LayoutPosUV:
		return 16
	default:
		return 0
	}
}

// String returns a human-readable name for the layout.
func (l VertexLayout) String() string {
	switch l {
	case LayoutPosColor:
		return "PosColor"
	case LayoutPosColorUV:
		return "PosColorUV"
	case LayoutPosUV:
		return "PosUV"
	default:
		return "Unknown"
	}
}

// BufferState is the per-staging-buffer GPU synchronization state.
type BufferState uint8

const (
	// BufferStable means the GPU-side buffer (if any) is large enough for
	// the staged data and only needs a content upload at flush time.
	BufferStable BufferState = iota

	// BufferNeedsGrow means the staging buffer grew past the GPU buffer's
	// capacity; flush must recreate the GPU buffer before uploading. The
	// state returns to BufferStable once that happens.
	BufferNeedsGrow
)

// PremultiplyColor converts a straight-alpha 8-bit color into the
// premultiplied form the blending pipelines expect. Each component becomes
// (component*alpha + 0.5) / 255, rounded toward zero, which matches the
// premultiplied source-over blend factors on the GPU side.
func PremultiplyColor(r, g, b, a uint8) [4]uint8 {
	if a == 0xFF {
		return [4]uint8{r, g, b, a}
	}
	fa := float32(a)
	return [4]uint8{
		uint8((float32(r)*fa + 0.5) / 255),
		uint8((float32(g)*fa + 0.5) / 255),
		uint8((float32(b)*fa + 0.5) / 255),
		a,
	}
}

// StagingBuffer is an owned, growable byte buffer accumulating tightly
// packed vertex records for one layout in append order.
//
// Capacity never shrinks. Growing sets the BufferNeedsGrow state, which the
// flush path consumes exactly once when it recreates the corresponding GPU
// buffer.
type StagingBuffer struct {
	layout VertexLayout
	data   []byte
	pos    int
	state  BufferState
}

// initialStagingCapacity is the starting byte capacity per staging buffer.
const initialStagingCapacity = 4 << 10

// NewStagingBuffer returns an empty staging buffer for the layout.
// A fresh buffer starts in the BufferNeedsGrow state so that the first
// flush creates its GPU buffer.
func NewStagingBuffer(layout VertexLayout) *StagingBuffer {
	return &StagingBuffer{
		layout: layout,
		data:   make([]byte, initialStagingCapacity),
		state:  BufferNeedsGrow,
	}
}

// Layout returns the buffer's vertex layout.
func (b *StagingBuffer) Layout() VertexLayout {
	return b.layout
}

// Len returns the number of staged bytes (the live range uploaded at flush).
func (b *StagingBuffer) Len() int {
	return b.pos
}

// Cap returns the current byte capacity.
func (b *StagingBuffer) Cap() int {
	return len(b.data)
}

// VertexCount returns the number of complete vertex records staged.
func (b *StagingBuffer) VertexCount() int {
	return b.pos / b.layout.Stride()
}

// State returns the GPU synchronization state.
func (b *StagingBuffer) State() BufferState {
	return b.state
}

// MarkStable records that the GPU buffer has been recreated at the current
// capacity. Called by the flush path after consuming BufferNeedsGrow.
func (b *StagingBuffer) MarkStable() {
	b.state = BufferStable
}

// Bytes returns the staged live range [0, Len). The slice aliases the
// buffer and is only valid until the next append or Reset.
func (b *StagingBuffer) Bytes() []byte {
	return b.data[:b.pos]
}

// Reset empties the buffer for the next frame. Capacity and GPU state are
// retained: a stable buffer stays stable.
func (b *StagingBuffer) Reset() {
	b.pos = 0
}

// reserve ensures n more bytes fit, growing by ~1.5x when they do not.
func (b *StagingBuffer) reserve(n int) []byte {
	if b.pos+n > len(b.data) {
		newCap := len(b.data) + len(b.data)/2
		for b.pos+n > newCap {
			newCap += newCap / 2
		}
		grown := make([]byte, newCap)
		copy(grown, b.data[:b.pos])
		b.data = grown
		b.state = BufferNeedsGrow
	}
	out := b.data[b.pos : b.pos+n]
	b.pos += n
	return out
}

// AppendPosColor appends one LayoutPosColor vertex. The color must already
// be premultiplied (see PremultiplyColor).
func (b *StagingBuffer) AppendPosColor(x, y float32, rgba [4]uint8) {
	v := b.reserve(12)
	binary.LittleEndian.PutUint32(v[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(v[4:8], math.Float32bits(y))
	copy(v[8:12], rgba[:])
}

// AppendPosColorUV appends one LayoutPosColorUV vertex.
func (b *StagingBuffer) AppendPosColorUV(x, y float32, rgba [4]uint8, u, v float32) {
	rec := b.reserve(20)
	binary.LittleEndian.PutUint32(rec[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(rec[4:8], math.Float32bits(y))
	copy(rec[8:12], rgba[:])
	binary.LittleEndian.PutUint32(rec[12:16], math.Float32bits(u))
	binary.LittleEndian.PutUint32(rec[16:20], math.Float32bits(v))
}

// AppendPosUV appends one LayoutPosUV vertex.
func (b *StagingBuffer) AppendPosUV(x, y, u, v float32) {
	rec := b.reserve(16)
	binary.LittleEndian.PutUint32(rec[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(rec[4:8], math.Float32bits(y))
	binary.LittleEndian.PutUint32(rec[8:12], math.Float32bits(u))
	binary.LittleEndian.PutUint32(rec[12:16], math.Float32bits(v))
}
