package tape

import (
	"encoding/binary"
	"math"
)

// UniformBlockSize is the byte size of one parameter block in the uniform
// stream. Blocks are padded to the WebGPU minimum uniform-buffer offset
// alignment so each one can be bound at its own offset into a single GPU
// buffer.
const UniformBlockSize = 256

// UniformStream is a single scratch byte buffer holding, in strict append
// order, the fixed-size parameter blocks for every op that carries one.
// Playback consumes blocks with a monotonic cursor: op N's block is always
// the N-th block appended among block-carrying ops.
type UniformStream struct {
	data   []byte
	blocks int
	cursor int
	state  BufferState
}

// NewUniformStream returns an empty stream.
// Like a fresh staging buffer, it starts in BufferNeedsGrow so the first
// flush creates its GPU buffer.
func NewUniformStream() *UniformStream {
	return &UniformStream{
		data:  make([]byte, 0, 16*UniformBlockSize),
		state: BufferNeedsGrow,
	}
}

// BlockCount returns the number of appended blocks.
func (s *UniformStream) BlockCount() int {
	return s.blocks
}

// Len returns the staged byte length (BlockCount * UniformBlockSize).
func (s *UniformStream) Len() int {
	return len(s.data)
}

// Cap returns the allocated byte capacity. The GPU buffer is sized to
// the capacity, not the length, so growth does not recreate it on every
// appended block.
func (s *UniformStream) Cap() int {
	return cap(s.data)
}

// State returns the GPU synchronization state.
func (s *UniformStream) State() BufferState {
	return s.state
}

// MarkStable records that the GPU uniform buffer matches the current
// capacity.
func (s *UniformStream) MarkStable() {
	s.state = BufferStable
}

// Bytes returns the staged blocks. The slice aliases the stream and is
// only valid until the next append or Reset.
func (s *UniformStream) Bytes() []byte {
	return s.data
}

// AppendBlock reserves the next zeroed parameter block and returns a
// UniformWriter positioned at its start.
func (s *UniformStream) AppendBlock() UniformWriter {
	oldCap := cap(s.data)
	start := len(s.data)
	s.data = append(s.data, make([]byte, UniformBlockSize)...)
	if cap(s.data) != oldCap {
		s.state = BufferNeedsGrow
	}
	s.blocks++
	return UniformWriter{block: s.data[start : start+UniformBlockSize]}
}

// NextBlockOffset returns the byte offset of the next unconsumed block and
// advances the read cursor. ok is false when the stream is exhausted, which
// during playback indicates a record/playback desynchronization.
func (s *UniformStream) NextBlockOffset() (offset int, ok bool) {
	if s.cursor >= s.blocks {
		return 0, false
	}
	offset = s.cursor * UniformBlockSize
	s.cursor++
	return offset, true
}

// Consumed returns the number of blocks read since the last Reset.
func (s *UniformStream) Consumed() int {
	return s.cursor
}

// Reset empties the stream and rewinds the read cursor, keeping capacity.
func (s *UniformStream) Reset() {
	s.data = s.data[:0]
	s.blocks = 0
	s.cursor = 0
}

// UniformWriter fills one parameter block with little-endian scalar
// values at fixed byte offsets. Writes past the block panic via the
// underlying slice bounds, which is the desired behavior: block layouts
// are fixed at compile time.
type UniformWriter struct {
	block []byte
}

// PutFloat32 writes one float32 at the given byte offset.
func (w UniformWriter) PutFloat32(off int, v float32) {
	binary.LittleEndian.PutUint32(w.block[off:off+4], math.Float32bits(v))
}

// PutVec2 writes two float32 values at the given byte offset.
func (w UniformWriter) PutVec2(off int, x, y float32) {
	w.PutFloat32(off, x)
	w.PutFloat32(off+4, y)
}

// PutVec4 writes four float32 values at the given byte offset.
func (w UniformWriter) PutVec4(off int, x, y, z, ww float32) {
	w.PutFloat32(off, x)
	w.PutFloat32(off+4, y)
	w.PutFloat32(off+8, z)
	w.PutFloat32(off+12, ww)
}

// PutUint32 writes one uint32 at the given byte offset.
func (w UniformWriter) PutUint32(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.block[off:off+4], v)
}
