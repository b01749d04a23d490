package tape

// Frame bundles every per-frame recording structure: the tape itself, one
// staging buffer per vertex layout, the uniform stream, the side arrays for
// stateful ops, and the resource queue.
//
// A Frame is recorded by exactly one logical writer, consumed by exactly
// one playback pass, and then reset. Recording for the next frame must not
// begin before the previous playback has drained it.
type Frame struct {
	Ops      *Tape
	Vertices [NumVertexLayouts]*StagingBuffer
	Uniforms *UniformStream
	Sources  *ResourceQueue

	// clipRefs holds one signed entry per clip op, in record order.
	// Positive magnitude: the stencil reference value to establish, with a
	// geometry pass (the op also staged a quad). Negative magnitude: same
	// reference value but no stencil write — the clip was empty, or the pop
	// crosses only unwritten levels.
	clipRefs   []int32
	clipCursor int

	// layerAlphas holds one alpha byte per layer-push op.
	layerAlphas []uint8
	layerCursor int

	// counts holds one vertex count per variable-geometry op (bezier,
	// glyph runs, meshes), in record order.
	counts      []uint32
	countCursor int
}

// NewFrame returns an empty frame with all structures allocated.
func NewFrame() *Frame {
	f := &Frame{
		Ops:         NewTape(),
		Uniforms:    NewUniformStream(),
		Sources:     NewResourceQueue(),
		clipRefs:    make([]int32, 0, 16),
		layerAlphas: make([]uint8, 0, 4),
		counts:      make([]uint32, 0, 16),
	}
	for l := range f.Vertices {
		f.Vertices[l] = NewStagingBuffer(VertexLayout(l))
	}
	return f
}

// PushClipRef appends a signed clip reference entry.
func (f *Frame) PushClipRef(ref int32) {
	f.clipRefs = append(f.clipRefs, ref)
}

// NextClipRef returns the next clip reference in record order.
// ok is false on exhaustion (a record/playback desynchronization).
func (f *Frame) NextClipRef() (ref int32, ok bool) {
	if f.clipCursor >= len(f.clipRefs) {
		return 0, false
	}
	ref = f.clipRefs[f.clipCursor]
	f.clipCursor++
	return ref, true
}

// PushLayerAlpha appends a layer alpha for one layer-push op.
func (f *Frame) PushLayerAlpha(alpha uint8) {
	f.layerAlphas = append(f.layerAlphas, alpha)
}

// NextLayerAlpha returns the next layer alpha in record order.
func (f *Frame) NextLayerAlpha() (alpha uint8, ok bool) {
	if f.layerCursor >= len(f.layerAlphas) {
		return 0, false
	}
	alpha = f.layerAlphas[f.layerCursor]
	f.layerCursor++
	return alpha, true
}

// PushCount appends the vertex count of one variable-geometry op.
func (f *Frame) PushCount(n uint32) {
	f.counts = append(f.counts, n)
}

// NextCount returns the next vertex count in record order.
func (f *Frame) NextCount() (n uint32, ok bool) {
	if f.countCursor >= len(f.counts) {
		return 0, false
	}
	n = f.counts[f.countCursor]
	f.countCursor++
	return n, true
}

// Drained reports whether every side structure was fully consumed: the
// uniform stream, the clip/layer/count arrays, and the resource queue.
// Playback checks this after walking the tape.
func (f *Frame) Drained() bool {
	return f.Uniforms.Consumed() == f.Uniforms.BlockCount() &&
		f.clipCursor == len(f.clipRefs) &&
		f.layerCursor == len(f.layerAlphas) &&
		f.countCursor == len(f.counts) &&
		f.Sources.Len() == 0
}

// Reset logically empties every structure, retaining capacity and GPU
// buffer state. Unconsumed resources are released.
func (f *Frame) Reset() {
	f.Ops.Reset()
	for _, b := range f.Vertices {
		b.Reset()
	}
	f.Uniforms.Reset()
	f.Sources.Reset()
	f.clipRefs = f.clipRefs[:0]
	f.clipCursor = 0
	f.layerAlphas = f.layerAlphas[:0]
	f.layerCursor = 0
	f.counts = f.counts[:0]
	f.countCursor = 0
}

// Stats summarizes a recorded frame for debug logging.
type Stats struct {
	Ops           int
	VertexBytes   [NumVertexLayouts]int
	UniformBlocks int
	ClipOps       int
	Layers        int
	Resources     int
}

// Stats returns recording statistics for the current frame.
func (f *Frame) Stats() Stats {
	st := Stats{
		Ops:           f.Ops.Len(),
		UniformBlocks: f.Uniforms.BlockCount(),
		ClipOps:       len(f.clipRefs),
		Layers:        len(f.layerAlphas),
		Resources:     f.Sources.Len(),
	}
	for l, b := range f.Vertices {
		st.VertexBytes[l] = b.Len()
	}
	return st
}
