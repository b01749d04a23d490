package tape

import "testing"

func TestNewFrame(t *testing.T) {
	f := NewFrame()
	if f.Ops == nil || f.Uniforms == nil || f.Sources == nil {
		t.Fatal("NewFrame() left structures nil")
	}
	for l, b := range f.Vertices {
		if b == nil {
			t.Fatalf("vertex buffer %d is nil", l)
		}
		if b.Layout() != VertexLayout(l) {
			t.Errorf("buffer %d layout = %v", l, b.Layout())
		}
	}
	if !f.Drained() {
		t.Error("empty frame should report Drained")
	}
}

func TestFrameSideArrayCursors(t *testing.T) {
	f := NewFrame()
	f.PushClipRef(1)
	f.PushClipRef(-2)
	f.PushLayerAlpha(128)
	f.PushCount(42)

	if ref, ok := f.NextClipRef(); !ok || ref != 1 {
		t.Errorf("NextClipRef() = %d, %v, want 1, true", ref, ok)
	}
	if ref, ok := f.NextClipRef(); !ok || ref != -2 {
		t.Errorf("NextClipRef() = %d, %v, want -2, true", ref, ok)
	}
	if _, ok := f.NextClipRef(); ok {
		t.Error("NextClipRef() should report exhaustion")
	}
	if a, ok := f.NextLayerAlpha(); !ok || a != 128 {
		t.Errorf("NextLayerAlpha() = %d, %v, want 128, true", a, ok)
	}
	if n, ok := f.NextCount(); !ok || n != 42 {
		t.Errorf("NextCount() = %d, %v, want 42, true", n, ok)
	}
	if !f.Drained() {
		t.Error("fully consumed frame should report Drained")
	}
}

func TestFrameDrainedDetectsLeftovers(t *testing.T) {
	f := NewFrame()
	f.PushClipRef(1)
	if f.Drained() {
		t.Error("Drained() = true with unread clip entry")
	}
	f.NextClipRef()

	f.Uniforms.AppendBlock()
	if f.Drained() {
		t.Error("Drained() = true with unread uniform block")
	}
	f.Uniforms.NextBlockOffset()

	f.Sources.Push(&countedResource{})
	if f.Drained() {
		t.Error("Drained() = true with queued resource")
	}
	f.Sources.Pop()

	if !f.Drained() {
		t.Error("Drained() = false after full consumption")
	}
}

func TestFrameReset(t *testing.T) {
	f := NewFrame()
	f.Ops.Record(OpRect)
	f.Vertices[LayoutPosColor].AppendPosColor(0, 0, [4]uint8{})
	f.Uniforms.AppendBlock()
	f.PushClipRef(1)
	f.PushLayerAlpha(200)
	f.PushCount(9)
	r := &countedResource{}
	f.Sources.Push(r)

	f.Reset()

	if !f.Ops.IsEmpty() {
		t.Error("tape not emptied")
	}
	if f.Vertices[LayoutPosColor].Len() != 0 {
		t.Error("staging buffer not emptied")
	}
	if f.Uniforms.BlockCount() != 0 {
		t.Error("uniform stream not emptied")
	}
	if r.releases != 1 {
		t.Errorf("unconsumed resource releases = %d, want 1", r.releases)
	}
	if !f.Drained() {
		t.Error("reset frame should report Drained")
	}
}

func TestFrameStats(t *testing.T) {
	f := NewFrame()
	f.Ops.Record(OpRect)
	f.Ops.Record(OpClipPush)
	f.Vertices[LayoutPosColor].AppendPosColor(0, 0, [4]uint8{})
	f.Uniforms.AppendBlock()
	f.PushClipRef(1)
	f.PushLayerAlpha(255)
	f.Sources.Push(&countedResource{})

	st := f.Stats()
	if st.Ops != 2 {
		t.Errorf("Stats.Ops = %d, want 2", st.Ops)
	}
	if st.VertexBytes[LayoutPosColor] != 12 {
		t.Errorf("Stats.VertexBytes[PosColor] = %d, want 12", st.VertexBytes[LayoutPosColor])
	}
	if st.UniformBlocks != 1 {
		t.Errorf("Stats.UniformBlocks = %d, want 1", st.UniformBlocks)
	}
	if st.ClipOps != 1 || st.Layers != 1 || st.Resources != 1 {
		t.Errorf("Stats side counts = %d/%d/%d, want 1/1/1", st.ClipOps, st.Layers, st.Resources)
	}
}
