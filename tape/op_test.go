package tape

import "testing"

func TestOpClassification(t *testing.T) {
	tests := []struct {
		op    Op
		draw  bool
		clip  bool
		layer bool
	}{
		{OpRect, true, false, false},
		{OpRoundRect, true, false, false},
		{OpCircle, true, false, false},
		{OpArc, true, false, false},
		{OpBezier, true, false, false},
		{OpLine, true, false, false},
		{OpImage, true, false, false},
		{OpGlyphs, true, false, false},
		{OpMesh, true, false, false},
		{OpCustom, true, false, false},
		{OpClipPush, false, true, false},
		{OpClipPop, false, true, false},
		{OpLayerPush, false, false, true},
		{OpLayerPop, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := tt.op.IsDraw(); got != tt.draw {
				t.Errorf("IsDraw() = %v, want %v", got, tt.draw)
			}
			if got := tt.op.IsClip(); got != tt.clip {
				t.Errorf("IsClip() = %v, want %v", got, tt.clip)
			}
			if got := tt.op.IsLayer(); got != tt.layer {
				t.Errorf("IsLayer() = %v, want %v", got, tt.layer)
			}
		})
	}
}

func TestOpLayout(t *testing.T) {
	tests := []struct {
		op     Op
		layout VertexLayout
		ok     bool
	}{
		{OpRect, LayoutPosColor, true},
		{OpBezier, LayoutPosColor, true},
		{OpLine, LayoutPosColor, true},
		{OpMesh, LayoutPosColor, true},
		{OpClipPush, LayoutPosColor, true},
		{OpClipPop, LayoutPosColor, true},
		{OpRoundRect, LayoutPosColorUV, true},
		{OpCircle, LayoutPosColorUV, true},
		{OpArc, LayoutPosColorUV, true},
		{OpImage, LayoutPosColorUV, true},
		{OpGlyphs, LayoutPosUV, true},
		{OpCustom, 0, false},
		{OpLayerPush, 0, false},
		{OpLayerPop, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			layout, ok := tt.op.Layout()
			if ok != tt.ok {
				t.Fatalf("Layout() ok = %v, want %v", ok, tt.ok)
			}
			if ok && layout != tt.layout {
				t.Errorf("Layout() = %v, want %v", layout, tt.layout)
			}
		})
	}
}

func TestOpFixedVertexCount(t *testing.T) {
	fixed := []Op{OpRect, OpRoundRect, OpCircle, OpArc, OpLine, OpImage, OpClipPush, OpClipPop}
	for _, op := range fixed {
		if n, ok := op.FixedVertexCount(); !ok || n != 6 {
			t.Errorf("%v: FixedVertexCount() = %d, %v, want 6, true", op, n, ok)
		}
	}
	variable := []Op{OpBezier, OpGlyphs, OpMesh}
	for _, op := range variable {
		if _, ok := op.FixedVertexCount(); ok {
			t.Errorf("%v: FixedVertexCount() ok = true, want false", op)
		}
	}
}

func TestOpHasUniform(t *testing.T) {
	withUniform := []Op{OpRect, OpRoundRect, OpCircle, OpArc, OpBezier, OpLine, OpImage, OpGlyphs, OpMesh, OpLayerPop}
	for _, op := range withUniform {
		if !op.HasUniform() {
			t.Errorf("%v: HasUniform() = false, want true", op)
		}
	}
	without := []Op{OpCustom, OpClipPush, OpClipPop, OpLayerPush}
	for _, op := range without {
		if op.HasUniform() {
			t.Errorf("%v: HasUniform() = true, want false", op)
		}
	}
}

func TestOpConsumesResource(t *testing.T) {
	consuming := []Op{OpImage, OpGlyphs, OpCustom}
	for _, op := range consuming {
		if !op.ConsumesResource() {
			t.Errorf("%v: ConsumesResource() = false, want true", op)
		}
	}
	if OpRect.ConsumesResource() {
		t.Error("OpRect: ConsumesResource() = true, want false")
	}
}
