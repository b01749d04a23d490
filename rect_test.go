package canvas

import "testing"

func TestRectWH(t *testing.T) {
	r := RectWH(10, 20, 30, 40)
	if r.MinX != 10 || r.MinY != 20 || r.MaxX != 40 || r.MaxY != 60 {
		t.Errorf("RectWH(10, 20, 30, 40) = %+v", r)
	}
	if r.Width() != 30 || r.Height() != 40 {
		t.Errorf("expected size 30x40, got %gx%g", r.Width(), r.Height())
	}
}

func TestRectIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"Zero", Rect{}, true},
		{"Normal", RectWH(0, 0, 10, 10), false},
		{"ZeroWidth", Rect{MinX: 5, MinY: 0, MaxX: 5, MaxY: 10}, true},
		{"ZeroHeight", Rect{MinX: 0, MinY: 5, MaxX: 10, MaxY: 5}, true},
		{"Inverted", Rect{MinX: 10, MinY: 10, MaxX: 0, MaxY: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	a := RectWH(0, 0, 100, 100)
	b := RectWH(50, 50, 100, 100)
	got := a.Intersect(b)
	want := Rect{MinX: 50, MinY: 50, MaxX: 100, MaxY: 100}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	// Disjoint rectangles intersect to empty.
	c := RectWH(200, 200, 10, 10)
	if !a.Intersect(c).IsEmpty() {
		t.Errorf("expected empty intersection, got %+v", a.Intersect(c))
	}
}

func TestRectUnion(t *testing.T) {
	a := RectWH(0, 0, 10, 10)
	b := RectWH(20, 20, 10, 10)
	got := a.Union(b)
	want := Rect{MinX: 0, MinY: 0, MaxX: 30, MaxY: 30}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}

	// Empty operands contribute nothing.
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %+v, want %+v", got, a)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty Union = %+v, want %+v", got, b)
	}
}

func TestRectOutset(t *testing.T) {
	r := RectWH(10, 10, 10, 10).Outset(2)
	want := Rect{MinX: 8, MinY: 8, MaxX: 22, MaxY: 22}
	if r != want {
		t.Errorf("Outset = %+v, want %+v", r, want)
	}
}

func TestRectContainsOverlaps(t *testing.T) {
	outer := RectWH(0, 0, 100, 100)
	inner := RectWH(10, 10, 20, 20)
	apart := RectWH(200, 0, 10, 10)

	if !outer.Contains(inner) {
		t.Error("expected outer to contain inner")
	}
	if inner.Contains(outer) {
		t.Error("inner should not contain outer")
	}
	if !outer.Overlaps(inner) {
		t.Error("expected overlap")
	}
	if outer.Overlaps(apart) {
		t.Error("disjoint rects reported overlapping")
	}
}
