package canvas

import "testing"

func TestCubicAtEndpoints(t *testing.T) {
	if got := cubicAt(1, 5, 9, 13, 0); got != 1 {
		t.Errorf("cubicAt(t=0) = %g, want 1", got)
	}
	if got := cubicAt(1, 5, 9, 13, 1); got != 13 {
		t.Errorf("cubicAt(t=1) = %g, want 13", got)
	}
	// Symmetric control points put the midpoint halfway.
	if got := cubicAt(0, 0, 10, 10, 0.5); !nearf(got, 5) {
		t.Errorf("cubicAt(t=0.5) = %g, want 5", got)
	}
}

func TestBezierSegmentsClamped(t *testing.T) {
	// A degenerate curve still gets the minimum segment count.
	if got := bezierSegments(0, 0, 0, 0, 0, 0, 0, 0); got != 4 {
		t.Errorf("degenerate curve segments = %d, want 4", got)
	}
	// A very long curve is capped.
	if got := bezierSegments(0, 0, 1000, 0, 2000, 0, 3000, 0); got != 64 {
		t.Errorf("long curve segments = %d, want 64", got)
	}
	// Segment count grows with curve length.
	short := bezierSegments(0, 0, 10, 10, 20, 10, 30, 0)
	long := bezierSegments(0, 0, 50, 50, 100, 50, 150, 0)
	if long <= short {
		t.Errorf("segments did not grow with length: short %d, long %d", short, long)
	}
}
