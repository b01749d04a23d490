package canvas

import "math"

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// cubicAt evaluates one coordinate of a cubic Bezier at t.
func cubicAt(p0, p1, p2, p3, t float32) float32 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

// bezierSegments picks a flattening segment count from the control
// polygon length, clamped to [4, 64]. One segment per four pixels keeps
// the error below the stroke smoothing radius for typical curve sizes.
func bezierSegments(x0, y0, x1, y1, x2, y2, x3, y3 float32) int {
	d := dist(x0, y0, x1, y1) + dist(x1, y1, x2, y2) + dist(x2, y2, x3, y3)
	segs := int(d / 4)
	if segs < 4 {
		segs = 4
	}
	if segs > 64 {
		segs = 64
	}
	return segs
}

func dist(x0, y0, x1, y1 float32) float32 {
	dx, dy := x1-x0, y1-y0
	return sqrt32(dx*dx + dy*dy)
}
