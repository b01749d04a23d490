package canvas

// Rect is an axis-aligned rectangle in device pixels. Coordinates are
// float32 to match the vertex format sent to the GPU.
type Rect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// RectWH constructs a rectangle from an origin and a size.
func RectWH(x, y, w, h float32) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Width returns the horizontal extent, or 0 for an empty rectangle.
func (r Rect) Width() float32 {
	if r.MaxX <= r.MinX {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the vertical extent, or 0 for an empty rectangle.
func (r Rect) Height() float32 {
	if r.MaxY <= r.MinY {
		return 0
	}
	return r.MaxY - r.MinY
}

// Intersect returns the overlap of r and s. The result is empty when
// they do not overlap.
func (r Rect) Intersect(s Rect) Rect {
	out := r
	if s.MinX > out.MinX {
		out.MinX = s.MinX
	}
	if s.MinY > out.MinY {
		out.MinY = s.MinY
	}
	if s.MaxX < out.MaxX {
		out.MaxX = s.MaxX
	}
	if s.MaxY < out.MaxY {
		out.MaxY = s.MaxY
	}
	return out
}

// Union returns the smallest rectangle containing both r and s.
// An empty operand does not contribute.
func (r Rect) Union(s Rect) Rect {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	out := r
	if s.MinX < out.MinX {
		out.MinX = s.MinX
	}
	if s.MinY < out.MinY {
		out.MinY = s.MinY
	}
	if s.MaxX > out.MaxX {
		out.MaxX = s.MaxX
	}
	if s.MaxY > out.MaxY {
		out.MaxY = s.MaxY
	}
	return out
}

// Outset grows the rectangle by d on every side. Negative d shrinks it.
func (r Rect) Outset(d float32) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Contains reports whether s lies entirely inside r.
func (r Rect) Contains(s Rect) bool {
	return s.MinX >= r.MinX && s.MinY >= r.MinY && s.MaxX <= r.MaxX && s.MaxY <= r.MaxY
}

// Overlaps reports whether r and s share any area.
func (r Rect) Overlaps(s Rect) bool {
	return !r.Intersect(s).IsEmpty()
}
