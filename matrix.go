package canvas

import "math"

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float32
	D, E, F float32
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float32) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float32) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float32) Matrix {
	cos := float32(math.Cos(float64(angle)))
	sin := float32(math.Sin(float64(angle)))
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Multiply multiplies two matrices (m * other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Apply transforms a point.
func (m Matrix) Apply(x, y float32) (float32, float32) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// ApplyRect transforms the four corners of r and returns their
// axis-aligned bounding box.
func (m Matrix) ApplyRect(r Rect) Rect {
	x0, y0 := m.Apply(r.MinX, r.MinY)
	x1, y1 := m.Apply(r.MaxX, r.MinY)
	x2, y2 := m.Apply(r.MinX, r.MaxY)
	x3, y3 := m.Apply(r.MaxX, r.MaxY)
	return Rect{
		MinX: min4(x0, x1, x2, x3),
		MinY: min4(y0, y1, y2, y3),
		MaxX: max4(x0, x1, x2, x3),
		MaxY: max4(y0, y1, y2, y3),
	}
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// IsAxisAligned reports whether the matrix maps axis-aligned rectangles
// to axis-aligned rectangles (no rotation or shear).
func (m Matrix) IsAxisAligned() bool {
	return m.B == 0 && m.D == 0
}

func min4(a, b, c, d float32) float32 {
	return min(min(a, b), min(c, d))
}

func max4(a, b, c, d float32) float32 {
	return max(max(a, b), max(c, d))
}
