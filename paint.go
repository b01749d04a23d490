package canvas

import (
	"image/color"

	"github.com/gogpu/canvas/tape"
)

// Color is an 8-bit straight-alpha RGBA color. Components are
// premultiplied only when vertices are staged for the GPU.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color from 8-bit components.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color.
func FromColor(c color.Color) Color {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: nc.R, G: nc.G, B: nc.B, A: nc.A}
}

// Premultiplied returns the color with RGB scaled by alpha, packed for
// the vertex stream.
func (c Color) Premultiplied() [4]uint8 {
	return tape.PremultiplyColor(c.R, c.G, c.B, c.A)
}

// Common colors.
var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// StrokeStyle selects between filling a shape and stroking its outline.
type StrokeStyle int

const (
	// StyleFill fills the shape interior.
	StyleFill StrokeStyle = iota
	// StyleStroke draws the shape outline.
	StyleStroke
)

// Paint carries the styling applied to a draw call.
type Paint struct {
	// Color is the straight-alpha fill or stroke color.
	Color Color

	// Style selects fill or stroke. Not all shapes support stroking.
	Style StrokeStyle

	// StrokeWidth is the stroke width in device pixels. Ignored for fills.
	StrokeWidth float32

	// Smoothing is the edge softening radius in device pixels, applied by
	// the distance-field shaders. Zero means hard edges.
	Smoothing float32
}

// NewPaint creates a Paint with default values: opaque black fill with a
// one-pixel smoothing radius.
func NewPaint() Paint {
	return Paint{
		Color:       Black,
		Style:       StyleFill,
		StrokeWidth: 1,
		Smoothing:   1,
	}
}

// WithColor returns a copy of the paint with the color replaced.
func (p Paint) WithColor(c Color) Paint {
	p.Color = c
	return p
}

// IsInvisible reports whether drawing with this paint can have no effect.
func (p Paint) IsInvisible() bool {
	return p.Color.A == 0
}
