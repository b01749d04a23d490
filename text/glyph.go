package text

import "golang.org/x/image/math/fixed"

// GlyphID is a glyph index within a font.
type GlyphID uint16

// ShapedGlyph is one positioned glyph produced by shaping: a glyph index
// plus its pen position relative to the run origin at the baseline.
type ShapedGlyph struct {
	// GID is the glyph index in the font.
	GID GlyphID

	// Cluster is the byte offset of the source character in the
	// original string.
	Cluster int

	// X and Y position the glyph relative to the run origin.
	X, Y float64

	// XAdvance and YAdvance move the pen to the next glyph.
	XAdvance, YAdvance float64
}

// BakedGlyph is an atlas-resident glyph: where it lives in the atlas and
// how to place its quad relative to the pen.
type BakedGlyph struct {
	GID GlyphID

	// U0, V0, U1, V1 bound the glyph's atlas region in normalized
	// texture coordinates.
	U0, V0, U1, V1 float32

	// Left and Top offset the quad from the pen position: Left to the
	// quad's left edge, Top up from the baseline to the quad's top.
	Left, Top float32

	// Width and Height are the quad size in pixels.
	Width, Height float32

	// Advance is the glyph's horizontal advance in 26.6 fixed point.
	Advance fixed.Int26_6
}

// GlyphSource hands out baked atlas regions for a face's glyphs. It is
// implemented by the embedder's atlas manager; a glyph that has not been
// rasterized into the atlas reports ok false.
type GlyphSource interface {
	Baked(f *Face, gid GlyphID) (baked BakedGlyph, ok bool)
}

// Quad is one positioned glyph rectangle: destination bounds in canvas
// coordinates and the matching atlas region.
type Quad struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
}

// AppendQuads lays the shaped glyphs out at the given baseline origin,
// appending one quad per glyph the source has baked. Glyphs missing from
// the atlas are skipped.
func AppendQuads(dst []Quad, src GlyphSource, f *Face, glyphs []ShapedGlyph, originX, originY float32) []Quad {
	for _, g := range glyphs {
		baked, ok := src.Baked(f, g.GID)
		if !ok || baked.Width <= 0 || baked.Height <= 0 {
			continue
		}
		x := originX + float32(g.X) + baked.Left
		y := originY + float32(g.Y) - baked.Top
		dst = append(dst, Quad{
			X0: x, Y0: y,
			X1: x + baked.Width, Y1: y + baked.Height,
			U0: baked.U0, V0: baked.V0,
			U1: baked.U1, V1: baked.V1,
		})
	}
	return dst
}

// Advance sums the advances of a shaped run in 26.6 fixed point.
func Advance(glyphs []ShapedGlyph) fixed.Int26_6 {
	var total float64
	for _, g := range glyphs {
		total += g.XAdvance
	}
	return fixed.Int26_6(total * 64)
}
