package text

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

// mapSource serves baked glyphs from a fixed table.
type mapSource map[GlyphID]BakedGlyph

func (m mapSource) Baked(f *Face, gid GlyphID) (BakedGlyph, bool) {
	baked, ok := m[gid]
	return baked, ok
}

func TestAppendQuads(t *testing.T) {
	src := mapSource{
		1: {GID: 1, U0: 0, V0: 0, U1: 0.5, V1: 0.5, Left: 1, Top: 8, Width: 6, Height: 8},
		2: {GID: 2, U0: 0.5, V0: 0, U1: 1, V1: 0.5, Left: 0, Top: 10, Width: 7, Height: 10},
	}
	glyphs := []ShapedGlyph{
		{GID: 1, X: 0, XAdvance: 8},
		{GID: 2, X: 8, XAdvance: 9},
	}

	quads := AppendQuads(nil, src, nil, glyphs, 100, 50)
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}

	q := quads[0]
	if q.X0 != 101 || q.X1 != 107 {
		t.Errorf("quad 0 x range [%g, %g], want [101, 107]", q.X0, q.X1)
	}
	// Top offsets up from the baseline.
	if q.Y0 != 42 || q.Y1 != 50 {
		t.Errorf("quad 0 y range [%g, %g], want [42, 50]", q.Y0, q.Y1)
	}
	if q.U1 != 0.5 || q.V1 != 0.5 {
		t.Errorf("quad 0 uv max (%g, %g), want (0.5, 0.5)", q.U1, q.V1)
	}

	q = quads[1]
	if q.X0 != 108 || q.Y0 != 40 {
		t.Errorf("quad 1 origin (%g, %g), want (108, 40)", q.X0, q.Y0)
	}
}

func TestAppendQuadsSkipsMissingGlyphs(t *testing.T) {
	src := mapSource{
		1: {GID: 1, Width: 4, Height: 4},
	}
	glyphs := []ShapedGlyph{
		{GID: 1},
		{GID: 7}, // not baked
		{GID: 1, X: 10},
	}

	quads := AppendQuads(nil, src, nil, glyphs, 0, 0)
	if len(quads) != 2 {
		t.Errorf("expected missing glyph skipped, got %d quads", len(quads))
	}
}

func TestAppendQuadsSkipsEmptyGlyphs(t *testing.T) {
	// Whitespace bakes with zero size and produces no geometry.
	src := mapSource{
		3: {GID: 3, Width: 0, Height: 0, Advance: fixed.I(4)},
	}
	quads := AppendQuads(nil, src, nil, []ShapedGlyph{{GID: 3}}, 0, 0)
	if len(quads) != 0 {
		t.Errorf("expected no quads for zero-size glyph, got %d", len(quads))
	}
}

func TestAppendQuadsAppends(t *testing.T) {
	src := mapSource{1: {GID: 1, Width: 2, Height: 2}}
	existing := make([]Quad, 1, 4)
	quads := AppendQuads(existing, src, nil, []ShapedGlyph{{GID: 1}}, 0, 0)
	if len(quads) != 2 {
		t.Errorf("expected append to extend existing slice, got len %d", len(quads))
	}
}

func TestAdvance(t *testing.T) {
	glyphs := []ShapedGlyph{
		{XAdvance: 8},
		{XAdvance: 7.5},
		{XAdvance: 0.5},
	}
	if got := Advance(glyphs); got != fixed.I(16) {
		t.Errorf("Advance = %v, want %v", got, fixed.I(16))
	}
	if got := Advance(nil); got != 0 {
		t.Errorf("Advance of empty run = %v, want 0", got)
	}
}
