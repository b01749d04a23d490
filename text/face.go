package text

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Face is a font at a specific size, ready for shaping. It wraps a
// parsed go-text/typesetting font.
//
// Face is safe for concurrent use: the wrapped font.Font is read-only,
// and each Shape call gets its own font.Face and a pooled HarfBuzz
// shaper, neither of which is concurrency-safe on its own.
type Face struct {
	font *font.Font
	size float64

	shapers sync.Pool
}

// NewFace parses TTF or OTF font data and returns a face at the given
// size in pixels.
func NewFace(data []byte, size float64) (*Face, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("text: empty font data")
	}
	if size <= 0 {
		return nil, fmt.Errorf("text: face size must be positive, got %g", size)
	}
	parsed, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	f := &Face{font: parsed.Font, size: size}
	f.shapers.New = func() any { return &shaping.HarfbuzzShaper{} }
	return f, nil
}

// Size returns the face size in pixels.
func (f *Face) Size() float64 {
	return f.size
}

// Shape converts one direction run into positioned glyphs. The glyph
// positions are relative to the pen origin at the baseline.
func (f *Face) Shape(text string, dir Direction) []ShapedGlyph {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	gtDir := mapDirection(dir)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: gtDir,
		Face:      font.NewFace(f.font),
		Size:      floatToFixed(f.size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := f.shapers.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	f.shapers.Put(hb)

	return convertGlyphs(output.Glyphs, gtDir)
}

// ShapeString segments text into direction runs and shapes each run,
// returning the glyphs of all runs in logical order.
func (f *Face) ShapeString(text string) []ShapedGlyph {
	var glyphs []ShapedGlyph
	for _, seg := range SegmentString(text) {
		run := f.Shape(seg.Text, seg.Direction)
		for i := range run {
			run[i].Cluster += seg.Start
		}
		glyphs = append(glyphs, run...)
	}
	return glyphs
}

// mapDirection converts a Direction to go-text's di.Direction.
func mapDirection(d Direction) di.Direction {
	switch d {
	case DirectionRTL:
		return di.DirectionRTL
	case DirectionTTB:
		return di.DirectionTTB
	case DirectionBTT:
		return di.DirectionBTT
	default:
		return di.DirectionLTR
	}
}

// detectScript returns the script of the first non-space rune. Callers
// shaping mixed-script text should split runs by script first.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a pixel size to 26.6 fixed point.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts a 26.6 fixed-point value to float64 pixels.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// convertGlyphs turns shaper output into ShapedGlyphs with absolute pen
// positions accumulated from the per-glyph advances.
func convertGlyphs(glyphs []shaping.Glyph, dir di.Direction) []ShapedGlyph {
	if len(glyphs) == 0 {
		return nil
	}
	result := make([]ShapedGlyph, len(glyphs))

	var x, y float64
	for i, g := range glyphs {
		result[i] = ShapedGlyph{
			GID:     GlyphID(uint16(g.GlyphID)),
			Cluster: g.TextIndex(),
			X:       x + fixedToFloat(g.XOffset),
			Y:       y + fixedToFloat(g.YOffset),
		}
		adv := fixedToFloat(g.Advance)
		if dir.IsVertical() {
			result[i].YAdvance = adv
			y += adv
		} else {
			result[i].XAdvance = adv
			x += adv
		}
	}
	return result
}
