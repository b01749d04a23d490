package text

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestNewFaceRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		size float64
	}{
		{"EmptyData", nil, 16},
		{"ZeroSize", []byte{0, 1, 0, 0}, 0},
		{"NegativeSize", []byte{0, 1, 0, 0}, -12},
		{"NotAFont", []byte("definitely not a font file"), 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFace(tt.data, tt.size); err == nil {
				t.Error("expected NewFace to fail")
			}
		})
	}
}

func TestFixedConversionRoundTrip(t *testing.T) {
	tests := []float64{0, 1, 16, 24.5, 0.25}
	for _, v := range tests {
		got := fixedToFloat(floatToFixed(v))
		if got != v {
			t.Errorf("round trip of %g gave %g", v, got)
		}
	}
	if floatToFixed(1) != fixed.I(1) {
		t.Errorf("floatToFixed(1) = %v, want %v", floatToFixed(1), fixed.I(1))
	}
}

func TestShapeEmptyString(t *testing.T) {
	f := &Face{size: 16}
	if glyphs := f.Shape("", DirectionLTR); glyphs != nil {
		t.Errorf("expected nil glyphs for empty string, got %v", glyphs)
	}
}
