package text

import "golang.org/x/text/unicode/bidi"

// Direction specifies the visual order of a text run.
type Direction int

const (
	// DirectionLTR is left-to-right text.
	DirectionLTR Direction = iota
	// DirectionRTL is right-to-left text.
	DirectionRTL
	// DirectionTTB is top-to-bottom text.
	DirectionTTB
	// DirectionBTT is bottom-to-top text.
	DirectionBTT
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirectionLTR:
		return "LTR"
	case DirectionRTL:
		return "RTL"
	case DirectionTTB:
		return "TTB"
	case DirectionBTT:
		return "BTT"
	default:
		return "Unknown"
	}
}

// IsVertical returns true for top-to-bottom and bottom-to-top text.
func (d Direction) IsVertical() bool {
	return d == DirectionTTB || d == DirectionBTT
}

// Segment is a contiguous run of text with a single resolved direction.
type Segment struct {
	// Text is the run's substring of the segmented string.
	Text string

	// Start and End are byte offsets into the segmented string.
	Start int
	End   int

	// Direction is the run's resolved visual direction.
	Direction Direction

	// Level is the run's bidi embedding level. Odd levels are RTL.
	Level int
}

// SegmentString splits text into direction runs using the Unicode
// bidirectional algorithm, with a left-to-right base direction. Each
// returned segment should be shaped as a unit.
func SegmentString(text string) []Segment {
	return segment(text, bidi.Neutral)
}

// SegmentStringRTL is SegmentString with a right-to-left base
// direction. Runs with no strong or numeric direction resolve to RTL;
// digit runs keep their left-to-right display order, so mixed text
// still splits at every direction change.
func SegmentStringRTL(text string) []Segment {
	return segment(text, bidi.RightToLeft)
}

func segment(text string, base bidi.Direction) []Segment {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	levels := bidiLevels(text, len(runes), base)
	offsets := byteOffsets(text, runes)

	segments := make([]Segment, 0, 2)
	start := 0
	for i := 1; i < len(runes); i++ {
		if levels[i] == levels[start] {
			continue
		}
		segments = append(segments, makeSegment(text, offsets, start, i, levels[start]))
		start = i
	}
	return append(segments, makeSegment(text, offsets, start, len(runes), levels[start]))
}

// bidiLevels resolves a per-rune embedding level for the whole string.
func bidiLevels(text string, runeCount int, base bidi.Direction) []int {
	levels := make([]int, runeCount)

	p := bidi.Paragraph{}
	_, _ = p.SetString(text, bidi.DefaultDirection(base))
	ordering, err := p.Order()
	if err != nil {
		return levels
	}

	// run.Pos returns inclusive rune indices.
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		startRune, endRune := run.Pos()
		level := 0
		if run.Direction() == bidi.RightToLeft {
			level = 1
		}
		for j := startRune; j <= endRune && j < len(levels); j++ {
			levels[j] = level
		}
	}
	return levels
}

func byteOffsets(text string, runes []rune) []int {
	offsets := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		offsets[i] = off
		off += len(string(r))
	}
	offsets[len(runes)] = len(text)
	return offsets
}

func makeSegment(text string, offsets []int, startRune, endRune, level int) Segment {
	dir := DirectionLTR
	if level%2 == 1 {
		dir = DirectionRTL
	}
	start, end := offsets[startRune], offsets[endRune]
	return Segment{
		Text:      text[start:end],
		Start:     start,
		End:       end,
		Direction: dir,
		Level:     level,
	}
}
