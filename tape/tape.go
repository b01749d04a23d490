package tape

// Tape is the append-only ordered sequence of op tags for one frame.
//
// The tape supports exactly two access patterns: appending during recording
// and a single front-to-back walk during playback. There is no random
// access and no removal short of clearing the whole tape.
type Tape struct {
	ops []Op
}

// NewTape returns an empty tape with a small pre-sized backing array.
func NewTape() *Tape {
	return &Tape{ops: make([]Op, 0, 256)}
}

// Record appends one op tag. O(1) amortized; never fails.
func (t *Tape) Record(op Op) {
	t.ops = append(t.ops, op)
}

// Len returns the number of recorded ops.
func (t *Tape) Len() int {
	return len(t.ops)
}

// IsEmpty returns true if nothing has been recorded.
func (t *Tape) IsEmpty() bool {
	return len(t.ops) == 0
}

// ForEach walks the tape once, front to back, calling visit for every op.
// If visit returns an error the walk stops and the error is returned.
// ForEach must not be re-entered from within visit.
func (t *Tape) ForEach(visit func(op Op) error) error {
	for _, op := range t.ops {
		if err := visit(op); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the tape for the next frame, keeping capacity.
func (t *Tape) Reset() {
	t.ops = t.ops[:0]
}
