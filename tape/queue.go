package tape

// Resource is an opaque handle queued at record time and consumed in FIFO
// order during playback: a texture source, a glyph atlas, or a custom draw
// handler. The queue retains the resource on push and releases it exactly
// once after it has been consumed (or when the frame is abandoned).
//
// Playback discovers a resource's capabilities by type assertion; this
// package only manages ordering and lifetime.
type Resource interface {
	// Retain increments the resource's reference count.
	Retain()

	// Release decrements the reference count, freeing the underlying
	// handle when it reaches zero.
	Release()
}

// ResourceQueue is a FIFO of resources matched one-to-one, in record order,
// with the tape's resource-consuming ops. The queue must be empty at the
// end of a successful playback.
type ResourceQueue struct {
	refs []Resource
	head int
}

// NewResourceQueue returns an empty queue.
func NewResourceQueue() *ResourceQueue {
	return &ResourceQueue{refs: make([]Resource, 0, 16)}
}

// Push retains ref and appends it.
func (q *ResourceQueue) Push(ref Resource) {
	ref.Retain()
	q.refs = append(q.refs, ref)
}

// Pop removes and returns the front resource without releasing it; the
// consumer releases it after use. ok is false when the queue is empty,
// which during playback indicates a record/playback desynchronization.
func (q *ResourceQueue) Pop() (ref Resource, ok bool) {
	if q.head >= len(q.refs) {
		return nil, false
	}
	ref = q.refs[q.head]
	q.refs[q.head] = nil
	q.head++
	return ref, true
}

// Len returns the number of unconsumed resources.
func (q *ResourceQueue) Len() int {
	return len(q.refs) - q.head
}

// Reset releases every unconsumed resource and empties the queue. Called
// after playback (when the queue should already be empty) and when a frame
// is abandoned (when it may not be).
func (q *ResourceQueue) Reset() {
	for i := q.head; i < len(q.refs); i++ {
		if q.refs[i] != nil {
			q.refs[i].Release()
			q.refs[i] = nil
		}
	}
	q.refs = q.refs[:0]
	q.head = 0
}
