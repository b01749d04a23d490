package canvas

import "github.com/gogpu/canvas/tape"

// saveRecord is one level of the save stack. Pushing copies the parent
// record, so restore is a plain pop.
type saveRecord struct {
	// transform maps user coordinates to device pixels.
	transform Matrix

	// clip is the device-space intersection of every clip rectangle
	// applied on this level and its ancestors.
	clip Rect

	// stencilRef is the stencil value written for the innermost
	// non-empty clip visible on this level. Draws test for equality
	// against it.
	stencilRef int32

	// clipEmpty is set once the clip intersection becomes empty. Draws
	// on this level are culled at record time and the stencil is left
	// untouched.
	clipEmpty bool

	// clipPushes counts the clip ops recorded on this level, including
	// skipped empty ones.
	clipPushes int

	// layer is set when this level pushed an offscreen layer.
	layer      bool
	layerAlpha uint8
}

// clipOutset pads stencil quads by one pixel so the edge pixels of the
// clip bound are fully covered regardless of rasterization rounding.
const clipOutset = 1

// Save pushes a copy of the current draw state (transform and clip) onto
// the save stack and returns the stack depth before the push. Pass the
// returned value to RestoreToCount to unwind back to this point.
func (c *Canvas) Save() int {
	depth := len(c.stack)
	top := c.stack[depth-1]
	top.clipPushes = 0
	top.layer = false
	c.stack = append(c.stack, top)
	return depth
}

// SaveLayer pushes a save level that additionally redirects drawing into
// an offscreen layer. On restore the layer is composited over the content
// below it, scaled by alpha.
//
// Layers are capped at maxLayers concurrent levels. Beyond the cap, and
// for alpha 255 where compositing would be a no-op, SaveLayer degrades to
// a plain Save. The returned depth token works with RestoreToCount either
// way.
func (c *Canvas) SaveLayer(bounds Rect, alpha uint8) int {
	depth := c.Save()
	if alpha == 255 {
		return depth
	}
	if c.layerDepth >= maxLayers {
		Logger().Warn("canvas: layer budget exceeded, degrading to plain save",
			"depth", c.layerDepth, "max", maxLayers)
		return depth
	}
	top := &c.stack[len(c.stack)-1]
	top.layer = true
	top.layerAlpha = alpha
	c.layerDepth++

	c.frame.Ops.Record(tape.OpLayerPush)
	c.frame.PushLayerAlpha(alpha)
	return depth
}

// Restore pops one save level, undoing the clips and transform applied
// since the matching Save. If the level pushed a layer, the layer is
// composited. Restore panics when called with nothing to restore.
func (c *Canvas) Restore() {
	if len(c.stack) <= 1 {
		panic("canvas: Restore called with empty save stack")
	}
	popped := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	parent := &c.stack[len(c.stack)-1]

	if popped.clipPushes > 0 {
		// Pop entries carry the restore target biased by one so the
		// sign survives a target of zero.
		entry := parent.stencilRef + 1
		if popped.stencilRef == parent.stencilRef {
			// Only empty clips were pushed; nothing was written, so
			// playback has no stencil state to unwind.
			entry = -entry
		} else {
			c.stageClipQuad(parent.clip)
		}
		c.frame.Ops.Record(tape.OpClipPop)
		c.frame.PushClipRef(entry)
	}

	if popped.layer {
		c.layerDepth--
		c.frame.Ops.Record(tape.OpLayerPop)
		w := c.frame.Uniforms.AppendBlock()
		c.writeViewport(&w)
		w.PutVec4(uniformOffColor,
			float32(popped.layerAlpha)/255, 0, 0, float32(popped.layerAlpha)/255)
	}
}

// RestoreToCount pops save levels until the stack depth equals count,
// where count is a value previously returned by Save or SaveLayer.
// Panics if count is below 1.
func (c *Canvas) RestoreToCount(count int) {
	if count < 1 {
		panic("canvas: RestoreToCount below 1")
	}
	for len(c.stack) > count {
		c.Restore()
	}
}

// SaveCount returns the current save stack depth. A freshly reset canvas
// reports 1.
func (c *Canvas) SaveCount() int {
	return len(c.stack)
}

// ClipRect intersects the current clip with r, transformed to device
// space. For rotated transforms the axis-aligned bounding box of the
// transformed rectangle is used, which clips conservatively. A rect
// that already contains the current clip records nothing. Returns
// false when the resulting clip is empty, meaning all subsequent draws
// on this level will be culled.
func (c *Canvas) ClipRect(r Rect) bool {
	top := &c.stack[len(c.stack)-1]
	if top.clipEmpty {
		return false
	}
	device := top.transform.ApplyRect(r)
	if device.Contains(top.clip) {
		// The incoming rect cannot narrow the clip. Skip the stencil
		// pass entirely rather than burn a stencil level on it.
		return true
	}
	newClip := top.clip.Intersect(device)
	top.clipPushes++

	if newClip.IsEmpty() {
		// Record the push with a negated reference so playback stays in
		// step with the tape without touching the stencil.
		top.clipEmpty = true
		top.clip = Rect{}
		c.frame.Ops.Record(tape.OpClipPush)
		c.frame.PushClipRef(-(top.stencilRef + 1))
		return false
	}

	top.stencilRef++
	top.clip = newClip
	c.stageClipQuad(newClip)
	c.frame.Ops.Record(tape.OpClipPush)
	c.frame.PushClipRef(top.stencilRef)
	return true
}

// QuickReject reports whether r, transformed to device space, falls
// entirely outside the current clip. Callers can skip building expensive
// geometry for rejected shapes.
func (c *Canvas) QuickReject(r Rect) bool {
	top := &c.stack[len(c.stack)-1]
	if top.clipEmpty {
		return true
	}
	device := top.transform.ApplyRect(r)
	return !top.clip.Overlaps(device)
}

// ClipBounds returns the current device-space clip rectangle. The zero
// Rect is returned once the clip is empty.
func (c *Canvas) ClipBounds() Rect {
	top := &c.stack[len(c.stack)-1]
	if top.clipEmpty {
		return Rect{}
	}
	return top.clip
}

// stageClipQuad stages a solid quad covering r, padded by one pixel,
// into the position-color stream for a stencil-only pass.
func (c *Canvas) stageClipQuad(r Rect) {
	q := r.Outset(clipOutset)
	sb := c.frame.Vertices[tape.LayoutPosColor]
	white := [4]uint8{255, 255, 255, 255}
	sb.AppendPosColor(q.MinX, q.MinY, white)
	sb.AppendPosColor(q.MaxX, q.MinY, white)
	sb.AppendPosColor(q.MaxX, q.MaxY, white)
	sb.AppendPosColor(q.MinX, q.MinY, white)
	sb.AppendPosColor(q.MaxX, q.MaxY, white)
	sb.AppendPosColor(q.MinX, q.MaxY, white)
}

// Translate prepends a translation to the current transform.
func (c *Canvas) Translate(x, y float32) {
	top := &c.stack[len(c.stack)-1]
	top.transform = top.transform.Multiply(Translate(x, y))
}

// Scale prepends a scale to the current transform.
func (c *Canvas) Scale(x, y float32) {
	top := &c.stack[len(c.stack)-1]
	top.transform = top.transform.Multiply(Scale(x, y))
}

// Rotate prepends a rotation (radians) to the current transform.
func (c *Canvas) Rotate(angle float32) {
	top := &c.stack[len(c.stack)-1]
	top.transform = top.transform.Multiply(Rotate(angle))
}

// SetTransform replaces the current transform.
func (c *Canvas) SetTransform(m Matrix) {
	c.stack[len(c.stack)-1].transform = m
}

// Transform returns the current transform.
func (c *Canvas) Transform() Matrix {
	return c.stack[len(c.stack)-1].transform
}
