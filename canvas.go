package canvas

import (
	"errors"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/canvas/internal/gpu"
	"github.com/gogpu/canvas/tape"
)

// maxLayers is the number of concurrently nested offscreen layers the
// compositor supports. SaveLayer calls beyond this depth degrade to a
// plain Save.
const maxLayers = 3

// Uniform block byte offsets shared by the shaders. Every draw op writes
// one 256-byte block; unused fields are left zero.
const (
	uniformOffViewport = 0  // vec4: width, height, 1/width, 1/height
	uniformOffShape    = 16 // vec4: halfW, halfH, cornerRadius, smoothing
	uniformOffParams   = 32 // vec4: strokeWidth, style, startAngle, endAngle
	uniformOffColor    = 48 // vec4: premultiplied color (glyphs, layer alpha)
)

// ErrNoDevice is returned by ExecuteDrawOps when the canvas was created
// without a usable GPU device.
var ErrNoDevice = errors.New("canvas: no GPU device")

// Canvas records draw calls into a frame tape and plays them back on the
// GPU. Recording is cheap: shapes are staged as vertices and uniform
// blocks immediately, so playback is a single pass over the tape with no
// per-shape work left.
//
// A Canvas is not safe for concurrent use. Record a frame, call
// ExecuteDrawOps, then record the next frame.
type Canvas struct {
	width  int
	height int
	opts   canvasOptions

	frame      *tape.Frame
	stack      []saveRecord
	layerDepth int

	session *gpu.Session
}

// MeshVertex is one vertex of a caller-provided triangle mesh.
type MeshVertex struct {
	X, Y  float32
	Color Color
}

// GlyphQuad positions one glyph: a destination rectangle in user space
// and the glyph's texture coordinates within its atlas, both in [0,1].
type GlyphQuad struct {
	Dst Rect
	UV  Rect
}

// CustomDrawable is user-supplied GPU drawing code injected into
// playback. Draw is called with an open render pass configured for the
// current target; the implementation must not end the pass.
type CustomDrawable interface {
	Draw(pass hal.RenderPassEncoder) error
}

// Reset discards any recorded but unplayed content and prepares the
// canvas for a new frame at the given size.
func (c *Canvas) Reset(width, height int) {
	c.width = width
	c.height = height
	c.frame.Reset()
	c.layerDepth = 0
	c.stack = c.stack[:0]
	c.stack = append(c.stack, saveRecord{
		transform: Identity(),
		clip:      RectWH(0, 0, float32(width), float32(height)),
	})
}

// Size returns the canvas dimensions in device pixels.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Stats returns recording statistics for the frame recorded so far.
func (c *Canvas) Stats() tape.Stats {
	return c.frame.Stats()
}

// writeViewport fills the viewport field of a uniform block.
func (c *Canvas) writeViewport(w *tape.UniformWriter) {
	fw, fh := float32(c.width), float32(c.height)
	w.PutVec4(uniformOffViewport, fw, fh, 1/fw, 1/fh)
}

// cull reports whether a draw against bounds can be skipped entirely.
func (c *Canvas) cull(bounds Rect, p Paint) bool {
	return p.IsInvisible() || c.QuickReject(bounds)
}

// stageQuad stages two triangles covering the transformed corners of r.
func (c *Canvas) stageQuad(sb *tape.StagingBuffer, m Matrix, r Rect, col [4]uint8) {
	x0, y0 := m.Apply(r.MinX, r.MinY)
	x1, y1 := m.Apply(r.MaxX, r.MinY)
	x2, y2 := m.Apply(r.MaxX, r.MaxY)
	x3, y3 := m.Apply(r.MinX, r.MaxY)
	sb.AppendPosColor(x0, y0, col)
	sb.AppendPosColor(x1, y1, col)
	sb.AppendPosColor(x2, y2, col)
	sb.AppendPosColor(x0, y0, col)
	sb.AppendPosColor(x2, y2, col)
	sb.AppendPosColor(x3, y3, col)
}

// DrawRect fills r with the paint color.
func (c *Canvas) DrawRect(r Rect, p Paint) {
	if r.IsEmpty() || c.cull(r, p) {
		return
	}
	top := &c.stack[len(c.stack)-1]
	c.stageQuad(c.frame.Vertices[tape.LayoutPosColor], top.transform, r, p.Color.Premultiplied())

	c.frame.Ops.Record(tape.OpRect)
	w := c.frame.Uniforms.AppendBlock()
	c.writeViewport(&w)
}

// stageSDFQuad stages a quad for a distance-field shape centered on
// (cx, cy) with local half extents (hw, hh), padded so smoothing and
// stroking stay inside the quad. UVs are local offsets from the center
// in user units, which keeps the field correct under rotation.
func (c *Canvas) stageSDFQuad(m Matrix, cx, cy, hw, hh, pad float32, col [4]uint8) {
	sb := c.frame.Vertices[tape.LayoutPosColorUV]
	ex, ey := hw+pad, hh+pad
	corners := [4][2]float32{{-ex, -ey}, {ex, -ey}, {ex, ey}, {-ex, ey}}
	var px, py [4]float32
	for i, lc := range corners {
		px[i], py[i] = m.Apply(cx+lc[0], cy+lc[1])
	}
	order := [6]int{0, 1, 2, 0, 2, 3}
	for _, i := range order {
		sb.AppendPosColorUV(px[i], py[i], col, corners[i][0], corners[i][1])
	}
}

// sdfPad returns the quad padding needed for a paint's smoothing and
// stroke width.
func sdfPad(p Paint) float32 {
	pad := p.Smoothing + 1
	if p.Style == StyleStroke {
		pad += p.StrokeWidth / 2
	}
	return pad
}

// writeSDFUniform fills the shared shape and paint fields of a draw
// op's uniform block.
func (c *Canvas) writeSDFUniform(hw, hh, radius float32, p Paint, startAngle, endAngle float32) {
	w := c.frame.Uniforms.AppendBlock()
	c.writeViewport(&w)
	w.PutVec4(uniformOffShape, hw, hh, radius, p.Smoothing)
	w.PutVec4(uniformOffParams, p.StrokeWidth, float32(p.Style), startAngle, endAngle)
}

// DrawRoundRect draws r with the given corner radius. The radius is
// clamped to half the shorter side.
func (c *Canvas) DrawRoundRect(r Rect, radius float32, p Paint) {
	if r.IsEmpty() || c.cull(r.Outset(sdfPad(p)), p) {
		return
	}
	hw, hh := r.Width()/2, r.Height()/2
	if radius > hw {
		radius = hw
	}
	if radius > hh {
		radius = hh
	}
	top := &c.stack[len(c.stack)-1]
	c.stageSDFQuad(top.transform, r.MinX+hw, r.MinY+hh, hw, hh, sdfPad(p), p.Color.Premultiplied())

	c.frame.Ops.Record(tape.OpRoundRect)
	c.writeSDFUniform(hw, hh, radius, p, 0, 0)
}

// DrawCircle draws a circle centered on (cx, cy).
func (c *Canvas) DrawCircle(cx, cy, radius float32, p Paint) {
	if radius <= 0 {
		return
	}
	bounds := Rect{MinX: cx - radius, MinY: cy - radius, MaxX: cx + radius, MaxY: cy + radius}
	if c.cull(bounds.Outset(sdfPad(p)), p) {
		return
	}
	top := &c.stack[len(c.stack)-1]
	c.stageSDFQuad(top.transform, cx, cy, radius, radius, sdfPad(p), p.Color.Premultiplied())

	c.frame.Ops.Record(tape.OpCircle)
	c.writeSDFUniform(radius, radius, radius, p, 0, 0)
}

// DrawArc draws a circular arc centered on (cx, cy) from startAngle
// spanning sweepAngle, both in radians. Arcs are always stroked with the
// paint's stroke width.
func (c *Canvas) DrawArc(cx, cy, radius, startAngle, sweepAngle float32, p Paint) {
	if radius <= 0 || sweepAngle == 0 {
		return
	}
	bounds := Rect{MinX: cx - radius, MinY: cy - radius, MaxX: cx + radius, MaxY: cy + radius}
	pad := p.Smoothing + p.StrokeWidth/2 + 1
	if c.cull(bounds.Outset(pad), p) {
		return
	}
	top := &c.stack[len(c.stack)-1]
	c.stageSDFQuad(top.transform, cx, cy, radius, radius, pad, p.Color.Premultiplied())

	c.frame.Ops.Record(tape.OpArc)
	c.writeSDFUniform(radius, radius, radius, p, startAngle, startAngle+sweepAngle)
}

// DrawLine draws a stroked line segment from (x0, y0) to (x1, y1).
func (c *Canvas) DrawLine(x0, y0, x1, y1 float32, p Paint) {
	bounds := Rect{
		MinX: min(x0, x1), MinY: min(y0, y1),
		MaxX: max(x0, x1), MaxY: max(y0, y1),
	}
	hw := p.StrokeWidth / 2
	if hw <= 0 {
		hw = 0.5
	}
	if c.cull(bounds.Outset(hw), p) {
		return
	}
	top := &c.stack[len(c.stack)-1]
	c.stageLineQuad(top.transform, x0, y0, x1, y1, hw, p.Color.Premultiplied())

	c.frame.Ops.Record(tape.OpLine)
	w := c.frame.Uniforms.AppendBlock()
	c.writeViewport(&w)
}

// stageLineQuad stages a quad along the segment, expanded by hw on each
// side of the line direction.
func (c *Canvas) stageLineQuad(m Matrix, x0, y0, x1, y1, hw float32, col [4]uint8) {
	dx, dy := x1-x0, y1-y0
	length := sqrt32(dx*dx + dy*dy)
	if length == 0 {
		dx, dy = 1, 0
	} else {
		dx, dy = dx/length, dy/length
	}
	// Perpendicular offset.
	nx, ny := -dy*hw, dx*hw
	sb := c.frame.Vertices[tape.LayoutPosColor]
	ax, ay := m.Apply(x0+nx, y0+ny)
	bx, by := m.Apply(x1+nx, y1+ny)
	cx, cy := m.Apply(x1-nx, y1-ny)
	ddx, ddy := m.Apply(x0-nx, y0-ny)
	sb.AppendPosColor(ax, ay, col)
	sb.AppendPosColor(bx, by, col)
	sb.AppendPosColor(cx, cy, col)
	sb.AppendPosColor(ax, ay, col)
	sb.AppendPosColor(cx, cy, col)
	sb.AppendPosColor(ddx, ddy, col)
}

// DrawBezier draws a stroked cubic Bezier curve. The curve is flattened
// to line segments at record time; segment count adapts to the control
// polygon length.
func (c *Canvas) DrawBezier(x0, y0, cx1, cy1, cx2, cy2, x1, y1 float32, p Paint) {
	bounds := Rect{
		MinX: min4(x0, cx1, cx2, x1), MinY: min4(y0, cy1, cy2, y1),
		MaxX: max4(x0, cx1, cx2, x1), MaxY: max4(y0, cy1, cy2, y1),
	}
	hw := p.StrokeWidth / 2
	if hw <= 0 {
		hw = 0.5
	}
	if c.cull(bounds.Outset(hw), p) {
		return
	}
	segs := bezierSegments(x0, y0, cx1, cy1, cx2, cy2, x1, y1)
	top := &c.stack[len(c.stack)-1]
	col := p.Color.Premultiplied()

	px, py := x0, y0
	for i := 1; i <= segs; i++ {
		t := float32(i) / float32(segs)
		qx, qy := cubicAt(x0, cx1, cx2, x1, t), cubicAt(y0, cy1, cy2, y1, t)
		c.stageLineQuad(top.transform, px, py, qx, qy, hw, col)
		px, py = qx, qy
	}

	c.frame.Ops.Record(tape.OpBezier)
	c.frame.PushCount(uint32(segs * 6))
	w := c.frame.Uniforms.AppendBlock()
	c.writeViewport(&w)
}

// DrawImage draws the image resource into dst. The paint alpha modulates
// the image; the paint color is ignored.
func (c *Canvas) DrawImage(img *ImageResource, dst Rect, p Paint) {
	if img == nil || dst.IsEmpty() || c.cull(dst, p) {
		return
	}
	top := &c.stack[len(c.stack)-1]
	sb := c.frame.Vertices[tape.LayoutPosColorUV]
	col := tape.PremultiplyColor(255, 255, 255, p.Color.A)

	x0, y0 := top.transform.Apply(dst.MinX, dst.MinY)
	x1, y1 := top.transform.Apply(dst.MaxX, dst.MinY)
	x2, y2 := top.transform.Apply(dst.MaxX, dst.MaxY)
	x3, y3 := top.transform.Apply(dst.MinX, dst.MaxY)
	sb.AppendPosColorUV(x0, y0, col, 0, 0)
	sb.AppendPosColorUV(x1, y1, col, 1, 0)
	sb.AppendPosColorUV(x2, y2, col, 1, 1)
	sb.AppendPosColorUV(x0, y0, col, 0, 0)
	sb.AppendPosColorUV(x2, y2, col, 1, 1)
	sb.AppendPosColorUV(x3, y3, col, 0, 1)

	c.frame.Ops.Record(tape.OpImage)
	c.frame.Sources.Push(img)
	w := c.frame.Uniforms.AppendBlock()
	c.writeViewport(&w)
}

// DrawGlyphs draws a run of glyph quads sampled from the given atlas.
// Glyph coverage is modulated by the paint color.
func (c *Canvas) DrawGlyphs(atlas *ImageResource, glyphs []GlyphQuad, p Paint) {
	if atlas == nil || len(glyphs) == 0 || p.IsInvisible() {
		return
	}
	var bounds Rect
	for _, g := range glyphs {
		bounds = bounds.Union(g.Dst)
	}
	if c.QuickReject(bounds) {
		return
	}
	top := &c.stack[len(c.stack)-1]
	sb := c.frame.Vertices[tape.LayoutPosUV]
	for _, g := range glyphs {
		x0, y0 := top.transform.Apply(g.Dst.MinX, g.Dst.MinY)
		x1, y1 := top.transform.Apply(g.Dst.MaxX, g.Dst.MinY)
		x2, y2 := top.transform.Apply(g.Dst.MaxX, g.Dst.MaxY)
		x3, y3 := top.transform.Apply(g.Dst.MinX, g.Dst.MaxY)
		sb.AppendPosUV(x0, y0, g.UV.MinX, g.UV.MinY)
		sb.AppendPosUV(x1, y1, g.UV.MaxX, g.UV.MinY)
		sb.AppendPosUV(x2, y2, g.UV.MaxX, g.UV.MaxY)
		sb.AppendPosUV(x0, y0, g.UV.MinX, g.UV.MinY)
		sb.AppendPosUV(x2, y2, g.UV.MaxX, g.UV.MaxY)
		sb.AppendPosUV(x3, y3, g.UV.MinX, g.UV.MaxY)
	}

	c.frame.Ops.Record(tape.OpGlyphs)
	c.frame.PushCount(uint32(len(glyphs) * 6))
	c.frame.Sources.Push(atlas)
	w := c.frame.Uniforms.AppendBlock()
	c.writeViewport(&w)
	pm := p.Color.Premultiplied()
	w.PutVec4(uniformOffColor,
		float32(pm[0])/255, float32(pm[1])/255, float32(pm[2])/255, float32(pm[3])/255)
}

// DrawMesh draws a caller-provided triangle list. len(verts) must be a
// multiple of 3; a trailing partial triangle is dropped.
func (c *Canvas) DrawMesh(verts []MeshVertex, p Paint) {
	n := len(verts) / 3 * 3
	if n == 0 || p.IsInvisible() {
		return
	}
	var bounds Rect
	for i, v := range verts[:n] {
		r := Rect{MinX: v.X, MinY: v.Y, MaxX: v.X, MaxY: v.Y}
		if i == 0 {
			bounds = r
		} else {
			if v.X < bounds.MinX {
				bounds.MinX = v.X
			}
			if v.Y < bounds.MinY {
				bounds.MinY = v.Y
			}
			if v.X > bounds.MaxX {
				bounds.MaxX = v.X
			}
			if v.Y > bounds.MaxY {
				bounds.MaxY = v.Y
			}
		}
	}
	if c.QuickReject(bounds) {
		return
	}
	top := &c.stack[len(c.stack)-1]
	sb := c.frame.Vertices[tape.LayoutPosColor]
	alpha := float32(p.Color.A) / 255
	for _, v := range verts[:n] {
		col := v.Color
		if alpha < 1 {
			col.A = uint8(float32(col.A)*alpha + 0.5)
		}
		x, y := top.transform.Apply(v.X, v.Y)
		sb.AppendPosColor(x, y, col.Premultiplied())
	}

	c.frame.Ops.Record(tape.OpMesh)
	c.frame.PushCount(uint32(n))
	w := c.frame.Uniforms.AppendBlock()
	c.writeViewport(&w)
}

// DrawCustom injects user GPU code into playback. The drawable runs
// inside the render pass at its recorded position in the frame, after
// everything recorded before it and under everything recorded after.
func (c *Canvas) DrawCustom(d CustomDrawable) {
	if d == nil {
		return
	}
	top := &c.stack[len(c.stack)-1]
	if top.clipEmpty {
		return
	}
	c.frame.Ops.Record(tape.OpCustom)
	c.frame.Sources.Push(&customResource{drawable: d})
}

// ExecuteDrawOps plays the recorded frame back against target and resets
// the recording. It returns false with no error when nothing was
// recorded. The save stack must be balanced: ExecuteDrawOps panics if
// Save calls are missing their Restore.
func (c *Canvas) ExecuteDrawOps(target hal.TextureView) (bool, error) {
	if len(c.stack) != 1 {
		panic("canvas: ExecuteDrawOps with unbalanced save stack")
	}
	if c.frame.Ops.IsEmpty() {
		return false, nil
	}
	if c.session == nil {
		return false, ErrNoDevice
	}

	Logger().Debug("canvas: playback", "stats", c.frame.Stats())
	err := c.session.Playback(c.frame, target, c.width, c.height)
	c.Reset(c.width, c.height)
	if err != nil {
		return false, err
	}
	return true, nil
}
