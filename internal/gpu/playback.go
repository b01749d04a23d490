package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/canvas/tape"
)

// ErrTapeDesync reports that the op tape and its side structures fell
// out of step during playback: an op asked for a uniform block, clip
// entry, vertex range, or resource that was never recorded. It indicates
// a recording bug, not a GPU failure.
var ErrTapeDesync = errors.New("gpu: tape desynchronized from side structures")

// player is the per-playback interpreter state: monotonic consume
// cursors over the frame's streams plus the open render pass.
type player struct {
	s *Session
	f *tape.Frame

	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder

	// vertCursor counts consumed vertices per staging layout.
	vertCursor [tape.NumVertexLayouts]int

	// currentRef is the stencil reference draws must match.
	currentRef uint32

	// targetStack holds the color attachment of every open pass level:
	// index 0 is the caller's target, deeper entries are layers.
	targetStack []hal.TextureView
	firstPass   bool

	// transient objects destroyed after submit.
	bindGroups []hal.BindGroup

	// consumed resources released after submit.
	resources []tape.Resource
}

// Playback replays one recorded frame against target. The frame's
// streams are uploaded, the tape is walked exactly once, and every
// consumed resource is released after the GPU work is submitted.
func (s *Session) Playback(f *tape.Frame, target hal.TextureView, width, height int) error {
	if err := s.ensureTargets(width, height); err != nil {
		return err
	}
	if err := s.upload(f); err != nil {
		return err
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: s.cfg.Label + "_playback",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(s.cfg.Label + "_playback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	p := &player{
		s:           s,
		f:           f,
		encoder:     encoder,
		targetStack: []hal.TextureView{target},
		firstPass:   true,
	}
	defer p.cleanup()

	p.beginPass(target, false)
	err = f.Ops.ForEach(p.execute)
	if err == nil && len(p.targetStack) != 1 {
		err = fmt.Errorf("%w: %d layers left open", ErrTapeDesync, len(p.targetStack)-1)
	}
	if err == nil && !f.Drained() {
		err = fmt.Errorf("%w: unconsumed entries after playback", ErrTapeDesync)
	}
	if err != nil {
		p.pass.End()
		encoder.DiscardEncoding()
		return err
	}
	p.pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer cmdBuf.Destroy()

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit playback: %w", err)
	}
	if _, err := s.device.Wait(fence, 1, 5_000_000_000); err != nil {
		return fmt.Errorf("wait for playback: %w", err)
	}
	return nil
}

// cleanup destroys the transient bind groups and releases the consumed
// resources. Runs after the submit has been waited on (or abandoned).
func (p *player) cleanup() {
	for _, bg := range p.bindGroups {
		p.s.device.DestroyBindGroup(bg)
	}
	p.bindGroups = nil
	for _, r := range p.resources {
		r.Release()
	}
	p.resources = nil
}

// beginPass opens a render pass on the given color target. The first
// pass of the frame clears the target and the stencil; every later pass
// loads both, except a freshly pushed layer which starts transparent.
func (p *player) beginPass(target hal.TextureView, freshLayer bool) {
	color := hal.RenderPassColorAttachment{
		View:    target,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	stencilLoad := gputypes.LoadOpLoad
	if p.firstPass {
		p.firstPass = false
		cc := p.s.cfg.ClearColor
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = gputypes.Color{
			R: cc[0] * cc[3], G: cc[1] * cc[3], B: cc[2] * cc[3], A: cc[3],
		}
		stencilLoad = gputypes.LoadOpClear
	} else if freshLayer {
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = gputypes.Color{}
	}

	p.pass = p.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            p.s.cfg.Label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              p.s.pool.stencilView(),
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     stencilLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
}

// execute interprets one op.
func (p *player) execute(op tape.Op) error {
	switch op {
	case tape.OpClipPush:
		return p.clipPush()
	case tape.OpClipPop:
		return p.clipPop()
	case tape.OpLayerPush:
		return p.layerPush()
	case tape.OpLayerPop:
		return p.layerPop()
	case tape.OpCustom:
		return p.custom()
	default:
		return p.draw(op)
	}
}

// draw replays one geometry op: bind its uniform block, pick its
// pipeline, consume its vertex range, and issue the draw.
func (p *player) draw(op tape.Op) error {
	layout, ok := op.Layout()
	if !ok {
		return fmt.Errorf("%w: op %v has no vertex layout", ErrTapeDesync, op)
	}
	count, err := p.vertexCount(op)
	if err != nil {
		return err
	}
	first := p.vertCursor[layout]
	p.vertCursor[layout] += count
	if p.vertCursor[layout] > p.f.Vertices[layout].VertexCount() {
		return fmt.Errorf("%w: op %v overruns %v vertex stream", ErrTapeDesync, op, layout)
	}

	bg, err := p.nextUniformBind()
	if err != nil {
		return err
	}

	var texBG hal.BindGroup
	pipeline := p.s.pipes.solid
	switch op {
	case tape.OpRoundRect, tape.OpCircle, tape.OpArc:
		pipeline = p.s.pipes.sdf
	case tape.OpImage, tape.OpGlyphs:
		if op == tape.OpImage {
			pipeline = p.s.pipes.textured
		} else {
			pipeline = p.s.pipes.glyph
		}
		texBG, err = p.nextTextureBind(op)
		if err != nil {
			return err
		}
		if texBG == nil {
			// Resource failed to provide a texture; recorded in the log,
			// the draw is dropped but the streams stay in step.
			return nil
		}
	}

	p.pass.SetPipeline(pipeline)
	p.pass.SetBindGroup(0, bg, nil)
	if texBG != nil {
		p.pass.SetBindGroup(1, texBG, nil)
	}
	p.pass.SetVertexBuffer(0, p.s.vertexBufs[layout].buf, 0)
	p.pass.SetStencilReference(p.currentRef)
	p.pass.Draw(uint32(count), 1, uint32(first), 0)
	return nil
}

// vertexCount returns the vertex count for a draw op, consuming a count
// entry for variable-geometry ops.
func (p *player) vertexCount(op tape.Op) (int, error) {
	if n, ok := op.FixedVertexCount(); ok {
		return n, nil
	}
	n, ok := p.f.NextCount()
	if !ok {
		return 0, fmt.Errorf("%w: op %v missing vertex count", ErrTapeDesync, op)
	}
	return int(n), nil
}

// nextUniformBind consumes the next uniform block and wraps it in a
// transient bind group.
func (p *player) nextUniformBind() (hal.BindGroup, error) {
	off, ok := p.f.Uniforms.NextBlockOffset()
	if !ok {
		return nil, fmt.Errorf("%w: uniform stream exhausted", ErrTapeDesync)
	}
	bg, err := p.s.uniformBindGroup(off)
	if err != nil {
		return nil, fmt.Errorf("bind uniform block at %d: %w", off, err)
	}
	p.bindGroups = append(p.bindGroups, bg)
	return bg, nil
}

// nextTextureBind consumes the next queued resource and binds its
// texture. A resource that cannot provide one is logged and reported as
// a nil bind group; the tape itself is still in step.
func (p *player) nextTextureBind(op tape.Op) (hal.BindGroup, error) {
	res, ok := p.f.Sources.Pop()
	if !ok {
		return nil, fmt.Errorf("%w: op %v has no queued resource", ErrTapeDesync, op)
	}
	p.resources = append(p.resources, res)

	src, ok := res.(TextureSource)
	if !ok {
		return nil, fmt.Errorf("%w: op %v resource %T is not a texture source", ErrTapeDesync, op, res)
	}
	view, err := src.AcquireView(p.s.device, p.s.queue)
	if err != nil {
		p.s.log.Warn("canvas: texture unavailable, dropping draw", "op", op.String(), "err", err)
		return nil, nil
	}
	bg, err := p.s.textureBindGroup(view)
	if err != nil {
		p.s.log.Warn("canvas: texture bind failed, dropping draw", "op", op.String(), "err", err)
		return nil, nil
	}
	p.bindGroups = append(p.bindGroups, bg)
	return bg, nil
}

// clipPush establishes one nested clip level. A positive entry raises
// the stencil inside the new clip quad; a negative entry recorded an
// empty clip and staged nothing.
func (p *player) clipPush() error {
	entry, ok := p.f.NextClipRef()
	if !ok {
		return fmt.Errorf("%w: clip push missing reference entry", ErrTapeDesync)
	}
	if entry < 0 {
		return nil
	}

	layout := tape.LayoutPosColor
	first := p.vertCursor[layout]
	p.vertCursor[layout] += 6
	if p.vertCursor[layout] > p.f.Vertices[layout].VertexCount() {
		return fmt.Errorf("%w: clip push overruns vertex stream", ErrTapeDesync)
	}

	p.pass.SetPipeline(p.s.pipes.clipPush)
	p.pass.SetBindGroup(0, p.s.viewportBG, nil)
	p.pass.SetVertexBuffer(0, p.s.vertexBufs[layout].buf, 0)
	p.pass.SetStencilReference(uint32(entry - 1))
	p.pass.Draw(6, 1, uint32(first), 0)
	p.currentRef = uint32(entry)
	return nil
}

// clipPop unwinds to an enclosing clip level. Entries carry the restore
// target biased by one; a positive entry replays a stencil replace pass
// over the restored clip quad, a negative one only rewinds the CPU-side
// reference.
func (p *player) clipPop() error {
	entry, ok := p.f.NextClipRef()
	if !ok {
		return fmt.Errorf("%w: clip pop missing reference entry", ErrTapeDesync)
	}
	if entry < 0 {
		p.currentRef = uint32(-entry - 1)
		return nil
	}
	target := uint32(entry - 1)

	layout := tape.LayoutPosColor
	first := p.vertCursor[layout]
	p.vertCursor[layout] += 6
	if p.vertCursor[layout] > p.f.Vertices[layout].VertexCount() {
		return fmt.Errorf("%w: clip pop overruns vertex stream", ErrTapeDesync)
	}

	p.pass.SetPipeline(p.s.pipes.clipPop)
	p.pass.SetBindGroup(0, p.s.viewportBG, nil)
	p.pass.SetVertexBuffer(0, p.s.vertexBufs[layout].buf, 0)
	p.pass.SetStencilReference(target)
	p.pass.Draw(6, 1, uint32(first), 0)
	p.currentRef = target
	return nil
}

// layerPush redirects drawing into the next offscreen attachment.
func (p *player) layerPush() error {
	if _, ok := p.f.NextLayerAlpha(); !ok {
		return fmt.Errorf("%w: layer push missing alpha entry", ErrTapeDesync)
	}
	depth := len(p.targetStack) - 1
	t, err := p.s.pool.acquire(p.s.device, depth)
	if err != nil {
		return err
	}

	p.pass.End()
	p.targetStack = append(p.targetStack, t.view)
	p.beginPass(t.view, true)
	return nil
}

// layerPop finishes the innermost layer and composites it over the
// enclosing target, scaled by the layer alpha carried in the op's
// uniform block.
func (p *player) layerPop() error {
	if len(p.targetStack) < 2 {
		return fmt.Errorf("%w: layer pop without matching push", ErrTapeDesync)
	}
	layerView := p.targetStack[len(p.targetStack)-1]
	p.targetStack = p.targetStack[:len(p.targetStack)-1]
	parent := p.targetStack[len(p.targetStack)-1]

	p.pass.End()
	p.beginPass(parent, false)

	bg, err := p.nextUniformBind()
	if err != nil {
		return err
	}
	texBG, err := p.s.textureBindGroup(layerView)
	if err != nil {
		return fmt.Errorf("bind layer for composite: %w", err)
	}
	p.bindGroups = append(p.bindGroups, texBG)

	p.pass.SetPipeline(p.s.pipes.composite)
	p.pass.SetBindGroup(0, bg, nil)
	p.pass.SetBindGroup(1, texBG, nil)
	p.pass.Draw(3, 1, 0, 0)
	return nil
}

// custom hands the pass to user drawing code queued by the recorder.
func (p *player) custom() error {
	res, ok := p.f.Sources.Pop()
	if !ok {
		return fmt.Errorf("%w: custom op has no queued resource", ErrTapeDesync)
	}
	p.resources = append(p.resources, res)

	drawer, ok := res.(PassDrawer)
	if !ok {
		return fmt.Errorf("%w: custom resource %T cannot record draws", ErrTapeDesync, res)
	}
	if err := drawer.RecordDraw(p.pass); err != nil {
		p.s.log.Warn("canvas: custom draw failed", "err", err)
	}
	return nil
}
