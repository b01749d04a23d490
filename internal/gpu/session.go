package gpu

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/canvas/tape"
)

// SessionConfig carries the options a Session needs from the canvas.
type SessionConfig struct {
	// Label prefixes the debug labels of every GPU object.
	Label string

	// ClearColor is the base target clear color, straight alpha in [0,1].
	ClearColor [4]float64

	// MaxLayers caps concurrently nested offscreen layers.
	MaxLayers int

	// Logger receives playback diagnostics. Must not be nil.
	Logger *slog.Logger
}

// Session owns the GPU half of a canvas: pipelines, the buffers
// mirroring the frame's staging structures, and the offscreen
// attachments. One Session serves one canvas.
type Session struct {
	device hal.Device
	queue  hal.Queue
	cfg    SessionConfig
	log    *slog.Logger

	pipes *pipelineSet
	pool  *layerPool

	vertexBufs [tape.NumVertexLayouts]*gpuBuffer
	uniformBuf *gpuBuffer

	// viewportBuf backs the uniform bind group for ops that carry no
	// uniform block of their own (clip passes).
	viewportBuf hal.Buffer
	viewportBG  hal.BindGroup

	width  int
	height int
}

// NewSession compiles the pipelines and prepares a session on the given
// device and queue.
func NewSession(device hal.Device, queue hal.Queue, cfg SessionConfig) (*Session, error) {
	if cfg.MaxLayers <= 0 {
		return nil, fmt.Errorf("session: MaxLayers must be positive, got %d", cfg.MaxLayers)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("session: nil logger")
	}
	pipes, err := newPipelineSet(device, cfg.Label)
	if err != nil {
		return nil, err
	}

	s := &Session{
		device: device,
		queue:  queue,
		cfg:    cfg,
		log:    cfg.Logger,
		pipes:  pipes,
		pool:   newLayerPool(cfg.Label, cfg.MaxLayers),
	}
	for l := range s.vertexBufs {
		s.vertexBufs[l] = newGPUBuffer(
			fmt.Sprintf("%s_verts%d", cfg.Label, l), gputypes.BufferUsageVertex)
	}
	s.uniformBuf = newGPUBuffer(cfg.Label+"_uniforms", gputypes.BufferUsageUniform)
	return s, nil
}

// ensureTargets sizes the stencil and layer attachments and refreshes
// the shared viewport uniform.
func (s *Session) ensureTargets(width, height int) error {
	if err := s.pool.ensureSize(s.device, width, height); err != nil {
		return err
	}
	if s.width == width && s.height == height && s.viewportBG != nil {
		return nil
	}
	s.width = width
	s.height = height

	if s.viewportBuf == nil {
		buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.cfg.Label + "_viewport",
			Size:  tape.UniformBlockSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create viewport buffer: %w", err)
		}
		s.viewportBuf = buf
	}

	data := make([]byte, 16)
	fw, fh := float32(width), float32(height)
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(fw))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(fh))
	binary.LittleEndian.PutUint32(data[8:12], math.Float32bits(1/fw))
	binary.LittleEndian.PutUint32(data[12:16], math.Float32bits(1/fh))
	s.queue.WriteBuffer(s.viewportBuf, 0, data)

	if s.viewportBG == nil {
		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  s.cfg.Label + "_viewport_bind",
			Layout: s.pipes.uniformLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: s.viewportBuf.NativeHandle(), Offset: 0, Size: tape.UniformBlockSize,
				}},
			},
		})
		if err != nil {
			return fmt.Errorf("create viewport bind group: %w", err)
		}
		s.viewportBG = bg
	}
	return nil
}

// upload synchronizes the frame's staging structures into GPU buffers.
func (s *Session) upload(f *tape.Frame) error {
	for l, sb := range f.Vertices {
		if err := s.vertexBufs[l].syncVertices(s.device, s.queue, sb); err != nil {
			return fmt.Errorf("upload vertex layout %d: %w", l, err)
		}
	}
	if err := s.uniformBuf.syncUniforms(s.device, s.queue, f.Uniforms); err != nil {
		return fmt.Errorf("upload uniforms: %w", err)
	}
	return nil
}

// uniformBindGroup creates a transient bind group for one uniform block.
// The caller destroys it after playback.
func (s *Session) uniformBindGroup(offset int) (hal.BindGroup, error) {
	return s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  s.cfg.Label + "_block_bind",
		Layout: s.pipes.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: s.uniformBuf.buf.NativeHandle(),
				Offset: uint64(offset),
				Size:   tape.UniformBlockSize,
			}},
		},
	})
}

// textureBindGroup creates a transient bind group sampling the given
// view with the shared sampler.
func (s *Session) textureBindGroup(view hal.TextureView) (hal.BindGroup, error) {
	return s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  s.cfg.Label + "_texture_bind",
		Layout: s.pipes.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: s.pipes.sampler.NativeHandle(),
			}},
		},
	})
}

// Destroy releases every GPU object the session owns.
func (s *Session) Destroy() {
	if s.viewportBG != nil {
		s.device.DestroyBindGroup(s.viewportBG)
		s.viewportBG = nil
	}
	if s.viewportBuf != nil {
		s.device.DestroyBuffer(s.viewportBuf)
		s.viewportBuf = nil
	}
	for _, b := range s.vertexBufs {
		b.destroy(s.device)
	}
	s.uniformBuf.destroy(s.device)
	s.pool.release(s.device)
	s.pipes.destroy(s.device)
}
