package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/canvas/tape"
)

// gpuBuffer is a GPU buffer tracking a CPU staging structure. The buffer
// is recreated when the staging side reports that it outgrew the last
// GPU allocation, and refilled with WriteBuffer otherwise.
type gpuBuffer struct {
	buf   hal.Buffer
	size  uint64
	usage gputypes.BufferUsage
	label string
}

func newGPUBuffer(label string, usage gputypes.BufferUsage) *gpuBuffer {
	return &gpuBuffer{label: label, usage: usage | gputypes.BufferUsageCopyDst}
}

// syncVertices uploads a staging buffer, recreating the GPU buffer first
// when the staging side grew past it.
func (b *gpuBuffer) syncVertices(device hal.Device, queue hal.Queue, sb *tape.StagingBuffer) error {
	if sb.Len() == 0 {
		return nil
	}
	if sb.State() == tape.BufferNeedsGrow || b.buf == nil {
		if err := b.recreate(device, uint64(sb.Cap())); err != nil {
			return err
		}
		sb.MarkStable()
	}
	queue.WriteBuffer(b.buf, 0, sb.Bytes())
	return nil
}

// syncUniforms is syncVertices for the uniform stream.
func (b *gpuBuffer) syncUniforms(device hal.Device, queue hal.Queue, us *tape.UniformStream) error {
	if us.Len() == 0 {
		return nil
	}
	if us.State() == tape.BufferNeedsGrow || b.buf == nil {
		if err := b.recreate(device, uint64(us.Cap())); err != nil {
			return err
		}
		us.MarkStable()
	}
	queue.WriteBuffer(b.buf, 0, us.Bytes())
	return nil
}

func (b *gpuBuffer) recreate(device hal.Device, size uint64) error {
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
		b.buf = nil
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  size,
		Usage: b.usage,
	})
	if err != nil {
		return fmt.Errorf("create buffer %s (%d bytes): %w", b.label, size, err)
	}
	b.buf = buf
	b.size = size
	return nil
}

func (b *gpuBuffer) destroy(device hal.Device) {
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
		b.buf = nil
	}
}
