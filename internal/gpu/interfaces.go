package gpu

import "github.com/gogpu/wgpu/hal"

// TextureSource is implemented by frame resources that resolve to a GPU
// texture. Playback matches queued resources against this interface when
// a textured draw op consumes them.
type TextureSource interface {
	AcquireView(device hal.Device, queue hal.Queue) (hal.TextureView, error)
}

// PassDrawer is implemented by frame resources that record their own
// draw calls into an open render pass.
type PassDrawer interface {
	RecordDraw(pass hal.RenderPassEncoder) error
}
