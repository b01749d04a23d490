package canvas

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/canvas/internal/gpu"
	"github.com/gogpu/canvas/tape"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (for example a gogpu.App) owns the device and passes it in;
// the canvas never creates its own. DeviceHandle is an alias for
// gpucontext.DeviceProvider so any provider from the gpucontext
// ecosystem works directly.
type DeviceHandle = gpucontext.DeviceProvider

// New creates a canvas that renders through the host's shared GPU
// device. The provider must expose the underlying HAL device via
// HalDevice() any and HalQueue() any, which gogpu device providers do.
func New(handle DeviceHandle, width, height int, opts ...Option) (*Canvas, error) {
	device, queue, err := extractHAL(handle)
	if err != nil {
		return nil, err
	}
	return NewWithDevice(device, queue, width, height, opts...)
}

// NewWithDevice creates a canvas on an explicit HAL device and queue.
// Most callers should use New with a device provider instead.
func NewWithDevice(device hal.Device, queue hal.Queue, width, height int, opts ...Option) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", width, height)
	}
	o := defaultCanvasOptions()
	for _, opt := range opts {
		opt(&o)
	}

	session, err := gpu.NewSession(device, queue, gpu.SessionConfig{
		Label: o.label,
		ClearColor: [4]float64{
			float64(o.clearColor.R) / 255,
			float64(o.clearColor.G) / 255,
			float64(o.clearColor.B) / 255,
			float64(o.clearColor.A) / 255,
		},
		MaxLayers: maxLayers,
		Logger:    Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("canvas: create GPU session: %w", err)
	}

	c := &Canvas{
		opts:    o,
		frame:   tape.NewFrame(),
		session: session,
	}
	c.Reset(width, height)
	Logger().Info("canvas: created", "width", width, "height", height, "label", o.label)
	return c, nil
}

// Destroy releases the GPU resources held by the canvas. Any recorded
// but unplayed frame is discarded.
func (c *Canvas) Destroy() {
	c.frame.Reset()
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
}

// extractHAL pulls the hal.Device and hal.Queue out of a device
// provider. Providers expose them through untyped accessors to avoid a
// hard dependency on the HAL package.
func extractHAL(handle DeviceHandle) (hal.Device, hal.Queue, error) {
	hp, ok := handle.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, nil, fmt.Errorf("canvas: device provider %T does not expose HAL accessors", handle)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, nil, fmt.Errorf("canvas: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, nil, fmt.Errorf("canvas: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}
