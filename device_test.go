package canvas

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// halProvider implements gpucontext.DeviceProvider plus the HAL
// accessors gogpu device providers expose.
type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

type stubDevice struct{}

func (stubDevice) Poll(wait bool) {}
func (stubDevice) Destroy()       {}

func (p *halProvider) Device() gpucontext.Device             { return stubDevice{} }
func (p *halProvider) Queue() gpucontext.Queue               { return nil }
func (p *halProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

func (p *halProvider) HalDevice() any { return p.device }
func (p *halProvider) HalQueue() any  { return p.queue }

// bareProvider satisfies gpucontext.DeviceProvider but exposes no HAL
// accessors.
type bareProvider struct{}

func (bareProvider) Device() gpucontext.Device             { return stubDevice{} }
func (bareProvider) Queue() gpucontext.Queue               { return nil }
func (bareProvider) Adapter() gpucontext.Adapter           { return nil }
func (bareProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

func TestNewFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := New(&halProvider{device: device, queue: queue}, 320, 240)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Destroy()

	if w, h := c.Size(); w != 320 || h != 240 {
		t.Errorf("size = %dx%d, want 320x240", w, h)
	}
}

func TestNewRejectsProviderWithoutHAL(t *testing.T) {
	if _, err := New(bareProvider{}, 100, 100); err == nil {
		t.Error("expected New to fail for a provider without HAL accessors")
	}
}

func TestNewRejectsWrongHALTypes(t *testing.T) {
	// Accessors exist but return values that are not HAL handles.
	if _, err := New(&halProvider{}, 100, 100); err == nil {
		t.Error("expected New to fail for nil HAL handles")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := NewWithDevice(device, queue, 64, 64)
	if err != nil {
		t.Fatalf("NewWithDevice failed: %v", err)
	}
	c.Destroy()
	c.Destroy()
}
