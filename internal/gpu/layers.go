package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// renderTarget is one offscreen attachment: a texture that is drawn into
// as a color target and then sampled during compositing.
type renderTarget struct {
	tex  hal.Texture
	view hal.TextureView
}

func (t *renderTarget) destroy(device hal.Device) {
	if t.tex != nil {
		device.DestroyTextureView(t.view)
		device.DestroyTexture(t.tex)
		t.tex = nil
		t.view = nil
	}
}

// layerPool holds the offscreen layer attachments and the shared
// depth/stencil attachment. Attachments are allocated lazily at the
// frame size and kept across frames; a resize drops and recreates them.
type layerPool struct {
	label  string
	width  int
	height int

	layers  []renderTarget
	stencil renderTarget
}

func newLayerPool(label string, maxLayers int) *layerPool {
	return &layerPool{
		label:  label,
		layers: make([]renderTarget, maxLayers),
	}
}

// ensureSize recreates the attachments when the frame size changes. The
// layer color textures themselves are created on first use per depth.
func (p *layerPool) ensureSize(device hal.Device, width, height int) error {
	if p.width == width && p.height == height && p.stencil.tex != nil {
		return nil
	}
	p.release(device)
	p.width = width
	p.height = height

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: p.label + "_stencil",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        stencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create stencil attachment %dx%d: %w", width, height, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: p.label + "_stencil"})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("create stencil view: %w", err)
	}
	p.stencil = renderTarget{tex: tex, view: view}
	return nil
}

// acquire returns the attachment for the given layer depth (0 is the
// innermost concurrent layer index), creating it on first use.
func (p *layerPool) acquire(device hal.Device, depth int) (*renderTarget, error) {
	if depth < 0 || depth >= len(p.layers) {
		return nil, fmt.Errorf("layer depth %d out of range (max %d)", depth, len(p.layers))
	}
	t := &p.layers[depth]
	if t.tex != nil {
		return t, nil
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: fmt.Sprintf("%s_layer%d", p.label, depth),
		Size: hal.Extent3D{
			Width:              uint32(p.width),
			Height:             uint32(p.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("create layer %d attachment: %w", depth, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: fmt.Sprintf("%s_layer%d", p.label, depth),
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create layer %d view: %w", depth, err)
	}
	*t = renderTarget{tex: tex, view: view}
	return t, nil
}

// stencilView returns the shared stencil attachment view.
func (p *layerPool) stencilView() hal.TextureView {
	return p.stencil.view
}

func (p *layerPool) release(device hal.Device) {
	for i := range p.layers {
		p.layers[i].destroy(device)
	}
	p.stencil.destroy(device)
}
