package canvas

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
)

// ImageResource is a reference-counted image with a lazily uploaded GPU
// texture. Create one with NewImage, draw it any number of times, and
// call Release when done. The frame queue takes its own reference per
// draw, so the resource outlives the frames that use it.
type ImageResource struct {
	refs atomic.Int32

	mu     sync.Mutex
	src    image.Image
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
}

// NewImage wraps src for drawing. The caller owns the returned reference
// and must Release it.
func NewImage(src image.Image) *ImageResource {
	b := src.Bounds()
	r := &ImageResource{
		src:    src,
		width:  b.Dx(),
		height: b.Dy(),
	}
	r.refs.Store(1)
	return r
}

// Size returns the image dimensions in pixels.
func (r *ImageResource) Size() (width, height int) {
	return r.width, r.height
}

// Retain increments the reference count.
func (r *ImageResource) Retain() {
	r.refs.Add(1)
}

// Release decrements the reference count, destroying the GPU texture
// when it reaches zero.
func (r *ImageResource) Release() {
	if r.refs.Add(-1) != 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tex != nil {
		r.device.DestroyTextureView(r.view)
		r.device.DestroyTexture(r.tex)
		r.tex = nil
		r.view = nil
		r.device = nil
	}
	r.src = nil
}

// AcquireView uploads the image on first use and returns its texture
// view. Called by playback when an image draw op consumes the resource.
func (r *ImageResource) AcquireView(device hal.Device, queue hal.Queue) (hal.TextureView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.view != nil {
		return r.view, nil
	}
	if r.src == nil {
		return nil, fmt.Errorf("canvas: image resource already released")
	}

	// Convert to straight RGBA, then premultiply rows in place. The
	// blend state expects premultiplied texel values.
	rgba := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(rgba, rgba.Bounds(), r.src, r.src.Bounds().Min, draw.Src)
	premultiplyPixels(rgba.Pix)

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "canvas-image",
		Size: hal.Extent3D{
			Width:              uint32(r.width),
			Height:             uint32(r.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("canvas: create image texture: %w", err)
	}

	queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		rgba.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rgba.Stride),
			RowsPerImage: uint32(r.height),
		},
		&hal.Extent3D{
			Width:              uint32(r.width),
			Height:             uint32(r.height),
			DepthOrArrayLayers: 1,
		},
	)

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "canvas-image"})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("canvas: create image view: %w", err)
	}

	r.device = device
	r.tex = tex
	r.view = view
	return view, nil
}

// premultiplyPixels scales RGB by alpha for each RGBA texel.
func premultiplyPixels(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		if a == 0xFF {
			continue
		}
		fa := float32(a)
		pix[i+0] = uint8((float32(pix[i+0])*fa + 0.5) / 255)
		pix[i+1] = uint8((float32(pix[i+1])*fa + 0.5) / 255)
		pix[i+2] = uint8((float32(pix[i+2])*fa + 0.5) / 255)
	}
}

// customResource adapts a CustomDrawable to the frame resource queue.
// Each DrawCustom call wraps the drawable in a fresh single-use adapter,
// so reference counting is trivial.
type customResource struct {
	drawable CustomDrawable
}

func (r *customResource) Retain()  {}
func (r *customResource) Release() {}

// RecordDraw runs the user drawing code inside the open render pass.
func (r *customResource) RecordDraw(pass hal.RenderPassEncoder) error {
	return r.drawable.Draw(pass)
}
