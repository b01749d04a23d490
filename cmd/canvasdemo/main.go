// Command canvasdemo records a frame of 2D drawing and plays it back on
// the noop GPU backend, printing the recording statistics. It exercises
// the full record/playback path without needing a real GPU.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/canvas"
)

func main() {
	var (
		width   = flag.Int("width", 800, "frame width")
		height  = flag.Int("height", 600, "frame height")
		frames  = flag.Int("frames", 3, "number of frames to play back")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		canvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	device, queue, target, cleanup, err := openNoopTarget(*width, *height)
	if err != nil {
		log.Fatalf("open noop device: %v", err)
	}
	defer cleanup()

	c, err := canvas.NewWithDevice(device, queue, *width, *height,
		canvas.WithClearColor(canvas.RGB(24, 24, 32)),
		canvas.WithLabel("demo"))
	if err != nil {
		log.Fatalf("create canvas: %v", err)
	}
	defer c.Destroy()

	for frame := 0; frame < *frames; frame++ {
		record(c, *width, *height, frame)

		stats := c.Stats()
		rendered, err := c.ExecuteDrawOps(target)
		if err != nil {
			log.Fatalf("frame %d playback: %v", frame, err)
		}
		log.Printf("frame %d: rendered=%v ops=%d uniforms=%d clips=%d layers=%d",
			frame, rendered, stats.Ops, stats.UniformBlocks, stats.ClipOps, stats.Layers)
	}
}

// record draws one demo frame: clipped shapes, a translucent layer, and
// a flattened curve.
func record(c *canvas.Canvas, width, height, frame int) {
	w, h := float32(width), float32(height)

	// Background panel.
	c.DrawRect(canvas.RectWH(20, 20, w-40, h-40),
		canvas.NewPaint().WithColor(canvas.RGB(40, 44, 52)))

	// Clipped shape cluster.
	c.Save()
	c.ClipRect(canvas.RectWH(40, 40, w/2, h/2))
	c.DrawCircle(w/4, h/4, 120, canvas.NewPaint().WithColor(canvas.RGBA(255, 80, 80, 200)))
	c.DrawRoundRect(canvas.RectWH(60, 60, 200, 140), 24,
		canvas.NewPaint().WithColor(canvas.RGBA(80, 200, 120, 220)))
	c.Restore()

	// Translucent layer with rotated content.
	c.SaveLayer(canvas.RectWH(0, 0, w, h), 128)
	c.Save()
	c.Translate(w/2, h/2)
	c.Rotate(float32(frame) * 0.2)
	c.DrawRect(canvas.RectWH(-100, -60, 200, 120),
		canvas.NewPaint().WithColor(canvas.RGB(90, 140, 255)))
	c.Restore()
	c.Restore()

	// Stroked details.
	stroke := canvas.NewPaint().WithColor(canvas.White)
	stroke.Style = canvas.StyleStroke
	stroke.StrokeWidth = 3
	c.DrawArc(w-180, h-160, 80, 0, float32(math.Pi)*1.5, stroke)
	c.DrawLine(40, h-60, w-40, h-60, stroke)
	c.DrawBezier(40, h-120, w/3, h-220, 2*w/3, h-20, w-40, h-120, stroke)
}

// openNoopTarget creates a noop device, queue, and render target.
func openNoopTarget(width, height int) (hal.Device, hal.Queue, hal.TextureView, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, nil, err
	}
	device, queue := openDev.Device, openDev.Queue

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "demo_target",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		device.Destroy()
		instance.Destroy()
		return nil, nil, nil, nil, err
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "demo_target"})
	if err != nil {
		device.DestroyTexture(tex)
		device.Destroy()
		instance.Destroy()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
		device.Destroy()
		instance.Destroy()
	}
	return device, queue, view, cleanup, nil
}
