package canvas

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/canvas/tape"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newNoopCanvas creates a device-backed canvas and a matching render
// target on the noop backend.
func newNoopCanvas(t *testing.T, w, h int) (*Canvas, hal.TextureView) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)

	c, err := NewWithDevice(device, queue, w, h)
	if err != nil {
		cleanup()
		t.Fatalf("NewWithDevice failed: %v", err)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "test_target",
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("create target texture: %v", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "test_target"})
	if err != nil {
		t.Fatalf("create target view: %v", err)
	}

	t.Cleanup(func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
		c.Destroy()
		cleanup()
	})
	return c, view
}

func TestNewWithDeviceValidatesSize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	for _, size := range [][2]int{{0, 100}, {100, 0}, {-1, 100}} {
		if _, err := NewWithDevice(device, queue, size[0], size[1]); err == nil {
			t.Errorf("expected error for size %dx%d", size[0], size[1])
		}
	}
}

func TestDrawRectRecording(t *testing.T) {
	c := newRecordingCanvas(100, 100)
	c.DrawRect(RectWH(10, 10, 30, 30), NewPaint())

	stats := c.Stats()
	if stats.Ops != 1 {
		t.Errorf("ops = %d, want 1", stats.Ops)
	}
	if got := c.frame.Vertices[tape.LayoutPosColor].VertexCount(); got != 6 {
		t.Errorf("vertices = %d, want 6", got)
	}
	if got := c.frame.Uniforms.BlockCount(); got != 1 {
		t.Errorf("uniform blocks = %d, want 1", got)
	}
}

func TestDrawSkipsInvisibleAndRejected(t *testing.T) {
	c := newRecordingCanvas(100, 100)

	c.DrawRect(RectWH(10, 10, 30, 30), NewPaint().WithColor(Transparent))
	c.DrawRect(RectWH(500, 500, 30, 30), NewPaint())
	c.DrawRect(Rect{}, NewPaint())
	c.DrawCircle(50, 50, 0, NewPaint())

	if stats := c.Stats(); stats.Ops != 0 {
		t.Errorf("culled draws recorded %d ops", stats.Ops)
	}
}

func TestDrawShapesVertexLayouts(t *testing.T) {
	c := newRecordingCanvas(200, 200)
	p := NewPaint()

	c.DrawRoundRect(RectWH(10, 10, 50, 50), 8, p)
	c.DrawCircle(100, 100, 20, p)
	c.DrawArc(100, 100, 30, 0, 1.5, p)

	// Distance-field shapes stage UV-carrying quads.
	if got := c.frame.Vertices[tape.LayoutPosColorUV].VertexCount(); got != 18 {
		t.Errorf("sdf vertices = %d, want 18", got)
	}
	if got := c.frame.Uniforms.BlockCount(); got != 3 {
		t.Errorf("uniform blocks = %d, want 3", got)
	}
}

func TestDrawArcZeroSweepIsSkipped(t *testing.T) {
	c := newRecordingCanvas(100, 100)
	c.DrawArc(50, 50, 20, 1, 0, NewPaint())
	if stats := c.Stats(); stats.Ops != 0 {
		t.Errorf("zero-sweep arc recorded %d ops", stats.Ops)
	}
}

func TestDrawLineRecording(t *testing.T) {
	c := newRecordingCanvas(100, 100)
	c.DrawLine(10, 10, 90, 90, NewPaint())

	if got := c.frame.Vertices[tape.LayoutPosColor].VertexCount(); got != 6 {
		t.Errorf("line vertices = %d, want 6", got)
	}
}

func TestDrawBezierCountMatchesVertices(t *testing.T) {
	c := newRecordingCanvas(200, 200)
	c.DrawBezier(10, 10, 50, 100, 150, 100, 190, 10, NewPaint())

	count, ok := c.frame.NextCount()
	if !ok {
		t.Fatal("bezier did not record a vertex count")
	}
	if count == 0 || count%6 != 0 {
		t.Errorf("bezier count = %d, want positive multiple of 6", count)
	}
	if got := c.frame.Vertices[tape.LayoutPosColor].VertexCount(); got != int(count) {
		t.Errorf("staged %d vertices for count %d", got, count)
	}
}

func TestDrawMeshDropsPartialTriangle(t *testing.T) {
	c := newRecordingCanvas(100, 100)

	verts := make([]MeshVertex, 7)
	for i := range verts {
		verts[i] = MeshVertex{X: float32(i * 10), Y: float32(i * 5), Color: White}
	}
	c.DrawMesh(verts, NewPaint())

	count, ok := c.frame.NextCount()
	if !ok || count != 6 {
		t.Errorf("mesh count = %d (%v), want 6", count, ok)
	}
	if got := c.frame.Vertices[tape.LayoutPosColor].VertexCount(); got != 6 {
		t.Errorf("mesh vertices = %d, want 6", got)
	}

	// Fewer than three vertices stage nothing.
	c2 := newRecordingCanvas(100, 100)
	c2.DrawMesh(verts[:2], NewPaint())
	if stats := c2.Stats(); stats.Ops != 0 {
		t.Errorf("short mesh recorded %d ops", stats.Ops)
	}
}

func TestDrawImageQueuesResource(t *testing.T) {
	c := newRecordingCanvas(100, 100)
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	defer img.Release()

	c.DrawImage(img, RectWH(10, 10, 32, 32), NewPaint().WithColor(White))

	if got := c.frame.Sources.Len(); got != 1 {
		t.Errorf("queued resources = %d, want 1", got)
	}
	if got := c.frame.Vertices[tape.LayoutPosColorUV].VertexCount(); got != 6 {
		t.Errorf("image vertices = %d, want 6", got)
	}

	// The queue retained its own reference.
	c.frame.Reset()
	w, h := img.Size()
	if w != 8 || h != 8 {
		t.Errorf("image released early, size = %dx%d", w, h)
	}
}

func TestDrawGlyphsRecording(t *testing.T) {
	c := newRecordingCanvas(200, 200)
	atlas := NewImage(image.NewAlpha(image.Rect(0, 0, 64, 64)))
	defer atlas.Release()

	glyphs := []GlyphQuad{
		{Dst: RectWH(10, 10, 8, 12), UV: RectWH(0, 0, 0.1, 0.2)},
		{Dst: RectWH(20, 10, 8, 12), UV: RectWH(0.1, 0, 0.1, 0.2)},
		{Dst: RectWH(30, 10, 8, 12), UV: RectWH(0.2, 0, 0.1, 0.2)},
	}
	c.DrawGlyphs(atlas, glyphs, NewPaint().WithColor(RGB(255, 0, 0)))

	count, ok := c.frame.NextCount()
	if !ok || count != 18 {
		t.Errorf("glyph count = %d (%v), want 18", count, ok)
	}
	if got := c.frame.Vertices[tape.LayoutPosUV].VertexCount(); got != 18 {
		t.Errorf("glyph vertices = %d, want 18", got)
	}
	if got := c.frame.Sources.Len(); got != 1 {
		t.Errorf("queued resources = %d, want 1", got)
	}
}

type recordingDrawable struct {
	calls int
}

func (d *recordingDrawable) Draw(pass hal.RenderPassEncoder) error {
	d.calls++
	return nil
}

func TestDrawCustom(t *testing.T) {
	c := newRecordingCanvas(100, 100)

	c.DrawCustom(&recordingDrawable{})
	if got := c.frame.Sources.Len(); got != 1 {
		t.Errorf("queued resources = %d, want 1", got)
	}

	// Inside an empty clip the drawable is dropped at record time.
	c.Save()
	c.ClipRect(RectWH(500, 500, 10, 10))
	c.DrawCustom(&recordingDrawable{})
	c.Restore()
	if got := c.frame.Sources.Len(); got != 1 {
		t.Errorf("clipped custom draw queued a resource")
	}

	c.DrawCustom(nil)
	if got := c.frame.Sources.Len(); got != 1 {
		t.Errorf("nil drawable queued a resource")
	}
}

func TestExecuteDrawOpsEmptyFrame(t *testing.T) {
	c, target := newNoopCanvas(t, 100, 100)

	rendered, err := c.ExecuteDrawOps(target)
	if err != nil {
		t.Fatalf("ExecuteDrawOps failed: %v", err)
	}
	if rendered {
		t.Error("empty frame reported rendered")
	}
}

func TestExecuteDrawOpsNoDevice(t *testing.T) {
	c := newRecordingCanvas(100, 100)
	c.DrawRect(RectWH(10, 10, 20, 20), NewPaint())

	_, err := c.ExecuteDrawOps(nil)
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
}

func TestExecuteDrawOpsPanicsOnUnbalancedStack(t *testing.T) {
	c := newRecordingCanvas(100, 100)
	c.Save()
	c.DrawRect(RectWH(10, 10, 20, 20), NewPaint())

	defer func() {
		if recover() == nil {
			t.Error("expected panic with unbalanced save stack")
		}
	}()
	_, _ = c.ExecuteDrawOps(nil)
}

func TestExecuteDrawOpsRoundTrip(t *testing.T) {
	c, target := newNoopCanvas(t, 200, 200)

	red := NewPaint().WithColor(RGB(255, 0, 0))
	c.DrawRect(RectWH(10, 10, 50, 50), red)
	c.DrawCircle(100, 100, 30, NewPaint().WithColor(RGBA(0, 255, 0, 128)))
	c.DrawLine(0, 0, 200, 200, NewPaint())

	rendered, err := c.ExecuteDrawOps(target)
	if err != nil {
		t.Fatalf("ExecuteDrawOps failed: %v", err)
	}
	if !rendered {
		t.Error("expected rendered true")
	}

	// The frame was reset for the next recording.
	if stats := c.Stats(); stats.Ops != 0 {
		t.Errorf("frame not reset, %d ops remain", stats.Ops)
	}
	if c.SaveCount() != 1 {
		t.Errorf("save depth after playback = %d, want 1", c.SaveCount())
	}
}

func TestExecuteDrawOpsClipScenario(t *testing.T) {
	c, target := newNoopCanvas(t, 200, 200)

	c.Save()
	c.ClipRect(RectWH(20, 20, 100, 100))
	c.DrawRect(RectWH(0, 0, 200, 200), NewPaint().WithColor(RGB(0, 0, 255)))
	c.Save()
	c.ClipRect(RectWH(40, 40, 40, 40))
	c.DrawCircle(60, 60, 50, NewPaint())
	c.Restore()
	c.DrawRect(RectWH(30, 30, 10, 10), NewPaint())
	c.Restore()

	if rendered, err := c.ExecuteDrawOps(target); err != nil || !rendered {
		t.Fatalf("ExecuteDrawOps = (%v, %v)", rendered, err)
	}
}

func TestExecuteDrawOpsLayerScenario(t *testing.T) {
	c, target := newNoopCanvas(t, 200, 200)

	c.SaveLayer(RectWH(0, 0, 200, 200), 128)
	c.DrawRect(RectWH(10, 10, 100, 100), NewPaint().WithColor(RGB(255, 0, 0)))
	c.SaveLayer(RectWH(0, 0, 200, 200), 64)
	c.DrawCircle(100, 100, 40, NewPaint())
	c.Restore()
	c.Restore()

	if rendered, err := c.ExecuteDrawOps(target); err != nil || !rendered {
		t.Fatalf("ExecuteDrawOps = (%v, %v)", rendered, err)
	}
}

func TestExecuteDrawOpsMixedFrame(t *testing.T) {
	c, target := newNoopCanvas(t, 300, 300)

	img := NewImage(newTestImage(16, 16))
	defer img.Release()

	c.DrawImage(img, RectWH(5, 5, 64, 64), NewPaint().WithColor(White))
	c.Save()
	c.Translate(100, 100)
	c.Rotate(0.5)
	c.ClipRect(RectWH(-50, -50, 100, 100))
	c.DrawRoundRect(RectWH(-40, -40, 80, 80), 10, NewPaint().WithColor(RGBA(0, 0, 0, 200)))
	c.Restore()
	c.DrawBezier(0, 300, 100, 200, 200, 400, 300, 300, NewPaint())
	c.DrawCustom(&recordingDrawable{})

	if rendered, err := c.ExecuteDrawOps(target); err != nil || !rendered {
		t.Fatalf("ExecuteDrawOps = (%v, %v)", rendered, err)
	}

	// A second frame on the same canvas reuses the grown buffers.
	c.DrawRect(RectWH(0, 0, 300, 300), NewPaint())
	if rendered, err := c.ExecuteDrawOps(target); err != nil || !rendered {
		t.Fatalf("second ExecuteDrawOps = (%v, %v)", rendered, err)
	}
}

func TestResetDiscardsRecording(t *testing.T) {
	c := newRecordingCanvas(100, 100)
	c.Save()
	c.DrawRect(RectWH(10, 10, 20, 20), NewPaint())

	c.Reset(50, 50)
	if stats := c.Stats(); stats.Ops != 0 {
		t.Errorf("ops after Reset = %d", stats.Ops)
	}
	if c.SaveCount() != 1 {
		t.Errorf("save depth after Reset = %d", c.SaveCount())
	}
	if w, h := c.Size(); w != 50 || h != 50 {
		t.Errorf("size after Reset = %dx%d", w, h)
	}
	if got := c.ClipBounds(); got != RectWH(0, 0, 50, 50) {
		t.Errorf("clip after Reset = %+v", got)
	}
}

// newTestImage builds a small checkered RGBA image.
func newTestImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 128})
			}
		}
	}
	return img
}
