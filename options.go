package canvas

// Option configures a Canvas during creation.
// Use functional options to customize Canvas behavior.
//
// Example:
//
//	// Defaults: black clear color, target format BGRA8.
//	c := canvas.New(provider, 800, 600)
//
//	// Custom clear color:
//	c := canvas.New(provider, 800, 600, canvas.WithClearColor(canvas.White))
type Option func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	clearColor Color
	label      string
}

// defaultCanvasOptions returns the default canvas options.
func defaultCanvasOptions() canvasOptions {
	return canvasOptions{
		clearColor: Transparent,
		label:      "canvas",
	}
}

// WithClearColor sets the color the base render target is cleared to at
// the start of every frame.
func WithClearColor(c Color) Option {
	return func(o *canvasOptions) {
		o.clearColor = c
	}
}

// WithLabel sets the debug label prefix used for GPU objects created by
// the canvas. Useful when several canvases share one device and captures
// need to tell their resources apart.
func WithLabel(label string) Option {
	return func(o *canvasOptions) {
		if label != "" {
			o.label = label
		}
	}
}
