package capture

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

// ToTopDown converts a raw readback into a freshly allocated top-down image.
// Bottom-up buffers (the graphics API order) are flipped vertically. The
// returned image never shares memory with rb.Pix, so the readback buffer may be
// recycled once this returns.
func ToTopDown(rb Readback) (*image.RGBA, error) {
	if rb.Width <= 0 || rb.Height <= 0 {
		return nil, fmt.Errorf("capture: invalid readback size %dx%d", rb.Width, rb.Height)
	}
	if want := rb.Width * rb.Height * 4; len(rb.Pix) != want {
		return nil, fmt.Errorf("capture: readback holds %d bytes, want %d", len(rb.Pix), want)
	}
	raw := &image.RGBA{
		Pix:    rb.Pix,
		Stride: rb.Width * 4,
		Rect:   image.Rect(0, 0, rb.Width, rb.Height),
	}
	switch rb.Order {
	case BottomUp:
		return transform.FlipV(raw), nil
	case TopDown:
		return clone.AsRGBA(raw), nil
	default:
		return nil, fmt.Errorf("capture: unknown row order %d", rb.Order)
	}
}
