package images

import (
	"errors"
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// ExtractRegion copies rect, grown by margin on every side, out of frame.
// The rectangle is normalised, clamped to the frame bounds and kept at least
// 1x1. It returns the copy (origin 0,0) and the clamped rectangle in frame
// coordinates. The frame is only read.
func ExtractRegion(frame *image.RGBA, rect image.Rectangle, margin int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	if b.Empty() {
		return nil, image.Rectangle{}, errors.New("empty frame")
	}
	if margin < 0 {
		margin = 0
	}
	r := rect.Canon().Inset(-margin).Intersect(b)
	if r.Empty() {
		// outside the frame: fall back to the nearest pixel
		x := clamp(rect.Canon().Min.X, b.Min.X, b.Max.X-1)
		y := clamp(rect.Canon().Min.Y, b.Min.Y, b.Max.Y-1)
		r = image.Rect(x, y, x+1, y+1)
	}
	out := transform.Crop(frame, r)
	// NewRGBA-backed images start their Pix at Rect.Min, so rebasing is safe.
	out.Rect = out.Rect.Sub(out.Rect.Min)
	return out, r, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
