package images

import (
	"image"
	"image/color"
	"testing"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	return img
}

func TestExtractRegion_GrowsByMargin(t *testing.T) {
	frame := gradient(100, 100)
	region, rect, err := ExtractRegion(frame, image.Rect(30, 30, 70, 60), 5)
	if err != nil || region == nil {
		t.Fatalf("expected region, got err=%v", err)
	}
	if rect != image.Rect(25, 25, 75, 65) {
		t.Fatalf("unexpected rect %v", rect)
	}
	if region.Bounds() != image.Rect(0, 0, 50, 40) {
		t.Fatalf("region should be rebased to origin, got %v", region.Bounds())
	}
	if got := region.RGBAAt(0, 0); got.R != 25 || got.G != 25 {
		t.Fatalf("region top-left should be frame pixel (25,25), got %v", got)
	}
}

func TestExtractRegion_NormalisesNegativeSize(t *testing.T) {
	frame := gradient(50, 50)
	_, rect, err := ExtractRegion(frame, image.Rect(40, 40, 10, 20), 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if rect != image.Rect(10, 20, 40, 40) {
		t.Fatalf("expected normalised rect, got %v", rect)
	}
}

func TestExtractRegion_ClampsNearEdge(t *testing.T) {
	frame := gradient(20, 20)
	region, rect, err := ExtractRegion(frame, image.Rect(2, 2, 10, 10), 8)
	if err != nil || region == nil {
		t.Fatalf("region error: %v", err)
	}
	if rect.Min.X != 0 || rect.Min.Y != 0 {
		t.Fatalf("expected clamp to 0,0 got %v", rect.Min)
	}
	if rect.Max.X > 20 || rect.Max.Y > 20 {
		t.Fatalf("rect exceeds frame bounds: %v", rect)
	}
}

func TestExtractRegion_OutsideFallsBackToOnePixel(t *testing.T) {
	frame := gradient(10, 10)
	region, rect, _ := ExtractRegion(frame, image.Rect(40, 40, 50, 50), 0)
	if region == nil {
		t.Fatalf("nil region")
	}
	if rect != image.Rect(9, 9, 10, 10) {
		t.Fatalf("expected 1x1 at the nearest corner, got %v", rect)
	}
}

func TestExtractRegion_DoesNotAliasFrame(t *testing.T) {
	frame := gradient(10, 10)
	region, _, _ := ExtractRegion(frame, image.Rect(0, 0, 4, 4), 0)
	region.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	if got := frame.RGBAAt(0, 0); got.R != 0 {
		t.Fatalf("writing the region changed the frame: %v", got)
	}
}

func TestExtractRegion_NilFrame(t *testing.T) {
	if _, _, err := ExtractRegion(nil, image.Rect(0, 0, 1, 1), 0); err == nil {
		t.Fatalf("expected error for nil frame")
	}
}

func TestScaleToFit(t *testing.T) {
	src := gradient(400, 200)
	if got := ScaleToFit(src, 500, 500); got != image.Image(src) {
		t.Fatalf("image that fits should be returned as is")
	}
	got := ScaleToFit(src, 100, 100)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 50 {
		t.Fatalf("expected 100x50, got %v", got.Bounds())
	}
	if ScaleToFit(nil, 10, 10) != nil {
		t.Fatalf("nil source should give nil")
	}
}
