package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register JPEG decoder for ImageSurface
	_ "image/png"  // register PNG decoder for ImageSurface
	"os"
	"sync"

	"github.com/vova616/screenshot"
)

// readbackFromImage copies img into a pooled top-down readback.
func readbackFromImage(img image.Image) Readback {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := acquireReadback(w, h)
	if buf == nil {
		return Readback{Width: w, Height: h, Order: TopDown}
	}
	dst := &image.RGBA{Pix: buf, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			src := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src[:w*4])
		}
	} else {
		draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	}
	return Readback{Pix: buf, Width: w, Height: h, Order: TopDown, pooled: true}
}

// ScreenSurface captures the desktop (or a selected rectangle of it). The
// operating system composites the screen itself, so Render is a no-op.
type ScreenSurface struct {
	// Selection optionally constrains the capture; nil or empty means full screen.
	Selection func() *image.Rectangle
}

// NewScreenSurface returns a screen surface using sel as selection provider.
func NewScreenSurface(sel func() *image.Rectangle) *ScreenSurface {
	return &ScreenSurface{Selection: sel}
}

func (s *ScreenSurface) Render() error { return nil }

// ScreenBounds reports the primary screen rectangle, or fallback when the
// platform cannot be queried.
func ScreenBounds(fallback image.Rectangle) image.Rectangle {
	r, err := screenshot.ScreenRect()
	if err != nil || r.Empty() {
		return fallback
	}
	return r
}

func (s *ScreenSurface) ReadPixels() (Readback, error) {
	var (
		img *image.RGBA
		err error
	)
	if s.Selection != nil {
		if r := s.Selection(); r != nil && !r.Empty() {
			img, err = screenshot.CaptureRect(*r)
		}
	}
	if img == nil && err == nil {
		img, err = screenshot.CaptureScreen()
	}
	if err != nil {
		return Readback{}, fmt.Errorf("%w: %v", ErrNoContext, err)
	}
	if img == nil {
		return Readback{}, ErrNoContext
	}
	return readbackFromImage(img), nil
}

// ImageSurface serves a still image decoded from disk, for headless use.
type ImageSurface struct {
	Path string

	once sync.Once
	img  image.Image
	err  error
}

// NewImageSurface returns a surface backed by the image file at path.
func NewImageSurface(path string) *ImageSurface {
	return &ImageSurface{Path: path}
}

// Render decodes the image on first use.
func (s *ImageSurface) Render() error {
	s.once.Do(func() {
		f, err := os.Open(s.Path)
		if err != nil {
			s.err = err
			return
		}
		defer f.Close()
		s.img, _, s.err = image.Decode(f)
	})
	return s.err
}

func (s *ImageSurface) ReadPixels() (Readback, error) {
	if s.img == nil {
		if s.err != nil {
			return Readback{}, fmt.Errorf("%w: %v", ErrNoContext, s.err)
		}
		return Readback{}, ErrNoContext
	}
	return readbackFromImage(s.img), nil
}

// RawSurface adapts an embedding renderer (GL, WebGPU) that reads its
// framebuffer bottom-up into a caller-provided buffer.
type RawSurface struct {
	Width, Height int
	// Draw renders one frame of the scene/camera pair. Optional.
	Draw func() error
	// Read fills dst (Width*Height*4 bytes, RGBA) with rows in graphics API
	// order. A nil Read means the graphics context is missing.
	Read func(dst []byte) error
}

func (s *RawSurface) Render() error {
	if s.Draw == nil {
		return nil
	}
	return s.Draw()
}

func (s *RawSurface) ReadPixels() (Readback, error) {
	if s.Read == nil {
		return Readback{}, ErrNoContext
	}
	if s.Width <= 0 || s.Height <= 0 {
		return Readback{}, errors.New("capture: raw surface has no size")
	}
	buf := acquireReadback(s.Width, s.Height)
	if err := s.Read(buf); err != nil {
		RecycleReadback(buf)
		return Readback{}, err
	}
	return Readback{Pix: buf, Width: s.Width, Height: s.Height, Order: BottomUp, pooled: true}, nil
}

var (
	_ Surface = (*ScreenSurface)(nil)
	_ Surface = (*ImageSurface)(nil)
	_ Surface = (*RawSurface)(nil)
)
