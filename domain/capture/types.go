package capture

import (
	"errors"
	"image"
	"time"
)

var (
	// ErrNoSurface is returned when a capture is requested without a render surface.
	ErrNoSurface = errors.New("capture: no render surface")
	// ErrNoContext is returned by surfaces whose graphics context is gone or was never created.
	ErrNoContext = errors.New("capture: graphics context unavailable")
)

// RowOrder describes the vertical order of rows in a pixel readback.
type RowOrder int

const (
	// BottomUp is the graphics API convention: the first row in the buffer is the bottom of the image.
	BottomUp RowOrder = iota
	// TopDown is the image convention used by image.RGBA.
	TopDown
)

func (o RowOrder) String() string {
	switch o {
	case BottomUp:
		return "bottom-up"
	case TopDown:
		return "top-down"
	default:
		return "unknown"
	}
}

// Readback is a raw 8-bit RGBA pixel buffer read from a render surface.
type Readback struct {
	Pix    []byte
	Width  int
	Height int
	Order  RowOrder

	pooled bool // Pix came from the readback pool and may be recycled
}

// Surface is a live render target that can draw its scene once on demand and
// hand back the resulting pixels. Implementations must not expect the caller
// to write into them.
type Surface interface {
	// Render performs one synchronous render of the current scene/camera pair.
	Render() error
	// ReadPixels reads the whole surface. It returns ErrNoContext when the
	// graphics context is missing.
	ReadPixels() (Readback, error)
}

// Frame is a captured still of a render surface. The image is top-down and is
// never written to after capture; it is the background of an annotation session.
type Frame struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// Bounds returns the frame rectangle, or an empty rectangle for a nil frame.
func (f *Frame) Bounds() image.Rectangle {
	if f == nil || f.Image == nil {
		return image.Rectangle{}
	}
	return f.Image.Bounds()
}

// Size returns the frame width and height.
func (f *Frame) Size() (int, int) {
	b := f.Bounds()
	return b.Dx(), b.Dy()
}
