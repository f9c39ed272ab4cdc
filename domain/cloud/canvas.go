package cloud

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/soocke/viewer-markup/domain/annotation"
)

var fontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// Canvas is the overlay surface: a gg context drawing into a pixmap of the
// frame size. Snapshot and Restore are plain byte copies, so restores are exact.
type Canvas struct {
	logger *slog.Logger
	style  Style
	width  int
	height int
	pm     *gg.Pixmap
	dc     *gg.Context

	accent     gg.RGBA
	preview    gg.RGBA
	textColor  gg.RGBA
	background gg.RGBA
}

// NewCanvas creates a canvas of the given size. logger may be nil.
func NewCanvas(width, height int, style Style, logger *slog.Logger) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cloud: invalid canvas size %dx%d", width, height)
	}
	style = style.WithDefaults()
	src, err := fontSource()
	if err != nil {
		return nil, fmt.Errorf("cloud: load font: %w", err)
	}
	pm := gg.NewPixmap(width, height)
	dc := gg.NewContext(width, height, gg.WithPixmap(pm))
	dc.SetFont(src.Face(style.FontSize))
	return &Canvas{
		logger:     logger,
		style:      style,
		width:      width,
		height:     height,
		pm:         pm,
		dc:         dc,
		accent:     gg.Hex(style.Accent),
		preview:    gg.Hex(style.Preview),
		textColor:  gg.Hex(style.TextColor),
		background: gg.Hex(style.Background),
	}, nil
}

// Style returns the effective style.
func (c *Canvas) Style() Style { return c.style }

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

// Close releases the gg context.
func (c *Canvas) Close() error { return c.dc.Close() }

// view wraps the pixmap bytes as an image without copying.
func (c *Canvas) view() *image.RGBA {
	return &image.RGBA{Pix: c.pm.Data(), Stride: c.width * 4, Rect: c.Bounds()}
}

// Reset fills the canvas with the background colour and draws bg over it.
// bg is only read.
func (c *Canvas) Reset(bg *image.RGBA) {
	c.dc.ClearWithColor(c.background)
	if bg == nil {
		return
	}
	dst := c.view()
	draw.Draw(dst, dst.Rect, bg, bg.Bounds().Min, draw.Over)
}

func (c *Canvas) Snapshot() annotation.Snapshot {
	data := c.pm.Data()
	out := make(annotation.Snapshot, len(data))
	copy(out, data)
	return out
}

func (c *Canvas) Restore(s annotation.Snapshot) {
	data := c.pm.Data()
	if len(s) != len(data) {
		c.debug("cloud.restore.skipped", "snapshot", len(s), "canvas", len(data))
		return
	}
	copy(data, s)
}

// DrawCloud strokes a rounded rectangle with a tail centred on its bottom
// edge. Empty rectangles draw nothing.
func (c *Canvas) DrawCloud(r image.Rectangle) {
	c.strokeCloud(r, c.accent, c.style.LineWidth)
}

// DrawOutline draws the drag preview: the same cloud in the preview colour.
func (c *Canvas) DrawOutline(r image.Rectangle) {
	w := c.style.LineWidth / 2
	if w < 1 {
		w = 1
	}
	c.strokeCloud(r, c.preview, w)
}

func (c *Canvas) strokeCloud(r image.Rectangle, col gg.RGBA, width float64) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	x, y := float64(r.Min.X), float64(r.Min.Y)
	w, h := float64(r.Dx()), float64(r.Dy())
	radius := min(c.style.CornerRadius, w/2, h/2)

	c.dc.SetColor(col.Color())
	c.dc.SetLineWidth(width)
	c.dc.DrawRoundedRectangle(x, y, w, h, radius)
	if tw, th := min(c.style.TailWidth, w-2*radius), c.style.TailHeight; tw > 0 && th > 0 {
		cx, bottom := x+w/2, y+h
		c.dc.NewSubPath()
		c.dc.MoveTo(cx-tw/2, bottom)
		c.dc.LineTo(cx, bottom+th)
		c.dc.LineTo(cx+tw/2, bottom)
	}
	if err := c.dc.Stroke(); err != nil {
		c.debug("cloud.stroke.failed", "rect", r.String(), "error", err)
	}
}

// DrawText draws a single line of text inset by the padding from the top-left
// of r, truncated to the padded width.
func (c *Canvas) DrawText(r image.Rectangle, s string) {
	r = r.Canon()
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || r.Empty() {
		return
	}
	pad := c.style.Padding
	maxW := float64(r.Dx()) - 2*pad
	if maxW <= 0 {
		return
	}
	s = c.fit(s, maxW)
	if s == "" {
		return
	}
	ascent := c.dc.Font().Metrics().Ascent
	c.dc.SetColor(c.textColor.Color())
	c.dc.DrawString(s, float64(r.Min.X)+pad, float64(r.Min.Y)+pad+ascent)
}

// fit returns the longest rune prefix of s that is at most maxW wide.
// Prefix width grows with length, so the cut is found by binary search.
func (c *Canvas) fit(s string, maxW float64) string {
	runes := []rune(s)
	if w, _ := c.dc.MeasureString(s); w <= maxW {
		return s
	}
	n := sort.Search(len(runes), func(i int) bool {
		w, _ := c.dc.MeasureString(string(runes[:i+1]))
		return w > maxW
	})
	return string(runes[:n])
}

// Image returns a copy of the current overlay pixels.
func (c *Canvas) Image() *image.RGBA {
	return c.pm.ToImage()
}

func (c *Canvas) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

var _ annotation.Canvas = (*Canvas)(nil)
