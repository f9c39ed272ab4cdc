package model

import (
	"image"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
)

// SelectionModel holds the screen rectangle that constrains screen capture.
// The zero value means no selection and is usable. Safe for concurrent use
// because the capture worker reads it while the UI updates it.
type SelectionModel struct {
	rect atomic.Pointer[image.Rectangle]
}

// NewSelectionModel returns a model holding r (an empty r means none).
func NewSelectionModel(r image.Rectangle) *SelectionModel {
	m := &SelectionModel{}
	m.Set(r)
	return m
}

// Set stores r in global screen coordinates. Use an empty rect to clear.
func (m *SelectionModel) Set(r image.Rectangle) {
	if m == nil {
		return
	}
	if r.Dx() <= 0 || r.Dy() <= 0 {
		m.rect.Store(nil)
		return
	}
	m.rect.Store(&r)
}

// Active returns a copy of the selection, or nil when none is set.
func (m *SelectionModel) Active() *image.Rectangle {
	if m == nil {
		return nil
	}
	p := m.rect.Load()
	if p == nil {
		return nil
	}
	r := *p
	return &r
}

// geomRe matches Tk window geometry strings in the format "WIDTHxHEIGHT+X+Y".
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// ParseGeometry parses a Tk geometry string into a screen rectangle.
func ParseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// FormatGeometry is the inverse of ParseGeometry.
func FormatGeometry(r image.Rectangle) string {
	return strconv.Itoa(r.Dx()) + "x" + strconv.Itoa(r.Dy()) + "+" + strconv.Itoa(r.Min.X) + "+" + strconv.Itoa(r.Min.Y)
}
