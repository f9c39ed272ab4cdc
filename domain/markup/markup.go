package markup

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/viewer-markup/domain/annotation"
	"github.com/soocke/viewer-markup/domain/capture"
	"github.com/soocke/viewer-markup/domain/cloud"
)

// ErrNotFound is returned by Store lookups for unknown ids.
var ErrNotFound = errors.New("markup: not found")

// ErrEmptyFrame is returned when composing without a captured frame.
var ErrEmptyFrame = errors.New("markup: no frame")

// Markup is a finished annotation session: the records plus the composed
// PNG (frame with clouds and text).
type Markup struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
	Width     int
	Height    int
	Records   []annotation.Record
	PNG       []byte
}

// Summary is a Markup without its image, as returned by Store.List.
type Summary struct {
	ID          uuid.UUID
	Title       string
	CreatedAt   time.Time
	Width       int
	Height      int
	RecordCount int
}

// Compose draws records over frame on a fresh canvas and returns the result.
// The frame is only read.
func Compose(frame *capture.Frame, records []annotation.Record, style cloud.Style, policy annotation.RedrawPolicy, lastEdited int) (*image.RGBA, error) {
	if frame == nil || frame.Image == nil {
		return nil, ErrEmptyFrame
	}
	w, h := frame.Size()
	c, err := cloud.NewCanvas(w, h, style, nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	annotation.Render(c, frame.Image, records, policy, lastEdited)
	return c.Image(), nil
}

// New composes and encodes a markup for the given session state.
func New(title string, frame *capture.Frame, records []annotation.Record, style cloud.Style, policy annotation.RedrawPolicy, lastEdited int) (*Markup, error) {
	img, err := Compose(frame, records, style, policy, lastEdited)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("markup: encode png: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	title = strings.TrimSpace(title)
	if title == "" {
		title = "markup " + now.Format("2006-01-02 15:04:05")
	}
	recs := make([]annotation.Record, len(records))
	copy(recs, records)
	return &Markup{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Records:   recs,
		PNG:       buf.Bytes(),
	}, nil
}

// Summary returns m without its image.
func (m *Markup) Summary() Summary {
	return Summary{
		ID:          m.ID,
		Title:       m.Title,
		CreatedAt:   m.CreatedAt,
		Width:       m.Width,
		Height:      m.Height,
		RecordCount: len(m.Records),
	}
}
