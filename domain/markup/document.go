package markup

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/viewer-markup/domain/annotation"
)

// Document is the JSON form of a markup. Record sizes keep their sign;
// Bounds is the normalized rectangle for consumers that only hit-test.
type Document struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Records   []DocumentRecord `json:"records"`
}

type DocumentRecord struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Text   string `json:"text"`
	Bounds [4]int `json:"bounds"`
}

// Document converts m to its JSON form.
func (m *Markup) Document() Document {
	doc := Document{
		ID:        m.ID.String(),
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		Width:     m.Width,
		Height:    m.Height,
		Records:   make([]DocumentRecord, 0, len(m.Records)),
	}
	for _, r := range m.Records {
		b := r.Rect()
		doc.Records = append(doc.Records, DocumentRecord{
			X:      r.Origin.X,
			Y:      r.Origin.Y,
			Width:  r.Size.X,
			Height: r.Size.Y,
			Text:   r.Text,
			Bounds: [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
		})
	}
	return doc
}

// Markup converts the document back. The image is not part of a document.
func (d Document) Markup() (*Markup, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("markup: document id: %w", err)
	}
	m := &Markup{
		ID:        id,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		Width:     d.Width,
		Height:    d.Height,
		Records:   make([]annotation.Record, 0, len(d.Records)),
	}
	for _, r := range d.Records {
		m.Records = append(m.Records, annotation.Record{
			Origin: image.Pt(r.X, r.Y),
			Size:   image.Pt(r.Width, r.Height),
			Text:   r.Text,
		})
	}
	return m, nil
}

// Export writes <id>.png and <id>.json into dir, creating it if needed, and
// returns both paths.
func Export(dir string, m *Markup) (pngPath, jsonPath string, err error) {
	if m == nil {
		return "", "", ErrEmptyFrame
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("markup: create export dir: %w", err)
	}
	base := filepath.Join(dir, m.ID.String())
	pngPath, jsonPath = base+".png", base+".json"

	data, err := json.MarshalIndent(m.Document(), "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("markup: encode document: %w", err)
	}
	if err := os.WriteFile(pngPath, m.PNG, 0o644); err != nil {
		return "", "", fmt.Errorf("markup: write image: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("markup: write document: %w", err)
	}
	return pngPath, jsonPath, nil
}
