package cloud

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Style describes how comment clouds are drawn. Colours are hex strings
// ("#RRGGBB" or "#RRGGBBAA"); sizes are in surface pixels.
type Style struct {
	Accent       string  `json:"accent" mapstructure:"accent"`
	Preview      string  `json:"preview" mapstructure:"preview"`
	TextColor    string  `json:"text_color" mapstructure:"text_color"`
	Background   string  `json:"background" mapstructure:"background"`
	LineWidth    float64 `json:"line_width" mapstructure:"line_width"`
	CornerRadius float64 `json:"corner_radius" mapstructure:"corner_radius"`
	TailWidth    float64 `json:"tail_width" mapstructure:"tail_width"`
	TailHeight   float64 `json:"tail_height" mapstructure:"tail_height"`
	Padding      float64 `json:"padding" mapstructure:"padding"`
	FontSize     float64 `json:"font_size" mapstructure:"font_size"`
}

// DefaultStyle returns the stock cloud look.
func DefaultStyle() Style {
	return Style{
		Accent:       "#E8590C",
		Preview:      "#868E96",
		TextColor:    "#212529",
		Background:   "#FFFFFF",
		LineWidth:    2,
		CornerRadius: 20,
		TailWidth:    30,
		TailHeight:   20,
		Padding:      10,
		FontSize:     16,
	}
}

// WithDefaults fills zero or invalid fields from DefaultStyle.
func (s Style) WithDefaults() Style {
	d := DefaultStyle()
	if !ValidHex(s.Accent) {
		s.Accent = d.Accent
	}
	if !ValidHex(s.Preview) {
		s.Preview = d.Preview
	}
	if !ValidHex(s.TextColor) {
		s.TextColor = d.TextColor
	}
	if !ValidHex(s.Background) {
		s.Background = d.Background
	}
	if !finite(s.LineWidth) || s.LineWidth <= 0 {
		s.LineWidth = d.LineWidth
	}
	if !finite(s.CornerRadius) || s.CornerRadius < 0 {
		s.CornerRadius = d.CornerRadius
	}
	if !finite(s.TailWidth) || s.TailWidth < 0 {
		s.TailWidth = d.TailWidth
	}
	if !finite(s.TailHeight) || s.TailHeight < 0 {
		s.TailHeight = d.TailHeight
	}
	if !finite(s.Padding) || s.Padding < 0 {
		s.Padding = d.Padding
	}
	if !finite(s.FontSize) || s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	return s
}

// ParseSize parses a size typed by the user. NaN and infinities are rejected.
func ParseSize(text string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// ValidHex reports whether s is a "#RGB", "#RRGGBB" or "#RRGGBBAA" colour.
func ValidHex(s string) bool {
	h, ok := strings.CutPrefix(s, "#")
	if !ok {
		return false
	}
	switch len(h) {
	case 3, 6, 8:
	default:
		return false
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func (s Style) String() string {
	return fmt.Sprintf("cloud(accent=%s line=%.1f radius=%.0f tail=%.0fx%.0f pad=%.0f font=%.0f)",
		s.Accent, s.LineWidth, s.CornerRadius, s.TailWidth, s.TailHeight, s.Padding, s.FontSize)
}
