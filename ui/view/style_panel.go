package view

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/soocke/viewer-markup/config"
	"github.com/soocke/viewer-markup/domain/cloud"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// StylePanel edits the comment cloud style. Changes are saved to the config
// file and apply to the next session and to exports.
type StylePanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into the config and persists it
}

type stylePanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by style field id
}

// NewStylePanel creates the view bound to cfg.
func NewStylePanel(cfg *config.Config, cfgPath string, logger *slog.Logger) StylePanel {
	return &stylePanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *stylePanel) Build(startRow int) (row int) {
	s := v.cfg.Cloud
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("accent", "Cloud Colour (#RRGGBB)", s.Accent)
	makeRow("preview", "Preview Colour", s.Preview)
	makeRow("textColor", "Text Colour", s.TextColor)
	makeRow("lineWidth", "Line Width", fmt.Sprintf("%.1f", s.LineWidth))
	makeRow("cornerRadius", "Corner Radius", fmt.Sprintf("%.1f", s.CornerRadius))
	makeRow("padding", "Text Padding", fmt.Sprintf("%.1f", s.Padding))
	makeRow("fontSize", "Font Size", fmt.Sprintf("%.1f", s.FontSize))
	v.applyBtn = Button(Txt("Apply Style"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *stylePanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *stylePanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	style := v.cfg.Cloud
	assignColour := func(id string, dst *string) {
		if w := v.widgets[id]; w != nil {
			if val := strings.TrimSpace(textValue(w)); cloud.ValidHex(val) {
				*dst = val
			}
		}
	}
	assignFloat := func(id string, dst *float64) {
		if w := v.widgets[id]; w != nil {
			if f, ok := cloud.ParseSize(textValue(w)); ok {
				*dst = f
			}
		}
	}
	assignColour("accent", &style.Accent)
	assignColour("preview", &style.Preview)
	assignColour("textColor", &style.TextColor)
	assignFloat("lineWidth", &style.LineWidth)
	assignFloat("cornerRadius", &style.CornerRadius)
	assignFloat("padding", &style.Padding)
	assignFloat("fontSize", &style.FontSize)

	v.cfg.Cloud = style.WithDefaults()
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
		return
	}
	if v.logger != nil {
		v.logger.Info("cloud style saved", "path", v.cfgPath, "style", v.cfg.Cloud.String())
	}
}
