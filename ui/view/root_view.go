package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/viewer-markup/config"
	"github.com/soocke/viewer-markup/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootHandlers are invoked on user actions in the main window.
type RootHandlers struct {
	Capture       func()
	SelectionGrid func()
	Export        func()
	EndSession    func()
	Exit          func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session SessionStats
	Style   StylePanel
	Preview FramePreview

	// Widgets
	StateLabel   *TLabelWidget
	MessageLabel *TLabelWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

func nop() {}

func orNop(fn func()) func() {
	if fn == nil {
		return nop
	}
	return fn
}

// Build constructs the layout.
func (rv *RootView) Build(h RootHandlers) {
	if rv == nil {
		return
	}
	// Row 0: session stats, state label, buttons frame
	rv.Session = NewSessionStats(nil, 0, 0)
	rv.StateLabel = TLabel(Txt("State: Idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(3), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	buttons := []*TButtonWidget{
		TButton(Txt("Capture & Annotate"), Style(theme.StylePrimaryButton), Command(orNop(h.Capture))),
		TButton(Txt("Selection Grid"), Command(orNop(h.SelectionGrid))),
		TButton(Txt("Export"), Command(orNop(h.Export))),
		TButton(Txt("End Session"), Command(orNop(h.EndSession))),
		TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(orNop(h.Exit))),
	}
	for i, b := range buttons {
		Grid(b, In(btnFrame), Row(i), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	// Row 1: status message
	rv.MessageLabel = TLabel(Txt("Ready"), Style(theme.StyleAccentLabel), Anchor("w"))
	Grid(rv.MessageLabel, Row(1), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	// Style panel rows
	rv.Style = NewStylePanel(rv.cfg, rv.cfgPath, rv.logger)
	endRow := rv.Style.Build(2)

	rv.Preview = NewFramePreview(endRow)
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetMessage updates the status line.
func (rv *RootView) SetMessage(text string) {
	if rv != nil && rv.MessageLabel != nil {
		rv.MessageLabel.Configure(Txt(text))
	}
}

// SetConfigEditable toggles style panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.Style != nil {
		rv.Style.SetEditable(enabled)
	}
}

// SetSession updates both session and total annotation durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

// SetCounts updates the session and cloud counters.
func (rv *RootView) SetCounts(sessions, records int) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetCounts(sessions, records)
	}
}

// UpdatePreview proxies to the frame preview.
func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePreview(img)
	}
}

// PreviewReset clears the frame preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}
