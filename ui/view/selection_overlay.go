package view

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/viewer-markup/config"
	"github.com/soocke/viewer-markup/domain/capture"
	"github.com/soocke/viewer-markup/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionOverlay manages the optional selection window allowing the user
// to constrain screen capture to a rectangle.
type SelectionOverlay interface {
	OpenOrFocus()
	Clear()
}

type selectionOverlay struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgPath string
	model   *model.SelectionModel
	win     *ToplevelWidget
}

// NewSelectionOverlay creates a new overlay manager writing to sel.
func NewSelectionOverlay(cfg *config.Config, cfgPath string, sel *model.SelectionModel, logger *slog.Logger) SelectionOverlay {
	return &selectionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath, model: sel}
}

// screenSize returns the primary screen size, 1920x1080 when unknown.
func screenSize() (int, int) {
	r := capture.ScreenBounds(image.Rect(0, 0, 1920, 1080))
	return r.Dx(), r.Dy()
}

// initialRect opens the grid over the saved selection, or centred.
func (v *selectionOverlay) initialRect() image.Rectangle {
	if r := v.model.Active(); r != nil {
		return *r
	}
	screenW, screenH := screenSize()
	w, h := max(screenW*2/3, 1), max(screenH*5/9, 1)
	x, y := (screenW-w)/2, (screenH-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// wmAttr sets a window manager attribute, ignoring platforms that lack it
// (-toolwindow and -transparentcolor are Windows only).
func wmAttr(win *ToplevelWidget, name string, val any) {
	defer func() { _ = recover() }()
	WmAttributes(win.Window, name, val)
}

func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background("#008080"))
	win.WmTitle("Selection Grid")
	v.win = win
	WmGeometry(win.Window, model.FormatGeometry(v.initialRect()))
	wmAttr(win, "-topmost", 1)
	wmAttr(win, "-toolwindow", true)
	wmAttr(win, "-transparentcolor", "#008080")
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(0))
	GridColumnConfigure(win.Window, 1, Weight(1))
	GridColumnConfigure(win.Window, 2, Weight(0))
	left := win.Frame(Width(4), Background("#FFFFFF"))
	Grid(left, Row(0), Column(0), Sticky("ns"))
	center := win.Frame(Background("#008080"))
	Grid(center, Row(0), Column(1), Sticky("nsew"))
	right := win.Frame(Width(4), Background("#FFFFFF"))
	Grid(right, Row(0), Column(2), Sticky("ns"))
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Columnspan(3), Sticky("we"))
	confirm := win.Button(Txt("Confirm [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.cancel))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	clear := win.Button(Txt("Full Screen"), Command(func() { v.Clear(); v.destroy() }))
	Grid(clear, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.cancel))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.cancel)
}

// Clear drops the selection so captures cover the whole screen.
func (v *selectionOverlay) Clear() {
	v.model.Set(image.Rectangle{})
	v.persist(image.Rectangle{})
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	if rect, ok := model.ParseGeometry(WmGeometry(v.win.Window)); ok {
		v.model.Set(rect)
		v.persist(rect)
	}
	v.destroy()
}

func (v *selectionOverlay) persist(r image.Rectangle) {
	if v.cfg == nil {
		return
	}
	v.cfg.SelectionX, v.cfg.SelectionY = r.Min.X, r.Min.Y
	v.cfg.SelectionW, v.cfg.SelectionH = r.Dx(), r.Dy()
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("config save failed", "error", err)
		return
	}
	if v.logger != nil {
		v.logger.Info("capture selection saved", "rect", fmt.Sprint(r))
	}
}

func (v *selectionOverlay) cancel() { v.destroy() }

func (v *selectionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}
