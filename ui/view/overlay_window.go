package view

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/viewer-markup/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// OverlayHandlers receive pointer events in overlay (frame) coordinates.
type OverlayHandlers struct {
	Press   func(image.Point)
	Motion  func(image.Point)
	Release func(image.Point)
	Leave   func()
}

// OverlayWindow is the toplevel the annotation overlay is drawn in. The image
// is shown 1:1 so label coordinates are frame coordinates.
type OverlayWindow struct {
	logger   *slog.Logger
	handlers OverlayHandlers
	win      *ToplevelWidget
	label    *LabelWidget
	photo    *Img
}

// NewOverlayWindow returns a closed overlay window.
func NewOverlayWindow(logger *slog.Logger) *OverlayWindow {
	return &OverlayWindow{logger: logger}
}

// SetHandlers installs the pointer handlers used by windows opened afterwards.
func (o *OverlayWindow) SetHandlers(h OverlayHandlers) { o.handlers = h }

// Open creates the window sized to the frame, replacing any open one.
func (o *OverlayWindow) Open(width, height int) (ok bool) {
	o.Close()
	defer func() {
		if r := recover(); r != nil {
			if o.logger != nil {
				o.logger.Error("overlay window", "error", fmt.Sprint(r))
			}
			o.win, o.label = nil, nil
			ok = false
		}
	}()
	win := App.Toplevel(Borderwidth(0))
	win.WmTitle("Markup Overlay")
	o.win = win
	o.photo = NewPhoto(Data(images.EncodePNG(image.NewRGBA(image.Rect(0, 0, width, height)))))
	o.label = win.Label(Image(o.photo), Borderwidth(0))
	Grid(o.label, Row(0), Column(0), Sticky("nw"))
	WmGeometry(win.Window, fmt.Sprintf("%dx%d", width, height))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", o.Close)

	Bind(o.label, "<ButtonPress-1>", Command(func(e *Event) { o.emit(o.handlers.Press, e) }))
	Bind(o.label, "<B1-Motion>", Command(func(e *Event) { o.emit(o.handlers.Motion, e) }))
	Bind(o.label, "<ButtonRelease-1>", Command(func(e *Event) { o.emit(o.handlers.Release, e) }))
	Bind(o.label, "<Leave>", Command(func() {
		if o.handlers.Leave != nil {
			o.handlers.Leave()
		}
	}))
	Bind(win, "<Escape>", Command(o.Close))
	return true
}

func (o *OverlayWindow) emit(fn func(image.Point), e *Event) {
	if fn == nil || e == nil {
		return
	}
	fn(image.Pt(e.X, e.Y))
}

// Alive reports whether the window is open.
func (o *OverlayWindow) Alive() bool { return o.win != nil }

// Show replaces the displayed overlay image.
func (o *OverlayWindow) Show(img image.Image) {
	if o.label == nil || img == nil {
		return
	}
	photo := NewPhoto(Data(images.EncodePNG(img)))
	o.label.Configure(Image(photo))
	if o.photo != nil {
		o.photo.Delete()
	}
	o.photo = photo
}

// Close destroys the window. It is safe to call when closed.
func (o *OverlayWindow) Close() {
	if o.win != nil {
		func() { defer func() { _ = recover() }(); Destroy(o.win) }()
		o.win, o.label = nil, nil
	}
	if o.photo != nil {
		o.photo.Delete()
		o.photo = nil
	}
}
