package view

import (
	"image"
	"log/slog"

	"github.com/soocke/viewer-markup/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	maxThumbW = 320
	maxThumbH = 200
)

// PromptDialog asks for the text of one comment cloud. Only one dialog is
// open at a time; opening another cancels the first.
type PromptDialog struct {
	logger *slog.Logger
	win    *ToplevelWidget
	thumb  *Img
	done   func(text string, ok bool)
}

func NewPromptDialog(logger *slog.Logger) *PromptDialog {
	return &PromptDialog{logger: logger}
}

// Prompt opens the dialog seeded with current. region, when set, is shown
// above the text box so the user sees which cloud is edited.
func (d *PromptDialog) Prompt(title, current string, region image.Image, done func(text string, ok bool)) {
	d.finish("", false)
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle(title)
	WmAttributes(win.Window, "-topmost", 1)
	d.win, d.done = win, done

	row := 0
	if region != nil {
		d.thumb = NewPhoto(Data(images.EncodePNG(images.ScaleToFit(region, maxThumbW, maxThumbH))))
		thumb := win.Label(Image(d.thumb), Borderwidth(1), Relief("sunken"))
		Grid(thumb, Row(row), Column(0), Columnspan(2), Padx("0.4m"), Pady("0.4m"))
		row++
	}
	text := win.Text(Height(4), Width(40))
	Grid(text, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	text.Insert("1.0", current)
	row++

	submit := func() { d.finish(textValue(text), true) }
	cancel := func() { d.finish("", false) }
	ok := win.Button(Txt("OK [Ctrl+Enter]"), Command(submit))
	Grid(ok, Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cl := win.Button(Txt("Cancel [Esc]"), Command(cancel))
	Grid(cl, Row(row), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	Bind(win, "<Control-Return>", Command(submit))
	Bind(win, "<Escape>", Command(cancel))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", cancel)
}

// finish closes the dialog and resolves the pending callback once.
func (d *PromptDialog) finish(text string, ok bool) {
	done := d.done
	d.done = nil
	if d.win != nil {
		Destroy(d.win)
		d.win = nil
	}
	if d.thumb != nil {
		d.thumb.Delete()
		d.thumb = nil
	}
	if done != nil {
		if d.logger != nil {
			d.logger.Debug("prompt closed", "submitted", ok, "length", len(text))
		}
		done(text, ok)
	}
}
