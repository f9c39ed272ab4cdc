package annotation

import (
	"image"
	"log/slog"

	"github.com/soocke/viewer-markup/domain/capture"
)

// Snapshot is an opaque copy of the overlay pixels taken by a Canvas.
type Snapshot []byte

// Canvas is the overlay drawing surface. It is created at the frame size and
// owned by the controller for the duration of a session.
type Canvas interface {
	// Reset fills the surface with the background colour and draws bg on top.
	Reset(bg *image.RGBA)
	Snapshot() Snapshot
	Restore(Snapshot)
	// DrawCloud strokes the comment cloud outline for r.
	DrawCloud(r image.Rectangle)
	// DrawText draws text inside the cloud for r.
	DrawText(r image.Rectangle, text string)
	// DrawOutline draws the in-progress drag preview for r.
	DrawOutline(r image.Rectangle)
	Image() *image.RGBA
}

// RedrawPolicy selects which record texts survive a redraw.
type RedrawPolicy int

const (
	// TextAll draws the text of every record.
	TextAll RedrawPolicy = iota
	// TextEditedOnly draws outlines for every record but only the text of
	// the most recently edited one.
	TextEditedOnly
)

func (p RedrawPolicy) String() string {
	switch p {
	case TextAll:
		return "all"
	case TextEditedOnly:
		return "edited-only"
	default:
		return "unknown"
	}
}

// Options tune the controller.
type Options struct {
	// LivePreview draws an outline of the pending cloud while dragging.
	LivePreview bool
	Policy      RedrawPolicy
}

// EditRequest asks the host for new text for the record at Index.
type EditRequest struct {
	Index   int
	Current string
}

// Prompter collects text from the user. RequestEdit must eventually resolve
// the handle (Submit or Cancel); until then the controller ignores pointer
// input. It may resolve synchronously.
type Prompter interface {
	RequestEdit(req EditRequest, h *EditHandle)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(req EditRequest, h *EditHandle)

func (f PrompterFunc) RequestEdit(req EditRequest, h *EditHandle) { f(req, h) }

// EditHandle completes one edit request. Only the first Submit or Cancel has
// an effect, and only while the session that issued it is still active.
type EditHandle struct {
	c       *Controller
	index   int
	session uint64
	done    bool
}

// Submit stores text on the record and redraws the overlay.
func (h *EditHandle) Submit(text string) {
	if h == nil || h.done {
		return
	}
	h.done = true
	h.c.finishEdit(h, text, true)
}

// Cancel leaves the record unchanged.
func (h *EditHandle) Cancel() {
	if h == nil || h.done {
		return
	}
	h.done = true
	h.c.finishEdit(h, "", false)
}

// Resolved reports whether Submit or Cancel was already called.
func (h *EditHandle) Resolved() bool { return h == nil || h.done }

// drawState exists only while the pointer is held down.
type drawState struct {
	origin   image.Point
	current  image.Point
	snapshot Snapshot
}

// Controller owns the comment clouds of one annotation session and applies
// pointer events to them. All methods must be called from the UI thread; no
// method panics or returns an error, out-of-order events are ignored.
type Controller struct {
	logger   *slog.Logger
	prompter Prompter
	opts     Options

	frame   *capture.Frame
	canvas  Canvas
	records []Record
	drag    *drawState
	pending *EditHandle

	session    uint64
	lastEdited int
	revision   uint64
}

// NewController returns an idle controller. prompter and logger may be nil;
// without a prompter clicks select nothing.
func NewController(prompter Prompter, opts Options, logger *slog.Logger) *Controller {
	return &Controller{logger: logger, prompter: prompter, opts: opts, lastEdited: -1}
}

// SetPrompter replaces the prompter used for edit requests.
func (c *Controller) SetPrompter(p Prompter) { c.prompter = p }

// Begin starts a session over frame, drawing onto canvas. Any previous
// session is dropped. It returns false and changes nothing when frame or
// canvas is missing.
func (c *Controller) Begin(frame *capture.Frame, canvas Canvas) bool {
	if frame == nil || frame.Image == nil || canvas == nil {
		c.warn("annotation begin skipped", "reason", "missing frame or canvas")
		return false
	}
	c.frame = frame
	c.canvas = canvas
	c.records = nil
	c.drag = nil
	c.pending = nil
	c.lastEdited = -1
	c.session++
	canvas.Reset(frame.Image)
	c.revision++
	if c.logger != nil {
		w, h := frame.Size()
		c.logger.Info("annotation session started",
			"session", c.session,
			"width", w,
			"height", h,
			"frame_sequence", frame.Sequence,
		)
	}
	return true
}

// End tears the session down. The canvas is left as is.
func (c *Controller) End() {
	if c.frame == nil {
		return
	}
	if c.logger != nil {
		c.logger.Info("annotation session ended", "session", c.session, "records", len(c.records))
	}
	c.frame = nil
	c.canvas = nil
	c.records = nil
	c.drag = nil
	c.pending = nil
	c.lastEdited = -1
	c.revision++
}

// Active reports whether a session is running.
func (c *Controller) Active() bool { return c.frame != nil }

// Editing reports whether an edit request is waiting for its handle.
func (c *Controller) Editing() bool { return c.pending != nil }

// Dragging reports whether the pointer is held down.
func (c *Controller) Dragging() bool { return c.drag != nil }

// Len returns the number of records.
func (c *Controller) Len() int { return len(c.records) }

// Records returns a copy of the records in insertion order.
func (c *Controller) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Frame returns the captured frame of the active session.
func (c *Controller) Frame() *capture.Frame { return c.frame }

// Canvas returns the overlay canvas of the active session.
func (c *Controller) Canvas() Canvas { return c.canvas }

// Policy returns the redraw policy in use.
func (c *Controller) Policy() RedrawPolicy { return c.opts.Policy }

// LastEdited returns the index of the most recently edited record or -1.
func (c *Controller) LastEdited() int { return c.lastEdited }

// Revision changes whenever the overlay pixels may have changed.
func (c *Controller) Revision() uint64 { return c.revision }

func (c *Controller) interactive() bool {
	return c.frame != nil && c.pending == nil
}

// PointerDown starts a drag at p.
func (c *Controller) PointerDown(p image.Point) {
	if !c.interactive() {
		return
	}
	if c.drag != nil {
		c.canvas.Restore(c.drag.snapshot)
	}
	c.drag = &drawState{origin: p, current: p, snapshot: c.canvas.Snapshot()}
}

// PointerMove erases any preview and, with LivePreview, draws the pending cloud.
func (c *Controller) PointerMove(p image.Point) {
	if !c.interactive() || c.drag == nil {
		return
	}
	c.canvas.Restore(c.drag.snapshot)
	c.drag.current = p
	if c.opts.LivePreview {
		c.canvas.DrawOutline(Record{Origin: c.drag.origin, Size: p.Sub(c.drag.origin)}.Rect())
	}
	c.revision++
}

// PointerUp commits the drag as a new record with empty text.
func (c *Controller) PointerUp(p image.Point) {
	if !c.interactive() || c.drag == nil {
		return
	}
	rec := Record{Origin: c.drag.origin, Size: p.Sub(c.drag.origin)}
	c.records = append(c.records, rec)
	c.drag = nil
	if c.logger != nil {
		c.logger.Debug("annotation record added",
			"index", len(c.records)-1,
			"origin", rec.Origin.String(),
			"size", rec.Size.String(),
		)
	}
	c.Redraw()
}

// PointerLeave abandons the drag and erases its preview.
func (c *Controller) PointerLeave() {
	if !c.interactive() || c.drag == nil {
		return
	}
	c.canvas.Restore(c.drag.snapshot)
	c.drag = nil
	c.revision++
}

// HitTest returns the index of the first record containing p, or -1.
// Earlier records win on overlap.
func (c *Controller) HitTest(p image.Point) int {
	for i, r := range c.records {
		if r.Contains(p) {
			return i
		}
	}
	return -1
}

// Click opens an edit request for the record under p.
func (c *Controller) Click(p image.Point) {
	if !c.interactive() || c.drag != nil {
		return
	}
	idx := c.HitTest(p)
	if idx < 0 {
		return
	}
	if c.prompter == nil {
		c.warn("annotation edit skipped", "reason", "no prompter", "index", idx)
		return
	}
	h := &EditHandle{c: c, index: idx, session: c.session}
	c.pending = h
	c.prompter.RequestEdit(EditRequest{Index: idx, Current: c.records[idx].Text}, h)
}

func (c *Controller) finishEdit(h *EditHandle, text string, submit bool) {
	if c.pending != h || c.session != h.session || c.frame == nil {
		return
	}
	c.pending = nil
	if h.index < 0 || h.index >= len(c.records) {
		return
	}
	if !submit {
		// Under TextEditedOnly the clicked record becomes the one whose text
		// is shown, whether or not the prompt was cancelled.
		if c.opts.Policy == TextEditedOnly {
			c.lastEdited = h.index
			c.Redraw()
		}
		return
	}
	c.records[h.index].Text = text
	c.lastEdited = h.index
	if c.logger != nil {
		c.logger.Debug("annotation text updated", "index", h.index, "length", len(text))
	}
	c.Redraw()
}

// Redraw repaints the overlay from the frame and the records alone.
func (c *Controller) Redraw() {
	if c.frame == nil || c.canvas == nil {
		return
	}
	Render(c.canvas, c.frame.Image, c.records, c.opts.Policy, c.lastEdited)
	c.revision++
}

// Render draws bg and then every record onto canvas: all outlines in
// insertion order, then the texts selected by policy. lastEdited is only
// used by TextEditedOnly.
func Render(canvas Canvas, bg *image.RGBA, records []Record, policy RedrawPolicy, lastEdited int) {
	canvas.Reset(bg)
	for _, r := range records {
		canvas.DrawCloud(r.Rect())
	}
	switch policy {
	case TextEditedOnly:
		if lastEdited >= 0 && lastEdited < len(records) {
			r := records[lastEdited]
			canvas.DrawText(r.Rect(), r.Text)
		}
	default:
		for _, r := range records {
			if r.Text != "" {
				canvas.DrawText(r.Rect(), r.Text)
			}
		}
	}
}

func (c *Controller) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
