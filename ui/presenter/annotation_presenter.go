package presenter

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/viewer-markup/domain/annotation"
	"github.com/soocke/viewer-markup/domain/capture"
	"github.com/soocke/viewer-markup/ui/images"
	"github.com/soocke/viewer-markup/ui/model"
)

// FrameCapturer turns a render surface into a frame.
type FrameCapturer interface {
	Capture(ctx context.Context, s capture.Surface) (*capture.Frame, error)
}

// CanvasFactory creates the overlay canvas for a frame of the given size.
type CanvasFactory func(width, height int) (annotation.Canvas, error)

// OverlayView is the window the overlay image is shown in. Pointer events
// flow back through the presenter's Press/Motion/Release/Leave methods.
type OverlayView interface {
	Open(width, height int) bool
	Alive() bool
	Show(img image.Image)
	Close()
}

// PromptView asks the user for comment text. done is called at most once,
// ok is false when the user cancelled.
type PromptView interface {
	Prompt(title, current string, region image.Image, done func(text string, ok bool))
}

// MessageView shows short status messages.
type MessageView interface {
	SetMessage(text string)
}

// PreviewView shows a thumbnail of the captured frame in the main window.
type PreviewView interface {
	UpdatePreview(img image.Image)
	PreviewReset()
}

// ExportSnapshot is an immutable copy of an annotation session.
type ExportSnapshot struct {
	Frame      *capture.Frame
	Records    []annotation.Record
	Policy     annotation.RedrawPolicy
	LastEdited int
}

type captureTask struct {
	surface capture.Surface
}

type captureResult struct {
	frame    *capture.Frame
	err      error
	duration time.Duration
}

// regionMargin is the context around a cloud shown in the prompt dialog.
const regionMargin = 16

// AnnotationPresenter adapts overlay window events to the annotation
// controller. It captures frames on a worker goroutine, classifies gestures
// into drags and clicks, answers edit requests with the prompt dialog and
// refreshes the overlay whenever the controller's revision changes.
// All methods except the worker run on the UI thread.
type AnnotationPresenter struct {
	ctrl      *annotation.Controller
	capturer  FrameCapturer
	surface   func() capture.Surface
	newCanvas CanvasFactory
	capModel  *model.CaptureModel
	overlay   OverlayView
	prompt    PromptView
	message   MessageView
	preview   PreviewView
	alive     func() bool
	logger    *slog.Logger

	tolerance      int
	captureTimeout time.Duration

	workerOnce sync.Once
	workCh     chan captureTask
	resultCh   chan captureResult

	canvas  annotation.Canvas
	lastRev uint64
	shown   bool

	pressed bool
	moved   bool
	press   image.Point
}

// AnnotationDeps groups the collaborators of an AnnotationPresenter.
type AnnotationDeps struct {
	Controller *annotation.Controller
	Capturer   FrameCapturer
	// Surface returns the surface to capture; it is called on the UI thread.
	Surface   func() capture.Surface
	NewCanvas CanvasFactory
	Capture   *model.CaptureModel
	Overlay   OverlayView
	Prompt    PromptView
	Message   MessageView
	Preview   PreviewView
	// Alive reports whether the host window still exists. Nil means always.
	Alive func() bool
	// ClickTolerance is the pointer travel in pixels under which a
	// press/release pair counts as a click.
	ClickTolerance int
	Logger         *slog.Logger
}

// NewAnnotationPresenter wires the presenter and registers it as the
// controller's prompter.
func NewAnnotationPresenter(d AnnotationDeps) *AnnotationPresenter {
	if d.Capture == nil {
		d.Capture = &model.CaptureModel{}
	}
	p := &AnnotationPresenter{
		ctrl:           d.Controller,
		capturer:       d.Capturer,
		surface:        d.Surface,
		newCanvas:      d.NewCanvas,
		capModel:       d.Capture,
		overlay:        d.Overlay,
		prompt:         d.Prompt,
		message:        d.Message,
		preview:        d.Preview,
		alive:          d.Alive,
		logger:         d.Logger,
		tolerance:      max(d.ClickTolerance, 0),
		captureTimeout: 10 * time.Second,
		workCh:         make(chan captureTask, 1),
		resultCh:       make(chan captureResult, 1),
	}
	if p.ctrl != nil {
		p.ctrl.SetPrompter(p)
	}
	return p
}

// StartCapture requests a new frame. The session starts on a later Tick once
// the frame arrives. Ignored while a capture is in flight or an edit is open.
func (p *AnnotationPresenter) StartCapture() {
	if p == nil || p.ctrl == nil || p.capturer == nil {
		return
	}
	if p.ctrl.Editing() {
		p.say("Finish the open comment first")
		return
	}
	var s capture.Surface
	if p.surface != nil {
		s = p.surface()
	}
	if !p.capModel.TryStart() {
		return
	}
	p.ensureWorker()
	p.workCh <- captureTask{surface: s}
	p.say("Capturing…")
}

func (p *AnnotationPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *AnnotationPresenter) runWorker() {
	for task := range p.workCh {
		ctx, cancel := context.WithTimeout(context.Background(), p.captureTimeout)
		start := time.Now()
		frame, err := p.capturer.Capture(ctx, task.surface)
		cancel()
		// capModel's single flight keeps at most one result pending
		p.resultCh <- captureResult{frame: frame, err: err, duration: time.Since(start)}
	}
}

// Tick drains capture results and refreshes the overlay. Call it from the UI loop.
func (p *AnnotationPresenter) Tick() {
	if p == nil || p.ctrl == nil {
		return
	}
	for {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			p.refresh()
			return
		}
	}
}

func (p *AnnotationPresenter) handleResult(res captureResult) {
	p.capModel.Finish(res.err)
	if res.err != nil {
		if p.logger != nil {
			p.logger.Error("capture failed", "error", res.err)
		}
		p.say("Capture failed: " + res.err.Error())
		return
	}
	if p.alive != nil && !p.alive() {
		if p.logger != nil {
			p.logger.Debug("capture dropped", "reason", "host closed")
		}
		return
	}
	w, h := res.frame.Size()
	if p.newCanvas == nil || p.overlay == nil {
		return
	}
	canvas, err := p.newCanvas(w, h)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("overlay canvas", "error", err)
		}
		p.say("Overlay failed: " + err.Error())
		return
	}
	if !p.ctrl.Begin(res.frame, canvas) {
		closeCanvas(canvas)
		return
	}
	p.release()
	p.canvas = canvas
	p.resetGesture()
	p.shown = false
	if !p.overlay.Open(w, h) {
		p.say("Overlay window unavailable")
		p.EndSession()
		return
	}
	if p.preview != nil {
		p.preview.UpdatePreview(res.frame.Image)
	}
	if p.logger != nil {
		p.logger.Info("overlay attached", "width", w, "height", h, "capture_ms", res.duration.Milliseconds())
	}
	p.say(fmt.Sprintf("Annotating %dx%d frame: drag to add, click to edit", w, h))
}

// refresh pushes the overlay image when it changed and ends the session when
// the user closed the overlay window.
func (p *AnnotationPresenter) refresh() {
	if !p.ctrl.Active() {
		return
	}
	if p.overlay == nil || !p.overlay.Alive() {
		p.EndSession()
		return
	}
	rev := p.ctrl.Revision()
	if p.shown && rev == p.lastRev {
		return
	}
	if c := p.ctrl.Canvas(); c != nil {
		p.overlay.Show(c.Image())
	}
	p.lastRev = rev
	p.shown = true
}

// EndSession drops the frame and all records and closes the overlay window.
func (p *AnnotationPresenter) EndSession() {
	if p == nil || p.ctrl == nil {
		return
	}
	wasActive := p.ctrl.Active()
	p.ctrl.End()
	p.release()
	p.resetGesture()
	if p.overlay != nil && p.overlay.Alive() {
		p.overlay.Close()
	}
	if p.preview != nil {
		p.preview.PreviewReset()
	}
	if wasActive {
		p.say("Session ended")
	}
}

func (p *AnnotationPresenter) release() {
	if p.canvas != nil {
		closeCanvas(p.canvas)
		p.canvas = nil
	}
}

func closeCanvas(c annotation.Canvas) {
	if cl, ok := c.(io.Closer); ok {
		_ = cl.Close()
	}
}

func (p *AnnotationPresenter) resetGesture() {
	p.pressed, p.moved = false, false
}

func (p *AnnotationPresenter) withinTolerance(q image.Point) bool {
	d := q.Sub(p.press)
	return abs(d.X) <= p.tolerance && abs(d.Y) <= p.tolerance
}

// Press handles a primary button press on the overlay.
func (p *AnnotationPresenter) Press(pt image.Point) {
	if p == nil || p.ctrl == nil || !p.ctrl.Active() || p.ctrl.Editing() {
		return
	}
	p.pressed, p.moved, p.press = true, false, pt
	p.ctrl.PointerDown(pt)
}

// Motion handles pointer movement with the primary button held.
func (p *AnnotationPresenter) Motion(pt image.Point) {
	if p == nil || !p.pressed {
		return
	}
	if !p.moved && p.withinTolerance(pt) {
		return
	}
	p.moved = true
	p.ctrl.PointerMove(pt)
}

// Release handles the primary button release. A release close to the press
// point is a click: the drag is dropped and the record under the pointer is
// opened for editing.
func (p *AnnotationPresenter) Release(pt image.Point) {
	if p == nil || !p.pressed {
		return
	}
	p.pressed = false
	if !p.moved && p.withinTolerance(pt) {
		p.ctrl.PointerLeave()
		p.ctrl.Click(pt)
		return
	}
	p.ctrl.PointerUp(pt)
}

// Leave handles the pointer leaving the overlay.
func (p *AnnotationPresenter) Leave() {
	if p == nil || p.ctrl == nil {
		return
	}
	p.resetGesture()
	p.ctrl.PointerLeave()
}

// RequestEdit implements annotation.Prompter.
func (p *AnnotationPresenter) RequestEdit(req annotation.EditRequest, h *annotation.EditHandle) {
	if p.prompt == nil {
		h.Cancel()
		return
	}
	var region image.Image
	if f := p.ctrl.Frame(); f != nil {
		recs := p.ctrl.Records()
		if req.Index >= 0 && req.Index < len(recs) {
			if img, _, err := images.ExtractRegion(f.Image, recs[req.Index].Rect(), regionMargin); err == nil {
				region = img
			}
		}
	}
	p.resetGesture()
	p.prompt.Prompt(fmt.Sprintf("Comment %d", req.Index+1), req.Current, region, func(text string, ok bool) {
		if ok {
			h.Submit(text)
			return
		}
		h.Cancel()
	})
}

// Snapshot copies the active session for export.
func (p *AnnotationPresenter) Snapshot() (ExportSnapshot, bool) {
	if p == nil || p.ctrl == nil || !p.ctrl.Active() {
		return ExportSnapshot{}, false
	}
	return ExportSnapshot{
		Frame:      p.ctrl.Frame(),
		Records:    p.ctrl.Records(),
		Policy:     p.ctrl.Policy(),
		LastEdited: p.ctrl.LastEdited(),
	}, true
}

// Active reports whether an annotation session is running.
func (p *AnnotationPresenter) Active() bool { return p != nil && p.ctrl != nil && p.ctrl.Active() }

// Len returns the number of clouds in the session.
func (p *AnnotationPresenter) Len() int {
	if p == nil || p.ctrl == nil {
		return 0
	}
	return p.ctrl.Len()
}

// State summarises the presenter for the state label.
func (p *AnnotationPresenter) State() OverlayState {
	switch {
	case p == nil || p.ctrl == nil:
		return StateIdle
	case p.capModel.InFlight():
		return StateCapturing
	case p.ctrl.Editing():
		return StateEditing
	case p.ctrl.Dragging():
		return StateDrawing
	case p.ctrl.Active():
		return StateAnnotating
	default:
		return StateIdle
	}
}

func (p *AnnotationPresenter) say(msg string) {
	if p.message != nil {
		p.message.SetMessage(msg)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
