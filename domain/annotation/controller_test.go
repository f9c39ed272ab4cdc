package annotation

import (
	"image"
	"strings"
	"testing"

	"github.com/soocke/viewer-markup/domain/capture"
)

// fakeCanvas keeps a list of draw operations as its "pixels".
type fakeCanvas struct {
	layers   []string
	resets   int
	restores int
}

func (f *fakeCanvas) Reset(bg *image.RGBA) {
	f.resets++
	f.layers = []string{"bg:" + bg.Bounds().String()}
}

func (f *fakeCanvas) Snapshot() Snapshot {
	return Snapshot(strings.Join(f.layers, "\n"))
}

func (f *fakeCanvas) Restore(s Snapshot) {
	f.restores++
	f.layers = strings.Split(string(s), "\n")
}

func (f *fakeCanvas) DrawCloud(r image.Rectangle) {
	f.layers = append(f.layers, "cloud:"+r.String())
}

func (f *fakeCanvas) DrawText(r image.Rectangle, text string) {
	f.layers = append(f.layers, "text:"+r.String()+":"+text)
}

func (f *fakeCanvas) DrawOutline(r image.Rectangle) {
	f.layers = append(f.layers, "outline:"+r.String())
}

func (f *fakeCanvas) Image() *image.RGBA { return nil }

func (f *fakeCanvas) count(prefix string) int {
	n := 0
	for _, l := range f.layers {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

// recordingPrompter stores the last request and handle without resolving it.
type recordingPrompter struct {
	reqs    []EditRequest
	handles []*EditHandle
}

func (p *recordingPrompter) RequestEdit(req EditRequest, h *EditHandle) {
	p.reqs = append(p.reqs, req)
	p.handles = append(p.handles, h)
}

func (p *recordingPrompter) last() (EditRequest, *EditHandle) {
	return p.reqs[len(p.reqs)-1], p.handles[len(p.handles)-1]
}

func newFrame(w, h int) *capture.Frame {
	return &capture.Frame{Image: image.NewRGBA(image.Rect(0, 0, w, h)), Sequence: 1}
}

func newSession(t *testing.T, opts Options) (*Controller, *fakeCanvas, *recordingPrompter) {
	t.Helper()
	p := &recordingPrompter{}
	c := NewController(p, opts, nil)
	fc := &fakeCanvas{}
	if !c.Begin(newFrame(400, 300), fc) {
		t.Fatalf("begin refused a valid frame")
	}
	return c, fc, p
}

func drag(c *Controller, from, to image.Point) {
	c.PointerDown(from)
	c.PointerMove(from.Add(to).Div(2))
	c.PointerUp(to)
}

func TestBegin_RefusesMissingInputs(t *testing.T) {
	c := NewController(nil, Options{}, nil)
	if c.Begin(nil, &fakeCanvas{}) {
		t.Fatalf("begin accepted a nil frame")
	}
	if c.Begin(&capture.Frame{}, &fakeCanvas{}) {
		t.Fatalf("begin accepted a frame without image")
	}
	if c.Begin(newFrame(10, 10), nil) {
		t.Fatalf("begin accepted a nil canvas")
	}
	if c.Active() {
		t.Fatalf("controller active after refused begins")
	}
	// every operation is a no-op without a session
	c.PointerDown(image.Pt(1, 1))
	c.PointerUp(image.Pt(5, 5))
	c.Click(image.Pt(2, 2))
	c.Redraw()
	if c.Len() != 0 || c.Dragging() || c.Editing() {
		t.Fatalf("state changed without a session: len=%d dragging=%v editing=%v", c.Len(), c.Dragging(), c.Editing())
	}
}

func TestBegin_DrawsFrameAndClearsPreviousSession(t *testing.T) {
	c, _, _ := newSession(t, Options{})
	drag(c, image.Pt(1, 1), image.Pt(20, 20))
	if c.Len() != 1 {
		t.Fatalf("expected one record, got %d", c.Len())
	}
	fc2 := &fakeCanvas{}
	if !c.Begin(newFrame(50, 40), fc2) {
		t.Fatalf("second begin refused")
	}
	if c.Len() != 0 || c.LastEdited() != -1 {
		t.Fatalf("records survived a new session: %+v", c.Records())
	}
	if fc2.resets != 1 || len(fc2.layers) != 1 || fc2.layers[0] != "bg:(0,0)-(50,40)" {
		t.Fatalf("initial draw wrong: resets=%d layers=%v", fc2.resets, fc2.layers)
	}
}

func TestExampleScenario(t *testing.T) {
	c, fc, p := newSession(t, Options{})

	drag(c, image.Pt(50, 50), image.Pt(150, 120))
	recs := c.Records()
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	want := Record{Origin: image.Pt(50, 50), Size: image.Pt(100, 70)}
	if recs[0] != want {
		t.Fatalf("record mismatch: got %+v want %+v", recs[0], want)
	}
	if fc.count("cloud:") != 1 {
		t.Fatalf("commit did not draw the new outline: %v", fc.layers)
	}

	c.Click(image.Pt(80, 80))
	if len(p.reqs) != 1 {
		t.Fatalf("expected a prompt, got %d", len(p.reqs))
	}
	req, h := p.last()
	if req.Index != 0 || req.Current != "" {
		t.Fatalf("unexpected request %+v", req)
	}
	if !c.Editing() {
		t.Fatalf("controller not modal while prompt is open")
	}
	h.Submit("check wall thickness")
	if got := c.Records()[0].Text; got != "check wall thickness" {
		t.Fatalf("text not stored, got %q", got)
	}
	if c.Editing() {
		t.Fatalf("still editing after submit")
	}
	if fc.count("text:") != 1 {
		t.Fatalf("text not drawn after submit: %v", fc.layers)
	}

	c.Click(image.Pt(10, 10))
	if len(p.reqs) != 1 {
		t.Fatalf("click outside every record opened a prompt")
	}
}

func TestHitTest_SignedSizes(t *testing.T) {
	cases := []struct {
		name     string
		from, to image.Point
	}{
		{"down-right", image.Pt(100, 100), image.Pt(160, 140)},
		{"down-left", image.Pt(160, 100), image.Pt(100, 140)},
		{"up-right", image.Pt(100, 140), image.Pt(160, 100)},
		{"up-left", image.Pt(160, 140), image.Pt(100, 100)},
	}
	outside := []image.Point{
		image.Pt(99, 120), image.Pt(160, 120), image.Pt(130, 99), image.Pt(130, 140), image.Pt(0, 0),
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, _ := newSession(t, Options{})
			drag(c, tc.from, tc.to)
			rec := c.Records()[0]
			if rec.Size != tc.to.Sub(tc.from) {
				t.Fatalf("size not signed: got %v want %v", rec.Size, tc.to.Sub(tc.from))
			}
			if got := rec.Rect(); got != image.Rect(100, 100, 160, 140) {
				t.Fatalf("normalized rect wrong: %v", got)
			}
			if idx := c.HitTest(rec.Center()); idx != 0 {
				t.Fatalf("center %v not selected", rec.Center())
			}
			if idx := c.HitTest(image.Pt(100, 100)); idx != 0 {
				t.Fatalf("min corner not selected")
			}
			for _, p := range outside {
				if idx := c.HitTest(p); idx != -1 {
					t.Fatalf("point %v outside the rect selected %d", p, idx)
				}
			}
		})
	}
}

func TestHitTest_ThinRecordCenter(t *testing.T) {
	for _, size := range []image.Point{image.Pt(1, 1), image.Pt(-1, -1), image.Pt(3, -5), image.Pt(-7, 2)} {
		r := Record{Origin: image.Pt(-2, 4), Size: size}
		if !r.Contains(r.Center()) {
			t.Fatalf("record %+v does not contain its center %v", r, r.Center())
		}
	}
	if (Record{Origin: image.Pt(5, 5)}).Contains(image.Pt(5, 5)) {
		t.Fatalf("empty record contains a point")
	}
}

func TestClick_OverlapPrefersFirstRecord(t *testing.T) {
	c, _, p := newSession(t, Options{})
	drag(c, image.Pt(10, 10), image.Pt(110, 110)) // A
	drag(c, image.Pt(200, 200), image.Pt(60, 60)) // B, dragged backwards
	c.Click(image.Pt(80, 80))
	req, h := p.last()
	if req.Index != 0 {
		t.Fatalf("overlap selected record %d, want 0", req.Index)
	}
	h.Cancel()
	c.Click(image.Pt(150, 150))
	if req, _ := p.last(); req.Index != 1 {
		t.Fatalf("click only inside B selected %d", req.Index)
	}
}

func TestDrag_LeaveCancelsUpCommits(t *testing.T) {
	c, fc, _ := newSession(t, Options{LivePreview: true})

	c.PointerDown(image.Pt(10, 10))
	c.PointerMove(image.Pt(40, 30))
	if fc.count("outline:") != 1 {
		t.Fatalf("live preview missing: %v", fc.layers)
	}
	c.PointerMove(image.Pt(50, 35))
	if fc.count("outline:") != 1 {
		t.Fatalf("stale preview not erased: %v", fc.layers)
	}
	c.PointerLeave()
	if c.Len() != 0 || c.Dragging() {
		t.Fatalf("leave committed or kept the drag: len=%d dragging=%v", c.Len(), c.Dragging())
	}
	if fc.count("outline:") != 0 {
		t.Fatalf("preview survived leave: %v", fc.layers)
	}

	c.PointerDown(image.Pt(30, 30))
	c.PointerUp(image.Pt(12, 45))
	recs := c.Records()
	if len(recs) != 1 || recs[0].Size != image.Pt(-18, 15) {
		t.Fatalf("unexpected records after commit: %+v", recs)
	}
}

func TestDrag_BaselineMoveOnlyRestores(t *testing.T) {
	c, fc, _ := newSession(t, Options{})
	c.PointerDown(image.Pt(10, 10))
	c.PointerMove(image.Pt(20, 20))
	c.PointerMove(image.Pt(30, 30))
	if fc.restores != 2 {
		t.Fatalf("expected a restore per move, got %d", fc.restores)
	}
	if fc.count("outline:") != 0 {
		t.Fatalf("preview drawn with live preview disabled")
	}
}

func TestOutOfOrderEventsIgnored(t *testing.T) {
	c, fc, p := newSession(t, Options{})
	c.PointerUp(image.Pt(5, 5))
	c.PointerMove(image.Pt(6, 6))
	c.PointerLeave()
	c.Click(image.Pt(7, 7))
	if c.Len() != 0 || len(p.reqs) != 0 || fc.restores != 0 {
		t.Fatalf("stray events changed state: len=%d prompts=%d restores=%d", c.Len(), len(p.reqs), fc.restores)
	}
}

func TestEdit_ModalAndCancel(t *testing.T) {
	c, _, p := newSession(t, Options{})
	drag(c, image.Pt(0, 0), image.Pt(100, 100))
	c.Click(image.Pt(50, 50))
	_, h := p.last()
	c.PointerDown(image.Pt(200, 200))
	c.PointerUp(image.Pt(250, 250))
	c.Click(image.Pt(10, 10))
	if c.Len() != 1 || len(p.reqs) != 1 {
		t.Fatalf("input accepted while editing: len=%d prompts=%d", c.Len(), len(p.reqs))
	}
	h.Cancel()
	if c.Editing() || c.Records()[0].Text != "" {
		t.Fatalf("cancel changed state: editing=%v rec=%+v", c.Editing(), c.Records()[0])
	}
	h.Submit("late")
	if c.Records()[0].Text != "" {
		t.Fatalf("resolved handle applied a second time")
	}
}

func TestEdit_StaleHandleAfterNewSession(t *testing.T) {
	c, _, p := newSession(t, Options{})
	drag(c, image.Pt(0, 0), image.Pt(100, 100))
	c.Click(image.Pt(50, 50))
	_, h := p.last()
	if !c.Begin(newFrame(400, 300), &fakeCanvas{}) {
		t.Fatalf("begin refused")
	}
	drag(c, image.Pt(0, 0), image.Pt(100, 100))
	h.Submit("old session")
	if c.Records()[0].Text != "" {
		t.Fatalf("stale handle wrote into the new session")
	}
}

func TestEdit_SynchronousPrompter(t *testing.T) {
	c := NewController(PrompterFunc(func(req EditRequest, h *EditHandle) {
		h.Submit(req.Current + "!")
	}), Options{}, nil)
	if !c.Begin(newFrame(100, 100), &fakeCanvas{}) {
		t.Fatalf("begin refused")
	}
	drag(c, image.Pt(0, 0), image.Pt(50, 50))
	c.Click(image.Pt(10, 10))
	c.Click(image.Pt(10, 10))
	if got := c.Records()[0].Text; got != "!!" {
		t.Fatalf("expected two synchronous edits, got %q", got)
	}
	if c.Editing() {
		t.Fatalf("controller left modal after synchronous submit")
	}
}

func TestRedraw_Policies(t *testing.T) {
	edit := func(c *Controller, p *recordingPrompter, at image.Point, text string) {
		c.Click(at)
		_, h := p.last()
		h.Submit(text)
	}

	c, fc, p := newSession(t, Options{Policy: TextEditedOnly})
	drag(c, image.Pt(0, 0), image.Pt(50, 50))
	drag(c, image.Pt(100, 100), image.Pt(150, 150))
	edit(c, p, image.Pt(10, 10), "first")
	edit(c, p, image.Pt(110, 110), "second")
	if fc.count("cloud:") != 2 || fc.count("text:") != 1 {
		t.Fatalf("edited-only redraw wrong: %v", fc.layers)
	}
	if fc.layers[len(fc.layers)-1] != "text:(100,100)-(150,150):second" {
		t.Fatalf("edited text not drawn last: %v", fc.layers)
	}

	c, fc, p = newSession(t, Options{Policy: TextAll})
	drag(c, image.Pt(0, 0), image.Pt(50, 50))
	drag(c, image.Pt(100, 100), image.Pt(150, 150))
	edit(c, p, image.Pt(10, 10), "first")
	edit(c, p, image.Pt(110, 110), "second")
	if fc.count("cloud:") != 2 || fc.count("text:") != 2 {
		t.Fatalf("all-text redraw wrong: %v", fc.layers)
	}
	// outlines first, then texts in insertion order
	want := []string{
		"bg:(0,0)-(400,300)",
		"cloud:(0,0)-(50,50)",
		"cloud:(100,100)-(150,150)",
		"text:(0,0)-(50,50):first",
		"text:(100,100)-(150,150):second",
	}
	if strings.Join(fc.layers, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected draw order:\n got %v\nwant %v", fc.layers, want)
	}
}

func TestCancel_EditedOnlyShowsClickedRecord(t *testing.T) {
	c, fc, p := newSession(t, Options{Policy: TextEditedOnly})
	drag(c, image.Pt(0, 0), image.Pt(50, 50))
	drag(c, image.Pt(100, 100), image.Pt(150, 150))
	c.Click(image.Pt(10, 10))
	_, h := p.last()
	h.Submit("first")
	c.Click(image.Pt(110, 110))
	_, h = p.last()
	before := c.Revision()
	h.Cancel()
	if c.Revision() == before {
		t.Fatalf("cancel did not redraw under edited-only policy")
	}
	if c.LastEdited() != 1 || fc.count("text:") != 1 || fc.layers[len(fc.layers)-1] != "text:(100,100)-(150,150):" {
		t.Fatalf("expected only the clicked record's text: last=%d layers=%v", c.LastEdited(), fc.layers)
	}

	c, _, p = newSession(t, Options{Policy: TextAll})
	drag(c, image.Pt(0, 0), image.Pt(50, 50))
	c.Click(image.Pt(10, 10))
	_, h = p.last()
	before = c.Revision()
	h.Cancel()
	if c.Revision() != before {
		t.Fatalf("cancel redrew under all-text policy")
	}
}

func TestRedraw_IsDeterministic(t *testing.T) {
	c, fc, _ := newSession(t, Options{})
	drag(c, image.Pt(5, 5), image.Pt(60, 60))
	drag(c, image.Pt(70, 10), image.Pt(20, 90))
	c.Redraw()
	first := strings.Join(fc.layers, "|")
	c.Redraw()
	if second := strings.Join(fc.layers, "|"); first != second {
		t.Fatalf("redraw drifted:\n%s\n%s", first, second)
	}
}

func TestEnd_DropsSession(t *testing.T) {
	c, _, p := newSession(t, Options{})
	drag(c, image.Pt(0, 0), image.Pt(10, 10))
	c.Click(image.Pt(5, 5))
	_, h := p.last()
	rev := c.Revision()
	c.End()
	if c.Active() || c.Editing() || c.Len() != 0 {
		t.Fatalf("end left state behind: active=%v editing=%v len=%d", c.Active(), c.Editing(), c.Len())
	}
	if c.Revision() == rev {
		t.Fatalf("end did not bump the revision")
	}
	h.Submit("after end") // must not panic
}

func TestRecords_ReturnsCopy(t *testing.T) {
	c, _, _ := newSession(t, Options{})
	drag(c, image.Pt(0, 0), image.Pt(10, 10))
	recs := c.Records()
	recs[0].Text = "mutated"
	if c.Records()[0].Text != "" {
		t.Fatalf("Records exposed internal storage")
	}
}
