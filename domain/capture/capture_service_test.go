package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"
)

type fakeSurface struct {
	renders, reads int
	order          []string
	readErr        error
	rb             Readback
}

func (f *fakeSurface) Render() error {
	f.renders++
	f.order = append(f.order, "render")
	return nil
}

func (f *fakeSurface) ReadPixels() (Readback, error) {
	f.reads++
	f.order = append(f.order, "read")
	if f.readErr != nil {
		return Readback{}, f.readErr
	}
	return f.rb, nil
}

func TestCapturer_NilSurface(t *testing.T) {
	c := NewCapturer(nil)
	if _, err := c.Capture(context.Background(), nil); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface, got %v", err)
	}
	if c.Stats().Failures != 1 {
		t.Fatalf("failure not counted: %+v", c.Stats())
	}
}

func TestCapturer_MissingContext(t *testing.T) {
	c := NewCapturer(nil)
	s := &fakeSurface{readErr: ErrNoContext}
	if _, err := c.Capture(context.Background(), s); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
	raw := &RawSurface{Width: 2, Height: 2}
	if _, err := c.Capture(context.Background(), raw); !errors.Is(err, ErrNoContext) {
		t.Fatalf("raw surface without reader: expected ErrNoContext, got %v", err)
	}
}

func TestCapturer_RendersBeforeReading(t *testing.T) {
	c := NewCapturer(nil)
	s := &fakeSurface{rb: Readback{Pix: pattern(4, 3), Width: 4, Height: 3, Order: BottomUp}}
	f, err := c.Capture(context.Background(), s)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if len(s.order) != 2 || s.order[0] != "render" || s.order[1] != "read" {
		t.Fatalf("unexpected call order %v", s.order)
	}
	if w, h := f.Size(); w != 4 || h != 3 {
		t.Fatalf("unexpected frame size %dx%d", w, h)
	}
	if f.Sequence != 1 || c.Stats().Captures != 1 {
		t.Fatalf("sequence/stats not updated: seq=%d stats=%+v", f.Sequence, c.Stats())
	}
	// bottom buffer row lands at the bottom of the frame
	if got := f.Image.RGBAAt(0, 2); got.R != 0 {
		t.Fatalf("expected first buffer row at the bottom, got %+v", got)
	}
}

func TestCapturer_RawSurfaceFlipsAndLeavesSourceAlone(t *testing.T) {
	src := pattern(3, 2)
	keep := append([]byte(nil), src...)
	raw := &RawSurface{Width: 3, Height: 2, Read: func(dst []byte) error {
		copy(dst, src)
		return nil
	}}
	c := NewCapturer(nil)
	f, err := c.Capture(context.Background(), raw)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if got := f.Image.RGBAAt(0, 0); got.R != 1 {
		t.Fatalf("expected top row to be the last buffer row, got %+v", got)
	}
	for i := range keep {
		if keep[i] != src[i] {
			t.Fatalf("source pixels changed at %d", i)
		}
	}
}

func TestCapturer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeSurface{}
	if _, err := NewCapturer(nil).Capture(ctx, s); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.renders != 0 {
		t.Fatalf("surface rendered despite cancelled context")
	}
}

func TestReadbackFromImage_SubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{R: 9, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))
	rb := readbackFromImage(sub)
	if rb.Width != 2 || rb.Height != 2 || rb.Order != TopDown || !rb.pooled {
		t.Fatalf("unexpected readback header %+v", rb)
	}
	if rb.Pix[0] != 9 {
		t.Fatalf("expected sub-image origin copied first, got %d", rb.Pix[0])
	}
}

func TestCapturer_LogStats(t *testing.T) {
	var buf bytes.Buffer
	c := NewCapturer(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	s := &fakeSurface{rb: Readback{Pix: make([]byte, 2*2*4), Width: 2, Height: 2, Order: TopDown}}
	if _, err := c.Capture(context.Background(), s); err != nil {
		t.Fatalf("capture: %v", err)
	}
	_, _ = c.Capture(context.Background(), nil)

	stats := c.Stats()
	if stats.Captures != 1 || stats.Failures != 1 || stats.Sequence != 1 || stats.LastCapture.IsZero() {
		t.Fatalf("unexpected stats %+v", stats)
	}
	c.LogStats()
	out := buf.String()
	for _, want := range []string{"msg=capture.stats", "captures=1", "failures=1", "sequence=1", "last_capture="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
