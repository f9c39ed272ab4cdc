package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Capturer turns a live render surface into an immutable Frame: it forces one
// render, reads the pixels back and converts them to a top-down image.
// Use NewCapturer to construct an instance. It is safe for concurrent use.
type Capturer struct {
	logger       *slog.Logger
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	last         atomic.Pointer[time.Time]
}

// NewCapturer constructs a capturer. logger may be nil.
func NewCapturer(logger *slog.Logger) *Capturer {
	return &Capturer{logger: logger}
}

// Capture renders the surface once and returns the captured frame. The
// surface is only read from. A nil surface yields ErrNoSurface; surfaces
// without a graphics context report ErrNoContext.
func (c *Capturer) Capture(ctx context.Context, s Surface) (*Frame, error) {
	if s == nil {
		c.failures.Add(1)
		return nil, ErrNoSurface
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	if err := s.Render(); err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("capture: render: %w", err)
	}
	rb, err := s.ReadPixels()
	if err != nil {
		c.failures.Add(1)
		if errors.Is(err, ErrNoContext) {
			return nil, err
		}
		return nil, fmt.Errorf("capture: read pixels: %w", err)
	}
	img, err := ToTopDown(rb)
	if rb.pooled {
		RecycleReadback(rb.Pix)
	}
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	c.captureNanos.Add(uint64(now.Sub(start).Nanoseconds()))
	c.captures.Add(1)
	c.last.Store(&now)
	seq := c.sequence.Add(1)
	if c.logger != nil {
		c.logger.Debug("capture.frame",
			"sequence", seq,
			"width", rb.Width,
			"height", rb.Height,
			"order", rb.Order.String(),
			"elapsed", now.Sub(start),
		)
	}
	return &Frame{Image: img, CapturedAt: now, Sequence: seq}, nil
}

// Stats reports capture counters.
func (c *Capturer) Stats() CaptureStats {
	captures := c.captures.Load()
	total := c.captureNanos.Load()
	var avg time.Duration
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
	}
	var last time.Time
	if p := c.last.Load(); p != nil {
		last = *p
	}
	return CaptureStats{
		Captures:    captures,
		Failures:    c.failures.Load(),
		AvgCapture:  avg,
		LastCapture: last,
		Sequence:    c.sequence.Load(),
	}
}

// LogStats writes the current counters at debug level.
func (c *Capturer) LogStats() {
	if c.logger == nil {
		return
	}
	stats := c.Stats()
	c.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failures", stats.Failures,
		"avg_capture", stats.AvgCapture,
		"sequence", stats.Sequence,
		"last_capture", stats.LastCapture,
	)
}
