package model

import (
	"sync"
	"sync/atomic"
)

// CaptureModel tracks whether a frame capture is in flight and the outcome of
// the last one. The zero value is idle and usable.
// Concurrency-safe because the capture worker and presenter ticks may race.
type CaptureModel struct {
	inFlight atomic.Bool

	mu      sync.Mutex
	lastErr error
}

// InFlight reports whether a capture has been started and not yet finished.
func (m *CaptureModel) InFlight() bool {
	if m == nil {
		return false
	}
	return m.inFlight.Load()
}

// TryStart marks a capture as in flight. It returns false when one already is.
func (m *CaptureModel) TryStart() bool {
	if m == nil {
		return false
	}
	return m.inFlight.CompareAndSwap(false, true)
}

// Finish clears the in-flight flag and stores err (nil on success).
func (m *CaptureModel) Finish(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	m.inFlight.Store(false)
}

// LastError returns the error of the last finished capture.
func (m *CaptureModel) LastError() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
