package capture

import (
	"sync"
)

// Reusable readback buffers. Surfaces that read pixels into a caller-owned
// byte slice (RawSurface) take one from the pool; the capturer returns it once
// the pixels have been converted into the frame image. Buffers that are never
// recycled are simply collected.

var readbackPool sync.Pool // stores *[]byte

// acquireReadback returns a byte slice of exactly w*h*4 bytes.
func acquireReadback(w, h int) []byte {
	if w <= 0 || h <= 0 {
		return nil
	}
	needed := w * h * 4
	if v := readbackPool.Get(); v != nil {
		buf := *(v.(*[]byte))
		if cap(buf) >= needed {
			return buf[:needed]
		}
	}
	return make([]byte, needed)
}

// RecycleReadback returns a readback buffer to the pool. The caller must not
// touch buf afterwards.
func RecycleReadback(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	buf = buf[:0]
	readbackPool.Put(&buf)
}
