package debug

// Runtime stats logger, started only when config.Debug is true. Overlay photos
// and gg pixmaps are large short-lived buffers, so each sample logs heap,
// stack and working set side by side.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// workingSet is the process resident memory as reported by the OS.
type workingSet struct {
	Current uint64
	Peak    uint64
}

// Start logs runtime stats every interval until ctx is cancelled. Each hook
// runs after a sample on the same ticker, e.g. to dump capture counters.
func Start(ctx context.Context, interval time.Duration, logger *slog.Logger, hooks ...func()) {
	if logger == nil {
		return
	}
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var wsErrLogged bool
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			ws, err := readWorkingSet()
			if err != nil && !wsErrLogged {
				logger.Warn("working set unavailable", "error", err)
				wsErrLogged = true
			}
			logSample(logger, samples, ws)
			for _, h := range hooks {
				h()
			}
		}
	}()
}

func logSample(logger *slog.Logger, samples []metrics.Sample, ws workingSet) {
	metrics.Read(samples)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	logger.Info("runtime.stats",
		slog.Uint64("goroutines", samples[0].Value.Uint64()),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Uint64("heap_inuse", ms.HeapInuse),
		slog.Uint64("stack_inuse", ms.StackInuse),
		slog.Uint64("next_gc", ms.NextGC),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
		slog.Uint64("working_set", ws.Current),
		slog.Uint64("working_set_peak", ws.Peak),
	)
}
