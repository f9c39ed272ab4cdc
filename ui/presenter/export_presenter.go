package presenter

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/viewer-markup/domain/cloud"
	"github.com/soocke/viewer-markup/domain/markup"
)

// SnapshotSource supplies the session to export.
type SnapshotSource interface {
	Snapshot() (ExportSnapshot, bool)
}

// MarkupSaver persists exported markups.
type MarkupSaver interface {
	Save(ctx context.Context, m *markup.Markup) error
}

type exportResult struct {
	markup  *markup.Markup
	pngPath string
	err     error
}

// ExportPresenter composes the active session into a markup, writes it to the
// export directory and saves it to the store. The work runs off the UI thread;
// results are reported on the next Tick.
type ExportPresenter struct {
	src     SnapshotSource
	store   MarkupSaver
	style   func() cloud.Style
	dir     string
	message MessageView
	logger  *slog.Logger
	timeout time.Duration

	busy     atomic.Bool
	resultCh chan exportResult
}

// NewExportPresenter returns an export presenter. store may be nil to only
// write files, dir may be empty to only store.
func NewExportPresenter(src SnapshotSource, store MarkupSaver, style func() cloud.Style, dir string, message MessageView, logger *slog.Logger) *ExportPresenter {
	if style == nil {
		style = cloud.DefaultStyle
	}
	return &ExportPresenter{
		src:      src,
		store:    store,
		style:    style,
		dir:      dir,
		message:  message,
		logger:   logger,
		timeout:  5 * time.Second,
		resultCh: make(chan exportResult, 1),
	}
}

// Export starts exporting the active session. Ignored while an export runs.
func (p *ExportPresenter) Export() {
	if p == nil || p.src == nil {
		return
	}
	snap, ok := p.src.Snapshot()
	if !ok {
		p.say("Nothing to export")
		return
	}
	if !p.busy.CompareAndSwap(false, true) {
		return
	}
	style := p.style()
	p.say("Exporting…")
	go func() {
		p.resultCh <- p.run(snap, style)
	}()
}

// Busy reports whether an export is running.
func (p *ExportPresenter) Busy() bool { return p != nil && p.busy.Load() }

func (p *ExportPresenter) run(snap ExportSnapshot, style cloud.Style) exportResult {
	m, err := markup.New("", snap.Frame, snap.Records, style, snap.Policy, snap.LastEdited)
	if err != nil {
		return exportResult{err: err}
	}
	res := exportResult{markup: m}
	if p.dir != "" {
		res.pngPath, _, res.err = markup.Export(p.dir, m)
		if res.err != nil {
			return res
		}
	}
	if p.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		res.err = p.store.Save(ctx, m)
	}
	return res
}

// Tick reports a finished export.
func (p *ExportPresenter) Tick() {
	if p == nil {
		return
	}
	select {
	case res := <-p.resultCh:
		p.busy.Store(false)
		if res.err != nil {
			if p.logger != nil {
				p.logger.Error("export failed", "error", res.err)
			}
			p.say("Export failed: " + res.err.Error())
			return
		}
		if p.logger != nil {
			p.logger.Info("markup exported",
				"id", res.markup.ID.String(),
				"records", len(res.markup.Records),
				"png", res.pngPath,
			)
		}
		if res.pngPath != "" {
			p.say("Exported " + res.pngPath)
		} else {
			p.say("Saved " + res.markup.ID.String())
		}
	default:
	}
}

func (p *ExportPresenter) say(msg string) {
	if p.message != nil {
		p.message.SetMessage(msg)
	}
}
