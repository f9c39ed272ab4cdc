package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is idiomatic for tk9.0 GUI code.
	. "modernc.org/tk9.0"

	"github.com/soocke/viewer-markup/config"
	"github.com/soocke/viewer-markup/debug"
	"github.com/soocke/viewer-markup/ui/presenter"
	"github.com/soocke/viewer-markup/ui/theme"
	"github.com/soocke/viewer-markup/ui/view"
)

const (
	tick            = 100 * time.Millisecond
	debugInterval   = 30 * time.Second
	shutdownTimeout = 3 * time.Second
)

// Desktop is the desktop host: it owns the Tk main window, schedules presenter
// ticks on the Tk event loop and tears down services on exit.
type Desktop struct {
	c       *AppContainer
	logger  *slog.Logger
	afterID string
	exiting bool
	cancel  context.CancelFunc
}

func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) *Desktop {
	a := &Desktop{logger: logger}
	a.c = BuildContainer(cfg, cfgPath, logger, func() bool { return !a.exiting })

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the UI, starts background services and blocks in the Tk
// event loop until the main window is destroyed.
func (a *Desktop) Start() {
	c := a.c
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer a.shutdown()

	if c.Server != nil {
		if err := c.Server.Start(c.Config.ServerAddr); err != nil {
			a.logger.Error("review server failed to start", "addr", c.Config.ServerAddr, "error", err)
			c.Server = nil
		}
	}

	theme.InitStyles(c.Config.DarkMode)
	c.RootView.Build(view.RootHandlers{
		Capture:       c.AnnotationPresenter.StartCapture,
		SelectionGrid: c.SelectGrid.OpenOrFocus,
		Export:        c.ExportPresenter.Export,
		EndSession:    c.AnnotationPresenter.EndSession,
		Exit:          a.exitHandler,
	})
	c.Loop = presenter.NewLoop(c.AnnotationPresenter, c.ExportPresenter, c.SessionPresenter, c.StatePresenter, a.scheduleUpdate)

	if c.Config.Debug {
		debug.Start(ctx, debugInterval, a.logger, c.Capturer.LogStats)
	}

	a.logger.Info("viewer markup started",
		"frame", c.Config.Frame,
		"store", c.Config.StorePath,
		"server", c.Config.ServerAddr,
		"policy", RedrawPolicy(c.Config).String(),
	)
	a.scheduleUpdate()
	App.Wait()
}

func (a *Desktop) update() {
	if a.exiting {
		return
	}
	a.c.Loop.Tick()
}

func (a *Desktop) scheduleUpdate() {
	// TclAfter keeps presenter ticks on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}

func (a *Desktop) exitHandler() {
	if a.exiting {
		return
	}
	a.exiting = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.AnnotationPresenter.EndSession()
	Destroy(App)
}

// shutdown releases services once the event loop has returned.
func (a *Desktop) shutdown() {
	c := a.c
	if a.cancel != nil {
		a.cancel()
	}
	if c.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := c.Server.Shutdown(ctx); err != nil {
			a.logger.Warn("review server shutdown", "error", err)
		}
		cancel()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			a.logger.Warn("markup store close", "error", err)
		}
	}
	c.Capturer.LogStats()
	a.logger.Info("viewer markup stopped")
}
