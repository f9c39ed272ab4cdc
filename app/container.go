package app

import (
	"image"
	"log/slog"

	"github.com/soocke/viewer-markup/config"
	"github.com/soocke/viewer-markup/domain/annotation"
	"github.com/soocke/viewer-markup/domain/capture"
	"github.com/soocke/viewer-markup/domain/cloud"
	"github.com/soocke/viewer-markup/domain/markup"
	"github.com/soocke/viewer-markup/server"
	"github.com/soocke/viewer-markup/ui/model"
	"github.com/soocke/viewer-markup/ui/presenter"
	"github.com/soocke/viewer-markup/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config    *config.Config
	CfgPath   string
	Logger    *slog.Logger
	Capture   *model.CaptureModel
	Session   *model.SessionModel
	Selection *model.SelectionModel

	Capturer   *capture.Capturer
	Surface    capture.Surface
	Controller *annotation.Controller
	Store      *markup.Store  // nil when the store could not be opened
	Server     *server.Server // nil unless server_addr is set
	RootView   *view.RootView
	Overlay    *view.OverlayWindow
	Prompt     *view.PromptDialog
	SelectGrid view.SelectionOverlay

	// Presenters
	AnnotationPresenter *presenter.AnnotationPresenter
	ExportPresenter     *presenter.ExportPresenter
	SessionPresenter    *presenter.SessionPresenter
	StatePresenter      *presenter.StatePresenter
	Loop                *presenter.Loop
}

// RedrawPolicy maps the config flag to the controller policy.
func RedrawPolicy(cfg *config.Config) annotation.RedrawPolicy {
	if cfg.Annotation.RedrawAllText {
		return annotation.TextAll
	}
	return annotation.TextEditedOnly
}

// BuildContainer constructs all components. alive reports whether the main
// window still exists. Side-effects limited to opening the markup store.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger, alive func() bool) *AppContainer {
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}
	c.Capture = &model.CaptureModel{}
	c.Session = model.NewSessionModel()
	c.Selection = model.NewSelectionModel(selectionRect(cfg))
	c.Capturer = capture.NewCapturer(logger)
	if cfg.Frame != "" {
		c.Surface = capture.NewImageSurface(cfg.Frame)
	} else {
		c.Surface = capture.NewScreenSurface(c.Selection.Active)
	}
	c.Controller = annotation.NewController(nil, annotation.Options{
		LivePreview: cfg.Annotation.LivePreview,
		Policy:      RedrawPolicy(cfg),
	}, logger)

	var saver presenter.MarkupSaver
	if store, err := markup.Open(cfg.StorePath, logger); err != nil {
		logger.Error("markup store unavailable", "path", cfg.StorePath, "error", err)
	} else {
		c.Store = store
		saver = store
		if cfg.ServerAddr != "" {
			c.Server = server.New(store, logger)
		}
	}

	// Views (widgets are created later by RootView.Build and on demand)
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.Overlay = view.NewOverlayWindow(logger)
	c.Prompt = view.NewPromptDialog(logger)
	c.SelectGrid = view.NewSelectionOverlay(cfg, cfgPath, c.Selection, logger)

	// Presenters
	c.AnnotationPresenter = presenter.NewAnnotationPresenter(presenter.AnnotationDeps{
		Controller: c.Controller,
		Capturer:   c.Capturer,
		Surface:    func() capture.Surface { return c.Surface },
		NewCanvas: func(w, h int) (annotation.Canvas, error) {
			canvas, err := cloud.NewCanvas(w, h, cfg.Cloud, logger)
			if err != nil {
				return nil, err
			}
			return canvas, nil
		},
		Capture:        c.Capture,
		Overlay:        c.Overlay,
		Prompt:         c.Prompt,
		Message:        c.RootView,
		Preview:        c.RootView,
		Alive:          alive,
		ClickTolerance: cfg.Annotation.ClickTolerance,
		Logger:         logger,
	})
	c.Overlay.SetHandlers(view.OverlayHandlers{
		Press:   c.AnnotationPresenter.Press,
		Motion:  c.AnnotationPresenter.Motion,
		Release: c.AnnotationPresenter.Release,
		Leave:   c.AnnotationPresenter.Leave,
	})
	c.ExportPresenter = presenter.NewExportPresenter(c.AnnotationPresenter, saver,
		func() cloud.Style { return cfg.Cloud }, cfg.ExportDir, c.RootView, logger)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.AnnotationPresenter, c.RootView)
	c.StatePresenter = presenter.NewStatePresenter(c.AnnotationPresenter, c.RootView, c.RootView)
	return c
}

func selectionRect(cfg *config.Config) image.Rectangle {
	if cfg.SelectionW <= 0 || cfg.SelectionH <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
}
