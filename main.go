package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/gg"
	"github.com/spf13/pflag"

	"github.com/soocke/viewer-markup/app"
	"github.com/soocke/viewer-markup/config"
)

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfgPath, _ := fs.GetString("config")

	cfg, err := config.Load(cfgPath, fs)
	logger := NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger.Warn("using default config", "path", cfgPath, "error", err)
	}
	gg.SetLogger(logger.With("component", "gg"))

	application := app.NewApp("Viewer Markup", 900, 640, cfg, cfgPath, logger)
	application.Start()
}
