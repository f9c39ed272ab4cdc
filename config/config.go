package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soocke/viewer-markup/domain/cloud"
)

// EnvPrefix prefixes environment overrides, e.g. MARKUP_LOG_LEVEL or
// MARKUP_CLOUD_ACCENT.
const EnvPrefix = "MARKUP"

// Annotation holds interaction settings for the overlay.
type Annotation struct {
	// LivePreview draws the pending cloud while dragging.
	LivePreview bool `json:"live_preview" mapstructure:"live_preview"`
	// RedrawAllText redraws every record's text; false keeps only the most
	// recently edited text after a redraw.
	RedrawAllText bool `json:"redraw_all_text" mapstructure:"redraw_all_text"`
	// ClickTolerance is the pointer travel in pixels under which a
	// press/release pair counts as a click.
	ClickTolerance int `json:"click_tolerance" mapstructure:"click_tolerance"`
}

// Config holds runtime configuration for the markup app.
// Values come from defaults, an optional JSON/YAML file, MARKUP_* environment
// variables and command-line flags, in increasing precedence.
type Config struct {
	Debug     bool   `json:"debug" mapstructure:"debug"`
	LogLevel  string `json:"log_level" mapstructure:"log_level"`
	LogFormat string `json:"log_format" mapstructure:"log_format"`
	DarkMode  bool   `json:"dark_mode" mapstructure:"dark_mode"`

	// Selection rectangle persistence
	SelectionX int `json:"selection_x" mapstructure:"selection_x"`
	SelectionY int `json:"selection_y" mapstructure:"selection_y"`
	SelectionW int `json:"selection_w" mapstructure:"selection_w"`
	SelectionH int `json:"selection_h" mapstructure:"selection_h"`

	// Frame is an image file used instead of a screen capture.
	Frame string `json:"frame,omitempty" mapstructure:"frame"`

	Cloud      cloud.Style `json:"cloud" mapstructure:"cloud"`
	Annotation Annotation  `json:"annotation" mapstructure:"annotation"`

	ExportDir  string `json:"export_dir" mapstructure:"export_dir"`
	StorePath  string `json:"store_path" mapstructure:"store_path"`
	ServerAddr string `json:"server_addr" mapstructure:"server_addr"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:      false,
		LogLevel:   "info",
		LogFormat:  "json",
		Cloud:      cloud.DefaultStyle(),
		Annotation: Annotation{LivePreview: false, RedrawAllText: true, ClickTolerance: 3},
		ExportDir:  "markups",
		StorePath:  "markups.db",
		ServerAddr: "",
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("dark_mode", d.DarkMode)
	v.SetDefault("selection_x", d.SelectionX)
	v.SetDefault("selection_y", d.SelectionY)
	v.SetDefault("selection_w", d.SelectionW)
	v.SetDefault("selection_h", d.SelectionH)
	v.SetDefault("frame", d.Frame)

	v.SetDefault("cloud.accent", d.Cloud.Accent)
	v.SetDefault("cloud.preview", d.Cloud.Preview)
	v.SetDefault("cloud.text_color", d.Cloud.TextColor)
	v.SetDefault("cloud.background", d.Cloud.Background)
	v.SetDefault("cloud.line_width", d.Cloud.LineWidth)
	v.SetDefault("cloud.corner_radius", d.Cloud.CornerRadius)
	v.SetDefault("cloud.tail_width", d.Cloud.TailWidth)
	v.SetDefault("cloud.tail_height", d.Cloud.TailHeight)
	v.SetDefault("cloud.padding", d.Cloud.Padding)
	v.SetDefault("cloud.font_size", d.Cloud.FontSize)

	v.SetDefault("annotation.live_preview", d.Annotation.LivePreview)
	v.SetDefault("annotation.redraw_all_text", d.Annotation.RedrawAllText)
	v.SetDefault("annotation.click_tolerance", d.Annotation.ClickTolerance)

	v.SetDefault("export_dir", d.ExportDir)
	v.SetDefault("store_path", d.StorePath)
	v.SetDefault("server_addr", d.ServerAddr)
}

// Flags returns the command-line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("viewer-markup", pflag.ContinueOnError)
	fs.String("config", "config.json", "path to the configuration file")
	fs.String("frame", "", "annotate this image file instead of a screen capture")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("server-addr", "", "listen address of the review server, empty disables it")
	fs.Bool("debug", false, "enable debug loggers")
	return fs
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"frame":       "frame",
	"log-level":   "log_level",
	"server-addr": "server_addr",
	"debug":       "debug",
}

// Load reads the configuration at path. A missing file yields defaults.
// Flags that were set on fs override file and environment values; fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return DefaultConfig(), fmt.Errorf("config: bind flag %s: %w", name, err)
			}
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return DefaultConfig(), fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: decode: %w", err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		c.LogFormat = "json"
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionX, c.SelectionY, c.SelectionW, c.SelectionH = 0, 0, 0, 0
	}
	c.Cloud = c.Cloud.WithDefaults()
	if c.Annotation.ClickTolerance < 0 {
		c.Annotation.ClickTolerance = 0
	}
	if c.Annotation.ClickTolerance > 20 {
		c.Annotation.ClickTolerance = 20
	}
	if strings.TrimSpace(c.ExportDir) == "" {
		c.ExportDir = "markups"
	}
	if strings.TrimSpace(c.StorePath) == "" {
		c.StorePath = "markups.db"
	}
	return nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
