package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 20.0, cfg.Cloud.CornerRadius)
	assert.Equal(t, 30.0, cfg.Cloud.TailWidth)
	assert.Equal(t, 20.0, cfg.Cloud.TailHeight)
	assert.Equal(t, 2.0, cfg.Cloud.LineWidth)
	assert.Equal(t, 10.0, cfg.Cloud.Padding)
	assert.True(t, cfg.Annotation.RedrawAllText)
	assert.False(t, cfg.Annotation.LivePreview, "drag is restore-only unless enabled")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"log_level": "DEBUG",
		"selection_w": 320,
		"cloud": {"accent": "#112233", "corner_radius": 8},
		"annotation": {"redraw_all_text": false, "click_tolerance": 99}
	}`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 320, cfg.SelectionW)
	assert.Equal(t, "#112233", cfg.Cloud.Accent)
	assert.Equal(t, 8.0, cfg.Cloud.CornerRadius)
	assert.Equal(t, 16.0, cfg.Cloud.FontSize, "unset nested keys keep defaults")
	assert.False(t, cfg.Annotation.RedrawAllText)
	assert.Equal(t, 20, cfg.Annotation.ClickTolerance, "tolerance is clamped")
}

func TestLoad_EnvAndFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_addr": ":1000", "export_dir": "a"}`), 0o644))
	t.Setenv("MARKUP_EXPORT_DIR", "from-env")
	t.Setenv("MARKUP_CLOUD_PADDING", "4")

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--server-addr", "127.0.0.1:9000", "--frame", "shot.png"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, "shot.png", cfg.Frame)
	assert.Equal(t, "from-env", cfg.ExportDir)
	assert.Equal(t, 4.0, cfg.Cloud.Padding)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	cfg, err := Load(path, nil)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{LogLevel: "loud", LogFormat: "xml", SelectionW: -5, SelectionX: 3}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Zero(t, cfg.SelectionX)
	assert.Equal(t, "markups", cfg.ExportDir)
	assert.Equal(t, "#E8590C", cfg.Cloud.Accent)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.SelectionX, cfg.SelectionY, cfg.SelectionW, cfg.SelectionH = 10, 20, 300, 200
	cfg.Cloud.Accent = "#00FF00"
	require.NoError(t, cfg.Save(path))

	back, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
