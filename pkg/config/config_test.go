package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.Theme != "auto" {
		t.Errorf("expected theme 'auto', got %q", cfg.UI.Theme)
	}
	if !cfg.UI.ShowClearHint {
		t.Error("expected clear hint on by default")
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("unexpected watch defaults: %+v", cfg.Watch)
	}
	if !cfg.HasFormat("SQLite") || cfg.HasFormat("pdf") {
		t.Errorf("unexpected formats: %v", cfg.Export.Formats)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
input: ~/project/Logs/compilation_timeline.json
ui:
  bar_width: 60
  theme: light
watch:
  enabled: false
  debounce: 1s
export:
  dir: /tmp/out
  formats: [html, png]
  png_fit_width: 1600
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "project/Logs/compilation_timeline.json"); cfg.Input != want {
		t.Errorf("expected expanded input %q, got %q", want, cfg.Input)
	}
	if cfg.UI.BarWidth != 60 || cfg.UI.Theme != "light" {
		t.Errorf("unexpected ui: %+v", cfg.UI)
	}
	// Unset keys keep their defaults.
	if !cfg.UI.ShowClearHint {
		t.Error("show_clear_hint should keep its default")
	}
	if cfg.Watch.Enabled || cfg.Watch.Debounce != time.Second {
		t.Errorf("unexpected watch: %+v", cfg.Watch)
	}
	if cfg.Watch.PollInterval != 2*time.Second {
		t.Errorf("poll interval = %v, want default 2s", cfg.Watch.PollInterval)
	}
	if !reflect.DeepEqual(cfg.Export.Formats, []string{"html", "png"}) || cfg.Export.PNGFitWidth != 1600 {
		t.Errorf("unexpected export: %+v", cfg.Export)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BUILDLINE_UI_THEME", "dark")
	t.Setenv("BUILDLINE_WATCH_DEBOUNCE", "750ms")
	t.Setenv("BUILDLINE_UI_BAR_WIDTH", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", cfg.UI.Theme)
	}
	if cfg.Watch.Debounce != 750*time.Millisecond {
		t.Errorf("debounce = %v, want 750ms", cfg.Watch.Debounce)
	}
	if cfg.UI.BarWidth != 42 {
		t.Errorf("bar width = %d, want 42", cfg.UI.BarWidth)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Input = "/data/timeline.json"
	cfg.UI.Theme = "light"
	cfg.Watch.PollInterval = 5 * time.Second
	cfg.Export.Formats = []string{"sqlite"}

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, cfg)
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := ConfigDir(); got != "/custom/config/buildline" {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigPath(); got != "/custom/config/buildline/config.yaml" {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		in, want string
	}{
		{"~/x", filepath.Join(home, "x")},
		{"/abs", "/abs"},
		{"rel", "rel"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandHome(tt.in); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
