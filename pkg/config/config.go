// Package config handles loading and saving buildline configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/buildline/config.yaml
//
// Values are layered by viper: built-in defaults, then the config file, then
// BUILDLINE_* environment variables (BUILDLINE_UI_BAR_WIDTH for ui.bar_width),
// then flags bound by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "BUILDLINE"

// UIConfig holds TUI preference settings.
type UIConfig struct {
	// BarWidth caps the widest bar in terminal cells; 0 fits the terminal.
	BarWidth      int    `mapstructure:"bar_width" yaml:"bar_width"`
	ShowClearHint bool   `mapstructure:"show_clear_hint" yaml:"show_clear_hint"`
	Theme         string `mapstructure:"theme" yaml:"theme"` // dark, light, auto
}

// WatchConfig controls live reload of the input document.
type WatchConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// ExportConfig holds defaults for the export commands.
type ExportConfig struct {
	Dir         string   `mapstructure:"dir" yaml:"dir"`
	Formats     []string `mapstructure:"formats" yaml:"formats"`
	PNGFitWidth int      `mapstructure:"png_fit_width" yaml:"png_fit_width,omitempty"`
}

// Config is the top-level configuration for buildline.
type Config struct {
	// Input is the default document; empty means discover.
	Input  string       `mapstructure:"input" yaml:"input,omitempty"`
	UI     UIConfig     `mapstructure:"ui" yaml:"ui"`
	Watch  WatchConfig  `mapstructure:"watch" yaml:"watch"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			BarWidth:      0,
			ShowClearHint: true,
			Theme:         "auto",
		},
		Watch: WatchConfig{
			Enabled:      true,
			Debounce:     200 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
		Export: ExportConfig{
			Dir:     ".",
			Formats: []string{"html", "svg", "png", "sqlite", "markdown"},
		},
	}
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("input", d.Input)
	v.SetDefault("ui.bar_width", d.UI.BarWidth)
	v.SetDefault("ui.show_clear_hint", d.UI.ShowClearHint)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.poll_interval", d.Watch.PollInterval)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.formats", d.Export.Formats)
	v.SetDefault("export.png_fit_width", d.Export.PNGFitWidth)
}

// ConfigDir returns the XDG config directory for buildline.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "buildline")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "buildline")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// NewViper returns a viper instance with defaults and env overrides set up.
// path, when non-empty, replaces the XDG config file. A missing file is not
// an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = ConfigPath()
	}
	if path == "" {
		return v, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		return v, fmt.Errorf("reading config: %w", err)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return v, fmt.Errorf("parsing config: %w", err)
	}
	return v, nil
}

// FromViper decodes v into a Config.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decoding config: %w", err)
	}
	cfg.Input = expandHome(cfg.Input)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	return cfg, nil
}

// Load reads the config from the XDG config directory.
// Returns DefaultConfig (plus env overrides) if the file doesn't exist.
func Load() (Config, error) {
	return LoadFrom("")
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return DefaultConfig(), err
	}
	return FromViper(v)
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// HasFormat reports whether name is among the configured export formats.
func (c Config) HasFormat(name string) bool {
	for _, f := range c.Export.Formats {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
