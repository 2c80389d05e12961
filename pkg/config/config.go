// Package config handles loading and saving wsjf configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/wsjf/config.yaml
//   - Data:    ~/.local/share/wsjf/ (themes, locale bundles)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/wsjfboard/pkg/bubble"
	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/priority"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
)

const appName = "wsjf"

// LayoutConfig holds the cluster layout knobs.
type LayoutConfig struct {
	EdgePairing       string  `yaml:"edge_pairing,omitempty"` // largest, random
	Padding           string  `yaml:"padding,omitempty"`      // spacing token or number
	ClusterSize       float64 `yaml:"cluster_size,omitempty"`
	PlaceholderRadius float64 `yaml:"placeholder_radius,omitempty"`
}

// ChartConfig sizes the cost chart and picks the processing order.
type ChartConfig struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	SortBy string  `yaml:"sort_by,omitempty"` // rank, wsjf, input
}

// OutputConfig names the files written by default.
type OutputConfig struct {
	Board    string `yaml:"board,omitempty"`
	Chart    string `yaml:"chart,omitempty"`
	ItemsDir string `yaml:"items_dir,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Input      string       `yaml:"input,omitempty"`
	Locale     string       `yaml:"locale,omitempty"`
	LocaleFile string       `yaml:"locale_file,omitempty"`
	Theme      string       `yaml:"theme,omitempty"` // path to a theme YAML file
	Layout     LayoutConfig `yaml:"layout,omitempty"`
	Chart      ChartConfig  `yaml:"chart,omitempty"`
	Output     OutputConfig `yaml:"output,omitempty"`
	Watch      WatchConfig  `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Locale: "en",
		Layout: LayoutConfig{
			EdgePairing: string(bubble.PairLargest),
			Padding:     "sm",
			ClusterSize: 120,
		},
		Chart: ChartConfig{
			Width:  640,
			Height: 360,
			SortBy: string(priority.SortRank),
		},
		Output: OutputConfig{
			Board: "wsjf-board.svg",
			Chart: "wsjf-chart.svg",
		},
		Watch: WatchConfig{
			Debounce:     200 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// DataDir returns the XDG data directory.
func DataDir() string { return xdgDir("XDG_DATA_HOME", ".local", "share") }

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Input = expandHome(cfg.Input)
	cfg.Theme = expandHome(cfg.Theme)
	cfg.LocaleFile = expandHome(cfg.LocaleFile)
	cfg.Output.Board = expandHome(cfg.Output.Board)
	cfg.Output.Chart = expandHome(cfg.Output.Chart)
	cfg.Output.ItemsDir = expandHome(cfg.Output.ItemsDir)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
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
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
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

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := bubble.ParseEdgePairing(c.Layout.EdgePairing); err != nil {
		return err
	}
	if _, err := priority.ParseSortKey(c.Chart.SortBy); err != nil {
		return err
	}
	if c.Layout.ClusterSize < 0 || c.Chart.Width < 0 || c.Chart.Height < 0 {
		return fmt.Errorf("sizes must not be negative")
	}
	return nil
}

// LoadTheme returns the default theme merged with the configured theme file.
func (c Config) LoadTheme() (*theme.Theme, error) {
	if c.Theme == "" {
		return theme.Default(), nil
	}
	return theme.Load(c.Theme)
}

// LoadLocale returns the configured bundle: the locale file when set,
// otherwise the builtin bundle for Locale.
func (c Config) LoadLocale() (*locale.Bundle, error) {
	if c.LocaleFile != "" {
		return locale.Load(c.LocaleFile)
	}
	return locale.Builtin(c.Locale), nil
}

// BubbleOptions builds cluster layout options from the config.
func (c Config) BubbleOptions(th *theme.Theme) (bubble.Options, error) {
	pairing, err := bubble.ParseEdgePairing(c.Layout.EdgePairing)
	if err != nil {
		return bubble.Options{}, err
	}
	opts := bubble.DefaultOptions()
	opts.EdgePairing = pairing
	if c.Layout.Padding != "" {
		opts.Padding = c.Layout.Padding
	}
	if c.Layout.ClusterSize > 0 {
		opts.Size = c.Layout.ClusterSize
	}
	opts.PlaceholderRadius = c.Layout.PlaceholderRadius
	if th != nil {
		opts.Theme = th
	}
	return opts, nil
}

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
