// Package hooks runs user commands around a board render. Hooks are
// configured in .wsjf/hooks.yaml and run before the board and chart files
// are written (pre-export) or after (post-export).
package hooks

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HookPhase is the point of a render a hook runs at.
type HookPhase string

const (
	PreExport  HookPhase = "pre-export"
	PostExport HookPhase = "post-export"
)

// ErrorPolicy decides what a failing hook does to the render.
type ErrorPolicy string

const (
	// Fail aborts a pre-export phase and makes a post-export phase report
	// an error once every hook has run.
	Fail ErrorPolicy = "fail"
	// Continue records the failure in the summary only.
	Continue ErrorPolicy = "continue"
)

// defaultPolicy is Fail before files are written and Continue after.
func defaultPolicy(p HookPhase) ErrorPolicy {
	if p == PreExport {
		return Fail
	}
	return Continue
}

const (
	// DefaultTimeout bounds a hook without an explicit timeout.
	DefaultTimeout = 30 * time.Second
	// MaxTimeout caps configured timeouts.
	MaxTimeout = 10 * time.Minute
)

// ConfigDir is the project-local directory holding hooks.yaml.
const ConfigDir = ".wsjf"

// ConfigPath returns the hooks file of projectDir.
func ConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ConfigDir, "hooks.yaml")
}

// Hook is one configured command.
type Hook struct {
	Name    string
	Command string
	Timeout time.Duration
	Env     map[string]string
	OnError ErrorPolicy
}

// Config holds the hooks of both phases.
type Config struct {
	Hooks HooksByPhase `yaml:"hooks"`
}

// HooksByPhase lists hooks in run order per phase.
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty"`
}

// Phase returns the hooks of p; unknown phases have none.
func (c *Config) Phase(p HookPhase) []Hook {
	if c == nil {
		return nil
	}
	switch p {
	case PreExport:
		return c.Hooks.PreExport
	case PostExport:
		return c.Hooks.PostExport
	}
	return nil
}

// Empty reports whether no hook is configured.
func (c *Config) Empty() bool {
	return len(c.Phase(PreExport)) == 0 && len(c.Phase(PostExport)) == 0
}

// ExportContext describes the render a hook runs for. It reaches the
// command as WSJF_* environment variables.
type ExportContext struct {
	BoardPath      string
	ChartPath      string
	Format         string // empty when inferred per file
	ItemCount      int
	TotalDelayCost float64 // 0 for pre-export hooks
	Timestamp      time.Time
}

// envPrefix marks the variables ExportContext owns.
const envPrefix = "WSJF_"

// ToEnv returns the context as KEY=value pairs.
func (c ExportContext) ToEnv() []string {
	return []string{
		envPrefix + "BOARD_PATH=" + c.BoardPath,
		envPrefix + "CHART_PATH=" + c.ChartPath,
		envPrefix + "FORMAT=" + c.Format,
		envPrefix + "ITEM_COUNT=" + strconv.Itoa(c.ItemCount),
		envPrefix + "TOTAL_DELAY_COST=" + strconv.FormatFloat(c.TotalDelayCost, 'f', -1, 64),
		envPrefix + "TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// LoadConfig reads the hooks of projectDir. A missing file is an empty
// config. Hooks that cannot run are dropped and reported as warnings;
// malformed YAML is an error.
func LoadConfig(projectDir string) (*Config, []string, error) {
	path := ConfigPath(projectDir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read hooks: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var warnings []string
	cfg.Hooks.PreExport = normalize(cfg.Hooks.PreExport, PreExport, &warnings)
	cfg.Hooks.PostExport = normalize(cfg.Hooks.PostExport, PostExport, &warnings)
	return &cfg, warnings, nil
}

// normalize fills defaults and drops hooks without a command. Env entries
// that would shadow the export context are removed.
func normalize(hooks []Hook, phase HookPhase, warnings *[]string) []Hook {
	warn := func(format string, args ...any) {
		*warnings = append(*warnings, fmt.Sprintf(format, args...))
	}
	out := hooks[:0]
	for i, h := range hooks {
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		h.Command = strings.TrimSpace(h.Command)
		if h.Command == "" {
			warn("%s: empty command, skipped", h.Name)
			continue
		}
		switch {
		case h.Timeout <= 0:
			h.Timeout = DefaultTimeout
		case h.Timeout > MaxTimeout:
			warn("%s: timeout %s capped at %s", h.Name, h.Timeout, MaxTimeout)
			h.Timeout = MaxTimeout
		}
		switch h.OnError {
		case Fail, Continue:
		case "":
			h.OnError = defaultPolicy(phase)
		default:
			warn("%s: unknown on_error %q, using %q", h.Name, h.OnError, defaultPolicy(phase))
			h.OnError = defaultPolicy(phase)
		}
		for k := range h.Env {
			if strings.HasPrefix(k, envPrefix) {
				warn("%s: env %s is set by the export and was ignored", h.Name, k)
				delete(h.Env, k)
			}
		}
		out = append(out, h)
	}
	return out
}

// UnmarshalYAML reads a hook, accepting the timeout as a Go duration
// ("30s") or as bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout"`
		Env     map[string]string `yaml:"env"`
		OnError string            `yaml:"on_error"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	timeout, err := parseTimeout(raw.Timeout)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*h = Hook{
		Name:    strings.TrimSpace(raw.Name),
		Command: raw.Command,
		Timeout: timeout,
		Env:     raw.Env,
		OnError: ErrorPolicy(strings.ToLower(strings.TrimSpace(raw.OnError))),
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
