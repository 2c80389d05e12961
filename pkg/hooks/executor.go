package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// maxSummaryOutput caps the stderr excerpt shown per failed hook.
const maxSummaryOutput = 200

// Result is the outcome of one hook run.
type Result struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the hooks of a Config with one ExportContext.
type Executor struct {
	config   *Config
	context  ExportContext
	results  []Result
	warnings []string
}

// NewExecutor creates an executor.
func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, context: ctx}
}

// SetContext replaces the export context, e.g. once the chart total is known.
func (e *Executor) SetContext(ctx ExportContext) {
	e.context = ctx
}

// RunPreExport runs pre-export hooks in order and stops at the first
// failing hook whose policy is not Continue.
func (e *Executor) RunPreExport() error {
	for _, h := range e.config.Phase(PreExport) {
		r := e.run(h, PreExport)
		if !r.Success && h.OnError != Continue {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook and returns the first failure
// of a hook whose policy is Fail.
func (e *Executor) RunPostExport() error {
	var first error
	for _, h := range e.config.Phase(PostExport) {
		r := e.run(h, PostExport)
		if !r.Success && h.OnError == Fail && first == nil {
			first = fmt.Errorf("post-export hook %q failed: %w", h.Name, r.Error)
		}
	}
	return first
}

// Results returns the results of all hooks run so far.
func (e *Executor) Results() []Result {
	return append([]Result(nil), e.results...)
}

func (e *Executor) run(h Hook, phase HookPhase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	env := append(os.Environ(), e.context.ToEnv()...)
	lookup := envLookup(env)
	for k, v := range h.Env {
		env = append(env, k+"="+os.Expand(v, lookup))
	}

	cmd := shellCommand(ctx, h.Command)
	cmd.Env = env
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
		Error:    err,
	}
	if ctx.Err() == context.DeadlineExceeded {
		r.Success = false
		r.Error = fmt.Errorf("timed out after %s", timeout)
	}
	if !r.Success && r.Stderr == "" && r.Error != nil {
		r.Stderr = r.Error.Error()
	}
	e.results = append(e.results, r)
	return r
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// envLookup resolves names against env, later entries winning.
func envLookup(env []string) func(string) string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return func(name string) string { return m[name] }
}

// Warnings returns the problems found while loading the hooks.
func (e *Executor) Warnings() []string {
	return e.warnings
}

// Summary describes the hooks run so far and any load warnings; empty when
// there is nothing to report.
func (e *Executor) Summary() string {
	var b strings.Builder
	for _, w := range e.warnings {
		fmt.Fprintf(&b, "Hooks warning: %s\n", w)
	}
	if len(e.results) == 0 {
		return b.String()
	}
	ok := 0
	for _, r := range e.results {
		if r.Success {
			ok++
		}
	}
	fmt.Fprintf(&b, "Hooks: %d succeeded, %d failed\n", ok, len(e.results)-ok)
	for _, r := range e.results {
		if r.Success {
			continue
		}
		fmt.Fprintf(&b, "  x %s (%s): %v\n", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&b, "    stderr: %s\n", truncate(r.Stderr, maxSummaryOutput))
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RunHooks loads the hooks of projectDir. It returns a nil executor when
// noHooks is set or the file yields neither hooks nor warnings.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	if projectDir == "" {
		projectDir = "."
	}
	cfg, warnings, err := LoadConfig(projectDir)
	if err != nil {
		return nil, err
	}
	if cfg.Empty() && len(warnings) == 0 {
		return nil, nil
	}
	e := NewExecutor(cfg, ctx)
	e.warnings = warnings
	return e, nil
}
