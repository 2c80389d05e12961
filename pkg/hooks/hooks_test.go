package hooks

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeHooksFile(t *testing.T, dir, content string) {
	t.Helper()
	d := filepath.Join(dir, ConfigDir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d, "hooks.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write hooks.yaml: %v", err)
	}
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hooks tests use sh")
	}
}

func TestExportContextToEnv(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	env := ExportContext{
		BoardPath:      "board.svg",
		ChartPath:      "chart.png",
		ItemCount:      4,
		TotalDelayCost: 12.5,
		Timestamp:      ts,
	}.ToEnv()
	want := []string{
		"WSJF_BOARD_PATH=board.svg",
		"WSJF_CHART_PATH=chart.png",
		"WSJF_FORMAT=",
		"WSJF_ITEM_COUNT=4",
		"WSJF_TOTAL_DELAY_COST=12.5",
		"WSJF_TIMESTAMP=2026-01-02T03:04:05Z",
	}
	if strings.Join(env, "\n") != strings.Join(want, "\n") {
		t.Errorf("ToEnv =\n%s\nwant\n%s", strings.Join(env, "\n"), strings.Join(want, "\n"))
	}
}

func TestLoadConfig(t *testing.T) {
	tmp := t.TempDir()
	cfg, warnings, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if !cfg.Empty() || len(warnings) != 0 {
		t.Errorf("no hooks expected, got %+v %v", cfg, warnings)
	}

	writeHooksFile(t, tmp, `
hooks:
  pre-export:
    - command: echo pre
      timeout: 5
  post-export:
    - name: publish
      command: echo post
      timeout: 2m
    - command: "   "
`)
	cfg, warnings, err = LoadConfig(tmp)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	pre := cfg.Phase(PreExport)
	if len(pre) != 1 || pre[0].Name != "pre-export-1" || pre[0].OnError != Fail || pre[0].Timeout != 5*time.Second {
		t.Errorf("pre hooks = %+v", pre)
	}
	post := cfg.Phase(PostExport)
	if len(post) != 1 || post[0].Name != "publish" || post[0].OnError != Continue || post[0].Timeout != 2*time.Minute {
		t.Errorf("post hooks = %+v", post)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "empty command") {
		t.Errorf("expected one warning for the empty command, got %v", warnings)
	}
	if cfg.Phase("mid-export") != nil {
		t.Error("unknown phase should have no hooks")
	}
}

func TestLoadConfig_Normalizes(t *testing.T) {
	tmp := t.TempDir()
	writeHooksFile(t, tmp, `
hooks:
  post-export:
    - name: upload
      command: " ./upload.sh "
      timeout: 1h
      on_error: Retry
      env:
        WSJF_CHART_PATH: elsewhere.svg
        BUCKET: boards
    - name: notify
      command: ./notify.sh
      on_error: FAIL
`)
	cfg, warnings, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	post := cfg.Phase(PostExport)
	if len(post) != 2 {
		t.Fatalf("post hooks = %+v", post)
	}
	up := post[0]
	if up.Command != "./upload.sh" || up.Timeout != MaxTimeout || up.OnError != Continue {
		t.Errorf("upload = %+v", up)
	}
	if _, ok := up.Env["WSJF_CHART_PATH"]; ok || up.Env["BUCKET"] != "boards" {
		t.Errorf("env = %v, export variables must not be overridden", up.Env)
	}
	if post[1].OnError != Fail {
		t.Errorf("on_error should be case-insensitive, got %q", post[1].OnError)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %v, want timeout cap, policy and env", warnings)
	}
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	for _, timeout := range []string{"soon", "NaN", "-3"} {
		tmp := t.TempDir()
		writeHooksFile(t, tmp, "hooks:\n  pre-export:\n    - command: x\n      timeout: "+timeout+"\n")
		if _, _, err := LoadConfig(tmp); err == nil {
			t.Errorf("timeout %q: expected error", timeout)
		}
	}
}

func TestExecutor_EnvAndOutput(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("WSJF_HOOK_TEST", "expanded")
	cfg := &Config{Hooks: HooksByPhase{PostExport: []Hook{{
		Name:    "env",
		Command: `echo "$WSJF_CHART_PATH $WSJF_TOTAL_DELAY_COST $CUSTOM"`,
		Env:     map[string]string{"CUSTOM": "${WSJF_HOOK_TEST}"},
		Timeout: 5 * time.Second,
	}}}}
	e := NewExecutor(cfg, ExportContext{})
	e.SetContext(ExportContext{ChartPath: "c.svg", TotalDelayCost: 10})
	if err := e.RunPostExport(); err != nil {
		t.Fatalf("RunPostExport: %v", err)
	}
	res := e.Results()
	if len(res) != 1 || !res[0].Success || res[0].Stdout != "c.svg 10 expanded" {
		t.Errorf("results = %+v", res)
	}
}

func TestExecutor_PreExportStopsOnFail(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{PreExport: []Hook{
		{Name: "bad", Command: "exit 3", OnError: "fail", Timeout: 5 * time.Second},
		{Name: "never", Command: "echo never", OnError: "fail", Timeout: 5 * time.Second},
	}}}
	e := NewExecutor(cfg, ExportContext{})
	if err := e.RunPreExport(); err == nil {
		t.Fatal("expected error")
	}
	if n := len(e.Results()); n != 1 {
		t.Errorf("ran %d hooks, want 1", n)
	}
}

func TestExecutor_PostExportRunsAll(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{PostExport: []Hook{
		{Name: "bad", Command: "echo boom 1>&2; exit 1", OnError: "continue", Timeout: 5 * time.Second},
		{Name: "good", Command: "echo ok", OnError: "continue", Timeout: 5 * time.Second},
	}}}
	e := NewExecutor(cfg, ExportContext{})
	if err := e.RunPostExport(); err != nil {
		t.Errorf("continue hooks should not fail the export: %v", err)
	}
	res := e.Results()
	if len(res) != 2 || res[0].Success || res[0].Stderr != "boom" || res[1].Stdout != "ok" {
		t.Errorf("results = %+v", res)
	}
	summary := e.Summary()
	if !strings.Contains(summary, "1 succeeded, 1 failed") || !strings.Contains(summary, "stderr: boom") {
		t.Errorf("summary = %q", summary)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{PostExport: []Hook{
		{Name: "slow", Command: "sleep 5", OnError: "fail", Timeout: 100 * time.Millisecond},
	}}}
	e := NewExecutor(cfg, ExportContext{})
	if err := e.RunPostExport(); err == nil {
		t.Fatal("expected timeout error")
	}
	r := e.Results()[0]
	if r.Success || r.Duration < 100*time.Millisecond {
		t.Errorf("result = %+v", r)
	}
}

func TestSummary_TruncatesStderr(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{PostExport: []Hook{
		{Name: "noisy", Command: "printf '%0300d' 0 1>&2; exit 1", OnError: "continue", Timeout: time.Second},
	}}}
	e := NewExecutor(cfg, ExportContext{})
	_ = e.RunPostExport()
	for _, line := range strings.Split(e.Summary(), "\n") {
		if strings.Contains(line, "stderr:") && len(line) > 230 {
			t.Fatalf("stderr line not truncated: %d", len(line))
		}
	}
	if !strings.Contains(e.Summary(), "...") {
		t.Error("expected ellipsis")
	}
}

func TestRunHooks(t *testing.T) {
	tmp := t.TempDir()
	if e, err := RunHooks(tmp, ExportContext{}, false); e != nil || err != nil {
		t.Errorf("no config: e=%v err=%v", e, err)
	}
	writeHooksFile(t, tmp, "hooks:\n  post-export:\n    - command: echo hi\n")
	if e, err := RunHooks(tmp, ExportContext{}, true); e != nil || err != nil {
		t.Errorf("noHooks should short-circuit: e=%v err=%v", e, err)
	}
	e, err := RunHooks(tmp, ExportContext{}, false)
	if err != nil || e == nil {
		t.Fatalf("RunHooks: e=%v err=%v", e, err)
	}
	if e.Summary() != "" {
		t.Error("summary should be empty before any run")
	}

	writeHooksFile(t, tmp, "hooks:\n  post-export:\n    - command: echo hi\n      on_error: maybe\n")
	e, err = RunHooks(tmp, ExportContext{}, false)
	if err != nil || e == nil {
		t.Fatalf("RunHooks: e=%v err=%v", e, err)
	}
	if len(e.Warnings()) != 1 || !strings.Contains(e.Summary(), "Hooks warning:") {
		t.Errorf("load warnings not reported: %q", e.Summary())
	}
}
