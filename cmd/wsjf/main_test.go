package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/colorprofile"
	"github.com/vanderheijden86/wsjfboard/pkg/config"
	"github.com/vanderheijden86/wsjfboard/pkg/loader"
	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/testutil"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
	"github.com/vanderheijden86/wsjfboard/pkg/watcher"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(loader.BacklogEnvVar, "")
	return dir
}

func TestRun_Version(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run(context.Background(), []string{"-version"}, &out, &errb); code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	if !strings.HasPrefix(out.String(), "wsjf v") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestRun_Help(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run(context.Background(), []string{"-help"}, &out, &errb); code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"Usage: wsjf", "-input", "-pairing", "-items-dir"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	dir := isolate(t)
	input := testutil.WriteBacklogFile(t, dir, "backlog.jsonl", testutil.WorkedExample())
	badTheme := filepath.Join(dir, "theme.yaml")
	if err := os.WriteFile(badTheme, []byte("colors: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"bad pairing", []string{"-input", input, "-pairing", "smallest"}},
		{"bad sort", []string{"-input", input, "-sort", "size"}},
		{"malformed theme", []string{"-input", input, "-theme", badTheme}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errb bytes.Buffer
			if code := run(context.Background(), tt.args, &out, &errb); code != exitUsage {
				t.Errorf("exit = %d, want %d (stderr: %s)", code, exitUsage, errb.String())
			}
		})
	}
}

func TestRun_MissingInput(t *testing.T) {
	dir := isolate(t)
	var out, errb bytes.Buffer
	code := run(context.Background(), []string{"-input", filepath.Join(dir, "nope.jsonl")}, &out, &errb)
	if code != exitError {
		t.Errorf("exit = %d, want %d", code, exitError)
	}
}

func TestRun_RendersOutputs(t *testing.T) {
	dir := isolate(t)
	input := testutil.WriteBacklogFile(t, dir, "backlog.jsonl", testutil.WorkedExample())
	board := filepath.Join(dir, "out", "board.svg")
	chart := filepath.Join(dir, "out", "chart.png")
	items := filepath.Join(dir, "items")

	var out, errb bytes.Buffer
	args := []string{"-input", input, "-out", board, "-chart", chart, "-items-dir", items}
	if code := run(context.Background(), args, &out, &errb); code != exitOK {
		t.Fatalf("exit = %d, stderr: %s", code, errb.String())
	}
	for _, p := range []string{board, chart} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}
	entries, err := os.ReadDir(items)
	if err != nil || len(entries) != 4 {
		t.Errorf("items dir has %d entries (err %v), want 4", len(entries), err)
	}
	for _, want := range []string{"Alpha", "Beta", "Total cost of delay: 10"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_DirectoryInputAndLocale(t *testing.T) {
	dir := isolate(t)
	testutil.WriteBacklogFile(t, dir, "backlog.jsonl", testutil.WorkedExample())

	var out, errb bytes.Buffer
	args := []string{
		"-input", dir,
		"-locale", "de",
		"-out", filepath.Join(dir, "b.svg"),
		"-chart", filepath.Join(dir, "c.svg"),
	}
	if code := run(context.Background(), args, &out, &errb); code != exitOK {
		t.Fatalf("exit = %d, stderr: %s", code, errb.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, "c.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Rolle") {
		t.Error("chart tooltips should be German")
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LocaleFile = "custom.yaml"
	applyFlags(&cfg, flags{out: "x.png", pairing: "random", localeName: "de", sortBy: "wsjf"})
	if cfg.Output.Board != "x.png" || cfg.Layout.EdgePairing != "random" || cfg.Chart.SortBy != "wsjf" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Locale != "de" || cfg.LocaleFile != "" {
		t.Errorf("-locale should override the locale file: %q %q", cfg.Locale, cfg.LocaleFile)
	}
	if cfg.Output.Chart != "wsjf-chart.svg" {
		t.Errorf("unset flag overrode chart output: %q", cfg.Output.Chart)
	}
}

func TestLoadInput(t *testing.T) {
	dir := isolate(t)
	if _, _, err := loadInput(dir); err == nil {
		t.Error("expected error for empty directory")
	}
	path := testutil.WriteBacklogFile(t, dir, "backlog.jsonl", testutil.WorkedExample())
	got, items, err := loadInput(dir)
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}
	if filepath.Base(got) != "backlog.jsonl" || len(items) != 2 {
		t.Errorf("loaded %d items from %q", len(items), got)
	}
	t.Setenv(loader.BacklogEnvVar, path)
	if got, _, _ := loadInput(""); got != path {
		t.Errorf("env override loaded %q", got)
	}
	if _, _, err := loadInput(filepath.Join(dir, "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderSummary(t *testing.T) {
	items := testutil.WorkedExample()
	items[0].Title = "A very long title that cannot possibly fit the narrow terminal"
	items[0].Rank, items[1].Rank = 2, 1
	items = append(items, model.WorkItem{ID: "C", Title: "Unsized"})

	out := renderSummary(items, 30, 60, colorprofile.NoTTY, theme.Default(), locale.Builtin("en"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header, 3 rows and total; got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "Beta") || !strings.Contains(lines[2], "A very") {
		t.Errorf("rows not in rank order:\n%s", out)
	}
	if !strings.Contains(lines[2], "…") {
		t.Errorf("long title not truncated: %q", lines[2])
	}
	if !strings.Contains(lines[2], "5") || !strings.Contains(lines[1], "1.67") {
		t.Errorf("WSJF scores missing:\n%s", out)
	}
	if !strings.Contains(lines[3], "-") {
		t.Errorf("unsized item should show '-': %q", lines[3])
	}
	if !strings.Contains(lines[4], "Total cost of delay: 30") {
		t.Errorf("total line = %q", lines[4])
	}
}

func TestCell(t *testing.T) {
	if got := cell("abc", 5, false); got != "abc  " {
		t.Errorf("left cell = %q", got)
	}
	if got := cell("abc", 5, true); got != "  abc" {
		t.Errorf("right cell = %q", got)
	}
	if got := cell("abcdefgh", 5, false); got != "abcd…" {
		t.Errorf("truncated cell = %q", got)
	}
}

func TestApp_WatchReloads(t *testing.T) {
	dir := isolate(t)
	t.Setenv(watcher.ForcePollEnvVar, "1")
	input := testutil.WriteBacklogFile(t, dir, "backlog.jsonl", testutil.WorkedExample())

	cfg := config.DefaultConfig()
	cfg.Input = input
	cfg.Output.Board = filepath.Join(dir, "board.svg")
	cfg.Output.Chart = filepath.Join(dir, "chart.svg")
	cfg.Watch.Debounce = 20 * time.Millisecond
	cfg.Watch.PollInterval = 20 * time.Millisecond

	var out, errb syncBuffer
	a, err := newApp(cfg, "", &out, &errb)
	if err != nil {
		t.Fatal(err)
	}
	a.width = func() int { return 80 }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.watch(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(errb.String(), "Watching") {
		if time.Now().After(deadline) {
			t.Fatalf("watch did not start: %s", errb.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	items := append(testutil.WorkedExample(), model.WorkItem{
		ID: "C", Title: "Gamma",
		Size:        model.MetricTriple{1, 1, 1},
		CostOfDelay: model.MetricTriple{1, 1, 1},
		Rank:        3,
	})
	testutil.WriteBacklogFile(t, dir, "backlog.jsonl", items)

	for !strings.Contains(errb.String(), "added C") {
		if time.Now().After(deadline) {
			t.Fatalf("no reload logged: %s", errb.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(out.String(), "Gamma") {
		t.Error("summary not re-printed after reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestRun_Hooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hooks use sh")
	}
	dir := isolate(t)
	input := testutil.WriteBacklogFile(t, dir, "backlog.jsonl", testutil.WorkedExample())
	if err := os.MkdirAll(filepath.Join(dir, ".wsjf"), 0o755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(dir, "total.txt")
	yaml := "hooks:\n  post-export:\n    - name: record\n      command: echo $WSJF_TOTAL_DELAY_COST > " + marker + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".wsjf", "hooks.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	args := []string{"-input", input, "-out", filepath.Join(dir, "b.svg"), "-chart", filepath.Join(dir, "c.svg")}
	var out, errb bytes.Buffer
	if code := run(context.Background(), append(args, "-no-hooks"), &out, &errb); code != exitOK {
		t.Fatalf("exit = %d: %s", code, errb.String())
	}
	if _, err := os.Stat(marker); err == nil {
		t.Fatal("-no-hooks still ran hooks")
	}

	if code := run(context.Background(), args, &out, &errb); code != exitOK {
		t.Fatalf("exit = %d: %s", code, errb.String())
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if strings.TrimSpace(string(data)) != "10" {
		t.Errorf("hook saw total %q, want 10", data)
	}
	if !strings.Contains(errb.String(), "Hooks: 1 succeeded, 0 failed") {
		t.Errorf("hook summary missing: %s", errb.String())
	}
}
