package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/colorprofile"

	"github.com/vanderheijden86/wsjfboard/internal/datasource"
	"github.com/vanderheijden86/wsjfboard/pkg/bubble"
	"github.com/vanderheijden86/wsjfboard/pkg/config"
	"github.com/vanderheijden86/wsjfboard/pkg/costchart"
	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/export"
	"github.com/vanderheijden86/wsjfboard/pkg/hooks"
	"github.com/vanderheijden86/wsjfboard/pkg/loader"
	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/metrics"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/priority"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
)

// app holds everything one render pass needs. reload and reprint may run
// from the watch loop and the resize debouncer at the same time.
type app struct {
	cfg    config.Config
	format string
	theme  *theme.Theme
	locale *locale.Bundle
	bubble bubble.Options
	sortBy priority.SortKey
	stdout io.Writer
	stderr io.Writer
	width  func() int
	// profile is the color support detected on stdout.
	profile colorprofile.Profile
	// hooksDir holds .wsjf/hooks.yaml; empty means the working directory.
	hooksDir  string
	noHooks   bool
	highlight string

	mu    sync.Mutex
	path  string
	items []model.WorkItem
	total float64
}

func newApp(cfg config.Config, format string, stdout, stderr io.Writer) (*app, error) {
	th, err := cfg.LoadTheme()
	if err != nil {
		return nil, err
	}
	lc, err := cfg.LoadLocale()
	if err != nil {
		return nil, err
	}
	bo, err := cfg.BubbleOptions(th)
	if err != nil {
		return nil, err
	}
	key, err := priority.ParseSortKey(cfg.Chart.SortBy)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		format:  format,
		theme:   th,
		locale:  lc,
		bubble:  bo,
		sortBy:  key,
		stdout:  stdout,
		stderr:  stderr,
		width:   terminalWidth,
		profile: colorprofile.Detect(stdout, os.Environ()),
	}, nil
}

// loadInput loads the configured input and returns the file it came from.
// An empty input means the WSJF_BACKLOG file, or discovery in the working
// directory.
func loadInput(input string) (string, []model.WorkItem, error) {
	if input == "" {
		input = "."
		if p := os.Getenv(loader.BacklogEnvVar); p != "" {
			input = p
		}
	}
	info, err := os.Stat(input)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		items, path, err := datasource.LoadItemsFromDir(input)
		return path, items, err
	}
	items, err := datasource.LoadItems(input)
	return input, items, err
}

// reload loads the backlog, logs what changed since the last load and
// re-renders every output.
func (a *app) reload(ctx context.Context) error {
	start := time.Now()
	path, items, err := loadInput(a.cfg.Input)
	if err != nil {
		return err
	}
	debug.LogTiming("load "+path, time.Since(start))
	items = priority.EnsureRanks(items)

	a.mu.Lock()
	prev := a.items
	a.path = path
	a.items = items
	a.mu.Unlock()

	if prev != nil {
		diff := datasource.DiffItems(prev, items)
		fmt.Fprintf(a.stderr, "Reloaded %s: %s\n", path, diff.Summary())
	}
	return a.render(ctx)
}

func (a *app) render(ctx context.Context) error {
	defer debug.LogEnterExit("render")()
	a.mu.Lock()
	items := a.items
	a.mu.Unlock()

	hctx := hooks.ExportContext{
		BoardPath: a.cfg.Output.Board,
		ChartPath: a.cfg.Output.Chart,
		Format:    a.format,
		ItemCount: len(items),
		Timestamp: time.Now(),
	}
	hx, err := hooks.RunHooks(a.hooksDir, hctx, a.noHooks)
	if err != nil {
		return fmt.Errorf("load hooks: %w", err)
	}
	if hx != nil {
		if err := hx.RunPreExport(); err != nil {
			fmt.Fprint(a.stderr, hx.Summary())
			return err
		}
	}

	if a.cfg.Output.Board != "" {
		err := export.SaveBoard(export.BoardOptions{
			Path:      a.cfg.Output.Board,
			Format:    a.format,
			Items:     items,
			Bubble:    a.bubble,
			Locale:    a.locale,
			Highlight: a.highlight,
		})
		if err != nil {
			return err
		}
	}

	var res costchart.Result
	chartOpts := export.ChartOptions{
		Path:      a.cfg.Output.Chart,
		Format:    a.format,
		Items:     items,
		SortBy:    a.sortBy,
		Highlight: a.highlight,
		Chart: costchart.Options{
			Width:  a.cfg.Chart.Width,
			Height: a.cfg.Chart.Height,
			Theme:  a.theme,
			Locale: a.locale,
		},
	}
	if a.cfg.Output.Chart != "" {
		var err error
		if res, err = export.SaveChart(chartOpts); err != nil {
			return err
		}
	} else {
		res = export.ChartResult(chartOpts)
	}

	if dir := a.cfg.Output.ItemsDir; dir != "" {
		paths, err := export.ExportItems(ctx, dir, items, export.ItemsOptions{Format: a.format, Bubble: a.bubble})
		if err != nil {
			return err
		}
		debug.Log("wsjf: wrote %d item files", len(paths))
	}

	a.mu.Lock()
	a.total = res.TotalDelayCost
	a.mu.Unlock()

	if hx != nil {
		hctx.TotalDelayCost = res.TotalDelayCost
		hx.SetContext(hctx)
		err := hx.RunPostExport()
		fmt.Fprint(a.stderr, hx.Summary())
		if err != nil {
			return err
		}
	}
	a.printSummary()
	logTimings()
	return nil
}

// logTimings dumps the render timings to the debug log.
func logTimings() {
	if !debug.Enabled() {
		return
	}
	debug.Section("timings")
	for _, st := range metrics.AllStats() {
		debug.Log("%-22s n=%d avg=%.2fms max=%.2fms total=%.2fms", st.Name, st.Count, st.AvgMs, st.MaxMs, st.TotalMs)
	}
}

func (a *app) printSummary() {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprint(a.stdout, renderSummary(a.items, a.total, a.width(), a.profile, a.theme, a.locale))
}
