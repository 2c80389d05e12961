package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanderheijden86/wsjfboard/internal/datasource"
	"github.com/vanderheijden86/wsjfboard/pkg/bubble"
	"github.com/vanderheijden86/wsjfboard/pkg/config"
	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/loader"
	"github.com/vanderheijden86/wsjfboard/pkg/version"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	input      string
	out        string
	chart      string
	format     string
	localeName string
	themePath  string
	pairing    string
	padding    string
	sortBy     string
	configPath string
	itemsDir   string
	highlight  string

	watch       bool
	noHooks     bool
	showVersion bool
	help        bool
}

func parseFlags(args []string, stderr io.Writer) (*flag.FlagSet, flags, error) {
	var f flags
	fs := flag.NewFlagSet("wsjf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.input, "input", "", "Backlog file or directory (JSON, JSONL or SQLite)")
	fs.StringVar(&f.out, "out", "", "Board sheet output path (.svg or .png)")
	fs.StringVar(&f.chart, "chart", "", "Cost chart output path (.svg or .png)")
	fs.StringVar(&f.format, "format", "", "Force output format: svg or png")
	fs.StringVar(&f.localeName, "locale", "", "Locale for labels and tooltips (en, de)")
	fs.StringVar(&f.themePath, "theme", "", "Theme YAML file")
	fs.StringVar(&f.pairing, "pairing", "", "Cluster edge pairing: largest or random")
	fs.StringVar(&f.padding, "padding", "", "Cluster padding: spacing token or number")
	fs.StringVar(&f.sortBy, "sort", "", "Processing order for the cost chart: rank, wsjf or input")
	fs.StringVar(&f.configPath, "config", "", "Config file (default: XDG config dir)")
	fs.StringVar(&f.highlight, "highlight", "", "Item id to highlight on the board and chart")
	fs.StringVar(&f.itemsDir, "items-dir", "", "Also write one cluster file per item and view into this directory")
	fs.BoolVar(&f.watch, "watch", false, "Re-render when the backlog changes")
	fs.BoolVar(&f.noHooks, "no-hooks", false, "Skip the hooks in .wsjf/hooks.yaml")
	fs.BoolVar(&f.showVersion, "version", false, "Show version")
	fs.BoolVar(&f.help, "help", false, "Show help")
	err := fs.Parse(args)
	return fs, f, err
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if f.help {
		fmt.Fprintln(stdout, "Usage: wsjf [options]")
		fmt.Fprintln(stdout, "\nRenders WSJF estimate clusters and the cost-of-delay chart for a backlog.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return exitOK
	}
	if f.showVersion {
		fmt.Fprintf(stdout, "wsjf %s\n", version.Version)
		return exitOK
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitUsage
	}
	applyFlags(&cfg, f)
	debug.Dump("config", cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	a, err := newApp(cfg, f.format, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	a.noHooks = f.noHooks
	a.highlight = f.highlight
	if err := a.reload(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, loader.ErrNoItems) || errors.Is(err, datasource.ErrNoSource) {
			fmt.Fprintln(stderr, "Point -input at a backlog file, or set "+loader.BacklogEnvVar+".")
		}
		return exitError
	}

	if f.watch {
		if err := a.watch(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
	}
	return exitOK
}

// loadConfig reads an explicit config file, or the XDG one when present.
// A missing or broken XDG config is not fatal.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg *config.Config, f flags) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Input, f.input)
	set(&cfg.Output.Board, f.out)
	set(&cfg.Output.Chart, f.chart)
	set(&cfg.Output.ItemsDir, f.itemsDir)
	set(&cfg.Locale, f.localeName)
	set(&cfg.Theme, f.themePath)
	set(&cfg.Layout.EdgePairing, f.pairing)
	set(&cfg.Layout.Padding, f.padding)
	set(&cfg.Chart.SortBy, f.sortBy)
	if f.localeName != "" {
		cfg.LocaleFile = ""
	}
	if cfg.Layout.EdgePairing == "" {
		cfg.Layout.EdgePairing = string(bubble.PairLargest)
	}
}
