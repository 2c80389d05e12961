// Package export writes rendered boards and cost charts to SVG or PNG files.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/wsjfboard/pkg/board"
	"github.com/vanderheijden86/wsjfboard/pkg/bubble"
	"github.com/vanderheijden86/wsjfboard/pkg/costchart"
	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/metrics"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/priority"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
)

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

var (
	// ErrUnsupportedFormat is returned for formats other than svg and png.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNothingToExport is returned when there are no items to draw.
	ErrNothingToExport = errors.New("no items to export")
)

// ResolveFormat picks the output format: the explicit format when set,
// otherwise the path's extension. A path without an extension gets ".svg"
// appended.
func ResolveFormat(path, format string) (string, Format, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			f = string(FormatSVG)
		case ".png":
			f = string(FormatPNG)
		default:
			f = string(FormatSVG)
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if f != string(FormatSVG) && f != string(FormatPNG) {
		return path, "", fmt.Errorf("%w %q (want svg or png)", ErrUnsupportedFormat, f)
	}
	if path == "" {
		return path, "", fmt.Errorf("output path is required")
	}
	return path, Format(f), nil
}

// SaveScene writes s to path in format.
func SaveScene(path string, f Format, s *scene.Scene) error {
	defer metrics.Timer(metrics.FileExport)()
	switch f {
	case FormatSVG:
		return scene.SaveSVG(path, s)
	case FormatPNG:
		return scene.SavePNG(path, s)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
	}
}

// BoardOptions controls board sheet export.
type BoardOptions struct {
	Path    string // Output path; format inferred from extension when Format empty
	Format  string // "svg" or "png" (case-insensitive)
	Items   []model.WorkItem
	Bubble  bubble.Options
	Columns int
	Locale  *locale.Bundle
	// Highlight marks every node of this item id.
	Highlight string
	// Fonts supplies final label metrics. Nil uses the bitmap face the PNG
	// writer draws with.
	Fonts bubble.FontSource
}

// BoardScene renders both cluster views of every item into a sheet. Label
// re-centering and row equalization run through a FrameQueue that is
// flushed before the sheet is composed.
func BoardScene(opts BoardOptions) *scene.Scene {
	sheet := NewSheet(opts.Columns, opts.Bubble.Size, opts.Bubble.Theme, opts.Locale)
	frames := NewFrameQueue()
	r := bubble.NewRenderer(opts.Bubble, bubble.Host{
		Paint: frames,
		Fonts: opts.Fonts,
		Rows:  sheet,
	})
	sheet.ClusterSize = r.Options().Size
	sheet.Theme = r.Options().Theme

	for _, it := range opts.Items {
		sheet.Add(it,
			r.RenderItem(it, model.ViewSize),
			r.RenderItem(it, model.ViewCostOfDelay))
	}
	ran := frames.Flush()
	debug.Log("export: board of %d items, %d deferred callbacks", len(opts.Items), ran)
	s := sheet.Scene()
	board.Mark(s, opts.Highlight, true)
	return s
}

// SaveBoard renders the board sheet and writes it to opts.Path.
func SaveBoard(opts BoardOptions) error {
	if len(opts.Items) == 0 {
		return ErrNothingToExport
	}
	path, f, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	if err := SaveScene(path, f, BoardScene(opts)); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// ChartOptions controls cost chart export.
type ChartOptions struct {
	Path   string
	Format string
	Items  []model.WorkItem
	SortBy priority.SortKey
	Chart  costchart.Options
	// Highlight marks every node of this item id.
	Highlight string
}

// ChartResult simulates the items in SortBy order and renders the chart.
func ChartResult(opts ChartOptions) costchart.Result {
	b := board.New(board.Config{
		Items: opts.Items,
		Chart: opts.Chart,
		State: board.State{SortBy: opts.SortBy, Highlighted: opts.Highlight},
	})
	out, err := b.Dispatch(board.RenderChart{})
	if err != nil || out.Chart == nil {
		return costchart.Result{}
	}
	return *out.Chart
}

// SaveChart renders the cost chart and writes it to opts.Path. An empty
// backlog is still written, as the no-data chart.
func SaveChart(opts ChartOptions) (costchart.Result, error) {
	path, f, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return costchart.Result{}, err
	}
	res := ChartResult(opts)
	if err := SaveScene(path, f, res.Scene); err != nil {
		return res, fmt.Errorf("save chart: %w", err)
	}
	return res, nil
}
