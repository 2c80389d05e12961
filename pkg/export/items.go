package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/wsjfboard/pkg/bubble"
	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// DefaultExportLimit bounds concurrent per-item renders.
const DefaultExportLimit = 8

// ItemsOptions controls per-item export.
type ItemsOptions struct {
	Format string // "svg" (default) or "png"
	Bubble bubble.Options
	Limit  int
}

// ItemPath returns the file ExportItems writes for one view of an item.
func ItemPath(dir, id string, v model.View, f Format) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", safeName(id), v, f))
}

// ExportItems writes one cluster file per item and view into dir, rendering
// concurrently. It returns the written paths in item order, size view first.
func ExportItems(ctx context.Context, dir string, items []model.WorkItem, opts ItemsOptions) ([]string, error) {
	if len(items) == 0 {
		return nil, ErrNothingToExport
	}
	f := FormatSVG
	if opts.Format != "" {
		_, rf, err := ResolveFormat(dir, opts.Format)
		if err != nil {
			return nil, err
		}
		f = rf
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultExportLimit
	}
	r := bubble.NewRenderer(opts.Bubble, bubble.DefaultHost())

	views := []model.View{model.ViewSize, model.ViewCostOfDelay}
	paths := make([]string, len(items)*len(views))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, it := range items {
		for j, v := range views {
			idx := i*len(views) + j
			path := ItemPath(dir, it.ID, v, f)
			paths[idx] = path
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := SaveScene(path, f, r.RenderItem(it, v)); err != nil {
					return fmt.Errorf("export %s/%s: %w", it.ID, v, err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	debug.Log("export: wrote %d item files to %s", len(paths), dir)
	return paths, nil
}

// safeName maps an item id to a file name component.
func safeName(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
