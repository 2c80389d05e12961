package datasource

import (
	"fmt"

	"github.com/vanderheijden86/wsjfboard/pkg/loader"
	"github.com/vanderheijden86/wsjfboard/pkg/metrics"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// LoadItems loads a backlog file of any supported type. It fails with
// loader.ErrNoItems when the file holds no valid item.
func LoadItems(path string) ([]model.WorkItem, error) {
	src, err := Detect(path)
	if err != nil {
		return nil, err
	}
	items, err := LoadFromSource(src)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", path, loader.ErrNoItems)
	}
	return items, nil
}

// LoadItemsFromDir discovers the sources in dir and loads the best one,
// falling back to plain backlog-file lookup. It returns the items and the
// path they were loaded from.
func LoadItemsFromDir(dir string) ([]model.WorkItem, string, error) {
	sources, err := DiscoverSources(DiscoveryOptions{Dir: dir, ValidateAfterDiscovery: true})
	if err == nil {
		if best, err := SelectBestSource(sources); err == nil {
			items, err := LoadFromSource(best)
			return items, best.Path, err
		}
	}
	path, err := loader.FindBacklogPath(dir)
	if err != nil {
		return nil, "", err
	}
	items, err := LoadItems(path)
	return items, path, err
}

// LoadFromSource loads items from a specific DataSource, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source DataSource) ([]model.WorkItem, error) {
	defer metrics.Timer(metrics.BacklogLoad)()

	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadItems()
	case SourceTypeJSONL, SourceTypeJSON:
		return loader.LoadItemsFromFile(source.Path)
	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
