package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// SaveItemsToFile writes items to path, one JSON object per line, or as an
// indented JSON array when path ends in .json. The write is atomic (temp
// file + rename) so watchers never see a half-written backlog.
func SaveItemsToFile(path string, items []model.WorkItem) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	closed := false
	cleanup := func() {
		if !closed {
			_ = tmp.Close()
			closed = true
		}
		_ = os.Remove(tmpName)
	}

	enc := json.NewEncoder(tmp)
	if strings.HasSuffix(path, ".json") {
		recs := make([]Record, len(items))
		for i, it := range items {
			recs[i] = RecordOf(it)
		}
		enc.SetIndent("", "  ")
		if err := enc.Encode(recs); err != nil {
			cleanup()
			return fmt.Errorf("failed to encode backlog: %w", err)
		}
	} else {
		for _, it := range items {
			if err := enc.Encode(RecordOf(it)); err != nil {
				cleanup()
				return fmt.Errorf("failed to encode item %s: %w", it.ID, err)
			}
		}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	closed = true

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
