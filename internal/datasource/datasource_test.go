package datasource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/wsjfboard/pkg/loader"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

func sampleItems() []model.WorkItem {
	return []model.WorkItem{
		{ID: "B", Title: "Login", Size: model.MetricTriple{1, 2, 3}, CostOfDelay: model.MetricTriple{3, 2, 1}, Color: "blue", Rank: 2},
		{ID: "A", Title: "Checkout", Size: model.MetricTriple{1, 0, 0}, Notes: "later", Rank: 1},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backlog.db")
	if err := WriteSQLite(path, sampleItems()); err != nil {
		t.Fatalf("WriteSQLite: %v", err)
	}

	got, err := LoadItems(path)
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	want := sampleItems()
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v (position order must be kept)", i, got[i], want[i])
		}
	}

	// Rewriting replaces the contents.
	if err := WriteSQLite(path, want[:1]); err != nil {
		t.Fatalf("WriteSQLite again: %v", err)
	}
	got, _ = LoadItems(path)
	if len(got) != 1 {
		t.Errorf("after rewrite got %d items, want 1", len(got))
	}
}

func TestSQLiteReader_Filter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backlog.sqlite")
	if err := WriteSQLite(path, sampleItems()); err != nil {
		t.Fatal(err)
	}
	src, err := Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewSQLiteReader(src)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	items, err := r.LoadItemsFiltered(func(it *model.WorkItem) bool { return it.Estimated() })
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "B" {
		t.Errorf("filtered = %+v", items)
	}
}

func TestNewSQLiteReader_WrongType(t *testing.T) {
	if _, err := NewSQLiteReader(DataSource{Type: SourceTypeJSONL}); err == nil {
		t.Error("expected error for non-SQLite source")
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	dbPath := filepath.Join(dir, "data.bin")
	if err := WriteSQLite(filepath.Join(dir, "x.db"), sampleItems()); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "x.db"))
	if err := os.WriteFile(dbPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want SourceType
	}{
		{write("a.jsonl", `{}`), SourceTypeJSONL},
		{write("a.json", `[]`), SourceTypeJSON},
		{write("array.txt", "\n  [ ]"), SourceTypeJSON},
		{write("lines.txt", `{"id":"A"}`), SourceTypeJSONL},
		{dbPath, SourceTypeSQLite},
	}
	for _, tt := range tests {
		src, err := Detect(tt.path)
		if err != nil {
			t.Errorf("Detect(%s): %v", tt.path, err)
			continue
		}
		if src.Type != tt.want {
			t.Errorf("Detect(%s) = %s, want %s", filepath.Base(tt.path), src.Type, tt.want)
		}
		if src.Priority != priorityOf(tt.want) {
			t.Errorf("priority = %d", src.Priority)
		}
	}

	if _, err := Detect(dir); err == nil {
		t.Error("expected error for directory")
	}
	if _, err := Detect(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDiscoverAndSelect(t *testing.T) {
	dir := t.TempDir()
	jsonl := filepath.Join(dir, "backlog.jsonl")
	if err := loader.SaveItemsToFile(jsonl, sampleItems()[:1]); err != nil {
		t.Fatal(err)
	}
	db := filepath.Join(dir, "backlog.db")
	if err := WriteSQLite(db, sampleItems()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	same := time.Now().Add(-time.Hour)
	for _, p := range []string{jsonl, db} {
		if err := os.Chtimes(p, same, same); err != nil {
			t.Fatal(err)
		}
	}

	var logs []string
	sources, err := DiscoverSources(DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		Logger:                 func(m string) { logs = append(logs, m) },
	})
	if err != nil {
		t.Fatalf("DiscoverSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %v, want the two non-empty ones", sources)
	}
	if sources[0].Type != SourceTypeSQLite {
		t.Errorf("SQLite should win a modtime tie, got %s", sources[0])
	}
	if len(logs) == 0 {
		t.Error("expected discovery log messages")
	}

	best, err := SelectBestSource(sources)
	if err != nil || best.Path != db {
		t.Errorf("SelectBestSource = %v, %v", best, err)
	}

	// A fresher JSONL wins over SQLite.
	now := time.Now()
	if err := os.Chtimes(jsonl, now, now); err != nil {
		t.Fatal(err)
	}
	items, from, err := LoadItemsFromDir(dir)
	if err != nil {
		t.Fatalf("LoadItemsFromDir: %v", err)
	}
	if len(items) != 1 || from != jsonl {
		t.Errorf("expected the fresher JSONL backlog, got %d items from %s", len(items), from)
	}
}

func TestSelectBestSource_NoneValid(t *testing.T) {
	_, err := SelectBestSource([]DataSource{{Path: "x", Valid: false}})
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("err = %v, want ErrNoSource", err)
	}
}

func TestLoadItems_Empty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "backlog.json")
	if err := os.WriteFile(p, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadItems(p); !errors.Is(err, loader.ErrNoItems) {
		t.Errorf("err = %v, want ErrNoItems", err)
	}
}

func TestDiffItems(t *testing.T) {
	before := sampleItems()
	after := []model.WorkItem{before[1], before[0], {ID: "C", Title: "New"}}
	after[1].CostOfDelay[0] = 9

	d := DiffItems(before, after)
	if len(d.Added) != 1 || d.Added[0] != "C" {
		t.Errorf("Added = %v", d.Added)
	}
	if len(d.Changed) != 1 || d.Changed[0] != "B" {
		t.Errorf("Changed = %v", d.Changed)
	}
	if len(d.Removed) != 0 {
		t.Errorf("Removed = %v", d.Removed)
	}
	if !d.Reordered {
		t.Error("expected Reordered")
	}
	if d.Summary() != "added C; changed B; reordered" {
		t.Errorf("Summary = %q", d.Summary())
	}

	if d := DiffItems(before, before); !d.Empty() || d.Summary() != "no changes" {
		t.Errorf("identical snapshots diff = %+v", d)
	}
	if d := DiffItems(before, before[:1]); len(d.Removed) != 1 || d.Removed[0] != "A" {
		t.Errorf("Removed = %v", d.Removed)
	}
}
