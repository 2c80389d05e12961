package testutil

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
)

// AssertNoDuplicateIDs verifies all item IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, items []model.WorkItem) {
	t.Helper()
	seen := make(map[string]bool)
	for _, it := range items {
		if seen[it.ID] {
			t.Errorf("duplicate item ID: %s", it.ID)
		}
		seen[it.ID] = true
	}
}

// AssertAllValid verifies all items pass validation.
func AssertAllValid(t *testing.T, items []model.WorkItem) {
	t.Helper()
	for i, it := range items {
		if err := it.Validate(); err != nil {
			t.Errorf("item %d (%s) invalid: %v", i, it.ID, err)
		}
	}
}

// AssertCounts verifies the number of circle, path and text primitives.
func AssertCounts(t *testing.T, s *scene.Scene, circles, paths, texts int) {
	t.Helper()
	if got := s.Count(scene.KindCircle); got != circles {
		t.Errorf("expected %d circles, got %d", circles, got)
	}
	if got := s.Count(scene.KindPath); got != paths {
		t.Errorf("expected %d paths, got %d", paths, got)
	}
	if got := s.Count(scene.KindText); got != texts {
		t.Errorf("expected %d texts, got %d", texts, got)
	}
}

// AssertTagged verifies every primitive of kind k carries data-id and
// either data-role or data-kind.
func AssertTagged(t *testing.T, s *scene.Scene, k scene.Kind) {
	t.Helper()
	for _, n := range s.ByKind(k) {
		if n.Attr(scene.AttrID) == "" {
			t.Errorf("%s without %s: %+v", k, scene.AttrID, n)
		}
		if n.Attr(scene.AttrRole) == "" && n.Attr(scene.AttrKind) == "" {
			t.Errorf("%s without role or kind: %+v", k, n)
		}
	}
}

// AssertValidSVG renders the scene and verifies the output is well-formed XML.
func AssertValidSVG(t *testing.T, s *scene.Scene) string {
	t.Helper()
	out := scene.SVGString(s)
	if out == "" {
		t.Fatal("empty SVG output")
	}
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("SVG is not valid XML: %v", err)
		}
	}
	return out
}

// GoldenFile compares output against a file under testdata.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper. With GENERATE_GOLDEN set the
// golden file is rewritten instead of compared.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{t: t, dir: dir, name: name, update: os.Getenv("GENERATE_GOLDEN") != ""}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual against the golden file and reports the first
// differing line.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()
	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}
	if string(expected) == actual {
		return
	}
	want := strings.Split(string(expected), "\n")
	got := strings.Split(actual, "\n")
	for i := 0; i < len(want) || i < len(got); i++ {
		var w, a string
		if i < len(want) {
			w = want[i]
		}
		if i < len(got) {
			a = got[i]
		}
		if w != a {
			g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, w, a)
			return
		}
	}
}

// WriteBacklogFile writes items as JSONL to dir/name and returns the path.
func WriteBacklogFile(t *testing.T, dir, name string, items []model.WorkItem) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(ToJSONL(items)), 0o644); err != nil {
		t.Fatalf("failed to write backlog file: %v", err)
	}
	return path
}
