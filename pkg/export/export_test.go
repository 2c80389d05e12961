package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/wsjfboard/pkg/board"
	"github.com/vanderheijden86/wsjfboard/pkg/bubble"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/priority"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
	"github.com/vanderheijden86/wsjfboard/pkg/testutil"
)

func TestFrameQueue_FlushFIFO(t *testing.T) {
	q := NewFrameQueue()
	var order []string
	q.AfterPaint(func() {
		order = append(order, "a")
		q.AfterPaint(func() { order = append(order, "c") })
	})
	q.AfterPaint(func() { order = append(order, "b") })
	q.AfterPaint(nil)

	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
	if ran := q.Flush(); ran != 3 {
		t.Errorf("Flush ran %d callbacks, want 3", ran)
	}
	if got := strings.Join(order, ""); got != "abc" {
		t.Errorf("order = %q, want abc", got)
	}
	if q.Flush() != 0 {
		t.Error("second flush should run nothing")
	}
}

func TestFontGate(t *testing.T) {
	g := NewFontGate(nil)
	calls := 0
	g.WhenReady(func() { calls++ })
	if calls != 0 {
		t.Fatal("callback ran before fonts were ready")
	}
	g.Ready()
	if calls != 1 {
		t.Fatalf("calls = %d after Ready, want 1", calls)
	}
	g.WhenReady(func() { calls++ })
	if calls != 2 {
		t.Errorf("callback after Ready should run at once")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		path, format string
		wantPath     string
		want         Format
		wantErr      bool
	}{
		{"out.svg", "", "out.svg", FormatSVG, false},
		{"out.PNG", "", "out.PNG", FormatPNG, false},
		{"out", "", "out.svg", FormatSVG, false},
		{"out.svg", ".png", "out.svg", FormatPNG, false},
		{"out.txt", "", "out.txt", FormatSVG, false},
		{"out.svg", "pdf", "", "", true},
		{"", "svg", "", "", true},
	}
	for _, tt := range tests {
		path, f, err := ResolveFormat(tt.path, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveFormat(%q, %q) err = %v", tt.path, tt.format, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if path != tt.wantPath || f != tt.want {
			t.Errorf("ResolveFormat(%q, %q) = (%q, %q), want (%q, %q)", tt.path, tt.format, path, f, tt.wantPath, tt.want)
		}
	}
	if _, _, err := ResolveFormat("x.svg", "gif"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("Checkout flow for returning customers", 12)
	for _, l := range lines {
		if len(l) > 12 {
			t.Errorf("line %q wider than 12", l)
		}
	}
	if strings.Join(lines, " ") != "Checkout flow for returning customers" {
		t.Errorf("wrap lost words: %v", lines)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("empty title wrapped to %v", got)
	}
	long := wrapText("Supercalifragilistic", 8)
	if len(long) != 1 || !strings.HasSuffix(long[0], "…") {
		t.Errorf("long word = %v", long)
	}
}

func TestSheet_EqualizeRows(t *testing.T) {
	s := NewSheet(2, 100, nil, nil)
	short := s.Add(model.WorkItem{ID: "A", Title: "Short"})
	tall := s.Add(model.WorkItem{ID: "B", Title: strings.Repeat("word ", 30)})
	alone := s.Add(model.WorkItem{ID: "C", Title: "Third"})

	s.EqualizeRows()
	if short.Height != tall.Height {
		t.Errorf("row heights differ: %v vs %v", short.Height, tall.Height)
	}
	if short.Height <= s.naturalHeight(short) {
		t.Errorf("short cell should grow to the tall one: %v", short.Height)
	}
	if alone.Height != s.naturalHeight(alone) {
		t.Errorf("lone cell height = %v, want natural %v", alone.Height, s.naturalHeight(alone))
	}
	if s.Equalized() != 1 {
		t.Errorf("Equalized = %d", s.Equalized())
	}
}

func TestBoardScene(t *testing.T) {
	items := append(testutil.WorkedExample(), testutil.Partial("C", 1))
	sheet := BoardScene(BoardOptions{Items: items, Bubble: bubble.DefaultOptions(), Columns: 2})

	cells := sheet.Find(func(n *scene.Node) bool {
		return n.Kind == scene.KindGroup && n.Attr(scene.AttrKind) == KindCell
	})
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	// A, B complete in both views; C has a placeholder size view and a
	// complete cost-of-delay view.
	data := sheet.Find(func(n *scene.Node) bool { return n.Attr(scene.AttrKind) == bubble.KindData })
	if len(data) != 3*5 {
		t.Errorf("expected 15 data circles, got %d", len(data))
	}
	if n := len(sheet.ByRole(bubble.RolePlaceholder)); n != 1 {
		t.Errorf("expected 1 placeholder arc, got %d", n)
	}
	for _, id := range []string{"A", "B", "C"} {
		if len(sheet.ByID(id)) == 0 {
			t.Errorf("no nodes for %s", id)
		}
	}

	// every data circle lies inside the sheet
	for _, n := range data {
		if n.X < 0 || n.X > sheet.Width || n.Y < 0 || n.Y > sheet.Height {
			t.Errorf("circle outside sheet at (%v, %v)", n.X, n.Y)
		}
	}
	if sheet.Height < 2*120 {
		t.Errorf("sheet height %v too small for two rows", sheet.Height)
	}
	testutil.AssertValidSVG(t, sheet)
}

func TestBoardScene_LabelsCenteredAfterFlush(t *testing.T) {
	sheet := BoardScene(BoardOptions{Items: testutil.WorkedExample()[:1], Bubble: bubble.DefaultOptions()})
	circles := map[string]*scene.Node{}
	var labels []*scene.Node
	sheet.Walk(func(n *scene.Node) bool {
		if n.Attr(scene.AttrRole) == model.SlotComplexity && n.Attr(scene.AttrSlot) == "0" {
			switch n.Kind {
			case scene.KindCircle:
				circles["c"] = n
			case scene.KindText:
				labels = append(labels, n)
			}
		}
		return true
	})
	if len(labels) != 1 || circles["c"] == nil {
		t.Fatalf("expected one complexity circle and label")
	}
	c, l := circles["c"], labels[0]
	w, _ := scene.FaceMeasurer{}.Measure(l.Text, l.FontSize)
	if diff := (l.X + w/2) - c.X; diff > 0.01 || diff < -0.01 {
		t.Errorf("label centre off by %v", diff)
	}
}

func TestSaveBoard(t *testing.T) {
	dir := t.TempDir()
	items := testutil.QuickBacklog(4)

	for _, name := range []string{"board.svg", "board.png"} {
		path := filepath.Join(dir, name)
		if err := SaveBoard(BoardOptions{Path: path, Items: items, Bubble: bubble.DefaultOptions()}); err != nil {
			t.Fatalf("SaveBoard(%s): %v", name, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if err := SaveBoard(BoardOptions{Path: filepath.Join(dir, "x.svg")}); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}
}

func TestSaveChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "cost")
	res, err := SaveChart(ChartOptions{Path: path, Items: testutil.WorkedExample(), SortBy: priority.SortRank})
	if err != nil {
		t.Fatalf("SaveChart: %v", err)
	}
	if res.TotalDelayCost != 10 {
		t.Errorf("TotalDelayCost = %v, want 10", res.TotalDelayCost)
	}
	data, err := os.ReadFile(path + ".svg")
	if err != nil {
		t.Fatalf("chart not written with inferred extension: %v", err)
	}
	if !strings.Contains(string(data), `data-id="A"`) {
		t.Error("chart SVG missing item ids")
	}

	empty, err := SaveChart(ChartOptions{Path: filepath.Join(t.TempDir(), "empty.svg")})
	if err != nil {
		t.Fatalf("SaveChart(empty): %v", err)
	}
	if !empty.NoData {
		t.Error("empty chart should be NoData")
	}
}

func TestHighlightedExport(t *testing.T) {
	items := testutil.WorkedExample()
	isLit := func(n *scene.Node) bool { return n.HasClass(board.HighlightClass) }

	sheet := BoardScene(BoardOptions{Items: items, Bubble: bubble.DefaultOptions(), Highlight: "B"})
	lit := sheet.Find(isLit)
	if len(lit) == 0 {
		t.Fatal("no highlighted nodes on the board")
	}
	for _, n := range lit {
		if n.Attr(scene.AttrID) != "B" {
			t.Errorf("highlighted node belongs to %q", n.Attr(scene.AttrID))
		}
	}

	res := ChartResult(ChartOptions{Items: items, Highlight: "A"})
	if len(res.Scene.Find(isLit)) == 0 {
		t.Error("no highlighted nodes on the chart")
	}
	if res.TotalDelayCost != 10 {
		t.Errorf("TotalDelayCost = %v, want 10", res.TotalDelayCost)
	}
}

func TestExportItems(t *testing.T) {
	dir := t.TempDir()
	items := testutil.QuickBacklog(5)
	items[0].ID = "a/b"

	paths, err := ExportItems(context.Background(), dir, items, ItemsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ExportItems: %v", err)
	}
	if len(paths) != 10 {
		t.Fatalf("expected 10 files, got %d", len(paths))
	}
	if paths[0] != filepath.Join(dir, "a_b-size.svg") || paths[1] != filepath.Join(dir, "a_b-cod.svg") {
		t.Errorf("unexpected first paths: %v", paths[:2])
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExportItems(ctx, t.TempDir(), items, ItemsOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := ExportItems(context.Background(), dir, nil, ItemsOptions{}); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}
	if _, err := ExportItems(context.Background(), dir, items, ItemsOptions{Format: "gif"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
