package export

import (
	"math"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
)

// Scene kinds emitted for the board sheet.
const (
	KindSheet   = "board"
	KindCell    = "cell"
	KindLegend  = "legend"
	KindCaption = "caption"
	KindTitle   = "title"
)

const (
	sheetGap    = 12.0
	cellPad     = 8.0
	lineHeight  = 15.0
	titleSize   = 12.0
	captionSize = 10.0
	swatchSize  = 10.0
)

type offset struct{ x, y float64 }

// Cell is one item on the board sheet: its title and both cluster views.
type Cell struct {
	Item     model.WorkItem
	Clusters []*scene.Scene
	// Height is the cell's drawn height; EqualizeRows sets it to the
	// tallest natural height in the cell's row.
	Height float64

	lines  []string
	placed []offset
}

// Sheet lays out cells in a fixed number of columns. It implements
// bubble.RowEqualizer.
type Sheet struct {
	Columns     int
	ClusterSize float64
	Theme       *theme.Theme
	Locale      *locale.Bundle

	mu        sync.Mutex
	cells     []*Cell
	equalized int
}

// NewSheet returns an empty sheet.
func NewSheet(columns int, clusterSize float64, th *theme.Theme, lc *locale.Bundle) *Sheet {
	if columns <= 0 {
		columns = 3
	}
	if clusterSize <= 0 {
		clusterSize = 120
	}
	if th == nil {
		th = theme.Default()
	}
	if lc == nil {
		lc = locale.Builtin("en")
	}
	return &Sheet{Columns: columns, ClusterSize: clusterSize, Theme: th, Locale: lc}
}

// Add appends a cell for item with its rendered clusters.
func (s *Sheet) Add(item model.WorkItem, clusters ...*scene.Scene) *Cell {
	c := &Cell{Item: item, Clusters: clusters}
	c.lines = wrapText(item.Title, s.titleCells())
	s.mu.Lock()
	s.cells = append(s.cells, c)
	s.mu.Unlock()
	return c
}

// Cells returns the cells in insertion order.
func (s *Sheet) Cells() []*Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Cell(nil), s.cells...)
}

// Equalized returns how many times EqualizeRows ran.
func (s *Sheet) Equalized() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equalized
}

func (s *Sheet) cellWidth() float64 {
	return 2*s.ClusterSize + 3*cellPad
}

// titleCells is the title wrap width in terminal cells.
func (s *Sheet) titleCells() int {
	w := int((s.cellWidth() - 2*cellPad - swatchSize - 4) / (0.6 * titleSize))
	if w < 4 {
		w = 4
	}
	return w
}

func (s *Sheet) naturalHeight(c *Cell) float64 {
	lines := len(c.lines)
	if lines == 0 {
		lines = 1
	}
	return cellPad + float64(lines)*lineHeight + cellPad + s.ClusterSize + lineHeight + cellPad
}

// EqualizeRows sets every cell's height to the tallest natural height in
// its row.
func (s *Sheet) EqualizeRows() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for start := 0; start < len(s.cells); start += s.Columns {
		end := min(start+s.Columns, len(s.cells))
		tallest := 0.0
		for _, c := range s.cells[start:end] {
			tallest = math.Max(tallest, s.naturalHeight(c))
		}
		for _, c := range s.cells[start:end] {
			c.Height = tallest
		}
	}
	s.equalized++
}

func (s *Sheet) legendHeight() float64 {
	return lineHeight + sheetGap
}

// Scene composes the legend and all cells into one scene. Cells whose
// height was never equalized use their natural height.
func (s *Sheet) Scene() *scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()

	cw := s.cellWidth()
	cols := min(s.Columns, max(len(s.cells), 1))
	width := float64(cols)*cw + float64(cols+1)*sheetGap

	y := sheetGap + s.legendHeight()
	var rowTops []float64
	for start := 0; start < len(s.cells); start += s.Columns {
		rowTops = append(rowTops, y)
		end := min(start+s.Columns, len(s.cells))
		tallest := 0.0
		for _, c := range s.cells[start:end] {
			tallest = math.Max(tallest, s.height(c))
		}
		y += tallest + sheetGap
	}

	out := scene.New(width, y, scene.WithKind(KindSheet))
	out.Root.Append(s.legend())
	for i, c := range s.cells {
		x := sheetGap + float64(i%s.Columns)*(cw+sheetGap)
		out.Root.Append(s.cell(c, x, rowTops[i/s.Columns]))
	}
	return out
}

func (s *Sheet) height(c *Cell) float64 {
	if c.Height > 0 {
		return c.Height
	}
	return s.naturalHeight(c)
}

// legend draws one swatch and label per slot of both views.
func (s *Sheet) legend() *scene.Node {
	g := scene.Group(scene.WithKind(KindLegend))
	x := sheetGap
	y := sheetGap
	slots := append(model.SizeSlots[:], model.CostOfDelaySlots[:]...)
	for _, slot := range slots {
		label := s.Locale.T(locale.LegendKey(slot))
		g.Append(
			scene.Circle(x+swatchSize/2, y+swatchSize/2, swatchSize/2,
				scene.WithFill(s.Theme.Color(slot)),
				scene.WithRole(slot)),
			scene.Text(x+swatchSize+4, y+swatchSize-1, label,
				scene.WithFill(s.Theme.Color(theme.RoleText)),
				scene.WithFontSize(captionSize),
				scene.WithRole(slot)),
		)
		w, _ := scene.ApproxMeasurer{}.Measure(label, captionSize)
		x += swatchSize + 4 + w + sheetGap
	}
	return g
}

func (s *Sheet) cell(c *Cell, x, y float64) *scene.Node {
	th := s.Theme
	id := c.Item.ID
	g := scene.Group(scene.WithID(id), scene.WithKind(KindCell))
	g.Append(scene.Rect(x, y, s.cellWidth(), s.height(c),
		scene.WithFill("#ffffff"),
		scene.WithStroke(th.Color(theme.RoleStroke), 1),
		scene.WithID(id),
		scene.WithKind(KindCell)))

	ty := y + cellPad
	g.Append(scene.Rect(x+cellPad, ty+2, swatchSize, swatchSize,
		scene.WithFill(th.Color(c.Item.Color)),
		scene.WithID(id)))
	for i, line := range c.lines {
		g.Append(scene.Text(x+cellPad+swatchSize+4, ty+float64(i+1)*lineHeight-3, line,
			scene.WithFill(th.Color(theme.RoleText)),
			scene.WithFontSize(titleSize),
			scene.WithID(id),
			scene.WithKind(KindTitle)))
	}

	top := ty + float64(max(len(c.lines), 1))*lineHeight + cellPad
	captions := s.captions(c.Item)
	for i, cl := range c.Clusters {
		if cl == nil || cl.Root == nil {
			continue
		}
		cx := x + cellPad + float64(i)*(s.ClusterSize+cellPad)
		c.moveCluster(i, cx, top)
		g.Append(cl.Root)
		if i < len(captions) {
			g.Append(scene.Text(cx+s.ClusterSize/2, top+s.ClusterSize+lineHeight-3, captions[i],
				scene.WithFill(th.Color(theme.RoleText)),
				scene.WithFontSize(captionSize),
				scene.WithAnchor(scene.AnchorMiddle),
				scene.WithID(id),
				scene.WithKind(KindCaption)))
		}
	}
	return g
}

// moveCluster places cluster i with its origin at (x, y), relative to
// wherever an earlier Scene call put it.
func (c *Cell) moveCluster(i int, x, y float64) {
	if len(c.placed) < len(c.Clusters) {
		c.placed = make([]offset, len(c.Clusters))
	}
	from := c.placed[i]
	scene.Translate(c.Clusters[i].Root, x-from.x, y-from.y)
	c.placed[i] = offset{x, y}
}

// captions returns the job size and cost of delay captions. Sums of
// incomplete triples show as "?".
func (s *Sheet) captions(it model.WorkItem) []string {
	format := func(v float64, ok bool) string {
		if !ok {
			return "?"
		}
		return s.Locale.Decimal(v, 2)
	}
	return []string{
		s.Locale.Format(locale.KeyLegendJobSize, format(it.JobSize())),
		s.Locale.Format(locale.KeyLegendCoD, format(it.CoD())),
	}
}

// wrapText breaks s into lines of at most width display cells, splitting on
// spaces. Words wider than a line are truncated.
func wrapText(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	curW := 0
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		if ww > width {
			word = runewidth.Truncate(word, width, "…")
			ww = runewidth.StringWidth(word)
		}
		switch {
		case curW == 0:
			cur.WriteString(word)
			curW = ww
		case curW+1+ww <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curW += 1 + ww
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(word)
			curW = ww
		}
	}
	if curW > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
