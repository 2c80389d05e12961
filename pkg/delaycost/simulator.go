// Package delaycost simulates a single-resource queue serving work items in
// a fixed order and accounts the cost of delay accrued by waiting items.
//
// While item i is served for jobSize(i), every item j still queued behind it
// accrues cod(j) * jobSize(i). The result is a ChartModel: one segment per
// served item whose stacked blocks show what was waiting during that time.
package delaycost

import (
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/metrics"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// BlockKind tells whether a block is the item being served or one waiting.
type BlockKind string

const (
	Processing BlockKind = "processing"
	Waiting    BlockKind = "waiting"
)

// Entry is one queued item.
type Entry struct {
	ID          string
	Title       string
	JobSize     float64
	CostOfDelay float64
}

// Style is the per-item presentation looked up by id.
type Style struct {
	Rank  int
	Color string
}

// StyleLookup resolves an item's style.
type StyleLookup interface {
	Style(id string) (Style, bool)
}

// StyleMap is a map-backed StyleLookup.
type StyleMap map[string]Style

// Style implements StyleLookup.
func (m StyleMap) Style(id string) (Style, bool) {
	s, ok := m[id]
	return s, ok
}

// Block is one layer of a segment's stack.
type Block struct {
	OwnerID string
	Kind    BlockKind
	// Value is the owner's cost of delay for processing blocks and the cost
	// accrued during this segment for waiting blocks.
	Value float64
	// HeightFraction is the owner's cost of delay over the chart's AxisMax.
	HeightFraction float64
	Label          string
}

// Segment is the interval during which one item occupies the server.
type Segment struct {
	ItemID string
	Start  float64
	End    float64
	Width  float64
	// Blocks are ordered bottom to top: the waiting items furthest from
	// service first, the processing block last.
	Blocks []Block
	// WaitingCost is the sum of the waiting blocks' values.
	WaitingCost float64
	// RemainingCoD is the summed cost of delay of the items still queued
	// when this segment ends.
	RemainingCoD float64
}

// ChartModel is the full simulated schedule.
type ChartModel struct {
	Segments       []Segment
	Entries        []Entry
	TotalDelayCost float64
	// AxisMax is the summed cost of delay of all entries: the stack height
	// at time zero, and the scale every HeightFraction is expressed against.
	AxisMax    float64
	TotalWidth float64
	// NoData is set when there is nothing to draw: no entries, or no entry
	// with a positive job size.
	NoData bool
}

// FromItems converts fully estimated items into entries, preserving order.
// Items with an incomplete triple are skipped.
func FromItems(items []model.WorkItem) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		size, ok := it.JobSize()
		if !ok {
			continue
		}
		cod, ok := it.CoD()
		if !ok {
			continue
		}
		out = append(out, Entry{ID: it.ID, Title: it.Title, JobSize: size, CostOfDelay: cod})
	}
	return out
}

// StylesFromItems builds a StyleMap from the items' rank and color.
func StylesFromItems(items []model.WorkItem) StyleMap {
	m := make(StyleMap, len(items))
	for _, it := range items {
		m[it.ID] = Style{Rank: it.Rank, Color: it.Color}
	}
	return m
}

// Simulate runs the queue over entries in the given order. Negative job
// sizes and costs are treated as 0. Entries with a zero job size stay in the
// queue (they accrue cost while waiting) but get no segment.
func Simulate(entries []Entry, styles StyleLookup) *ChartModel {
	defer metrics.Timer(metrics.Simulation)()

	n := len(entries)
	clean := make([]Entry, n)
	sizes := make([]float64, n)
	cods := make([]float64, n)
	for i, e := range entries {
		e.JobSize = model.NonNegative(e.JobSize)
		e.CostOfDelay = model.NonNegative(e.CostOfDelay)
		clean[i] = e
		sizes[i] = e.JobSize
		cods[i] = e.CostOfDelay
	}

	m := &ChartModel{Entries: clean}
	if n == 0 {
		m.NoData = true
		return m
	}
	m.TotalWidth = floats.Sum(sizes)
	if m.TotalWidth <= 0 {
		m.NoData = true
		m.TotalWidth = 0
		return m
	}
	// suffix[i] = summed cod of entries from i on. AxisMax is suffix[0] so a
	// RemainingCoD level equal to it compares equal in floating point.
	suffix := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + cods[i]
	}
	m.AxisMax = suffix[0]

	var waitingValues []float64
	t := 0.0
	for i, e := range clean {
		if e.JobSize <= 0 {
			continue
		}
		seg := Segment{
			ItemID:       e.ID,
			Start:        t,
			End:          t + e.JobSize,
			Width:        e.JobSize,
			RemainingCoD: suffix[i+1],
		}
		for j := n - 1; j > i; j-- {
			cost := cods[j] * e.JobSize
			seg.Blocks = append(seg.Blocks, Block{
				OwnerID:        clean[j].ID,
				Kind:           Waiting,
				Value:          cost,
				HeightFraction: fraction(cods[j], m.AxisMax),
				Label:          locale.Integer(cost),
			})
			seg.WaitingCost += cost
			waitingValues = append(waitingValues, cost)
		}
		seg.Blocks = append(seg.Blocks, Block{
			OwnerID:        e.ID,
			Kind:           Processing,
			Value:          e.CostOfDelay,
			HeightFraction: fraction(e.CostOfDelay, m.AxisMax),
			Label:          rankLabel(styles, e.ID, i),
		})
		m.Segments = append(m.Segments, seg)
		t = seg.End
	}
	m.TotalDelayCost = floats.Sum(waitingValues)

	debug.Log("delaycost: %d entries, %d segments, M=%v total=%v", n, len(m.Segments), m.AxisMax, m.TotalDelayCost)
	return m
}

func fraction(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}

// rankLabel prefers the looked-up rank and falls back to queue position.
func rankLabel(styles StyleLookup, id string, pos int) string {
	if styles != nil {
		if s, ok := styles.Style(id); ok && s.Rank > 0 {
			return strconv.Itoa(s.Rank)
		}
	}
	return strconv.Itoa(pos + 1)
}

// XTicks returns 0 followed by the end of every segment.
func (m *ChartModel) XTicks() []float64 {
	widths := make([]float64, len(m.Segments))
	for i, s := range m.Segments {
		widths[i] = s.Width
	}
	ticks := make([]float64, 1, len(widths)+1)
	return append(ticks, floats.CumSum(make([]float64, len(widths)), widths)...)
}

// Entry returns the entry with the given id.
func (m *ChartModel) Entry(id string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
