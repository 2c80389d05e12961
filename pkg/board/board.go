// Package board owns the state of a rendered backlog board and applies
// commands to it: render the cluster views, render the cost chart, and
// highlight one item across everything rendered.
package board

import (
	"fmt"

	"github.com/vanderheijden86/wsjfboard/pkg/bubble"
	"github.com/vanderheijden86/wsjfboard/pkg/costchart"
	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/delaycost"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/priority"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
)

// HighlightClass is added to every node of the highlighted item.
const HighlightClass = "highlight"

// State is the caller-owned board state. It is threaded through Dispatch
// and returned, updated, in every Output.
type State struct {
	Highlighted string
	SortBy      priority.SortKey
	EdgePairing bubble.EdgePairing
	Padding     string
}

// Command is one board operation.
type Command interface {
	isCommand()
}

// RenderClusters renders one cluster per item for View.
type RenderClusters struct {
	View model.View
}

// RenderChart simulates the queue in State.SortBy order and renders the
// cost chart.
type RenderChart struct{}

// Highlight marks every node of item ID.
type Highlight struct {
	ID string
}

// ClearHighlight removes the current highlight.
type ClearHighlight struct{}

// SetSort changes the processing order used by RenderChart.
type SetSort struct {
	Key priority.SortKey
}

// SetLayout changes the cluster edge pairing and padding.
type SetLayout struct {
	EdgePairing bubble.EdgePairing
	Padding     string
}

func (RenderClusters) isCommand() {}
func (RenderChart) isCommand()    {}
func (Highlight) isCommand()      {}
func (ClearHighlight) isCommand() {}
func (SetSort) isCommand()        {}
func (SetLayout) isCommand()      {}

// ClusterScene is one item's rendered cluster.
type ClusterScene struct {
	ItemID string
	View   model.View
	Scene  *scene.Scene
}

// Output is the result of a Dispatch.
type Output struct {
	// Clusters holds the most recent cluster render, if any.
	Clusters []ClusterScene
	// Chart holds the most recent chart render, if any.
	Chart          *costchart.Result
	TotalDelayCost float64
	State          State
}

// Board renders a fixed set of items.
type Board struct {
	items      []model.WorkItem
	bubbleOpts bubble.Options
	host       bubble.Host
	bubbles    *bubble.Renderer
	chart      *costchart.Renderer
	state      State

	clusters []ClusterScene
	result   *costchart.Result
}

// Config wires a Board.
type Config struct {
	Items  []model.WorkItem
	Bubble bubble.Options
	Host   bubble.Host
	Chart  costchart.Options
	State  State
}

// New creates a Board. Items without a rank get WSJF ranks. The state's
// pairing and padding override the bubble options when set.
func New(cfg Config) *Board {
	st := cfg.State
	if st.SortBy == "" {
		st.SortBy = priority.SortRank
	}
	if st.EdgePairing == "" {
		st.EdgePairing = cfg.Bubble.EdgePairing
	}
	if st.Padding == "" {
		st.Padding = cfg.Bubble.Padding
	}
	b := &Board{
		items:      priority.EnsureRanks(cfg.Items),
		bubbleOpts: cfg.Bubble,
		host:       cfg.Host,
		chart:      costchart.New(cfg.Chart),
		state:      st,
	}
	b.rebuildBubbles()
	return b
}

func (b *Board) rebuildBubbles() {
	opts := b.bubbleOpts
	opts.EdgePairing = b.state.EdgePairing
	opts.Padding = b.state.Padding
	b.bubbles = bubble.NewRenderer(opts, b.host)
	b.state.EdgePairing = b.bubbles.Options().EdgePairing
	b.state.Padding = b.bubbles.Options().Padding
}

// State returns the current state.
func (b *Board) State() State { return b.state }

// Items returns the board's items in input order.
func (b *Board) Items() []model.WorkItem { return b.items }

// Dispatch applies cmd and returns the current renders and state.
func (b *Board) Dispatch(cmd Command) (Output, error) {
	switch c := cmd.(type) {
	case RenderClusters:
		if !c.View.IsValid() {
			return b.output(), fmt.Errorf("unknown view %q", c.View)
		}
		b.renderClusters(c.View)
	case RenderChart:
		b.renderChart()
	case Highlight:
		b.setHighlight(c.ID)
	case ClearHighlight:
		b.setHighlight("")
	case SetSort:
		key, err := priority.ParseSortKey(string(c.Key))
		if err != nil {
			return b.output(), err
		}
		b.state.SortBy = key
	case SetLayout:
		pairing, err := bubble.ParseEdgePairing(string(c.EdgePairing))
		if err != nil {
			return b.output(), err
		}
		b.state.EdgePairing = pairing
		if c.Padding != "" {
			b.state.Padding = c.Padding
		}
		b.rebuildBubbles()
	case nil:
		return b.output(), fmt.Errorf("nil command")
	default:
		return b.output(), fmt.Errorf("unknown command %T", cmd)
	}
	return b.output(), nil
}

func (b *Board) output() Output {
	out := Output{Clusters: b.clusters, Chart: b.result, State: b.state}
	if b.result != nil {
		out.TotalDelayCost = b.result.TotalDelayCost
	}
	return out
}

func (b *Board) renderClusters(v model.View) {
	clusters := make([]ClusterScene, 0, len(b.items))
	for _, it := range b.items {
		clusters = append(clusters, ClusterScene{
			ItemID: it.ID,
			View:   v,
			Scene:  b.bubbles.RenderItem(it, v),
		})
	}
	b.clusters = clusters
	b.applyHighlight()
	debug.Log("board: rendered %d %s clusters", len(clusters), v)
}

func (b *Board) renderChart() {
	queue := priority.Queue(b.items, b.state.SortBy)
	m := delaycost.Simulate(delaycost.FromItems(queue), delaycost.StylesFromItems(b.items))
	res := b.chart.Render(m, delaycost.StylesFromItems(b.items))
	b.result = &res
	b.applyHighlight()
}

func (b *Board) setHighlight(id string) {
	if id == b.state.Highlighted {
		return
	}
	b.eachScene(func(s *scene.Scene) { Mark(s, b.state.Highlighted, false) })
	b.state.Highlighted = id
	b.applyHighlight()
}

func (b *Board) applyHighlight() {
	if b.state.Highlighted == "" {
		return
	}
	b.eachScene(func(s *scene.Scene) { Mark(s, b.state.Highlighted, true) })
}

func (b *Board) eachScene(fn func(*scene.Scene)) {
	for _, c := range b.clusters {
		fn(c.Scene)
	}
	if b.result != nil {
		fn(b.result.Scene)
	}
}

// Mark adds (on) or removes the highlight class on every node of s whose
// data-id is id and returns the number of nodes touched.
func Mark(s *scene.Scene, id string, on bool) int {
	if s == nil || id == "" {
		return 0
	}
	nodes := s.ByID(id)
	for _, n := range nodes {
		if on {
			n.AddClass(HighlightClass)
		} else {
			n.RemoveClass(HighlightClass)
		}
	}
	return len(nodes)
}
