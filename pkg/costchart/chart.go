// Package costchart draws a simulated delay-cost schedule as a stacked
// timeline: one column per served item, as wide as its job size, stacked
// with the items waiting behind it.
package costchart

import (
	"strconv"
	"strings"

	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/delaycost"
	"github.com/vanderheijden86/wsjfboard/pkg/locale"
	"github.com/vanderheijden86/wsjfboard/pkg/metrics"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
)

// Scene roles and kinds emitted by the renderer.
const (
	KindChart   = "chart"
	KindTick    = "tick"
	KindLabel   = "label"
	KindMessage = "no-data"

	RoleSegment = "segment"
	RoleXAxis   = "x-axis"
	RoleYAxis   = "y-axis"
	RoleTotal   = "total"

	// AttrValue carries a tick's numeric value.
	AttrValue = "data-value"
)

// Options sizes the chart.
type Options struct {
	Width  float64
	Height float64
	Theme  *theme.Theme
	Locale *locale.Bundle
}

// DefaultOptions returns a 640x360 chart with the default theme and English strings.
func DefaultOptions() Options {
	return Options{
		Width:  640,
		Height: 360,
		Theme:  theme.Default(),
		Locale: locale.Builtin("en"),
	}
}

// margins around the plot area
const (
	marginLeft   = 48.0
	marginRight  = 12.0
	marginTop    = 24.0
	marginBottom = 28.0
	labelSize    = 11.0
	tickLength   = 4.0
)

// Tick is one axis tick.
type Tick struct {
	Value float64
	Label string
	// Pos is the tick's pixel coordinate along its axis.
	Pos float64
}

// Result is a rendered chart.
type Result struct {
	Scene          *scene.Scene
	TotalDelayCost float64
	NoData         bool
	XTicks         []Tick
	YTicks         []Tick
}

// Renderer turns chart models into scenes.
type Renderer struct {
	opts Options
}

// New returns a renderer; zero-valued options fall back to DefaultOptions.
func New(opts Options) *Renderer {
	d := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = d.Width
	}
	if opts.Height <= 0 {
		opts.Height = d.Height
	}
	if opts.Theme == nil {
		opts.Theme = d.Theme
	}
	if opts.Locale == nil {
		opts.Locale = d.Locale
	}
	return &Renderer{opts: opts}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// plot is the drawable area inside the margins.
type plot struct {
	x, y, w, h float64
}

func (r *Renderer) plot() plot {
	p := plot{
		x: marginLeft,
		y: marginTop,
		w: r.opts.Width - marginLeft - marginRight,
		h: r.opts.Height - marginTop - marginBottom,
	}
	if p.w < 0 {
		p.w = 0
	}
	if p.h < 0 {
		p.h = 0
	}
	return p
}

func (p plot) bottom() float64 { return p.y + p.h }

// Render draws the model. styles supplies each owner's rank and color; a
// nil lookup colors everything with the theme default.
func (r *Renderer) Render(m *delaycost.ChartModel, styles delaycost.StyleLookup) Result {
	defer metrics.Timer(metrics.ChartRender)()

	if m == nil {
		m = &delaycost.ChartModel{NoData: true}
	}
	s := scene.New(r.opts.Width, r.opts.Height, scene.WithKind(KindChart))
	res := Result{Scene: s, TotalDelayCost: m.TotalDelayCost, NoData: m.NoData}
	p := r.plot()

	if m.NoData {
		res.TotalDelayCost = 0
		r.noData(s, p)
		res.XTicks = r.xAxis(s, p, []float64{0}, 0)
		res.YTicks = r.yAxis(s, p, nil, 0)
		return res
	}

	for _, seg := range m.Segments {
		s.Root.Append(r.segment(m, seg, styles, p))
	}
	res.XTicks = r.xAxis(s, p, m.XTicks(), m.TotalWidth)
	res.YTicks = r.yAxis(s, p, m.Segments, m.AxisMax)
	s.Root.Append(scene.Text(p.x+p.w, marginTop-8,
		r.opts.Locale.Format(locale.KeyTotal, locale.Integer(m.TotalDelayCost)),
		scene.WithFill(r.opts.Theme.Color(theme.RoleText)),
		scene.WithFontSize(labelSize),
		scene.WithAnchor(scene.AnchorEnd),
		scene.WithRole(RoleTotal)))

	debug.Log("costchart: %d segments, total=%v", len(m.Segments), m.TotalDelayCost)
	return res
}

// segment draws one column: a group carrying the served item's id with a
// rect and a label per block, stacked bottom to top.
func (r *Renderer) segment(m *delaycost.ChartModel, seg delaycost.Segment, styles delaycost.StyleLookup, p plot) *scene.Node {
	g := scene.Group(
		scene.WithID(seg.ItemID),
		scene.WithRole(RoleSegment),
		scene.WithClass(RoleSegment))

	x := p.x + seg.Start/m.TotalWidth*p.w
	w := seg.Width / m.TotalWidth * p.w
	y := p.bottom()
	var labels []*scene.Node
	for _, b := range seg.Blocks {
		h := b.HeightFraction * p.h
		y -= h
		g.Append(scene.Rect(x, y, w, h,
			scene.WithFill(r.ownerColor(styles, b.OwnerID)),
			scene.WithStroke(r.opts.Theme.Color(theme.RoleBackground), 0.5),
			scene.WithID(b.OwnerID),
			scene.WithKind(string(b.Kind)),
			scene.WithTitle(r.tooltip(m, seg, b))))
		labels = append(labels, scene.Text(x+w/2, y+h/2+labelSize*0.35, b.Label,
			scene.WithFill(r.opts.Theme.Color(theme.RoleText)),
			scene.WithFontSize(labelSize),
			scene.WithAnchor(scene.AnchorMiddle),
			scene.WithID(b.OwnerID),
			scene.WithKind(string(b.Kind)),
			scene.WithRole(KindLabel)))
	}
	return g.Append(labels...)
}

func (r *Renderer) ownerColor(styles delaycost.StyleLookup, id string) string {
	if styles == nil {
		return theme.DefaultColor
	}
	st, ok := styles.Style(id)
	if !ok {
		return theme.DefaultColor
	}
	return r.opts.Theme.Color(st.Color)
}

// tooltip builds the block's hover text, one template per line.
func (r *Renderer) tooltip(m *delaycost.ChartModel, seg delaycost.Segment, b delaycost.Block) string {
	loc := r.opts.Locale
	e, _ := m.Entry(b.OwnerID)
	role := loc.T(locale.KeyRoleWaiting)
	if b.Kind == delaycost.Processing {
		role = loc.T(locale.KeyRoleProcessing)
	}
	lines := []string{
		loc.Format(locale.KeyTooltipTitle, e.Title),
		loc.Format(locale.KeyTooltipRole, role),
		loc.Format(locale.KeyTooltipID, b.OwnerID),
		loc.Format(locale.KeyTooltipJobSize, loc.Decimal(e.JobSize, 2)),
		loc.Format(locale.KeyTooltipCoD, loc.Decimal(e.CostOfDelay, 2)),
	}
	if b.Kind == delaycost.Processing {
		wsjf := 0.0
		if e.JobSize > 0 {
			wsjf = e.CostOfDelay / e.JobSize
		}
		lines = append(lines, loc.Format(locale.KeyTooltipWSJF, loc.Decimal(wsjf, 2)))
	} else {
		lines = append(lines, loc.Format(locale.KeyTooltipAccumulated, loc.Decimal(b.Value, 2)))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) noData(s *scene.Scene, p plot) {
	s.Root.Append(scene.Text(p.x+p.w/2, p.y+p.h/2, r.opts.Locale.T(locale.KeyNoData),
		scene.WithFill(r.opts.Theme.Color(theme.RoleText)),
		scene.WithFontSize(labelSize+1),
		scene.WithAnchor(scene.AnchorMiddle),
		scene.WithKind(KindMessage)))
}

// xAxis draws one tick per cumulative job-size boundary.
func (r *Renderer) xAxis(s *scene.Scene, p plot, values []float64, total float64) []Tick {
	th := r.opts.Theme
	g := scene.Group(scene.WithRole(RoleXAxis))
	g.Append(scene.Path(pathLine(p.x, p.bottom(), p.x+p.w, p.bottom()),
		scene.WithStroke(th.Color(theme.RoleAxis), 1)))

	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		x := p.x
		if total > 0 {
			x += v / total * p.w
		}
		t := Tick{Value: v, Label: r.valueLabel(v), Pos: x}
		ticks = append(ticks, t)
		g.Append(tickNode(t, th,
			pathLine(x, p.bottom(), x, p.bottom()+tickLength),
			x, p.bottom()+tickLength+labelSize, scene.AnchorMiddle))
	}
	s.Root.Append(g)
	return ticks
}

// yAxis draws zero and max ticks plus one per segment boundary at the cost
// of delay still queued there. A boundary tick is dropped when its label
// matches one already drawn, which covers zero, max and repeats.
func (r *Renderer) yAxis(s *scene.Scene, p plot, segs []delaycost.Segment, max float64) []Tick {
	th := r.opts.Theme
	g := scene.Group(scene.WithRole(RoleYAxis))
	g.Append(scene.Path(pathLine(p.x, p.y, p.x, p.bottom()),
		scene.WithStroke(th.Color(theme.RoleAxis), 1)))

	pos := func(v float64) float64 {
		if max <= 0 {
			return p.bottom()
		}
		return p.bottom() - v/max*p.h
	}
	ticks := []Tick{
		{Value: 0, Label: r.valueLabel(0), Pos: p.bottom()},
		{Value: max, Label: r.valueLabel(max), Pos: p.y},
	}
	seen := map[string]bool{ticks[0].Label: true, ticks[1].Label: true}
	for _, seg := range segs {
		v := seg.RemainingCoD
		if v <= 0 {
			continue
		}
		label := r.valueLabel(v)
		if seen[label] {
			continue
		}
		seen[label] = true
		ticks = append(ticks, Tick{Value: v, Label: label, Pos: pos(v)})
	}

	for _, t := range ticks {
		g.Append(tickNode(t, th,
			pathLine(p.x-tickLength, t.Pos, p.x, t.Pos),
			p.x-tickLength-2, t.Pos+labelSize*0.35, scene.AnchorEnd))
	}
	s.Root.Append(g)
	return ticks
}

// valueLabel formats an axis value; zero uses the locale's axis origin
// label.
func (r *Renderer) valueLabel(v float64) string {
	if v == 0 {
		return r.opts.Locale.T(locale.KeyAxisZero)
	}
	return r.opts.Locale.Decimal(v, 2)
}

func tickNode(t Tick, th *theme.Theme, line string, lx, ly float64, anchor scene.Anchor) *scene.Node {
	value := strconv.FormatFloat(t.Value, 'f', -1, 64)
	return scene.Group(scene.WithKind(KindTick), scene.WithAttr(AttrValue, value)).Append(
		scene.Path(line, scene.WithStroke(th.Color(theme.RoleAxis), 1)),
		scene.Text(lx, ly, t.Label,
			scene.WithFill(th.Color(theme.RoleAxis)),
			scene.WithFontSize(labelSize-1),
			scene.WithAnchor(anchor)),
	)
}

func pathLine(x1, y1, x2, y2 float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	return "M " + f(x1) + " " + f(y1) + " L " + f(x2) + " " + f(y2)
}
