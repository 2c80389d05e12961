// Package bubble lays out a metric triple as a cluster of three tangent
// circles, or as a pie-slice placeholder while the triple is incomplete.
package bubble

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/metrics"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
)

// EdgePairing selects which two circles share the primary tangent edge.
type EdgePairing string

const (
	PairLargest EdgePairing = "largest"
	PairRandom  EdgePairing = "random"
)

// ParseEdgePairing parses a pairing name. Empty selects PairLargest.
func ParseEdgePairing(s string) (EdgePairing, error) {
	switch EdgePairing(strings.ToLower(strings.TrimSpace(s))) {
	case "", PairLargest:
		return PairLargest, nil
	case PairRandom:
		return PairRandom, nil
	default:
		return "", fmt.Errorf("unknown edge pairing %q (want largest or random)", s)
	}
}

// Scene roles and kinds emitted by the renderer.
const (
	RoleBackground  = "background"
	RoleOutline     = "outline"
	RolePlaceholder = "placeholder"

	KindCluster     = "cluster"
	KindPlaceholder = "placeholder"
	KindData        = "data"
	KindLabel       = "label"
)

// zeroOpacity is applied to circles for zero-valued slots.
const zeroOpacity = 0.05

// Options controls cluster layout.
type Options struct {
	// Size is the side of the square cluster canvas in pixels.
	Size float64
	// EdgePairing picks the primary tangent pair.
	EdgePairing EdgePairing
	// Padding is a theme spacing token or a numeric override.
	Padding string
	// PlaceholderRadius is R_p; 0 uses 70% of the background radius.
	PlaceholderRadius float64
	Scale             Scale
	Theme             *theme.Theme
	// Rand drives PairRandom. Nil uses a randomly seeded source.
	Rand *rand.Rand
}

// DefaultOptions returns the standard 120px cluster.
func DefaultOptions() Options {
	return Options{
		Size:        120,
		EdgePairing: PairLargest,
		Padding:     "sm",
		Scale:       DefaultScale(),
		Theme:       theme.Default(),
	}
}

// Cluster is the input of one render: an item's triple and the roles of its
// three slots (used as color tokens).
type Cluster struct {
	ItemID string
	View   model.View
	Values model.MetricTriple
	Roles  [3]string
}

// ClusterFor builds the cluster input for one view of an item.
func ClusterFor(item model.WorkItem, v model.View) Cluster {
	return Cluster{
		ItemID: item.ID,
		View:   v,
		Values: item.Triple(v),
		Roles:  v.Slots(),
	}
}

// Renderer produces cluster scenes. It is safe for concurrent use.
type Renderer struct {
	opts Options
	host Host

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRenderer returns a renderer. Zero-valued options fall back to
// DefaultOptions; nil host capabilities fall back to DefaultHost.
func NewRenderer(opts Options, host Host) *Renderer {
	d := DefaultOptions()
	if opts.Size <= 0 {
		opts.Size = d.Size
	}
	if opts.EdgePairing == "" {
		opts.EdgePairing = d.EdgePairing
	}
	if opts.Theme == nil {
		opts.Theme = d.Theme
	}
	opts.Scale = opts.Scale.normalized()
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Renderer{opts: opts, host: host.withDefaults(), rng: rng}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// Render routes a complete triple to Layout and anything else to
// Placeholder.
func (r *Renderer) Render(c Cluster) *scene.Scene {
	if c.Values.Complete() {
		return r.Layout(c)
	}
	return r.Placeholder(c)
}

// RenderItem renders one view of a work item.
func (r *Renderer) RenderItem(item model.WorkItem, v model.View) *scene.Scene {
	return r.Render(ClusterFor(item, v))
}

func (r *Renderer) backgroundRadius() float64 {
	return r.opts.Size/2 - 2
}

// decorations returns the background and outline circles of a cluster.
func (r *Renderer) decorations(id string) []*scene.Node {
	c := r.opts.Size / 2
	rb := r.backgroundRadius()
	th := r.opts.Theme
	return []*scene.Node{
		scene.Circle(c, c, rb,
			scene.WithFill(th.Color(theme.RoleBackground)),
			scene.WithID(id),
			scene.WithRole(RoleBackground)),
		scene.Circle(c, c, rb,
			scene.WithStroke(th.Color(theme.RoleStroke), 1),
			scene.WithID(id),
			scene.WithRole(RoleOutline)),
	}
}

// Layout packs the three values as mutually tangent circles. It always
// emits five circles (background, outline, one per slot in slot order) and
// three labels, whatever the values; zero values get a minimal, nearly
// transparent circle.
func (r *Renderer) Layout(c Cluster) *scene.Scene {
	defer metrics.Timer(metrics.ClusterRender)()

	values := c.Values.Clamp()
	radii := r.opts.Scale.Radii(values)
	pad := r.opts.Theme.Padding(r.opts.Padding)
	pair, third := r.pickPair(radii)
	centers, radii := tangentTriangle(radii, pair, third, pad)
	centers, radii = r.fit(centers, radii)

	s := scene.New(r.opts.Size, r.opts.Size,
		scene.WithID(c.ItemID),
		scene.WithKind(KindCluster),
		scene.WithRole(string(c.View)))
	s.Root.Append(r.decorations(c.ItemID)...)

	th := r.opts.Theme
	labels := make([]*scene.Node, 0, 3)
	for i := 0; i < 3; i++ {
		slot := strconv.Itoa(i)
		opts := []scene.Option{
			scene.WithFill(th.Color(c.Roles[i])),
			scene.WithID(c.ItemID),
			scene.WithRole(c.Roles[i]),
			scene.WithKind(KindData),
			scene.WithAttr(scene.AttrSlot, slot),
		}
		if values[i] == 0 {
			opts = append(opts, scene.WithOpacity(zeroOpacity))
		}
		s.Root.Append(scene.Circle(centers[i].X, centers[i].Y, radii[i], opts...))

		labels = append(labels, scene.Text(0, 0, formatValue(values[i]),
			scene.WithFill(th.NumberColor(c.Roles[i])),
			scene.WithFontSize(labelSize(radii[i])),
			scene.WithID(c.ItemID),
			scene.WithRole(c.Roles[i]),
			scene.WithKind(KindLabel),
			scene.WithAttr(scene.AttrSlot, slot)))
	}
	// Labels go after all circles so none is painted over.
	s.Root.Append(labels...)

	// Phase one: approximate metrics, synchronously.
	Recenter(s, scene.ApproxMeasurer{})
	debug.Log("bubble: laid out %s/%s values=%v radii=%v pair=%v", c.ItemID, c.View, values, radii, pair)

	r.schedule(s, true)
	return s
}

// schedule queues the post-paint work of a render: the font-metric
// re-centering (when the scene has labels) and then the row equalization.
func (r *Renderer) schedule(s *scene.Scene, labels bool) {
	h := r.host
	if labels {
		h.Paint.AfterPaint(func() {
			h.Fonts.WhenReady(func() { Recenter(s, h.Fonts) })
		})
	}
	h.Paint.AfterPaint(h.Rows.EqualizeRows)
}

// pickPair returns the slot indices of the primary tangent pair and the
// remaining slot.
func (r *Renderer) pickPair(radii [3]float64) ([2]int, int) {
	if r.opts.EdgePairing == PairRandom {
		r.mu.Lock()
		k := r.rng.IntN(3)
		r.mu.Unlock()
		pairs := [3][2]int{{0, 1}, {0, 2}, {1, 2}}
		p := pairs[k]
		return p, 3 - p[0] - p[1]
	}
	order := [3]int{0, 1, 2}
	// stable sort by radius, largest first
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && radii[order[j]] > radii[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return [2]int{order[0], order[1]}, order[2]
}

// tangentTriangle places pair[0] at the origin, pair[1] on the positive x
// axis and the third circle above the axis, each pair separated by pad.
func tangentTriangle(radii [3]float64, pair [2]int, third int, pad float64) ([3]Point, [3]float64) {
	a, b, c := pair[0], pair[1], third
	dAB := radii[a] + radii[b] + pad
	dAC := radii[a] + radii[c] + pad
	dBC := radii[b] + radii[c] + pad

	var centers [3]Point
	centers[a] = Point{0, 0}
	centers[b] = Point{dAB, 0}
	x := (dAC*dAC - dBC*dBC + dAB*dAB) / (2 * dAB)
	y := math.Sqrt(math.Max(0, dAC*dAC-x*x))
	centers[c] = Point{x, -y}
	return centers, radii
}

// fit centres the circles' bounding box on the canvas and scales the
// cluster down uniformly when it would spill out of the background circle.
func (r *Renderer) fit(centers [3]Point, radii [3]float64) ([3]Point, [3]float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range centers {
		minX = math.Min(minX, p.X-radii[i])
		maxX = math.Max(maxX, p.X+radii[i])
		minY = math.Min(minY, p.Y-radii[i])
		maxY = math.Max(maxY, p.Y+radii[i])
	}
	mid := Point{(minX + maxX) / 2, (minY + maxY) / 2}

	extent := 0.0
	for i, p := range centers {
		extent = math.Max(extent, math.Hypot(p.X-mid.X, p.Y-mid.Y)+radii[i])
	}
	avail := r.backgroundRadius() - 4
	k := 1.0
	if extent > avail && extent > 0 {
		k = avail / extent
	}

	c := r.opts.Size / 2
	for i := range centers {
		centers[i] = Point{
			X: c + (centers[i].X-mid.X)*k,
			Y: c + (centers[i].Y-mid.Y)*k,
		}
		radii[i] *= k
	}
	return centers, radii
}

func labelSize(radius float64) float64 {
	return math.Max(8, math.Min(16, radius*0.8))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
