package bubble

import (
	"strconv"

	"github.com/vanderheijden86/wsjfboard/pkg/debug"
	"github.com/vanderheijden86/wsjfboard/pkg/metrics"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
	"github.com/vanderheijden86/wsjfboard/pkg/theme"
)

// PlaceholderRadius returns R_p for this renderer.
func (r *Renderer) PlaceholderRadius() float64 {
	if r.opts.PlaceholderRadius > 0 {
		return r.opts.PlaceholderRadius
	}
	return r.backgroundRadius() * 0.7
}

// Placeholder renders an incomplete triple: the two decorative circles and,
// when at least one slot is estimated, one pie slice sweeping a third of the
// circle per estimated slot.
func (r *Renderer) Placeholder(c Cluster) *scene.Scene {
	defer metrics.Timer(metrics.ClusterRender)()

	s := scene.New(r.opts.Size, r.opts.Size,
		scene.WithID(c.ItemID),
		scene.WithKind(KindPlaceholder),
		scene.WithRole(string(c.View)))
	s.Root.Append(r.decorations(c.ItemID)...)

	count := c.Values.Present()
	if count > 2 {
		// complete triples belong to Layout
		count = 2
	}
	if arc, ok := Arc(count, r.PlaceholderRadius()); ok {
		center := r.opts.Size / 2
		s.Root.Append(scene.WedgePath(arc.PathData(center, center), arc.Wedge(center, center),
			scene.WithFill(r.opts.Theme.Color(theme.RolePlaceholder)),
			scene.WithID(c.ItemID),
			scene.WithRole(RolePlaceholder),
			scene.WithAttr("data-present", strconv.Itoa(count))))
	}
	debug.Log("bubble: placeholder %s/%s present=%d", c.ItemID, c.View, count)

	r.schedule(s, false)
	return s
}
