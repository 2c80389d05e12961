package bubble

import "github.com/vanderheijden86/wsjfboard/pkg/scene"

// Recenter centres every slot label on its data circle using m. Positions
// are derived from the circle, never from the label's current position, so
// repeated calls converge instead of drifting.
func Recenter(s *scene.Scene, m scene.Measurer) {
	if s == nil || m == nil {
		return
	}
	circles := make(map[string]*scene.Node, 3)
	var labels []*scene.Node
	s.Walk(func(n *scene.Node) bool {
		slot := n.Attr(scene.AttrSlot)
		if slot == "" {
			return true
		}
		switch n.Kind {
		case scene.KindCircle:
			circles[slot] = n
		case scene.KindText:
			labels = append(labels, n)
		}
		return true
	})
	for _, l := range labels {
		c, ok := circles[l.Attr(scene.AttrSlot)]
		if !ok {
			continue
		}
		w, ascent := m.Measure(l.Text, l.FontSize)
		l.Anchor = scene.AnchorStart
		l.X = c.X - w/2
		l.Y = c.Y + ascent/2
	}
}
