// Package scene is the vector scene model shared by the cluster and chart
// renderers. Renderers build a fresh tree of Nodes per call; writers turn a
// Scene into SVG or PNG.
package scene

import (
	"sort"
	"strings"
)

// Kind identifies a primitive.
type Kind string

const (
	KindGroup  Kind = "group"
	KindCircle Kind = "circle"
	KindRect   Kind = "rect"
	KindPath   Kind = "path"
	KindText   Kind = "text"
)

// Stable attribute names used by hosts to wire interaction.
const (
	AttrID    = "data-id"
	AttrRole  = "data-role"
	AttrKind  = "data-kind"
	AttrSlot  = "data-slot"
	AttrClass = "class"
)

// Anchor is the horizontal text anchor.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Wedge is the raster geometry of a pie-slice path. Angles are radians,
// measured clockwise on screen from the positive x axis.
type Wedge struct {
	CX, CY, R  float64
	StartAngle float64
	EndAngle   float64
}

// Node is a single scene primitive or a group of them.
//
// Geometry by kind: circle uses X,Y as centre and R; rect uses X,Y as the
// top-left corner with W,H; text uses X,Y as the baseline start point;
// path uses D (and Wedge for raster output).
type Node struct {
	Kind Kind

	X, Y, W, H, R float64

	D     string
	Wedge *Wedge

	Text     string
	FontSize float64
	Anchor   Anchor

	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64 // 0 means fully opaque

	Title    string
	Attrs    map[string]string
	Children []*Node
}

// Attr returns the named attribute or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// SetAttr sets an attribute, allocating the map if needed.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// HasClass reports whether the class attribute contains c.
func (n *Node) HasClass(c string) bool {
	for _, have := range splitClasses(n.Attr(AttrClass)) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends c to the class attribute if not already present.
func (n *Node) AddClass(c string) {
	if n.HasClass(c) {
		return
	}
	if cur := n.Attr(AttrClass); cur != "" {
		n.SetAttr(AttrClass, cur+" "+c)
		return
	}
	n.SetAttr(AttrClass, c)
}

// RemoveClass drops c from the class attribute.
func (n *Node) RemoveClass(c string) {
	if !n.HasClass(c) {
		return
	}
	kept := make([]string, 0, 2)
	for _, have := range splitClasses(n.Attr(AttrClass)) {
		if have != c {
			kept = append(kept, have)
		}
	}
	if len(kept) == 0 {
		delete(n.Attrs, AttrClass)
		return
	}
	n.SetAttr(AttrClass, strings.Join(kept, " "))
}

// Append adds children to a group and returns the group.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Scene is a rendered picture: a canvas size and a root group.
type Scene struct {
	Width  float64
	Height float64
	Root   *Node
}

// New returns an empty scene of the given size.
func New(width, height float64, opts ...Option) *Scene {
	return &Scene{Width: width, Height: height, Root: Group(opts...)}
}

// Walk visits every node depth-first in document order. Returning false
// from fn skips the node's children.
func (s *Scene) Walk(fn func(n *Node) bool) {
	if s == nil || s.Root == nil {
		return
	}
	walk(s.Root, fn)
}

func walk(n *Node, fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

// Find returns all nodes matching pred in document order.
func (s *Scene) Find(pred func(n *Node) bool) []*Node {
	var out []*Node
	s.Walk(func(n *Node) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Count returns the number of nodes of the given kind.
func (s *Scene) Count(k Kind) int {
	return len(s.Find(func(n *Node) bool { return n.Kind == k }))
}

// ByKind returns nodes of kind k.
func (s *Scene) ByKind(k Kind) []*Node {
	return s.Find(func(n *Node) bool { return n.Kind == k })
}

// ByRole returns nodes whose data-role equals role.
func (s *Scene) ByRole(role string) []*Node {
	return s.Find(func(n *Node) bool { return n.Attr(AttrRole) == role })
}

// ByID returns nodes whose data-id equals id.
func (s *Scene) ByID(id string) []*Node {
	return s.Find(func(n *Node) bool { return n.Attr(AttrID) == id })
}

// IDs returns the distinct data-id values in the scene, sorted.
func (s *Scene) IDs() []string {
	seen := make(map[string]bool)
	s.Walk(func(n *Node) bool {
		if id := n.Attr(AttrID); id != "" {
			seen[id] = true
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func splitClasses(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
