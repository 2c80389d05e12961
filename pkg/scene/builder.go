package scene

// Option configures a node at construction time.
type Option func(*Node)

// WithID sets the data-id attribute.
func WithID(id string) Option {
	return WithAttr(AttrID, id)
}

// WithRole sets the data-role attribute.
func WithRole(role string) Option {
	return WithAttr(AttrRole, role)
}

// WithKind sets the data-kind attribute.
func WithKind(kind string) Option {
	return WithAttr(AttrKind, kind)
}

// WithClass adds a CSS class.
func WithClass(class string) Option {
	return func(n *Node) { n.AddClass(class) }
}

// WithAttr sets an arbitrary attribute. Empty values are ignored.
func WithAttr(name, value string) Option {
	return func(n *Node) {
		if value == "" {
			return
		}
		n.SetAttr(name, value)
	}
}

// WithFill sets the fill color.
func WithFill(c string) Option {
	return func(n *Node) { n.Fill = c }
}

// WithStroke sets stroke color and width.
func WithStroke(c string, width float64) Option {
	return func(n *Node) {
		n.Stroke = c
		n.StrokeWidth = width
	}
}

// WithOpacity sets the opacity (0 < o <= 1).
func WithOpacity(o float64) Option {
	return func(n *Node) { n.Opacity = o }
}

// WithTitle attaches a tooltip.
func WithTitle(t string) Option {
	return func(n *Node) { n.Title = t }
}

// WithFontSize sets the text size in pixels.
func WithFontSize(px float64) Option {
	return func(n *Node) { n.FontSize = px }
}

// WithAnchor sets the text anchor.
func WithAnchor(a Anchor) Option {
	return func(n *Node) { n.Anchor = a }
}

func apply(n *Node, opts []Option) *Node {
	for _, o := range opts {
		if o != nil {
			o(n)
		}
	}
	return n
}

// Group creates a container node.
func Group(opts ...Option) *Node {
	return apply(&Node{Kind: KindGroup}, opts)
}

// Circle creates a circle centred at (cx, cy).
func Circle(cx, cy, r float64, opts ...Option) *Node {
	return apply(&Node{Kind: KindCircle, X: cx, Y: cy, R: r}, opts)
}

// Rect creates a rectangle with top-left corner (x, y).
func Rect(x, y, w, h float64, opts ...Option) *Node {
	return apply(&Node{Kind: KindRect, X: x, Y: y, W: w, H: h}, opts)
}

// Path creates a path from SVG path data.
func Path(d string, opts ...Option) *Node {
	return apply(&Node{Kind: KindPath, D: d}, opts)
}

// WedgePath creates a pie-slice path with raster geometry attached.
func WedgePath(d string, w Wedge, opts ...Option) *Node {
	n := Path(d, opts...)
	n.Wedge = &w
	return n
}

// Text creates a text node with its baseline start at (x, y).
func Text(x, y float64, s string, opts ...Option) *Node {
	n := &Node{Kind: KindText, X: x, Y: y, Text: s, FontSize: 12, Anchor: AnchorStart}
	return apply(n, opts)
}
