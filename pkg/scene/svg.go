package scene

import (
	"fmt"
	"html"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// svgUnit is the number of viewBox units per pixel. svgo takes integer
// coordinates, so geometry is written at 1/svgUnit pixel resolution.
const svgUnit = 10

func u(v float64) int {
	return int(math.Round(v * svgUnit))
}

// WriteSVG serializes the scene as a standalone SVG document.
func WriteSVG(w io.Writer, s *Scene) error {
	if s == nil || s.Root == nil {
		return fmt.Errorf("nil scene")
	}
	width := int(math.Ceil(s.Width))
	height := int(math.Ceil(s.Height))
	canvas := svg.New(w)
	canvas.Startview(width, height, 0, 0, width*svgUnit, height*svgUnit)
	writeNode(canvas, s.Root)
	canvas.End()
	return nil
}

// SaveSVG writes the scene to path, creating parent directories.
func SaveSVG(path string, s *Scene) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSVG(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SVGString renders the scene to a string. Handy for tests and embedding.
func SVGString(s *Scene) string {
	var b strings.Builder
	if err := WriteSVG(&b, s); err != nil {
		return ""
	}
	return b.String()
}

func writeNode(canvas *svg.SVG, n *Node) {
	attrs := nodeAttrs(n)
	switch n.Kind {
	case KindGroup:
		canvas.Group(attrs...)
		if n.Title != "" {
			canvas.Title(n.Title)
		}
		for _, c := range n.Children {
			writeNode(canvas, c)
		}
		canvas.Gend()
		return
	}

	// Leaf tooltips need a wrapping group to carry the <title>.
	if n.Title != "" {
		canvas.Group(`class="tip"`)
		canvas.Title(n.Title)
		defer canvas.Gend()
	}

	switch n.Kind {
	case KindCircle:
		canvas.Circle(u(n.X), u(n.Y), u(n.R), attrs...)
	case KindRect:
		canvas.Rect(u(n.X), u(n.Y), u(n.W), u(n.H), attrs...)
	case KindPath:
		canvas.Path(scalePath(n.D), attrs...)
	case KindText:
		canvas.Text(u(n.X), u(n.Y), n.Text, attrs...)
	}
}

// nodeAttrs returns svgo style/attribute arguments. Strings containing '='
// are emitted verbatim by svgo; the rest become the style attribute.
func nodeAttrs(n *Node) []string {
	var style []string
	if n.Kind != KindGroup {
		fill := n.Fill
		if fill == "" {
			fill = "none"
		}
		style = append(style, "fill:"+fill)
	}
	if n.Stroke != "" {
		style = append(style, "stroke:"+n.Stroke)
		style = append(style, "stroke-width:"+num(n.StrokeWidth*svgUnit))
	}
	if n.Opacity > 0 && n.Opacity < 1 {
		style = append(style, "opacity:"+num(n.Opacity))
	}
	if n.Kind == KindText {
		style = append(style, "font-size:"+num(n.FontSize*svgUnit)+"px", "font-family:sans-serif")
		if n.Anchor != "" && n.Anchor != AnchorStart {
			style = append(style, "text-anchor:"+string(n.Anchor))
		}
	}

	var out []string
	if len(style) > 0 {
		out = append(out, strings.Join(style, ";"))
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, fmt.Sprintf(`%s="%s"`, k, html.EscapeString(n.Attrs[k])))
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// scalePath rescales the numeric tokens of path data into viewBox units.
// Arc flags (the 4th and 5th A parameters) are left untouched.
func scalePath(d string) string {
	fields := strings.Fields(strings.ReplaceAll(d, ",", " "))
	arcParam := -1
	for i, f := range fields {
		if len(f) == 1 && strings.ContainsAny(f, "MLAZHVCQSTmlazhvcqst") {
			arcParam = -1
			if f == "A" || f == "a" {
				arcParam = 0
			}
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		if arcParam >= 0 {
			idx := arcParam % 7
			arcParam++
			if idx == 2 || idx == 3 || idx == 4 {
				continue // rotation, large-arc flag, sweep flag
			}
		}
		fields[i] = num(math.Round(v*svgUnit*100) / 100)
	}
	return strings.Join(fields, " ")
}
