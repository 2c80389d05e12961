package scene

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"
)

// RenderPNG rasterizes the scene. Paths are drawn only when they carry
// Wedge geometry; text uses basicfont scaled to each node's font size.
func RenderPNG(s *Scene) (*gg.Context, error) {
	if s == nil || s.Root == nil {
		return nil, fmt.Errorf("nil scene")
	}
	dc := gg.NewContext(int(math.Ceil(s.Width)), int(math.Ceil(s.Height)))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	drawNode(dc, s.Root)
	return dc, nil
}

// SavePNG rasterizes the scene to path.
func SavePNG(path string, s *Scene) error {
	dc, err := RenderPNG(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return dc.SavePNG(path)
}

func drawNode(dc *gg.Context, n *Node) {
	switch n.Kind {
	case KindGroup:
		for _, c := range n.Children {
			drawNode(dc, c)
		}
	case KindCircle:
		dc.DrawCircle(n.X, n.Y, n.R)
		fillAndStroke(dc, n)
	case KindRect:
		dc.DrawRectangle(n.X, n.Y, n.W, n.H)
		fillAndStroke(dc, n)
	case KindPath:
		if n.Wedge == nil {
			if polyline(dc, n.D) {
				fillAndStroke(dc, n)
			}
			return
		}
		w := n.Wedge
		dc.NewSubPath()
		dc.MoveTo(w.CX, w.CY)
		dc.DrawArc(w.CX, w.CY, w.R, w.StartAngle, w.EndAngle)
		dc.ClosePath()
		fillAndStroke(dc, n)
	case KindText:
		drawText(dc, n)
	}
}

// polyline traces path data made only of M, L and Z commands. Anything
// else is left undrawn.
func polyline(dc *gg.Context, d string) bool {
	fields := strings.Fields(strings.ReplaceAll(d, ",", " "))
	var cmd string
	var pt []float64
	for _, f := range fields {
		switch f {
		case "M", "L":
			cmd, pt = f, pt[:0]
			continue
		case "Z", "z":
			dc.ClosePath()
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || cmd == "" {
			dc.ClearPath()
			return false
		}
		pt = append(pt, v)
		if len(pt) < 2 {
			continue
		}
		if cmd == "M" {
			dc.MoveTo(pt[0], pt[1])
			cmd = "L"
		} else {
			dc.LineTo(pt[0], pt[1])
		}
		pt = pt[:0]
	}
	return cmd != ""
}

func fillAndStroke(dc *gg.Context, n *Node) {
	if n.Fill != "" && n.Fill != "none" {
		setColor(dc, n.Fill, n.Opacity)
		if n.Stroke != "" {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if n.Stroke != "" {
		setColor(dc, n.Stroke, n.Opacity)
		dc.SetLineWidth(n.StrokeWidth)
		dc.Stroke()
	}
	dc.ClearPath()
}

func drawText(dc *gg.Context, n *Node) {
	setColor(dc, n.Fill, n.Opacity)
	scale := n.FontSize / 13
	if scale <= 0 {
		scale = 1
	}
	ax := 0.0
	switch n.Anchor {
	case AnchorMiddle:
		ax = 0.5
	case AnchorEnd:
		ax = 1
	}
	dc.Push()
	dc.ScaleAbout(scale, scale, n.X, n.Y)
	dc.DrawStringAnchored(n.Text, n.X, n.Y, ax, 0)
	dc.Pop()
}

func setColor(dc *gg.Context, hex string, opacity float64) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{}
	}
	a := opacity
	if a <= 0 || a > 1 {
		a = 1
	}
	dc.SetRGBA(c.R, c.G, c.B, a)
}
