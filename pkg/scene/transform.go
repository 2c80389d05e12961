package scene

import (
	"strconv"
	"strings"
)

// Translate shifts n and all its descendants by (dx, dy). Path data is
// rewritten for absolute M, L and A commands; relative commands keep their
// offsets.
func Translate(n *Node, dx, dy float64) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindCircle, KindRect, KindText:
		n.X += dx
		n.Y += dy
	case KindPath:
		n.D = translatePath(n.D, dx, dy)
		if n.Wedge != nil {
			w := *n.Wedge
			w.CX += dx
			w.CY += dy
			n.Wedge = &w
		}
	}
	for _, c := range n.Children {
		Translate(c, dx, dy)
	}
}

func translatePath(d string, dx, dy float64) string {
	fields := strings.Fields(strings.ReplaceAll(d, ",", " "))
	var cmd string
	param := 0
	for i, f := range fields {
		if len(f) == 1 && strings.ContainsAny(f, "MLAZHVCQSTmlazhvcqst") {
			cmd, param = f, 0
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		var shift float64
		switch cmd {
		case "M", "L":
			shift = dx
			if param%2 == 1 {
				shift = dy
			}
		case "A":
			switch param % 7 {
			case 5:
				shift = dx
			case 6:
				shift = dy
			}
		}
		param++
		if shift != 0 {
			fields[i] = num(v + shift)
		}
	}
	return strings.Join(fields, " ")
}
