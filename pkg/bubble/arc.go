package bubble

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vanderheijden86/wsjfboard/pkg/scene"
)

// Point is a 2D coordinate with y growing downwards.
type Point struct {
	X, Y float64
}

// ArcDescriptor describes a clockwise arc from 12 o'clock, relative to the
// circle centre.
type ArcDescriptor struct {
	Start    Point
	End      Point
	Radius   float64
	Degrees  float64
	LargeArc int
	Sweep    int
}

// Arc returns the pie-slice arc for a placeholder with count estimated
// slots out of three. ok is false when no arc is drawn (count outside 1..2).
func Arc(count int, radius float64) (ArcDescriptor, bool) {
	if count < 1 || count > 2 || radius <= 0 {
		return ArcDescriptor{}, false
	}
	deg := float64(count) / 3 * 360
	theta := deg * math.Pi / 180
	d := ArcDescriptor{
		Start:   Point{X: 0, Y: -radius},
		End:     Point{X: radius * math.Sin(theta), Y: -radius * math.Cos(theta)},
		Radius:  radius,
		Degrees: deg,
		Sweep:   1,
	}
	if deg > 180 {
		d.LargeArc = 1
	}
	return d, true
}

// PathData returns a closed pie-slice path centred on (cx, cy).
func (a ArcDescriptor) PathData(cx, cy float64) string {
	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d %d %s %s Z",
		coord(cx), coord(cy),
		coord(cx+a.Start.X), coord(cy+a.Start.Y),
		coord(a.Radius), coord(a.Radius),
		a.LargeArc, a.Sweep,
		coord(cx+a.End.X), coord(cy+a.End.Y))
}

// Wedge returns the raster geometry of the slice centred on (cx, cy).
func (a ArcDescriptor) Wedge(cx, cy float64) scene.Wedge {
	start := -math.Pi / 2
	return scene.Wedge{
		CX:         cx,
		CY:         cy,
		R:          a.Radius,
		StartAngle: start,
		EndAngle:   start + a.Degrees*math.Pi/180,
	}
}

func coord(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
