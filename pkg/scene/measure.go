package scene

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the rendered extent of a string at a font size.
// ascent is the height above the baseline.
type Measurer interface {
	Measure(text string, size float64) (width, ascent float64)
}

// ApproxMeasurer estimates text extents from display cell widths. It is the
// synchronous first-pass metric used before real font metrics are available.
type ApproxMeasurer struct{}

// Measure implements Measurer.
func (ApproxMeasurer) Measure(text string, size float64) (float64, float64) {
	return 0.6 * size * float64(runewidth.StringWidth(text)), 0.7 * size
}

// FaceMeasurer measures with a bitmap font face scaled to the requested size.
// The zero value uses basicfont.Face7x13, which is also what the PNG writer draws with.
type FaceMeasurer struct {
	Face font.Face
	// Size is the pixel size the face was designed for.
	Size float64
}

func (m FaceMeasurer) face() (font.Face, float64) {
	if m.Face == nil || m.Size <= 0 {
		return basicfont.Face7x13, 13
	}
	return m.Face, m.Size
}

// Measure implements Measurer.
func (m FaceMeasurer) Measure(text string, size float64) (float64, float64) {
	f, native := m.face()
	scale := size / native
	adv := font.MeasureString(f, text)
	ascent := f.Metrics().Ascent
	return fixedToFloat(adv) * scale, fixedToFloat(ascent) * scale
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
