package bubble

import "github.com/vanderheijden86/wsjfboard/pkg/scene"

// PaintScheduler runs fn after the host has painted the current frame.
type PaintScheduler interface {
	AfterPaint(fn func())
}

// FontSource measures text with real font metrics and signals when those
// metrics are available.
type FontSource interface {
	scene.Measurer
	WhenReady(fn func())
}

// RowEqualizer aligns the heights of sibling cluster containers.
type RowEqualizer interface {
	EqualizeRows()
}

// Host bundles the capabilities a cluster render needs from its
// surroundings. Nil fields are replaced by the defaults documented on
// DefaultHost.
type Host struct {
	Paint PaintScheduler
	Fonts FontSource
	Rows  RowEqualizer
}

// DefaultHost paints immediately, reports bitmap font metrics as ready at
// once and ignores row equalization requests.
func DefaultHost() Host {
	return Host{
		Paint: ImmediatePaint{},
		Fonts: ReadyFonts{Measurer: scene.FaceMeasurer{}},
		Rows:  NoRows{},
	}
}

func (h Host) withDefaults() Host {
	d := DefaultHost()
	if h.Paint == nil {
		h.Paint = d.Paint
	}
	if h.Fonts == nil {
		h.Fonts = d.Fonts
	}
	if h.Rows == nil {
		h.Rows = d.Rows
	}
	return h
}

// ImmediatePaint runs callbacks synchronously.
type ImmediatePaint struct{}

// AfterPaint implements PaintScheduler.
func (ImmediatePaint) AfterPaint(fn func()) { fn() }

// ReadyFonts wraps a Measurer whose metrics are always available.
type ReadyFonts struct {
	scene.Measurer
}

// WhenReady implements FontSource.
func (ReadyFonts) WhenReady(fn func()) { fn() }

// NoRows is a RowEqualizer that does nothing.
type NoRows struct{}

// EqualizeRows implements RowEqualizer.
func (NoRows) EqualizeRows() {}

// RowsFunc adapts a function to RowEqualizer.
type RowsFunc func()

// EqualizeRows implements RowEqualizer.
func (f RowsFunc) EqualizeRows() { f() }
