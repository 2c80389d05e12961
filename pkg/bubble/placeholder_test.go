package bubble

import (
	"math"
	"strings"
	"testing"

	"github.com/vanderheijden86/wsjfboard/pkg/model"
	"github.com/vanderheijden86/wsjfboard/pkg/scene"
)

func TestArc_Descriptors(t *testing.T) {
	tests := []struct {
		count    int
		ok       bool
		degrees  float64
		largeArc int
		end      Point
	}{
		{0, false, 0, 0, Point{}},
		{1, true, 120, 0, Point{10 * math.Sqrt(3) / 2, 5}},
		{2, true, 240, 1, Point{-10 * math.Sqrt(3) / 2, 5}},
		{3, false, 0, 0, Point{}},
	}
	for _, tt := range tests {
		d, ok := Arc(tt.count, 10)
		if ok != tt.ok {
			t.Errorf("Arc(%d) ok = %v, want %v", tt.count, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if d.Degrees != tt.degrees || d.LargeArc != tt.largeArc || d.Sweep != 1 {
			t.Errorf("Arc(%d) = %+v", tt.count, d)
		}
		if d.Start != (Point{0, -10}) {
			t.Errorf("Arc(%d) start = %v, want 12 o'clock", tt.count, d.Start)
		}
		if math.Abs(d.End.X-tt.end.X) > 1e-9 || math.Abs(d.End.Y-tt.end.Y) > 1e-9 {
			t.Errorf("Arc(%d) end = %v, want %v", tt.count, d.End, tt.end)
		}
	}
}

func TestArc_PathData(t *testing.T) {
	d, _ := Arc(1, 10)
	got := d.PathData(50, 50)
	want := "M 50 50 L 50 40 A 10 10 0 0 1 58.66 55 Z"
	if got != want {
		t.Errorf("PathData = %q, want %q", got, want)
	}
	d2, _ := Arc(2, 10)
	if !strings.Contains(d2.PathData(0, 0), "A 10 10 0 1 1") {
		t.Errorf("240 degree arc must set the large-arc flag: %s", d2.PathData(0, 0))
	}
}

func TestPlaceholder_ArcByPresentCount(t *testing.T) {
	r := NewRenderer(DefaultOptions(), Host{})
	tests := []struct {
		name   string
		values model.MetricTriple
		flags  string
	}{
		{"one slot", model.MetricTriple{0, 5, 0}, "0 0 1"},
		{"two slots", model.MetricTriple{3, 0, 2}, "0 1 1"},
		{"none", model.MetricTriple{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := r.Placeholder(sizeCluster("P", tt.values))
			if got := s.Count(scene.KindCircle); got != 2 {
				t.Errorf("circles = %d, want 2 decorative", got)
			}
			if got := s.Count(scene.KindText); got != 0 {
				t.Errorf("texts = %d, want 0", got)
			}
			paths := s.ByKind(scene.KindPath)
			if tt.flags == "" {
				if len(paths) != 0 {
					t.Errorf("expected no arc, got %d paths", len(paths))
				}
				return
			}
			if len(paths) != 1 {
				t.Fatalf("paths = %d, want 1", len(paths))
			}
			if !strings.Contains(paths[0].D, tt.flags) {
				t.Errorf("path %q missing flags %q", paths[0].D, tt.flags)
			}
			if paths[0].Attr(scene.AttrID) != "P" || paths[0].Attr(scene.AttrRole) != RolePlaceholder {
				t.Errorf("arc attrs = %v", paths[0].Attrs)
			}
			if paths[0].Wedge == nil {
				t.Error("arc should carry raster geometry")
			}
		})
	}
}

func TestPlaceholderRadius_Override(t *testing.T) {
	opts := DefaultOptions()
	opts.PlaceholderRadius = 30
	r := NewRenderer(opts, Host{})
	s := r.Placeholder(sizeCluster("P", model.MetricTriple{1, 0, 0}))
	if !strings.Contains(s.ByKind(scene.KindPath)[0].D, "A 30 30") {
		t.Errorf("override radius not used: %s", s.ByKind(scene.KindPath)[0].D)
	}
}
