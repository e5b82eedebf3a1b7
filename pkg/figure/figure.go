// Package figure is the renderer-neutral description of what ctrlviz draws:
// stacks of time-series panels and 3D pose scenes.
package figure

import "gonum.org/v1/gonum/spatial/r3"

// Figure is one rendered document.
type Figure struct {
	// Name identifies the figure in logs and the viewer ("force", "joints", "pose").
	Name  string
	Title string

	// Panels are drawn top to bottom, sharing the x axis. Empty for scenes.
	Panels []Panel

	// TickSpacing is the distance between major x ticks. Zero lets the
	// renderer choose.
	TickSpacing int

	// Scene is set for 3D figures.
	Scene *Scene
}

// Panel is one subplot.
type Panel struct {
	Series []Series
	Units  string
	Grid   bool
}

// Series is one line in a panel. Values are plotted against their index.
type Series struct {
	Label  string
	Color  string // CSS color name
	Width  float64
	Values []float32

	// ZOrder puts higher series on top.
	ZOrder int
}

// Samples returns the longest series length in the figure.
func (f *Figure) Samples() int {
	n := 0
	for _, p := range f.Panels {
		for _, s := range p.Series {
			if len(s.Values) > n {
				n = len(s.Values)
			}
		}
	}
	return n
}

// LineStyle is the stroke of a scene element.
type LineStyle string

const (
	Solid  LineStyle = "solid"
	Dashed LineStyle = "dashed"
	Dotted LineStyle = "dotted"
)

// Segment is a straight 3D line, e.g. one axis of a frame triad.
type Segment struct {
	From, To r3.Vec
	Label    string
	Color    string
	Style    LineStyle
}

// Arrow3D is a directed segment between two 3D endpoints. How the head is
// drawn is up to the renderer's projection.
type Arrow3D struct {
	From, To r3.Vec
	Label    string
	Color    string
}

// Vector returns To - From.
func (a Arrow3D) Vector() r3.Vec {
	return r3.Sub(a.To, a.From)
}

// Scene is a 3D figure.
type Scene struct {
	Segments []Segment
	Arrows   []Arrow3D
	Camera   Camera

	// Bounds is the equal-aspect cube the scene is viewed in.
	Bounds Box
}

// Box is an axis-aligned 3D box.
type Box struct {
	Min, Max r3.Vec
}

// Points returns every endpoint in the scene.
func (s *Scene) Points() []r3.Vec {
	pts := make([]r3.Vec, 0, 2*(len(s.Segments)+len(s.Arrows)))
	for _, seg := range s.Segments {
		pts = append(pts, seg.From, seg.To)
	}
	for _, a := range s.Arrows {
		pts = append(pts, a.From, a.To)
	}
	return pts
}
