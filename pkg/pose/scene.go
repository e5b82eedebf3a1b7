package pose

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ctrlviz/ctrlviz/pkg/figure"
)

// SceneOptions controls the pose scene geometry.
type SceneOptions struct {
	// AxisLength is the length of every frame triad axis.
	AxisLength float64
	Camera     figure.Camera
}

var axisNames = [3]string{"X", "Y", "Z"}
var axisColors = [3]string{"red", "green", "blue"}

// BuildFigure lays out the world frame, both end-effector frames, the twist
// rotated into the measured frame, and the measured-to-predicted offset.
func BuildFigure(s *Snapshot, opts SceneOptions) *figure.Figure {
	twist := s.Twist.In(s.Measured)
	origin := s.Measured.Position

	scene := &figure.Scene{Camera: opts.Camera}

	scene.Segments = append(scene.Segments, triad(Identity(), opts.AxisLength, "Base", figure.Solid)...)
	scene.Segments = append(scene.Segments, triad(s.Measured, opts.AxisLength, "Current", figure.Dashed)...)
	scene.Segments = append(scene.Segments, triad(s.Predicted, opts.AxisLength, "Predicted", figure.Dotted)...)

	scene.Arrows = []figure.Arrow3D{
		{From: origin, To: r3.Add(origin, twist.Linear), Label: "Linear Twist", Color: "purple"},
		{From: origin, To: r3.Add(origin, twist.Angular), Label: "Angular Twist", Color: "black"},
		{From: origin, To: s.Predicted.Position, Color: "orange"},
	}

	scene.Bounds = figure.EqualBounds(scene.Points())

	return &figure.Figure{
		Name:  "pose",
		Title: Title(twist),
		Scene: scene,
	}
}

// Title formats the rotated twist the way the controller's test harness
// prints it.
func Title(t Twist) string {
	c := t.Components()
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = formatComponent(v)
	}
	return fmt.Sprintf("Twist test: [%s]", strings.Join(parts, ", "))
}

// formatComponent prints v at float32 precision, keeping a decimal point
// on integral values (2.0, not 2).
func formatComponent(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(float64(float32(v)), 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// triad returns the three axes of f, each scaled to length and anchored at
// f's position.
func triad(f Frame, length float64, name string, style figure.LineStyle) []figure.Segment {
	out := make([]figure.Segment, 3)
	for k := range out {
		out[k] = figure.Segment{
			From:  f.Position,
			To:    r3.Add(f.Position, r3.Scale(length, f.Axis(k))),
			Label: fmt.Sprintf("%s: %s axis", name, axisNames[k]),
			Color: axisColors[k],
			Style: style,
		}
	}
	return out
}
