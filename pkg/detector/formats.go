package detector

import (
	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/pose"
)

// Shape says how a format is recognised.
type Shape int

const (
	// ShapeRows is a table: every sample row has the same column count.
	ShapeRows Shape = iota
	// ShapeValues is a fixed number of values, laid out on any lines.
	ShapeValues
)

// LayoutFormat is a known controller log layout.
type LayoutFormat struct {
	Name        string // Subcommand that plots it
	Description string
	Shape       Shape

	// Layout applies to ShapeRows formats.
	Layout config.Layout

	// Values applies to ShapeValues formats.
	Values int

	// PositiveHeader marks formats whose header row must be positive,
	// like joint torque limits.
	PositiveHeader bool
}

// MinLines is the shortest file that can hold one sample.
func (f *LayoutFormat) MinLines() int {
	if f.Shape == ShapeValues {
		return 1
	}
	return f.Layout.HeaderRows + f.Layout.TrailerRows + 1
}

// DefaultFormats returns the built-in layouts to detect.
func DefaultFormats() []*LayoutFormat {
	return []*LayoutFormat{
		{
			Name:        "force",
			Description: "external force/torque, 6 columns, 3 trailer lines",
			Shape:       ShapeRows,
			Layout:      config.DefaultForce().Layout,
		},
		{
			Name:           "joints",
			Description:    "joint torques, 7 columns, limits in the first row",
			Shape:          ShapeRows,
			Layout:         config.DefaultJoints().Layout,
			PositiveHeader: true,
		},
		{
			Name:        "pose",
			Description: "pose, 3x3 rotation then position",
			Shape:       ShapeValues,
			Values:      pose.FrameValues,
		},
		{
			Name:        "twist",
			Description: "twist, linear then angular velocity",
			Shape:       ShapeValues,
			Values:      pose.TwistValues,
		},
	}
}
