// Package pose reads end-effector pose and twist snapshots and builds the
// 3D scene comparing the measured and predicted frames.
package pose

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ctrlviz/ctrlviz/pkg/parser"
)

// Value counts of the snapshot files.
const (
	FrameValues = 12 // 9 rotation entries (row-major) then 3 position entries
	TwistValues = 6  // linear then angular
)

// Frame is a rigid-body frame: orientation and origin.
type Frame struct {
	Rotation *mat.Dense // 3x3
	Position r3.Vec
}

// Identity returns the frame at the origin with no rotation.
func Identity() Frame {
	return Frame{Rotation: eye3()}
}

// Axis returns column k of the rotation, i.e. the frame's k-th unit axis
// expressed in the world frame.
func (f Frame) Axis(k int) r3.Vec {
	return r3.Vec{
		X: f.Rotation.At(0, k),
		Y: f.Rotation.At(1, k),
		Z: f.Rotation.At(2, k),
	}
}

// Rotate applies the frame's rotation to v.
func (f Frame) Rotate(v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(f.Rotation, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Twist is a 6D velocity: linear and angular parts.
type Twist struct {
	Linear  r3.Vec
	Angular r3.Vec
}

// In expresses t in frame f by rotating both halves with f's rotation.
func (t Twist) In(f Frame) Twist {
	return Twist{
		Linear:  f.Rotate(t.Linear),
		Angular: f.Rotate(t.Angular),
	}
}

// Components returns vx, vy, vz, wx, wy, wz.
func (t Twist) Components() [6]float64 {
	return [6]float64{t.Linear.X, t.Linear.Y, t.Linear.Z, t.Angular.X, t.Angular.Y, t.Angular.Z}
}

// ParseFrame reads a frame from the first twelve values of m, in file
// order regardless of line breaks.
func ParseFrame(m *parser.Matrix) (Frame, error) {
	v, err := values(m, FrameValues)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Rotation: mat.NewDense(3, 3, v[:9]),
		Position: r3.Vec{X: v[9], Y: v[10], Z: v[11]},
	}, nil
}

// ParseTwist reads a twist from the first six values of m.
func ParseTwist(m *parser.Matrix) (Twist, error) {
	v, err := values(m, TwistValues)
	if err != nil {
		return Twist{}, err
	}
	return Twist{
		Linear:  r3.Vec{X: v[0], Y: v[1], Z: v[2]},
		Angular: r3.Vec{X: v[3], Y: v[4], Z: v[5]},
	}, nil
}

// values parses the first n tokens of m as float32, widened to float64.
// A pose has no gaps to draw, so nan and inf are rejected.
func values(m *parser.Matrix, n int) ([]float64, error) {
	tokens := m.Tokens()
	if len(tokens) < n {
		return nil, fmt.Errorf("%s: have %d values, need %d: %w", m.Source, len(tokens), n, parser.ErrTooFewRows)
	}

	out := make([]float64, n)
	for i, tok := range tokens[:n] {
		v, err := parser.ParseFloat32(tok.Text)
		if err != nil {
			return nil, &parser.ParseError{Source: m.Source, Line: tok.LineNum, Column: tok.Column, Err: err}
		}
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &parser.ParseError{
				Source: m.Source,
				Line:   tok.LineNum,
				Column: tok.Column,
				Err:    fmt.Errorf("%w: %q is not finite", parser.ErrNotNumeric, tok.Text),
			}
		}
		out[i] = f
	}
	return out, nil
}

// Snapshot is everything the pose scene is built from.
type Snapshot struct {
	Measured  Frame
	Predicted Frame
	Twist     Twist // as logged, before rotation
}

// Load reads the three snapshot files.
func Load(ctx context.Context, measuredPath, predictedPath, twistPath string) (*Snapshot, error) {
	measured, err := loadFrame(ctx, measuredPath)
	if err != nil {
		return nil, fmt.Errorf("measured pose: %w", err)
	}

	predicted, err := loadFrame(ctx, predictedPath)
	if err != nil {
		return nil, fmt.Errorf("predicted pose: %w", err)
	}

	m, err := parser.ReadMatrix(ctx, twistPath)
	if err != nil {
		return nil, fmt.Errorf("twist: %w", err)
	}
	twist, err := ParseTwist(m)
	if err != nil {
		return nil, fmt.Errorf("twist: %w", err)
	}

	return &Snapshot{Measured: measured, Predicted: predicted, Twist: twist}, nil
}

func loadFrame(ctx context.Context, path string) (Frame, error) {
	m, err := parser.ReadMatrix(ctx, path)
	if err != nil {
		return Frame{}, err
	}
	return ParseFrame(m)
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}
