package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/plotter"

	"github.com/ctrlviz/ctrlviz/pkg/figure"
)

func panelFigure() *figure.Figure {
	return &figure.Figure{
		Name:        "force",
		Title:       "External Force-Torque: Expressed in Tool-Tip frame",
		TickSpacing: 50,
		Panels: []figure.Panel{
			{Units: "N", Grid: true, Series: []figure.Series{
				{Label: "x_force", Color: "red", Width: 2, Values: []float32{1, 2, 3, 4}},
			}},
			{Units: "N", Grid: true, Series: []figure.Series{
				{Label: "y_force", Color: "limegreen", Width: 2, Values: []float32{-1, 0, 1, 0}},
			}},
		},
	}
}

// gappyFigure has a dropped sample in every panel, as a controller logs
// when a sensor read fails.
func gappyFigure() *figure.Figure {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	return &figure.Figure{
		Name: "joints",
		Panels: []figure.Panel{
			{Units: "Nm", Series: []figure.Series{
				{Label: "q1", Color: "red", Width: 1, Values: []float32{1, nan, 3, 4, inf}},
			}},
			{Units: "Nm", Series: []figure.Series{
				{Label: "q2", Color: "blue", Width: 1, Values: []float32{nan, nan}},
			}},
		},
	}
}

func sceneFigure() *figure.Figure {
	sc := &figure.Scene{
		Camera: figure.Camera{Elevation: 25, Azimuth: 105},
		Segments: []figure.Segment{
			{To: r3.Vec{X: 0.2}, Label: "Base: X axis", Color: "red", Style: figure.Solid},
			{From: r3.Vec{X: 1}, To: r3.Vec{X: 1, Y: 0.2}, Label: "Current: Y axis", Color: "green", Style: figure.Dashed},
			{From: r3.Vec{X: 1}, To: r3.Vec{X: 1, Z: 0.2}, Label: "Predicted: Z axis", Color: "blue", Style: figure.Dotted},
		},
		Arrows: []figure.Arrow3D{
			{From: r3.Vec{X: 1}, To: r3.Vec{X: 2}, Label: "Linear Twist", Color: "purple"},
			{From: r3.Vec{X: 1}, To: r3.Vec{X: 1}, Label: "Angular Twist", Color: "black"},
			{From: r3.Vec{X: 1}, To: r3.Vec{X: 1, Y: 1}, Color: "orange"},
		},
	}
	sc.Bounds = figure.EqualBounds(sc.Points())
	return &figure.Figure{Name: "pose", Title: "Twist test: [1.0, 0.0, 0.0, 0.0, 0.0, 0.0]", Scene: sc}
}

func TestPlotRenderer_Formats(t *testing.T) {
	tests := []struct {
		format string
		magic  string
	}{
		{"svg", "<svg"},
		{"pdf", "%PDF"},
		{"eps", "%!PS"},
		{"png", "\x89PNG"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r := NewPlotRenderer(tt.format, Options{Width: 6, Height: 4})
			assert.Equal(t, tt.format, r.Name())

			var buf bytes.Buffer
			require.NoError(t, r.Render(context.Background(), panelFigure(), &buf))
			assert.Contains(t, buf.String(), tt.magic)
		})
	}
}

func TestPlotRenderer_Scene(t *testing.T) {
	r := NewPlotRenderer("svg", Options{Width: 5})

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), sceneFigure(), &buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestPlotRenderer_Errors(t *testing.T) {
	ctx := context.Background()

	err := NewPlotRenderer("bmp", Options{Width: 4, Height: 4}).Render(ctx, panelFigure(), &bytes.Buffer{})
	assert.Error(t, err, "unknown format")

	err = NewPlotRenderer("svg", Options{Width: 4, Height: 4}).Render(ctx, &figure.Figure{Name: "empty"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "nothing to draw")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = NewPlotRenderer("svg", Options{Width: 4, Height: 4}).Render(cancelled, panelFigure(), &bytes.Buffer{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPlotRenderer_NonFiniteSamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlotRenderer("svg", Options{Width: 6, Height: 4}).Render(context.Background(), gappyFigure(), &buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestFiniteRuns(t *testing.T) {
	nan := float32(math.NaN())
	runs := finiteRuns([]float32{1, nan, 3, 4, float32(math.Inf(-1))})
	assert.Equal(t, []plotter.XYs{
		{{X: 0, Y: 1}},
		{{X: 2, Y: 3}, {X: 3, Y: 4}},
	}, runs)

	assert.Empty(t, finiteRuns([]float32{nan, nan}))
	assert.Empty(t, finiteRuns(nil))
}

func TestFixedTicks(t *testing.T) {
	ticks := fixedTicks(200).Ticks(0, 650)

	var values []float64
	for _, tk := range ticks {
		values = append(values, tk.Value)
	}
	assert.Equal(t, []float64{0, 200, 400, 600}, values)
	assert.Equal(t, "400", ticks[2].Label)
}

func TestHTMLRenderer(t *testing.T) {
	r := NewHTMLRenderer(Options{})
	assert.Equal(t, "html", r.Name())

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), panelFigure(), &buf))
	html := buf.String()
	assert.Contains(t, html, "x_force")
	assert.Contains(t, html, "y_force")
	assert.Contains(t, html, "External Force-Torque")

	buf.Reset()
	require.NoError(t, r.Render(context.Background(), sceneFigure(), &buf))
	html = buf.String()
	assert.Contains(t, html, "Linear Twist")
	assert.Contains(t, html, "Predicted: Z axis")
}

func TestHTMLRenderer_NonFiniteSamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewHTMLRenderer(Options{}).Render(context.Background(), gappyFigure(), &buf))
	html := buf.String()
	assert.Contains(t, html, `"value":"-"`)
	assert.Contains(t, html, "<title>joints</title>")
	assert.NotContains(t, html, "Awesome go-echarts")
}

func TestNewSummary_NonFiniteSamples(t *testing.T) {
	s := NewSummary(gappyFigure(), []string{"torques.txt"}, 1, time.Now(), nil)
	require.Len(t, s.Series, 2)
	q1 := s.Series[0]
	assert.Equal(t, 5, q1.Samples)
	assert.Equal(t, 2, q1.Missing)
	assert.Equal(t, 1.0, q1.Min)
	assert.Equal(t, 4.0, q1.Max)
	assert.InDelta(t, 8.0/3, q1.Mean, 1e-12)
	assert.Equal(t, SeriesSummary{Label: "q2", Samples: 2, Missing: 2}, s.Series[1])

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(FormatOptions{}).Format(context.Background(), s, &buf))
	assert.Contains(t, buf.String(), `"missing":2`)

	buf.Reset()
	require.NoError(t, NewTextFormatter(FormatOptions{Verbose: true}).Format(context.Background(), s, &buf))
	assert.Contains(t, buf.String(), "missing=2")
}

func TestNewSummary(t *testing.T) {
	started := time.Now().Add(-time.Second)
	s := NewSummary(panelFigure(), []string{"wrench.txt"}, 3, started, nil)

	assert.Equal(t, "force", s.Figure)
	assert.Equal(t, 4, s.Samples)
	assert.Equal(t, 3, s.Refresh)
	assert.False(t, s.Failed())
	assert.GreaterOrEqual(t, s.Duration, time.Second)
	require.Len(t, s.Series, 2)
	assert.Equal(t, SeriesSummary{Label: "x_force", Samples: 4, Min: 1, Max: 4, Mean: 2.5}, s.Series[0])

	scene := NewSummary(sceneFigure(), nil, 1, started, nil)
	require.Len(t, scene.Arrows, 3)
	assert.InDelta(t, 1.0, scene.Arrows[0].Length, 1e-12)
	assert.Equal(t, 0.0, scene.Arrows[1].Length)

	failed := NewSummary(nil, []string{"wrench.txt"}, 2, started, errors.New("wrench.txt:4: column 2: not numeric"))
	assert.True(t, failed.Failed())
	assert.Empty(t, failed.Figure)
}

func TestTextFormatter(t *testing.T) {
	s := NewSummary(panelFigure(), []string{"wrench.txt"}, 1, time.Now(), nil)
	s.Outputs = []string{"force.pdf"}

	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(FormatOptions{Verbose: true}).Format(context.Background(), s, &buf))
	out := buf.String()
	for _, want := range []string{"=== FORCE (refresh 1) ===", "Sources: wrench.txt", "Outputs: force.pdf", "Samples: 4 (tick every 50)", "x_force"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, NewTextFormatter(FormatOptions{Quiet: true}).Format(context.Background(), s, &buf))
	assert.Equal(t, "ctrlviz: force refresh 1, 4 samples\n", buf.String())

	s.Error = "boom"
	buf.Reset()
	require.NoError(t, NewTextFormatter(FormatOptions{Quiet: true}).Format(context.Background(), s, &buf))
	assert.True(t, strings.HasSuffix(buf.String(), "failed: boom\n"))
}

func TestJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	assert.Equal(t, "json", f.Name())

	s := NewSummary(panelFigure(), []string{"wrench.txt"}, 1, time.Now(), nil)
	var buf bytes.Buffer
	require.NoError(t, f.Format(context.Background(), s, &buf))

	var parsed Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "force", parsed.Figure)
	assert.Equal(t, s.Series, parsed.Series)

	buf.Reset()
	require.NoError(t, NewJSONFormatter(FormatOptions{Quiet: true}).Format(context.Background(), s, &buf))
	assert.Equal(t, `{"figure":"force","refresh":1,"samples":4}`+"\n", buf.String())
}
