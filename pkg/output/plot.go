package output

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ctrlviz/ctrlviz/pkg/figure"
)

const (
	// headSpread is the half-angle of a projected arrow head.
	headSpread = 25 * math.Pi / 180

	// headSize is the barb length relative to the scene cube side.
	headSize = 0.04
)

var (
	dashPattern = []vg.Length{vg.Points(6), vg.Points(4)}
	dotPattern  = []vg.Length{vg.Points(1.5), vg.Points(3)}
)

// PlotRenderer draws figures as vector (or raster) documents with
// gonum/plot.
type PlotRenderer struct {
	format string
	opts   Options
}

// NewPlotRenderer creates a renderer for one of the formats understood by
// draw.NewFormattedCanvas (pdf, svg, eps, png).
func NewPlotRenderer(format string, opts Options) *PlotRenderer {
	return &PlotRenderer{format: format, opts: opts}
}

// Name returns the document format.
func (r *PlotRenderer) Name() string {
	return r.format
}

// Render draws fig and writes the encoded document to w.
func (r *PlotRenderer) Render(ctx context.Context, fig *figure.Figure, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	width := vg.Length(r.opts.Width) * vg.Inch
	height := vg.Length(r.opts.Height) * vg.Inch
	if fig.Scene != nil && r.opts.Height == 0 {
		height = width
	}

	canvas, err := draw.NewFormattedCanvas(width, height, r.format)
	if err != nil {
		return fmt.Errorf("creating %s canvas: %w", r.format, err)
	}
	dc := draw.New(canvas)

	switch {
	case fig.Scene != nil:
		p, err := scenePlot(fig)
		if err != nil {
			return err
		}
		p.Draw(dc)
	case len(fig.Panels) > 0:
		plots, err := panelPlots(fig)
		if err != nil {
			return err
		}
		tiles := draw.Tiles{
			Rows:      len(plots),
			Cols:      1,
			PadY:      vg.Points(4),
			PadTop:    vg.Points(4),
			PadBottom: vg.Points(4),
			PadLeft:   vg.Points(4),
			PadRight:  vg.Points(8),
		}
		canvases := plot.Align(plots, tiles, dc)
		for i := range plots {
			plots[i][0].Draw(canvases[i][0])
		}
	default:
		return fmt.Errorf("figure %q has nothing to draw", fig.Name)
	}

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s: %w", r.format, err)
	}
	return nil
}

// panelPlots builds one plot per panel, stacked as a single column.
func panelPlots(fig *figure.Figure) ([][]*plot.Plot, error) {
	samples := fig.Samples()
	plots := make([][]*plot.Plot, len(fig.Panels))

	for i, panel := range fig.Panels {
		p := plot.New()
		if i == 0 {
			p.Title.Text = fig.Title
		}
		p.Y.Label.Text = panel.Units
		if i == len(fig.Panels)-1 {
			p.X.Label.Text = "sample"
		}

		p.X.Min = 0
		p.X.Max = math.Max(float64(samples-1), 1)
		if fig.TickSpacing > 0 {
			p.X.Tick.Marker = fixedTicks(fig.TickSpacing)
		}

		if panel.Grid {
			p.Add(plotter.NewGrid())
		}

		series := make([]figure.Series, len(panel.Series))
		copy(series, panel.Series)
		sort.SliceStable(series, func(a, b int) bool {
			return series[a].ZOrder < series[b].ZOrder
		})

		for _, s := range series {
			// Non-finite samples are gaps in the line.
			for _, run := range finiteRuns(s.Values) {
				line, err := plotter.NewLine(run)
				if err != nil {
					return nil, fmt.Errorf("panel %d series %q: %w", i, s.Label, err)
				}
				line.Color = namedColor(s.Color)
				line.Width = vg.Points(s.Width)
				p.Add(line)
			}
		}
		// Legend order follows the panel, not the draw order.
		for _, s := range panel.Series {
			if s.Label == "" {
				continue
			}
			p.Legend.Add(s.Label, legendThumb(s.Color, s.Width, nil))
		}
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -4

		plots[i] = []*plot.Plot{p}
	}
	return plots, nil
}

// fixedTicks places a labelled major tick every spacing samples.
func fixedTicks(spacing int) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		var ticks []plot.Tick
		start := math.Ceil(min/float64(spacing)) * float64(spacing)
		for v := start; v <= max; v += float64(spacing) {
			ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(int(v))})
		}
		return ticks
	})
}

// finiteRuns splits values into maximal runs of finite samples, each
// plotted against its sample index.
func finiteRuns(values []float32) []plotter.XYs {
	var runs []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		y := float64(v)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(i), Y: y})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// legendThumb is a zero-length line used only for its legend thumbnail.
func legendThumb(color string, width float64, dashes []vg.Length) *plotter.Line {
	l := &plotter.Line{XYs: plotter.XYs{}}
	l.Color = namedColor(color)
	l.Width = vg.Points(math.Max(width, 1))
	l.Dashes = dashes
	return l
}

// scenePlot projects a 3D scene onto the camera plane.
func scenePlot(fig *figure.Figure) (*plot.Plot, error) {
	sc := fig.Scene
	cam := sc.Camera

	p := plot.New()
	p.Title.Text = fig.Title
	p.HideAxes()

	if err := addCube(p, cam, sc.Bounds); err != nil {
		return nil, err
	}

	// Far elements first so nearer ones are drawn over them.
	segs := make([]figure.Segment, len(sc.Segments))
	copy(segs, sc.Segments)
	sort.SliceStable(segs, func(a, b int) bool {
		return segmentDepth(cam, segs[a]) < segmentDepth(cam, segs[b])
	})

	for _, seg := range segs {
		line, err := projectedLine(cam, seg.From, seg.To)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", seg.Label, err)
		}
		line.Color = namedColor(seg.Color)
		line.Width = vg.Points(1.5)
		line.Dashes = styleDashes(seg.Style)
		p.Add(line)
	}
	for _, seg := range sc.Segments {
		if seg.Label != "" {
			p.Legend.Add(seg.Label, legendThumb(seg.Color, 1.5, styleDashes(seg.Style)))
		}
	}

	size := headSize * (sc.Bounds.Max.X - sc.Bounds.Min.X)
	for _, a := range sc.Arrows {
		if err := addArrow(p, cam, a, size); err != nil {
			return nil, err
		}
		if a.Label != "" {
			p.Legend.Add(a.Label, legendThumb(a.Color, 1.5, nil))
		}
	}
	p.Legend.Top = false
	p.Legend.Left = true

	// Equal ranges on both screen axes keep the cube square.
	var lo, hi figure.Point2
	for i, c := range sc.Bounds.Corners() {
		q := cam.Project(c)
		if i == 0 {
			lo, hi = q, q
			continue
		}
		lo = figure.Point2{X: math.Min(lo.X, q.X), Y: math.Min(lo.Y, q.Y)}
		hi = figure.Point2{X: math.Max(hi.X, q.X), Y: math.Max(hi.Y, q.Y)}
	}
	half := 0.5 * math.Max(hi.X-lo.X, hi.Y-lo.Y)
	cx, cy := 0.5*(lo.X+hi.X), 0.5*(lo.Y+hi.Y)
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half

	return p, nil
}

func addCube(p *plot.Plot, cam figure.Camera, b figure.Box) error {
	corners := b.Corners()
	for i := range corners {
		for _, bit := range []int{1, 2, 4} {
			j := i | bit
			if j == i {
				continue
			}
			edge, err := projectedLine(cam, corners[i], corners[j])
			if err != nil {
				return fmt.Errorf("bounding box: %w", err)
			}
			edge.Color = namedColor("lightgray")
			edge.Width = vg.Points(0.5)
			p.Add(edge)
		}
	}
	return nil
}

func addArrow(p *plot.Plot, cam figure.Camera, a figure.Arrow3D, size float64) error {
	shaft, err := projectedLine(cam, a.From, a.To)
	if err != nil {
		return fmt.Errorf("arrow %q: %w", a.Label, err)
	}
	shaft.Color = namedColor(a.Color)
	shaft.Width = vg.Points(1.5)
	p.Add(shaft)

	tail, tip := cam.Project(a.From), cam.Project(a.To)
	left, right, ok := figure.HeadBarbs(tail, tip, size, headSpread)
	if !ok {
		return nil
	}
	head, err := plotter.NewLine(plotter.XYs{
		{X: left.X, Y: left.Y},
		{X: tip.X, Y: tip.Y},
		{X: right.X, Y: right.Y},
	})
	if err != nil {
		return fmt.Errorf("arrow %q head: %w", a.Label, err)
	}
	head.Color = shaft.Color
	head.Width = shaft.Width
	p.Add(head)
	return nil
}

func projectedLine(cam figure.Camera, from, to r3.Vec) (*plotter.Line, error) {
	a, b := cam.Project(from), cam.Project(to)
	return plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}})
}

func segmentDepth(cam figure.Camera, s figure.Segment) float64 {
	return 0.5 * (cam.Depth(s.From) + cam.Depth(s.To))
}

func styleDashes(s figure.LineStyle) []vg.Length {
	switch s {
	case figure.Dashed:
		return dashPattern
	case figure.Dotted:
		return dotPattern
	default:
		return nil
	}
}
