package output

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ctrlviz/ctrlviz/pkg/figure"
)

// barbFraction is the 3D arrow head length relative to the arrow.
const barbFraction = 0.15

// HTMLRenderer publishes figures as interactive echarts pages.
type HTMLRenderer struct {
	opts Options
}

// NewHTMLRenderer creates a new HTML renderer.
func NewHTMLRenderer(opts Options) *HTMLRenderer {
	return &HTMLRenderer{opts: opts}
}

// Name returns the format name.
func (r *HTMLRenderer) Name() string {
	return "html"
}

// Render writes a standalone page for fig.
func (r *HTMLRenderer) Render(ctx context.Context, fig *figure.Figure, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = pageTitle(fig)
	if r.opts.AssetsHost != "" {
		page.SetAssetsHost(r.opts.AssetsHost)
	}

	switch {
	case fig.Scene != nil:
		page.AddCharts(r.sceneChart(fig))
	case len(fig.Panels) > 0:
		for i, panel := range fig.Panels {
			page.AddCharts(r.panelChart(fig, i, panel))
		}
	default:
		return fmt.Errorf("figure %q has nothing to draw", fig.Name)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

func (r *HTMLRenderer) initOpts(title string) opts.Initialization {
	o := opts.Initialization{PageTitle: title, Width: "100%", Height: "240px"}
	if r.opts.AssetsHost != "" {
		o.AssetsHost = r.opts.AssetsHost
	}
	return o
}

func (r *HTMLRenderer) panelChart(fig *figure.Figure, idx int, panel figure.Panel) *charts.Line {
	line := charts.NewLine()

	title := opts.Title{}
	if idx == 0 {
		title.Title = fig.Title
		title.Subtitle = fmt.Sprintf("%d samples", fig.Samples())
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(r.initOpts(pageTitle(fig))),
		charts.WithTitleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithYAxisOpts(opts.YAxis{Name: panel.Units, SplitLine: &opts.SplitLine{Show: opts.Bool(panel.Grid)}}),
	)

	x := make([]int, fig.Samples())
	for i := range x {
		x[i] = i
	}
	line.SetXAxis(x)

	for _, s := range panel.Series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = lineValue(v)
		}
		line.AddSeries(s.Label, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		)
	}
	return line
}

func (r *HTMLRenderer) sceneChart(fig *figure.Figure) *charts.Line3D {
	sc := fig.Scene
	chart := charts.NewLine3D()

	o := r.initOpts(pageTitle(fig))
	o.Height = "720px"
	b := sc.Bounds
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(o),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Left: "left", Top: "bottom"}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Min: b.Min.X, Max: b.Max.X}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y", Min: b.Min.Y, Max: b.Max.Y}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z", Min: b.Min.Z, Max: b.Max.Z}),
	)

	for _, seg := range sc.Segments {
		chart.AddSeries(seriesName(seg.Label, seg.Color), []opts.Chart3DData{point3D(seg.From), point3D(seg.To)},
			charts.WithLineStyleOpts(opts.LineStyle{Color: seg.Color, Type: string(seg.Style)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seg.Color}),
		)
	}

	for _, a := range sc.Arrows {
		data := []opts.Chart3DData{point3D(a.From), point3D(a.To)}
		// The head is drawn as a polyline back through the tip.
		if left, right, ok := a.Barbs3D(barbFraction); ok {
			data = append(data, point3D(left), point3D(a.To), point3D(right))
		}
		chart.AddSeries(seriesName(a.Label, a.Color), data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: a.Color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: a.Color}),
		)
	}
	return chart
}

// pageTitle names the browser tab, falling back to the figure name for
// untitled figures.
func pageTitle(fig *figure.Figure) string {
	if fig.Title != "" {
		return fig.Title
	}
	return fig.Name
}

// lineValue marks non-finite samples as missing so echarts leaves a gap.
func lineValue(v float32) opts.LineData {
	if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: v}
}

// seriesName keeps unlabelled elements distinct in the legend.
func seriesName(label, color string) string {
	if label != "" {
		return label
	}
	return color
}

func point3D(v r3.Vec) opts.Chart3DData {
	return opts.Chart3DData{Value: []interface{}{v.X, v.Y, v.Z}}
}
