// Package output renders figures as documents and interactive pages, and
// summarizes each refresh for humans and webhooks.
package output

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/ctrlviz/ctrlviz/pkg/figure"
)

// Summary describes one refresh of a figure.
type Summary struct {
	// Figure is the figure name (force, joints, pose).
	Figure string `json:"figure"`
	Title  string `json:"title,omitempty"`

	// Sources lists the files that were read.
	Sources []string `json:"sources"`

	// Outputs lists the files that were written.
	Outputs []string `json:"outputs,omitempty"`

	Samples     int `json:"samples,omitempty"`
	TickSpacing int `json:"tick_spacing,omitempty"`

	Series []SeriesSummary `json:"series,omitempty"`
	Arrows []ArrowSummary  `json:"arrows,omitempty"`

	// Refresh counts renders since the command started, starting at 1.
	Refresh    int           `json:"refresh"`
	RenderedAt time.Time     `json:"rendered_at"`
	Duration   time.Duration `json:"duration"`

	// Error is set when the refresh failed.
	Error string `json:"error,omitempty"`
}

// SeriesSummary gives basic statistics of one plotted line.
type SeriesSummary struct {
	Label   string  `json:"label"`
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`

	// Missing counts nan/inf samples, which are left out of the statistics.
	Missing int `json:"missing,omitempty"`
}

// ArrowSummary describes one 3D arrow.
type ArrowSummary struct {
	Label  string     `json:"label,omitempty"`
	From   [3]float64 `json:"from"`
	To     [3]float64 `json:"to"`
	Length float64    `json:"length"`
}

// NewSummary summarizes fig. fig may be nil when the refresh failed
// before a figure was built.
func NewSummary(fig *figure.Figure, sources []string, refresh int, started time.Time, renderErr error) *Summary {
	now := time.Now()
	s := &Summary{
		Sources:    sources,
		Refresh:    refresh,
		RenderedAt: now,
		Duration:   now.Sub(started),
	}
	if renderErr != nil {
		s.Error = renderErr.Error()
	}
	if fig == nil {
		return s
	}

	s.Figure = fig.Name
	s.Title = fig.Title
	s.Samples = fig.Samples()
	s.TickSpacing = fig.TickSpacing

	for _, p := range fig.Panels {
		for _, ser := range p.Series {
			s.Series = append(s.Series, summarizeSeries(ser))
		}
	}

	if fig.Scene != nil {
		for _, a := range fig.Scene.Arrows {
			s.Arrows = append(s.Arrows, ArrowSummary{
				Label:  a.Label,
				From:   [3]float64{a.From.X, a.From.Y, a.From.Z},
				To:     [3]float64{a.To.X, a.To.Y, a.To.Z},
				Length: r3.Norm(a.Vector()),
			})
		}
	}

	return s
}

// Failed returns true if the refresh failed.
func (s *Summary) Failed() bool {
	return s.Error != ""
}

func summarizeSeries(ser figure.Series) SeriesSummary {
	out := SeriesSummary{Label: ser.Label, Samples: len(ser.Values)}
	if len(ser.Values) == 0 {
		return out
	}

	vals := make([]float64, 0, len(ser.Values))
	for _, v := range ser.Values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out.Missing++
			continue
		}
		vals = append(vals, f)
	}
	if len(vals) == 0 {
		return out
	}
	out.Min = floats.Min(vals)
	out.Max = floats.Max(vals)
	out.Mean = stat.Mean(vals, nil)
	return out
}
