package output

import (
	"context"
	"io"

	"github.com/ctrlviz/ctrlviz/pkg/figure"
)

// Renderer draws a figure in a specific format.
type Renderer interface {
	// Render writes the figure to the given writer.
	Render(ctx context.Context, fig *figure.Figure, w io.Writer) error

	// Name returns the format name (pdf, svg, html, ...).
	Name() string
}

// Options controls renderer behavior.
type Options struct {
	// Width and Height are the document size in inches.
	Width  float64
	Height float64

	// AssetsHost is where the HTML renderer loads echarts from.
	AssetsHost string
}

// Formatter renders a refresh summary.
type Formatter interface {
	// Format renders the summary to the given writer.
	Format(ctx context.Context, summary *Summary, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds per-series statistics.
	Verbose bool

	// Quiet enables minimal one-line output.
	Quiet bool
}
