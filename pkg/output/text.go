package output

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// TextFormatter formats summaries as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the summary as text.
func (f *TextFormatter) Format(ctx context.Context, summary *Summary, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(summary, w)
	}
	return f.formatFull(summary, w)
}

func (f *TextFormatter) formatQuiet(s *Summary, w io.Writer) error {
	if s.Failed() {
		_, err := fmt.Fprintf(w, "ctrlviz: %s refresh %d failed: %s\n", s.Figure, s.Refresh, s.Error)
		return err
	}
	_, err := fmt.Fprintf(w, "ctrlviz: %s refresh %d, %d samples\n", s.Figure, s.Refresh, s.Samples)
	return err
}

func (f *TextFormatter) formatFull(s *Summary, w io.Writer) error {
	fmt.Fprintf(w, "=== %s (refresh %d) ===\n", strings.ToUpper(s.Figure), s.Refresh)
	if s.Title != "" {
		fmt.Fprintf(w, "%s\n", s.Title)
	}
	fmt.Fprintln(w)

	if s.Failed() {
		fmt.Fprintf(w, "Error: %s\n", s.Error)
		fmt.Fprintln(w)
	}

	if len(s.Sources) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(s.Sources, ", "))
	}
	if len(s.Outputs) > 0 {
		fmt.Fprintf(w, "Outputs: %s\n", strings.Join(s.Outputs, ", "))
	}
	if s.Samples > 0 {
		fmt.Fprintf(w, "Samples: %d (tick every %d)\n", s.Samples, s.TickSpacing)
	}

	if f.opts.Verbose {
		for _, ser := range s.Series {
			fmt.Fprintf(w, "  %-18s n=%-6d min=%-10.4g max=%-10.4g mean=%.4g",
				ser.Label, ser.Samples, ser.Min, ser.Max, ser.Mean)
			if ser.Missing > 0 {
				fmt.Fprintf(w, " missing=%d", ser.Missing)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(1e6))
	}

	for _, a := range s.Arrows {
		label := a.Label
		if label == "" {
			label = "arrow"
		}
		fmt.Fprintf(w, "  %-14s |v| = %.4g\n", label, a.Length)
	}

	_, err := fmt.Fprintln(w, "---")
	return err
}
