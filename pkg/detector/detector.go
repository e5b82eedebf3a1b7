// Package detector guesses which controller log layout a file holds from
// its shape.
package detector

import (
	"context"
	"fmt"
	"sort"

	"github.com/ctrlviz/ctrlviz/pkg/parser"
)

// DetectionResult holds the result of analyzing a log file.
type DetectionResult struct {
	Matches []FormatMatch // Layouts that matched, sorted by confidence descending
	Lines   int           // Lines in the file
	Columns int           // Width of the first non-blank line
	Values  int           // Numeric tokens in the sampled rows
	Note    string        // Warning about the best match, if any
}

// FormatMatch represents a layout that matched with its confidence score.
type FormatMatch struct {
	Format     *LayoutFormat
	Confidence float64 // 0.0 to 1.0
	MatchCount int     // Rows (or values) that fit the layout
	Samples    int     // Samples the layout would extract
}

// Detector analyzes log files to identify their layout.
type Detector struct {
	formats    []*LayoutFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of rows to check (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile analyzes a log file and returns matching layouts.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	m, err := parser.ReadMatrix(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d.DetectFromMatrix(m), nil
}

// DetectFromMatrix analyzes an already read log.
func (d *Detector) DetectFromMatrix(m *parser.Matrix) *DetectionResult {
	result := &DetectionResult{
		Lines:   m.Len(),
		Columns: m.Cols(),
	}

	for _, tok := range m.Tokens() {
		if _, err := parser.ParseFloat32(tok.Text); err == nil {
			result.Values++
		}
	}

	for _, f := range d.formats {
		var match FormatMatch
		switch f.Shape {
		case ShapeRows:
			match = d.matchRows(m, f)
		case ShapeValues:
			match = matchValues(result.Values, len(m.Tokens()), f)
		}
		if match.Confidence > 0 {
			result.Matches = append(result.Matches, match)
		}
	}

	// Ties go to the layout with more samples, then to table layouts.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Samples > b.Samples
	})

	if best := result.BestMatch(); best != nil && best.Format.PositiveHeader && !positiveRow(m, best.Format.Layout.Columns) {
		result.Note = "The first row should hold positive limits; check that the file starts with the limit row."
	}

	return result
}

// matchRows scores the fraction of sample rows whose width and values fit
// the layout.
func (d *Detector) matchRows(m *parser.Matrix, f *LayoutFormat) FormatMatch {
	match := FormatMatch{Format: f}
	if m.Len() < f.MinLines() {
		return match
	}

	first := f.Layout.HeaderRows
	last := m.Len() - f.Layout.TrailerRows
	match.Samples = last - first

	sample := m.Slice(first, min(last, first+d.sampleSize))
	for _, row := range sample.Rows {
		if len(row.Fields) != f.Layout.Columns {
			continue
		}
		if numericFields(row.Fields) {
			match.MatchCount++
		}
	}

	if f.Layout.HeaderRows > 0 {
		header := m.Rows[0]
		if len(header.Fields) != f.Layout.Columns || !numericFields(header.Fields) {
			return FormatMatch{Format: f}
		}
	}

	match.Confidence = float64(match.MatchCount) / float64(sample.Len())
	return match
}

// matchValues accepts files holding exactly the expected number of
// values, all numeric.
func matchValues(values, tokens int, f *LayoutFormat) FormatMatch {
	match := FormatMatch{Format: f}
	if tokens != f.Values || values != f.Values {
		return match
	}
	match.MatchCount = values
	match.Samples = 1
	match.Confidence = 1
	return match
}

func numericFields(fields []string) bool {
	for _, s := range fields {
		if _, err := parser.ParseFloat32(s); err != nil {
			return false
		}
	}
	return true
}

func positiveRow(m *parser.Matrix, cols int) bool {
	for c := 0; c < cols; c++ {
		v, err := m.Float32(0, c)
		if err != nil || v <= 0 {
			return false
		}
	}
	return true
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one layout matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
