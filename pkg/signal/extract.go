// Package signal turns controller sample matrices into per-column float32
// sequences and lays them out as multi-panel time-series figures.
package signal

import (
	"context"
	"fmt"

	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/parser"
)

// Sequence is one signal across all selected sample rows.
type Sequence []float32

// Data holds the sequences extracted from one log.
type Data struct {
	Source string

	// Signals has one sequence per layout column, all of the same length.
	Signals []Sequence

	// Limits holds row 0 of the file when the layout has header rows and
	// limits are requested. Nil otherwise.
	Limits []float32

	// Lines is the total number of lines in the file.
	Lines int
}

// Samples returns the number of sample rows extracted.
func (d *Data) Samples() int {
	if len(d.Signals) == 0 {
		return 0
	}
	return len(d.Signals[0])
}

// LimitSequence broadcasts the limit of column col into a constant
// sequence as long as the signals. sign is +1 or -1.
func (d *Data) LimitSequence(col int, sign float32) Sequence {
	out := make(Sequence, d.Samples())
	v := sign * d.Limits[col]
	for i := range out {
		out[i] = v
	}
	return out
}

// Extract converts the sample rows of m into one sequence per column.
// Sample rows are m's rows after skipping layout.HeaderRows at the top and
// layout.TrailerRows at the bottom. When withLimits is set, row 0 is read
// as the limit constants.
func Extract(m *parser.Matrix, layout config.Layout, withLimits bool) (*Data, error) {
	first := layout.HeaderRows
	last := m.Len() - layout.TrailerRows
	if last-first < 1 {
		return nil, fmt.Errorf("%s: %d lines leave no samples after %d header and %d trailer rows: %w",
			m.Source, m.Len(), layout.HeaderRows, layout.TrailerRows, parser.ErrTooFewRows)
	}

	data := &Data{
		Source:  m.Source,
		Signals: make([]Sequence, layout.Columns),
		Lines:   m.Len(),
	}

	samples := last - first
	for c := range data.Signals {
		data.Signals[c] = make(Sequence, samples)
	}

	for r := first; r < last; r++ {
		for c := 0; c < layout.Columns; c++ {
			v, err := m.Float32(r, c)
			if err != nil {
				return nil, err
			}
			data.Signals[c][r-first] = v
		}
	}

	if withLimits {
		if layout.HeaderRows < 1 {
			return nil, fmt.Errorf("%s: limits need a header row", m.Source)
		}
		data.Limits = make([]float32, layout.Columns)
		for c := range data.Limits {
			v, err := m.Float32(0, c)
			if err != nil {
				return nil, fmt.Errorf("reading limits: %w", err)
			}
			data.Limits[c] = v
		}
	}

	return data, nil
}

// Load reads the log configured in cfg and extracts its signals.
func Load(ctx context.Context, cfg config.SeriesConfig) (*Data, error) {
	m, err := parser.ReadMatrix(ctx, cfg.File)
	if err != nil {
		return nil, err
	}
	return Extract(m, cfg.Layout, cfg.Limits != nil)
}
