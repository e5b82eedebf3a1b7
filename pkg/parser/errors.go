package parser

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for malformed logs. Use errors.Is on values returned
// from this package.
var (
	ErrColumnCount = errors.New("unexpected column count")
	ErrNotNumeric  = errors.New("value is not numeric")
	ErrTooFewRows  = errors.New("too few rows")
)

// ParseError locates a malformed cell in a log file.
type ParseError struct {
	Source string
	Line   int
	Column int // 0-based; -1 when the error concerns the whole row
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %d: %v", e.Source, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFloat32 converts a token the way the controller writes them
// (decimal, exponent, nan, inf) into a float32. Magnitudes beyond the
// float32 range become ±Inf rather than an error.
func ParseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return float32(v), nil
}

// Float32 parses the cell at (row, col) of m.
func (m *Matrix) Float32(row, col int) (float32, error) {
	if row < 0 || row >= len(m.Rows) {
		return 0, fmt.Errorf("%s: row %d: %w", m.Source, row, ErrTooFewRows)
	}
	r := m.Rows[row]
	if col >= len(r.Fields) {
		return 0, &ParseError{
			Source: m.Source,
			Line:   r.LineNum,
			Column: -1,
			Err:    fmt.Errorf("%w: have %d, need column %d", ErrColumnCount, len(r.Fields), col),
		}
	}
	v, err := ParseFloat32(r.Fields[col])
	if err != nil {
		return 0, &ParseError{Source: m.Source, Line: r.LineNum, Column: col, Err: err}
	}
	return v, nil
}
