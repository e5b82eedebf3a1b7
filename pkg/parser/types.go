// Package parser reads whitespace-delimited controller logs into text matrices.
package parser

// Row is one line of a log file split on whitespace.
type Row struct {
	// Fields are the whitespace-separated tokens of the line.
	// Blank lines produce a row with no fields.
	Fields []string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// Matrix is the sample matrix of a log file: rows in file order, tokens
// still in text form.
type Matrix struct {
	// Source is the file path the matrix was read from.
	Source string

	// Rows holds every line of the file, including blank ones.
	Rows []Row
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.Rows)
}

// Cols returns the width of the first non-blank row, or 0 for an empty matrix.
func (m *Matrix) Cols() int {
	for _, r := range m.Rows {
		if len(r.Fields) > 0 {
			return len(r.Fields)
		}
	}
	return 0
}

// Slice returns a matrix holding rows [from, to) of m. Bounds are clamped.
func (m *Matrix) Slice(from, to int) *Matrix {
	if from < 0 {
		from = 0
	}
	if to > len(m.Rows) {
		to = len(m.Rows)
	}
	if to < from {
		to = from
	}
	return &Matrix{Source: m.Source, Rows: m.Rows[from:to]}
}

// Tokens returns every token of the matrix in file order, ignoring line breaks.
func (m *Matrix) Tokens() []Token {
	var out []Token
	for _, r := range m.Rows {
		for c, f := range r.Fields {
			out = append(out, Token{Text: f, LineNum: r.LineNum, Column: c})
		}
	}
	return out
}

// Token is a single cell together with its position in the file.
type Token struct {
	Text    string
	LineNum int
	Column  int
}
