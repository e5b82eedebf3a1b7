package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileSource implements RowSource for reading a single log file.
type FileSource struct {
	path string

	file    *os.File
	scanner *bufio.Scanner
	lineNum int
}

// NewFileSource creates a RowSource that reads the given file.
// The file is opened lazily on the first call to Next.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Next returns the next row of the file.
// Returns io.EOF when the file has been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Row, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.scanner == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}

	if s.scanner.Scan() {
		s.lineNum++
		return &Row{
			Fields:  strings.Fields(s.scanner.Text()),
			LineNum: s.lineNum,
		}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return nil, io.EOF
}

// Close releases resources.
func (s *FileSource) Close() error {
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", s.path, err)
	}

	s.file = f
	s.scanner = bufio.NewScanner(f)
	s.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	s.lineNum = 0

	return nil
}

// ReadMatrix reads the whole file at path into a Matrix.
func ReadMatrix(ctx context.Context, path string) (*Matrix, error) {
	source := NewFileSource(path)
	defer source.Close()

	return collect(ctx, source, path)
}

// ParseMatrix reads a Matrix from r. name is recorded as the matrix source.
func ParseMatrix(ctx context.Context, r io.Reader, name string) (*Matrix, error) {
	m := &Matrix{Source: name}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		m.Rows = append(m.Rows, Row{Fields: strings.Fields(scanner.Text()), LineNum: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return m, nil
}

func collect(ctx context.Context, source RowSource, name string) (*Matrix, error) {
	m := &Matrix{Source: name}
	for {
		row, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return m, nil
		}
		if err != nil {
			return nil, err
		}
		m.Rows = append(m.Rows, *row)
	}
}
