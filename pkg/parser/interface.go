package parser

import (
	"context"
)

// RowSource provides an iterator over the rows of a log.
// Implementations must be safe for sequential access (not concurrent).
type RowSource interface {
	// Next returns the next row.
	// Returns io.EOF when no more rows are available.
	Next(ctx context.Context) (*Row, error)

	// Close releases any resources held by the source.
	Close() error
}
