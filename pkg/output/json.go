package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats summaries as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the summary as JSON. Quiet mode writes one compact line
// per refresh.
func (f *JSONFormatter) Format(ctx context.Context, summary *Summary, w io.Writer) error {
	encoder := json.NewEncoder(w)

	if f.opts.Quiet {
		return encoder.Encode(struct {
			Figure  string `json:"figure"`
			Refresh int    `json:"refresh"`
			Samples int    `json:"samples,omitempty"`
			Error   string `json:"error,omitempty"`
		}{summary.Figure, summary.Refresh, summary.Samples, summary.Error})
	}

	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}
