package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctrlviz/ctrlviz/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output     string
	SampleSize int
	ShowAll    bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect which controller log a file is",
		Long: `Inspect a log file and report which plot command reads it.

Recognises:
  - force   6 columns, 3 trailer lines
  - joints  7 columns, limit row first, 2 trailer lines
  - pose    12 values (rotation then position)
  - twist   6 values (linear then angular)

Example:
  ctrlviz detect ../joint_torques.txt
  ctrlviz detect --all -o json current_twist.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of rows to check")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all matching layouts, not just the best match")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(cmd.OutOrStdout(), result, logFile, opts)
	case "text":
		return outputDetectText(cmd.OutOrStdout(), result, logFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Log Layout Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines: %d, columns: %d, numeric values: %d\n", result.Lines, result.Columns, result.Values)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No known layout detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: check that every sample row has the same number of numeric columns.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Layout: %s (%s)\n", best.Format.Name, best.Format.Description)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d samples)\n", best.Confidence*100, best.Samples)
	fmt.Fprintln(w)

	if result.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", result.Note)
		fmt.Fprintln(w)
	}

	switch best.Format.Name {
	case "pose", "twist":
		fmt.Fprintln(w, "Plot with: ctrlviz pose")
	default:
		fmt.Fprintf(w, "Plot with: ctrlviz %s --file %s\n", best.Format.Name, logFile)
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Alternative layouts ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
		}
	}

	return nil
}

// JSONMatch represents a layout match in JSON output.
type JSONMatch struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	MatchCount  int     `json:"match_count"`
	Samples     int     `json:"samples"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File    string      `json:"file"`
	Lines   int         `json:"lines"`
	Columns int         `json:"columns"`
	Values  int         `json:"values"`
	Matches []JSONMatch `json:"matches"`
	Note    string      `json:"note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:    logFile,
		Lines:   result.Lines,
		Columns: result.Columns,
		Values:  result.Values,
		Note:    result.Note,
		Matches: make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1]
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:        m.Format.Name,
			Description: m.Format.Description,
			Confidence:  m.Confidence,
			MatchCount:  m.MatchCount,
			Samples:     m.Samples,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
