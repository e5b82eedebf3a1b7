package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctrlviz/ctrlviz/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a ctrlviz configuration file without plotting anything.

Checks:
  - YAML syntax
  - Column layouts (signal count, header and trailer rows)
  - Color names and document formats
  - Watch and webhook settings
  - Input file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	printSeries(out, "force", cfg.Force)
	printSeries(out, "joints", cfg.Joints)
	fmt.Fprintf(out, "  pose:   %s, %s, %s (watching %d file(s))\n",
		cfg.Pose.MeasuredFile, cfg.Pose.PredictedFile, cfg.Pose.TwistFile, len(cfg.Pose.WatchFiles))
	fmt.Fprintf(out, "  watch:  debounce %s, restart %s\n", cfg.Watch.Debounce, cfg.Watch.Restart)
	fmt.Fprintf(out, "  webhooks: %d\n", len(cfg.Webhooks))

	// Missing inputs are only warnings: the controller may not have run yet.
	inputs := []string{cfg.Force.File, cfg.Joints.File, cfg.Pose.MeasuredFile, cfg.Pose.PredictedFile, cfg.Pose.TwistFile}
	missing := 0
	for _, p := range inputs {
		if _, err := os.Stat(p); err != nil {
			if missing == 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Warning: input not found: %s\n", p)
			missing++
		}
	}

	return nil
}

func printSeries(out io.Writer, name string, s config.SeriesConfig) {
	fmt.Fprintf(out, "  %-7s %s -> %s (%s), %d column(s), %d header / %d trailer row(s)\n",
		name+":", s.File, orNone(s.Output), s.Format, s.Layout.Columns, s.Layout.HeaderRows, s.Layout.TrailerRows)
}

func orNone(s string) string {
	if s == "" {
		return "(not saved)"
	}
	return s
}
