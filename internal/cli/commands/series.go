package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/figure"
	"github.com/ctrlviz/ctrlviz/pkg/signal"
)

// SeriesOptions holds command-line options for the time-series commands.
type SeriesOptions struct {
	PlotOptions
	File string
}

// NewForceCommand creates the force command.
func NewForceCommand(g *GlobalOptions) *cobra.Command {
	opts := &SeriesOptions{}

	cmd := &cobra.Command{
		Use:   "force",
		Short: "Plot external force/torque samples",
		Long: `Plot the external wrench log as six stacked panels
(x/y/z force, x/y/z torque) and redraw whenever the controller rewrites it.

The last three lines of the log are not samples.

Example:
  ctrlviz force
  ctrlviz force --file wrench.txt --output wrench.svg --once
  ctrlviz force --serve :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeries(cmd, g, "force", opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Force/torque log (default "+config.DefaultForceFile+")")
	addPlotFlags(cmd, &opts.PlotOptions)

	return cmd
}

// NewJointsCommand creates the joints command.
func NewJointsCommand(g *GlobalOptions) *cobra.Command {
	opts := &SeriesOptions{}

	cmd := &cobra.Command{
		Use:   "joints",
		Short: "Plot joint torques against their limits",
		Long: `Plot the seven joint torque columns, each with its +limit and -limit
reference lines taken from the first row of the log, and redraw whenever
the controller rewrites it.

Example:
  ctrlviz joints
  ctrlviz joints --file joint_torques.txt --format svg --output torques.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeries(cmd, g, "joints", opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Joint torque log (default "+config.DefaultJointsFile+")")
	addPlotFlags(cmd, &opts.PlotOptions)

	return cmd
}

func runSeries(cmd *cobra.Command, g *GlobalOptions, name string, opts *SeriesOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := g.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	series := &cfg.Force
	if name == "joints" {
		series = &cfg.Joints
	}

	if cmd.Flags().Changed("file") {
		series.File = opts.File
	}
	opts.applyOutput(cmd, &series.Output, &series.Format)
	opts.applyTo(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	r, err := newRunner(cmd, g, cfg, &opts.PlotOptions)
	if err != nil {
		return err
	}
	return r.run(ctx, seriesJob(name, *series, r.logger))
}

func seriesJob(name string, cfg config.SeriesConfig, logger *slog.Logger) *plotJob {
	return &plotJob{
		name:     name,
		sources:  []string{cfg.File},
		watch:    []string{cfg.File},
		output:   cfg.Output,
		format:   cfg.Format,
		htmlPath: htmlPath(cfg.Output, name),
		width:    cfg.Width,
		height:   cfg.Height,
		build: func(ctx context.Context) (*figure.Figure, error) {
			data, err := signal.Load(ctx, cfg)
			if err != nil {
				return nil, err
			}
			logger.Info("Data size", "file", cfg.File, "rows", data.Samples(), "cols", len(data.Signals))
			return signal.BuildFigure(name, cfg, data), nil
		},
	}
}
