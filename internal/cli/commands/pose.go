package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/figure"
	"github.com/ctrlviz/ctrlviz/pkg/pose"
)

// PoseOptions holds command-line options for the pose command.
type PoseOptions struct {
	PlotOptions
	Measured  string
	Predicted string
	Twist     string
	Watch     []string
}

// NewPoseCommand creates the pose command.
func NewPoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &PoseOptions{}

	cmd := &cobra.Command{
		Use:   "pose",
		Short: "Draw the measured and predicted end-effector frames with the twist",
		Long: `Draw the base frame, the measured (dashed) and predicted (dotted)
end-effector frames, and the twist rotated into the measured frame, and
redraw whenever the predicted pose is rewritten.

Pose files hold 12 values (row-major rotation, then position); the twist
file holds 6 (linear, then angular).

Example:
  ctrlviz pose --serve :8080
  ctrlviz pose --output pose.pdf --once
  ctrlviz pose --watch predicted_pose.txt --watch current_twist.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPose(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Measured, "measured", "", "Measured pose file (default "+config.DefaultMeasuredFile+")")
	cmd.Flags().StringVar(&opts.Predicted, "predicted", "", "Predicted pose file (default "+config.DefaultPredictedFile+")")
	cmd.Flags().StringVar(&opts.Twist, "twist", "", "Twist file (default "+config.DefaultTwistFile+")")
	cmd.Flags().StringSliceVar(&opts.Watch, "watch", nil, "Files whose changes trigger a redraw (default: the predicted pose)")
	addPlotFlags(cmd, &opts.PlotOptions)

	return cmd
}

func runPose(cmd *cobra.Command, g *GlobalOptions, opts *PoseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := g.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	p := &cfg.Pose
	if flags.Changed("measured") {
		p.MeasuredFile = opts.Measured
	}
	if flags.Changed("predicted") {
		p.PredictedFile = opts.Predicted
		if !flags.Changed("watch") {
			p.WatchFiles = nil
		}
	}
	if flags.Changed("twist") {
		p.TwistFile = opts.Twist
	}
	if flags.Changed("watch") {
		p.WatchFiles = opts.Watch
	}
	opts.applyOutput(cmd, &p.Output, &p.Format)
	opts.applyTo(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	r, err := newRunner(cmd, g, cfg, &opts.PlotOptions)
	if err != nil {
		return err
	}
	return r.run(ctx, poseJob(*p, r.logger))
}

func poseJob(cfg config.PoseConfig, logger *slog.Logger) *plotJob {
	sceneOpts := pose.SceneOptions{
		AxisLength: cfg.AxisLength,
		Camera:     figure.Camera{Elevation: cfg.Elevation, Azimuth: cfg.Azimuth},
	}

	return &plotJob{
		name:     "pose",
		sources:  []string{cfg.MeasuredFile, cfg.PredictedFile, cfg.TwistFile},
		watch:    cfg.WatchFiles,
		output:   cfg.Output,
		format:   cfg.Format,
		htmlPath: htmlPath(cfg.Output, "pose"),
		width:    cfg.Size,
		height:   cfg.Size,
		build: func(ctx context.Context) (*figure.Figure, error) {
			snap, err := pose.Load(ctx, cfg.MeasuredFile, cfg.PredictedFile, cfg.TwistFile)
			if err != nil {
				return nil, err
			}
			logger.Debug("pose loaded",
				"measured", snap.Measured.Position,
				"predicted", snap.Predicted.Position)
			return pose.BuildFigure(snap, sceneOpts), nil
		},
	}
}
