// Package cli provides the command-line interface for ctrlviz.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ctrlviz/ctrlviz/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ctrlviz",
		Short: "Plot robot controller logs and keep the plots fresh",
		Long: `ctrlviz visualizes the text logs written by a robot controller.

It draws:
  force    External force/torque at the tool tip, one panel per axis
  joints   Joint torques against their limits, one panel per joint
  pose     Measured and predicted end-effector frames with the twist

Each plot command watches its input files and redraws when the controller
finishes writing them. Use --once to render a single time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.ConfigPath, "config", "c", "", "Path to YAML config file (defaults apply when empty)")
	pf.StringVar(&g.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	pf.StringVar(&g.LogFormat, "log-format", "text", "Log format (text|json)")

	// Add subcommands
	rootCmd.AddCommand(commands.NewForceCommand(g))
	rootCmd.AddCommand(commands.NewJointsCommand(g))
	rootCmd.AddCommand(commands.NewPoseCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
