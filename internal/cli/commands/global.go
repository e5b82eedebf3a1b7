package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/logging"
)

// GlobalOptions holds the root command's persistent flags.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// Logger builds the process logger writing to w.
func (g *GlobalOptions) Logger(w io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  g.LogLevel,
		Format: g.LogFormat,
		Writer: w,
	})
}

// LoadConfig loads --config, or the defaults when it is not set.
func (g *GlobalOptions) LoadConfig(ctx context.Context) (*config.Config, error) {
	return config.Load(ctx, g.ConfigPath)
}
