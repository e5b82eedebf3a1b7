package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ctrlviz/ctrlviz/internal/cli/restart"
	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/figure"
	"github.com/ctrlviz/ctrlviz/pkg/output"
	"github.com/ctrlviz/ctrlviz/pkg/viewer"
	"github.com/ctrlviz/ctrlviz/pkg/watcher"
	"github.com/ctrlviz/ctrlviz/pkg/webhook"
)

// PlotOptions holds command-line options shared by the plot commands.
type PlotOptions struct {
	Output   string
	Format   string
	HTML     bool
	Once     bool
	Serve    string
	Restart  string
	Debounce time.Duration
	Summary  string
	Verbose  bool
	Quiet    bool
}

func addPlotFlags(cmd *cobra.Command, opts *PlotOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.Output, "output", "o", "", "Save the figure to this file")
	f.StringVar(&opts.Format, "format", "", "Document format (pdf|svg|eps|png), defaults to the output extension")
	f.BoolVar(&opts.HTML, "html", false, "Also write an interactive HTML page next to the output")
	f.BoolVar(&opts.Once, "once", false, "Render once and exit instead of watching the inputs")
	f.StringVar(&opts.Serve, "serve", "", "Serve the interactive view on this address (e.g. :8080)")
	f.StringVar(&opts.Restart, "restart", "", "How to apply a change (reload|exec)")
	f.DurationVar(&opts.Debounce, "debounce", 0, "Quiet period after the last write before refreshing")
	f.StringVar(&opts.Summary, "summary", "", "Print a summary of each refresh (text|json)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Include per-series statistics in summaries")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "One-line summaries")
}

// applyTo overrides the shared config sections with the flags that were set.
func (o *PlotOptions) applyTo(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("serve") {
		cfg.Viewer.Addr = o.Serve
	}
	if flags.Changed("html") {
		cfg.Viewer.HTML = o.HTML
	}
	if flags.Changed("restart") {
		cfg.Watch.Restart = config.RestartMode(o.Restart)
	}
	if flags.Changed("debounce") {
		cfg.Watch.Debounce = o.Debounce
	}
}

// applyOutput overrides a figure's document settings. A new output without
// --format lets the format follow the new extension.
func (o *PlotOptions) applyOutput(cmd *cobra.Command, out *string, format *config.Format) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		*out = o.Output
		*format = ""
	}
	if flags.Changed("format") {
		*format = config.Format(o.Format)
	}
}

// plotJob is one visualization wired to its inputs and outputs.
type plotJob struct {
	name     string
	sources  []string
	watch    []string
	output   string
	format   config.Format
	htmlPath string
	width    float64
	height   float64
	build    func(ctx context.Context) (*figure.Figure, error)
}

// runner renders a plotJob once, or again on every change of its inputs.
type runner struct {
	cfg       *config.Config
	opts      *PlotOptions
	logger    *slog.Logger
	stdout    io.Writer
	viewer    *viewer.Server
	notifier  *webhook.Notifier
	formatter output.Formatter
	restarter *restart.Restarter
	refreshes int
}

func newRunner(cmd *cobra.Command, g *GlobalOptions, cfg *config.Config, opts *PlotOptions) (*runner, error) {
	logger, err := g.Logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	formatter, err := createFormatter(opts)
	if err != nil {
		return nil, err
	}

	r := &runner{
		cfg:       cfg,
		opts:      opts,
		logger:    logger,
		stdout:    cmd.OutOrStdout(),
		notifier:  webhook.NewNotifier(cfg.Webhooks, logger),
		formatter: formatter,
		restarter: restart.New(),
	}
	if cfg.Viewer.Addr != "" && !opts.Once {
		r.viewer = viewer.New(logger)
	}
	return r, nil
}

func createFormatter(opts *PlotOptions) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	}

	switch opts.Summary {
	case "":
		return nil, nil
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown summary format %q (use text or json)", opts.Summary)
	}
}

// run renders j, then keeps it fresh until ctx is cancelled. Watches are
// registered before the first render so a missing input aborts early.
func (r *runner) run(ctx context.Context, j *plotJob) error {
	if r.opts.Once {
		_, err := r.refresh(ctx, j)
		return err
	}

	w, err := watcher.New(r.cfg.Watch.Debounce, r.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, p := range j.watch {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("%s: %w", j.name, err)
		}
	}

	if _, err := r.refresh(ctx, j); err != nil {
		r.logger.Error("refresh failed", "figure", j.name, "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.viewer != nil {
		g.Go(func() error {
			return r.viewer.ListenAndServe(gctx, r.cfg.Viewer.Addr)
		})
	}
	g.Go(func() error {
		return w.Loop(gctx, func(ctx context.Context, ev watcher.Event) error {
			if r.cfg.Watch.Restart == config.RestartExec {
				r.logger.Info("restarting", "args", strings.Join(r.restarter.Args, " "))
				return r.restarter.Restart()
			}
			_, err := r.refresh(ctx, j)
			return err
		})
	})
	return g.Wait()
}

// refresh runs the pipeline once: read, build, render, publish, report.
func (r *runner) refresh(ctx context.Context, j *plotJob) (*output.Summary, error) {
	started := time.Now()
	r.refreshes++

	fig, err := j.build(ctx)
	var outputs []string
	if err == nil {
		outputs, err = r.publish(ctx, j, fig)
	}

	summary := output.NewSummary(fig, j.sources, r.refreshes, started, err)
	summary.Outputs = outputs
	if summary.Figure == "" {
		summary.Figure = j.name
	}

	if r.formatter != nil {
		if ferr := r.formatter.Format(ctx, summary, r.stdout); ferr != nil {
			r.logger.Warn("writing summary", "error", ferr)
		}
	}
	r.notifier.Notify(ctx, summary)

	if err != nil {
		return summary, err
	}

	r.logger.Info("figure rendered",
		"figure", j.name,
		"refresh", summary.Refresh,
		"samples", summary.Samples,
		"duration", summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// publish writes the document and the interactive page.
func (r *runner) publish(ctx context.Context, j *plotJob, fig *figure.Figure) ([]string, error) {
	var outputs []string

	if j.output != "" {
		doc := output.NewPlotRenderer(string(j.format), output.Options{Width: j.width, Height: j.height})
		if err := writeFile(j.output, func(w io.Writer) error {
			return doc.Render(ctx, fig, w)
		}); err != nil {
			return outputs, fmt.Errorf("saving %s: %w", j.output, err)
		}
		outputs = append(outputs, j.output)
	}

	if !r.cfg.Viewer.HTML && r.viewer == nil {
		return outputs, nil
	}

	var buf bytes.Buffer
	page := output.NewHTMLRenderer(output.Options{AssetsHost: r.cfg.Viewer.AssetsHost})
	if err := page.Render(ctx, fig, &buf); err != nil {
		return outputs, fmt.Errorf("rendering html: %w", err)
	}

	if r.cfg.Viewer.HTML {
		if err := writeFile(j.htmlPath, func(w io.Writer) error {
			_, err := w.Write(buf.Bytes())
			return err
		}); err != nil {
			return outputs, fmt.Errorf("saving %s: %w", j.htmlPath, err)
		}
		outputs = append(outputs, j.htmlPath)
	}
	if r.viewer != nil {
		r.viewer.Publish(j.name, buf.Bytes())
	}

	return outputs, nil
}

// writeFile replaces path atomically so document viewers never load a
// partial file.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// #nosec G302 -- rendered figures are meant to be shared
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// htmlPath puts the interactive page next to the document, or in the
// working directory when the figure is not saved.
func htmlPath(out, name string) string {
	if out == "" {
		return name + ".html"
	}
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".html"
}
