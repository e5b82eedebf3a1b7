package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/detector"
	"github.com/ctrlviz/ctrlviz/pkg/parser"
	"github.com/ctrlviz/ctrlviz/pkg/pose"
	"github.com/ctrlviz/ctrlviz/pkg/signal"
	"github.com/ctrlviz/ctrlviz/pkg/watcher"
)

// ExitCode is set by commands that finish normally but want a non-zero exit.
var ExitCode = 0

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [config-file]",
		Short: "Check that every configured input can be plotted",
		Long: `Diagnose common setup problems before leaving a plot running.

Checks:
- Config file syntax and structure
- Every input file exists, can be watched, and matches its layout
- Webhook settings
- Viewer address availability

Without an argument the --config file (or the defaults) is checked.

Example:
  ctrlviz diagnose
  ctrlviz diagnose -v ctrlviz.yaml  # verbose output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.ConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), path, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	if configPath != "" {
		result := checkConfigExists(configPath)
		results = append(results, result)
		if result.Status == "error" {
			return finishDiagnostics(w, results, opts)
		}
	}

	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		return finishDiagnostics(w, results, opts)
	}

	results = append(results, checkSeriesInput(ctx, "force", cfg.Force))
	results = append(results, checkSeriesInput(ctx, "joints", cfg.Joints))
	results = append(results, checkPoseInputs(ctx, cfg.Pose)...)
	results = append(results, checkWatchable(cfg)...)
	results = append(results, checkWebhooks(cfg, opts)...)
	if cfg.Viewer.Addr != "" {
		results = append(results, checkViewerAddr(cfg.Viewer.Addr))
	}

	return finishDiagnostics(w, results, opts)
}

func finishDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) error {
	if printDiagnostics(w, results, opts) > 0 {
		ExitCode = 1
	}
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Run without a config file to use the controller's default paths",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	if path == "" {
		result.Message = "Using built-in defaults"
	} else {
		result.Message = "Config file parsed successfully"
	}
	result.Details = []string{
		fmt.Sprintf("Force log: %s", cfg.Force.File),
		fmt.Sprintf("Joint log: %s", cfg.Joints.File),
		fmt.Sprintf("Pose logs: %s, %s, %s", cfg.Pose.MeasuredFile, cfg.Pose.PredictedFile, cfg.Pose.TwistFile),
	}
	return cfg, result
}

// checkInputFile reports whether path is a readable, non-empty regular file.
func checkInputFile(check, path string) (DiagnosticResult, bool) {
	result := DiagnosticResult{Check: check}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		result.Status = "error"
		result.Message = fmt.Sprintf("File does not exist: %s", path)
		result.Suggests = []string{
			"Run the controller once so it writes the file",
			"Paths are relative to the working directory",
		}
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access file: %v", err)
		result.Suggests = []string{"Check file permissions"}
	case info.IsDir():
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
	case info.Size() == 0:
		result.Status = "warning"
		result.Message = "File is empty (0 bytes)"
	default:
		return result, true
	}
	return result, false
}

func checkSeriesInput(ctx context.Context, name string, cfg config.SeriesConfig) DiagnosticResult {
	result, ok := checkInputFile(fmt.Sprintf("Input: %s", name), cfg.File)
	if !ok {
		return result
	}

	data, err := signal.Load(ctx, cfg)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Does not match the %s layout: %v", name, err)
		if errors.Is(err, parser.ErrColumnCount) || errors.Is(err, parser.ErrNotNumeric) {
			result.Suggests = append(result.Suggests, suggestLayout(ctx, cfg.File)...)
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d samples x %d columns", data.Samples(), len(data.Signals))
	result.Details = []string{cfg.File}
	return result
}

func checkPoseInputs(ctx context.Context, cfg config.PoseConfig) []DiagnosticResult {
	results := []DiagnosticResult{}

	files := []struct {
		name  string
		path  string
		parse func(*parser.Matrix) error
	}{
		{"measured pose", cfg.MeasuredFile, func(m *parser.Matrix) error { _, err := pose.ParseFrame(m); return err }},
		{"predicted pose", cfg.PredictedFile, func(m *parser.Matrix) error { _, err := pose.ParseFrame(m); return err }},
		{"twist", cfg.TwistFile, func(m *parser.Matrix) error { _, err := pose.ParseTwist(m); return err }},
	}

	for _, f := range files {
		result, ok := checkInputFile(fmt.Sprintf("Input: %s", f.name), f.path)
		if ok {
			m, err := parser.ReadMatrix(ctx, f.path)
			if err == nil {
				err = f.parse(m)
			}
			if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Cannot read %s: %v", f.name, err)
				result.Suggests = suggestLayout(ctx, f.path)
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("%d values", len(m.Tokens()))
				result.Details = []string{f.path}
			}
		}
		results = append(results, result)
	}

	return results
}

// suggestLayout names the layout a mismatching file appears to have.
func suggestLayout(ctx context.Context, path string) []string {
	det, err := detector.New(detector.WithSampleSize(10)).DetectFromFile(ctx, path)
	if err != nil || !det.HasMatch() {
		return nil
	}
	best := det.BestMatch()
	return []string{fmt.Sprintf("File looks like a %s log (%s)", best.Format.Name, best.Format.Description)}
}

func checkWatchable(cfg *config.Config) []DiagnosticResult {
	results := []DiagnosticResult{}

	w, err := watcher.New(0, nil)
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "File Watching",
			Status:  "error",
			Message: fmt.Sprintf("Cannot create a watcher: %v", err),
			Suggests: []string{
				"Raise fs.inotify.max_user_instances",
				"Use --once to render without watching",
			},
		})
	}
	defer w.Close()

	paths := append([]string{cfg.Force.File, cfg.Joints.File}, cfg.Pose.WatchFiles...)
	failed := []string{}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			failed = append(failed, err.Error())
		}
	}

	result := DiagnosticResult{Check: "File Watching"}
	if len(failed) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d of %d input(s) cannot be watched", len(failed), len(paths))
		result.Details = failed
	} else {
		result.Status = "ok"
		result.Message = fmt.Sprintf("All %d watched input(s) registered", len(paths))
		result.Details = paths
	}
	return append(results, result)
}

func checkViewerAddr(addr string) DiagnosticResult {
	result := DiagnosticResult{Check: fmt.Sprintf("Viewer: %s", addr)}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot listen: %v", err)
		result.Suggests = []string{"Pick a free port with --serve or viewer.addr"}
		return result
	}
	ln.Close()

	result.Status = "ok"
	result.Message = "Address is available"
	return result
}

// printDiagnostics writes the report and returns the number of errors.
func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) int {
	fmt.Fprintln(w, "=== ctrlviz Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before plotting.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nSetup is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nSetup looks good!")
	}
	return errCount
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		result.Status = "ok"
		result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
		switch {
		case wh.Trigger == config.WebhookTriggerNever:
			result.Status = "warning"
			result.Message = "Trigger is 'never'; webhook is disabled"
		case wh.Token != "" && strings.HasPrefix(wh.URL, "http://"):
			result.Status = "warning"
			result.Message = "Token is sent over plain http"
			result.Suggests = []string{"Use an https:// URL"}
		}
		if opts.Verbose {
			result.Details = []string{
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			}
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
		}

		results = append(results, result)

		if opts.Verbose {
			conn := checkWebhookConnectivity(wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST (refresh summaries are POSTed)",
			"Check authentication if using a token",
		}
	}

	return result
}
