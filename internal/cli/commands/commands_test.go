package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ctrlviz/ctrlviz/pkg/output"
	"github.com/ctrlviz/ctrlviz/pkg/parser"
	"github.com/ctrlviz/ctrlviz/pkg/watcher"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestPlotCommandFlags(t *testing.T) {
	g := &GlobalOptions{}
	flags := []string{"output", "format", "html", "once", "serve", "restart", "debounce", "summary", "verbose", "quiet"}

	for _, cmd := range []*cobra.Command{NewForceCommand(g), NewJointsCommand(g), NewPoseCommand(g)} {
		for _, flag := range flags {
			if cmd.Flags().Lookup(flag) == nil {
				t.Errorf("%s: missing flag: %s", cmd.Name(), flag)
			}
		}
	}

	if NewForceCommand(g).Flags().ShorthandLookup("f") == nil {
		t.Error("force: missing -f shorthand")
	}
	if NewPoseCommand(g).Flags().Lookup("watch") == nil {
		t.Error("pose: missing --watch flag")
	}
}

func TestForceOnce_WritesSVG(t *testing.T) {
	dir := t.TempDir()
	logPath := writeForceLog(t, dir, 20)
	outPath := filepath.Join(dir, "force.svg")

	g := &GlobalOptions{LogLevel: "error"}
	_, _, err := execute(t, NewForceCommand(g), "--file", logPath, "--output", outPath, "--once")
	if err != nil {
		t.Fatalf("force --once failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Output not written: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("Output is not an SVG document: %.40q", data)
	}
}

func TestForceOnce_HTMLPage(t *testing.T) {
	dir := t.TempDir()
	logPath := writeForceLog(t, dir, 20)
	outPath := filepath.Join(dir, "force.pdf")

	g := &GlobalOptions{LogLevel: "error"}
	_, _, err := execute(t, NewForceCommand(g), "-f", logPath, "-o", outPath, "--html", "--once")
	if err != nil {
		t.Fatalf("force --html failed: %v", err)
	}

	page, err := os.ReadFile(filepath.Join(dir, "force.html"))
	if err != nil {
		t.Fatalf("HTML page not written: %v", err)
	}
	if !strings.Contains(string(page), "x_force") {
		t.Error("HTML page does not name the x_force series")
	}
}

func TestForceOnce_DroppedSampleIsAGap(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTestFile(t, dir, "ext_wrench_data.txt",
		"1 2 3 4 5 6\nnan 2 3 4 5 6\n3 2 3 4 5 6\n0 0 0 0 0 0\n0 0 0 0 0 0\n0 0 0 0 0 0\n")
	outPath := filepath.Join(dir, "force.svg")

	g := &GlobalOptions{LogLevel: "error"}
	stdout, _, err := execute(t, NewForceCommand(g), "-f", logPath, "-o", outPath, "--html", "--summary", "json", "--once")
	if err != nil {
		t.Fatalf("force --once with a nan sample failed: %v", err)
	}

	for _, path := range []string{outPath, filepath.Join(dir, "force.html")} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Output not written: %v", err)
		}
	}

	var summary output.Summary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("Summary is not JSON: %v\n%s", err, stdout)
	}
	if len(summary.Series) == 0 {
		t.Fatal("Summary has no series")
	}
	x := summary.Series[0]
	if x.Samples != 3 || x.Missing != 1 {
		t.Errorf("x_force samples=%d missing=%d, want 3 and 1", x.Samples, x.Missing)
	}
	if x.Min != 1 || x.Max != 3 || x.Mean != 2 {
		t.Errorf("x_force min=%v max=%v mean=%v, want 1 3 2", x.Min, x.Max, x.Mean)
	}
}

func TestForceOnce_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTestFile(t, dir, "bad.txt", "1 2 3 4 5 6\n1 2 x 4 5 6\n1 2 3 4 5 6\n\n\n\n")

	g := &GlobalOptions{LogLevel: "error"}
	_, _, err := execute(t, NewForceCommand(g), "-f", logPath, "-o", filepath.Join(dir, "out.svg"), "--once")
	if !errors.Is(err, parser.ErrNotNumeric) {
		t.Fatalf("Expected ErrNotNumeric, got %v", err)
	}

	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected a *parser.ParseError, got %T", err)
	}
	if pe.Line != 2 || pe.Column != 2 {
		t.Errorf("Error at line %d column %d, want line 2 column 2", pe.Line, pe.Column)
	}
}

func TestForceWatch_MissingInputAborts(t *testing.T) {
	dir := t.TempDir()

	g := &GlobalOptions{LogLevel: "error"}
	_, _, err := execute(t, NewForceCommand(g), "-f", filepath.Join(dir, "missing.txt"))
	if !errors.Is(err, watcher.ErrNotWatchable) {
		t.Fatalf("Expected ErrNotWatchable, got %v", err)
	}
}

func TestJointsOnce_JSONSummary(t *testing.T) {
	dir := t.TempDir()
	logPath := writeJointsLog(t, dir, 8)

	g := &GlobalOptions{LogLevel: "error"}
	stdout, _, err := execute(t, NewJointsCommand(g),
		"-f", logPath, "-o", filepath.Join(dir, "joints.png"), "--summary", "json", "--once")
	if err != nil {
		t.Fatalf("joints --once failed: %v", err)
	}

	var summary output.Summary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("Summary is not JSON: %v\n%s", err, stdout)
	}
	if summary.Figure != "joints" {
		t.Errorf("Figure = %q, want joints", summary.Figure)
	}
	if summary.Samples != 8 {
		t.Errorf("Samples = %d, want 8", summary.Samples)
	}
	if summary.Refresh != 1 {
		t.Errorf("Refresh = %d, want 1", summary.Refresh)
	}
	if len(summary.Outputs) != 1 || summary.Outputs[0] != filepath.Join(dir, "joints.png") {
		t.Errorf("Outputs = %v", summary.Outputs)
	}
}

func TestPoseOnce_WritesOnlyWithOutput(t *testing.T) {
	dir := t.TempDir()
	measured, predicted, twist := writePoseLogs(t, dir)
	g := &GlobalOptions{LogLevel: "error"}

	stdout, _, err := execute(t, NewPoseCommand(g),
		"--measured", measured, "--predicted", predicted, "--twist", twist, "--summary", "text", "-q", "--once")
	if err != nil {
		t.Fatalf("pose --once failed: %v", err)
	}
	if !strings.Contains(stdout, "pose refresh 1") {
		t.Errorf("Unexpected summary: %q", stdout)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("pose without --output wrote files: %v", entries)
	}

	outPath := filepath.Join(dir, "pose.svg")
	_, _, err = execute(t, NewPoseCommand(g),
		"--measured", measured, "--predicted", predicted, "--twist", twist, "-o", outPath, "--once")
	if err != nil {
		t.Fatalf("pose --output failed: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("pose --output did not write %s: %v", outPath, err)
	}
}

func TestPlotCommand_InvalidOptions(t *testing.T) {
	dir := t.TempDir()
	logPath := writeForceLog(t, dir, 5)
	g := &GlobalOptions{LogLevel: "error"}

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"-f", logPath, "--format", "bmp", "--once"}},
		{"bad restart", []string{"-f", logPath, "--restart", "fork", "--once"}},
		{"bad summary", []string{"-f", logPath, "--summary", "xml", "--once"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, NewForceCommand(g), tt.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestRunValidate_Success(t *testing.T) {
	dir := t.TempDir()
	writeForceLog(t, dir, 5)
	configPath := writeConfig(t, dir, "")

	stdout, _, err := execute(t, NewValidateCommand(), configPath)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if !strings.Contains(stdout, "Configuration valid!") {
		t.Errorf("Missing success line:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Warning: input not found: "+filepath.Join(dir, "joint_torques.txt")) {
		t.Errorf("Missing warning for the joint log:\n%s", stdout)
	}
	if strings.Contains(stdout, "input not found: "+filepath.Join(dir, "ext_wrench_data.txt")) {
		t.Errorf("Warned about an existing input:\n%s", stdout)
	}
}

func TestRunValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestFile(t, dir, "bad.yaml", `force:
  file: wrench.txt
  layout:
    columns: 6
    signals:
      - label: x_force
        color: red
`)

	_, _, err := execute(t, NewValidateCommand(), configPath)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "signals has 1 entries") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, NewValidateCommand(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("Expected error for missing config")
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, NewVersionCommand())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if stdout != "ctrlviz "+Version+"\n" {
		t.Errorf("Unexpected version output: %q", stdout)
	}
}
