package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctrlviz/ctrlviz/pkg/config"
)

func resetExitCode(t *testing.T) {
	t.Helper()
	ExitCode = 0
	t.Cleanup(func() { ExitCode = 0 })
}

func TestDiagnose_AllInputsPresent(t *testing.T) {
	resetExitCode(t)
	dir := t.TempDir()
	writeForceLog(t, dir, 10)
	writeJointsLog(t, dir, 10)
	writePoseLogs(t, dir)
	configPath := writeConfig(t, dir, "")

	var buf bytes.Buffer
	if err := runDiagnose(context.Background(), &buf, configPath, &DiagnoseOptions{}); err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	out := buf.String()
	checks := []string{
		"=== ctrlviz Diagnostics ===",
		"[PASS] Input: force",
		"10 samples x 6 columns",
		"[PASS] Input: joints",
		"[PASS] Input: twist",
		"[PASS] File Watching",
		"0 errors",
		"Setup looks good!",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("Output missing %q:\n%s", check, out)
		}
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
}

func TestDiagnose_MissingAndMismatchedInputs(t *testing.T) {
	resetExitCode(t)
	dir := t.TempDir()
	writePoseLogs(t, dir)
	// A pose file where the force log should be.
	writeTestFile(t, dir, "ext_wrench_data.txt", "1 0 0\n0 1 0\n0 0 1\n0 0 0\n")
	configPath := writeConfig(t, dir, "")

	var buf bytes.Buffer
	if err := runDiagnose(context.Background(), &buf, configPath, &DiagnoseOptions{}); err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[FAIL] Input: force") {
		t.Errorf("Expected force input to fail:\n%s", out)
	}
	if !strings.Contains(out, "File looks like a pose log") {
		t.Errorf("Expected a layout hint:\n%s", out)
	}
	if !strings.Contains(out, "[FAIL] Input: joints") || !strings.Contains(out, "File does not exist") {
		t.Errorf("Expected missing joint log:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] File Watching") {
		t.Errorf("Expected watch warning:\n%s", out)
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode)
	}
}

func TestDiagnose_ConfigNotFound(t *testing.T) {
	resetExitCode(t)

	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing.yaml")
	if err := runDiagnose(context.Background(), &buf, path, &DiagnoseOptions{}); err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	if !strings.Contains(buf.String(), "[FAIL] Config File") {
		t.Errorf("Expected config failure:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Config Syntax") {
		t.Error("Should stop after a missing config")
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode)
	}
}

func TestDiagnose_BadYAML(t *testing.T) {
	resetExitCode(t)
	dir := t.TempDir()
	path := writeTestFile(t, dir, "bad.yaml", "force:\n\tfile: x\n")

	var buf bytes.Buffer
	if err := runDiagnose(context.Background(), &buf, path, &DiagnoseOptions{}); err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[FAIL] Config Syntax") {
		t.Errorf("Expected syntax failure:\n%s", out)
	}
	if !strings.Contains(out, "use spaces, not tabs") {
		t.Errorf("Expected indentation hint:\n%s", out)
	}
}

func TestDiagnoseCommand_ArgOverridesConfigFlag(t *testing.T) {
	resetExitCode(t)
	dir := t.TempDir()
	g := &GlobalOptions{ConfigPath: filepath.Join(dir, "flag.yaml")}
	argPath := filepath.Join(dir, "arg.yaml")

	stdout, _, err := execute(t, NewDiagnoseCommand(g), argPath)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	if !strings.Contains(stdout, argPath) {
		t.Errorf("Expected the argument path to be checked:\n%s", stdout)
	}
}

func TestCheckWebhooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{Webhooks: []config.WebhookConfig{
		{Name: "ops", URL: server.URL, Trigger: config.WebhookTriggerOnError},
		{Name: "muted", URL: server.URL, Trigger: config.WebhookTriggerNever},
		{Name: "leaky", URL: server.URL, Token: "secret", Trigger: config.WebhookTriggerAlways},
	}}

	results := checkWebhooks(cfg, &DiagnoseOptions{})
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	want := []string{"ok", "warning", "warning"}
	for i, r := range results {
		if r.Status != want[i] {
			t.Errorf("%s: status = %q, want %q (%s)", r.Check, r.Status, want[i], r.Message)
		}
	}

	verbose := checkWebhooks(cfg, &DiagnoseOptions{Verbose: true})
	if len(verbose) != 6 {
		t.Fatalf("Expected connectivity checks in verbose mode, got %d results", len(verbose))
	}
	if verbose[1].Status != "ok" || !strings.Contains(verbose[1].Message, "Reachable") {
		t.Errorf("Connectivity: %s %s", verbose[1].Status, verbose[1].Message)
	}
}

func TestCheckInputFile(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path   string
		status string
		ok     bool
	}{
		{filepath.Join(dir, "missing.txt"), "error", false},
		{dir, "error", false},
		{empty, "warning", false},
		{writeTestFile(t, dir, "data.txt", "1 2 3\n"), "", true},
	}

	for _, tt := range tests {
		result, ok := checkInputFile("Input", tt.path)
		if ok != tt.ok || result.Status != tt.status {
			t.Errorf("checkInputFile(%s) = %q, %v; want %q, %v", tt.path, result.Status, ok, tt.status, tt.ok)
		}
	}
}
