package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeForceLog writes rows six-column samples followed by the three
// trailer lines the controller leaves.
func writeForceLog(t *testing.T, dir string, rows int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < rows+3; i++ {
		fmt.Fprintf(&b, "%d.0 %d.5 -1.0 0.1 0.2 0.3\n", i, i)
	}
	return writeTestFile(t, dir, "ext_wrench_data.txt", b.String())
}

// writeJointsLog writes a limit row, rows samples and two trailer lines.
func writeJointsLog(t *testing.T, dir string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("87 87 87 87 12 12 12\n")
	for i := 0; i < rows+2; i++ {
		fmt.Fprintf(&b, "%d 1 2 3 4 5 6\n", i)
	}
	return writeTestFile(t, dir, "joint_torques.txt", b.String())
}

// writePoseLogs writes identity poses at the origin and a unit x twist.
func writePoseLogs(t *testing.T, dir string) (measured, predicted, twist string) {
	t.Helper()
	identity := "1 0 0\n0 1 0\n0 0 1\n0 0 0\n"
	measured = writeTestFile(t, dir, "measured_pose.txt", identity)
	predicted = writeTestFile(t, dir, "predicted_pose.txt", identity)
	twist = writeTestFile(t, dir, "current_twist.txt", "1 0 0 0 0 0\n")
	return measured, predicted, twist
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// writeConfig points every input of a config at the files in dir.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	config := fmt.Sprintf(`force:
  file: %s
  output: %s
joints:
  file: %s
  output: %s
pose:
  measured_file: %s
  predicted_file: %s
  twist_file: %s
watch:
  debounce: 50ms
%s`,
		filepath.Join(dir, "ext_wrench_data.txt"),
		filepath.Join(dir, "force.svg"),
		filepath.Join(dir, "joint_torques.txt"),
		filepath.Join(dir, "joints.svg"),
		filepath.Join(dir, "measured_pose.txt"),
		filepath.Join(dir, "predicted_pose.txt"),
		filepath.Join(dir, "current_twist.txt"),
		extra)
	return writeTestFile(t, dir, "ctrlviz.yaml", config)
}
