// Package restart re-executes the running binary with its original
// arguments, for deployments that expect a fresh process on every input
// change.
//
// The default refresh path reloads in place; this is only used with
// --restart=exec.
package restart

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// ErrExecutableNotFound is returned when the running binary cannot be
// located.
var ErrExecutableNotFound = errors.New("executable not found")

// ExecFunc replaces the current process image. It only returns on failure.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Restarter replaces the process with a new instance of itself.
type Restarter struct {
	// Args is the full argument vector, including argv[0].
	Args []string
	Env  []string
	Exec ExecFunc
}

// New returns a Restarter for the current process.
func New() *Restarter {
	args := make([]string, len(os.Args))
	copy(args, os.Args)
	return &Restarter{
		Args: args,
		Env:  os.Environ(),
		Exec: syscall.Exec,
	}
}

// Restart execs the binary with an identical argument vector. On success
// it does not return.
func (r *Restarter) Restart() error {
	if len(r.Args) == 0 {
		return fmt.Errorf("restarting: %w: empty argument vector", ErrExecutableNotFound)
	}

	path, err := FindExecutable(r.Args[0])
	if err != nil {
		return fmt.Errorf("restarting: %w", err)
	}

	if err := r.Exec(path, r.Args, r.Env); err != nil {
		return fmt.Errorf("restarting %s: %w", path, err)
	}
	return nil
}

// FindExecutable locates the binary to exec. It searches in order:
//  1. the path reported by the OS for the running process
//  2. argv0 itself, if it names a file
//  3. argv0 looked up in PATH
func FindExecutable(argv0 string) (string, error) {
	if execPath, err := os.Executable(); err == nil && isExecutable(execPath) {
		return execPath, nil
	}

	if argv0 != "" && filepath.Base(argv0) != argv0 && isExecutable(argv0) {
		return argv0, nil
	}

	if path, err := exec.LookPath(argv0); err == nil {
		return path, nil
	}

	return "", ErrExecutableNotFound
}

// isExecutable checks if a file exists and has an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
