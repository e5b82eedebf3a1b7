package restart

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRestart_IdenticalArgv(t *testing.T) {
	args := []string{"ctrlviz", "force", "--file", "../archive/ext_wrench_data.txt", "--restart=exec"}

	var gotPath string
	var gotArgs, gotEnv []string
	r := &Restarter{
		Args: args,
		Env:  []string{"CTRLVIZ_FORCE_FILE=x"},
		Exec: func(argv0 string, argv []string, envv []string) error {
			gotPath, gotArgs, gotEnv = argv0, argv, envv
			return nil
		},
	}

	if err := r.Restart(); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}

	if !reflect.DeepEqual(gotArgs, args) {
		t.Errorf("argv = %v, want %v", gotArgs, args)
	}
	if !reflect.DeepEqual(gotEnv, r.Env) {
		t.Errorf("env = %v, want %v", gotEnv, r.Env)
	}
	if gotPath == "" {
		t.Error("exec path is empty")
	}
}

func TestRestart_ExecFailure(t *testing.T) {
	boom := errors.New("exec format error")
	r := &Restarter{
		Args: []string{"ctrlviz", "pose"},
		Exec: func(string, []string, []string) error { return boom },
	}

	err := r.Restart()
	if !errors.Is(err, boom) {
		t.Errorf("Restart() error = %v, want wrapping %v", err, boom)
	}
}

func TestRestart_EmptyArgs(t *testing.T) {
	r := &Restarter{Exec: func(string, []string, []string) error { return nil }}
	if err := r.Restart(); !errors.Is(err, ErrExecutableNotFound) {
		t.Errorf("Restart() error = %v, want ErrExecutableNotFound", err)
	}
}

func TestNew_CopiesArgs(t *testing.T) {
	r := New()
	if !reflect.DeepEqual(r.Args, os.Args) {
		t.Errorf("Args = %v, want %v", r.Args, os.Args)
	}
	if r.Exec == nil {
		t.Error("Exec is nil")
	}
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()

	script := filepath.Join(dir, "ctrlviz")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(plain, []byte("1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{script, true},
		{plain, false},
		{dir, false},
		{filepath.Join(dir, "missing"), false},
	}
	for _, tt := range tests {
		if got := isExecutable(tt.path); got != tt.want {
			t.Errorf("isExecutable(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
