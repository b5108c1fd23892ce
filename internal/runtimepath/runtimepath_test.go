package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallsBackWithoutXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/vidframe-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketAndPIDPaths(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	tests := []struct {
		name     string
		override string
		sock     string
		pid      string
	}{
		{"runtime dir", "", filepath.Join(td, "vidframe.sock"), filepath.Join(td, "vidframe.pid")},
		{"override", "/tmp/x/second.sock", "/tmp/x/second.sock", "/tmp/x/second.pid"},
		{"override without extension", "/tmp/x/ctl", "/tmp/x/ctl", "/tmp/x/ctl.pid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvSocket, tt.override)
			sock, err := SocketPath()
			if err != nil {
				t.Fatalf("SocketPath: %v", err)
			}
			pid, err := PIDPath()
			if err != nil {
				t.Fatalf("PIDPath: %v", err)
			}
			if sock != tt.sock || pid != tt.pid {
				t.Fatalf("got %q, %q; want %q, %q", sock, pid, tt.sock, tt.pid)
			}
		})
	}
}
