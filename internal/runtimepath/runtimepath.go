// Package runtimepath locates the per-user files the daemon shares with its
// clients.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvSocket overrides the socket path, for running a second daemon against
// another display.
const EnvSocket = "VIDFRAME_SOCKET"

// Dir returns the runtime directory: $XDG_RUNTIME_DIR, then
// /run/user/<uid>, then a private /tmp/vidframe-runtime-<uid> it creates.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	runUser := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUser); err == nil && info.IsDir() {
		return runUser, nil
	}

	tmp := fmt.Sprintf("/tmp/vidframe-runtime-%d", uid)
	if err := os.MkdirAll(tmp, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmp, nil
}

// SocketPath returns the IPC socket path.
func SocketPath() (string, error) {
	if p := os.Getenv(EnvSocket); p != "" {
		return p, nil
	}
	return file("vidframe.sock")
}

// PIDPath returns the file the daemon records its pid in. It sits next to
// the socket so an overridden socket gets its own pid file.
func PIDPath() (string, error) {
	sock, err := SocketPath()
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(sock)
	return sock[:len(sock)-len(ext)] + ".pid", nil
}

func file(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
