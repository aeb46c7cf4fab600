// Package daemon runs wol-proxy detached from its terminal.
//
// Go programs cannot safely fork, so detaching starts the same executable
// again in a new session with an environment marker. The child recognises
// the marker and continues as the daemon.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

const childEnv = "WOLPROXY_DAEMON_CHILD"

// IsChild reports whether this process was started by Detach.
func IsChild() bool {
	return os.Getenv(childEnv) == "1"
}

// Detach starts the running executable with args in a new session, stdio
// connected to /dev/null, and returns the child's pid. The caller exits
// afterwards.
func Detach(args []string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locating executable: %w", err)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer func() { _ = devNull.Close() }()

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), childEnv+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting daemon: %w", err)
	}

	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}

// Prepare moves to the filesystem root and clears the file creation mask.
func Prepare() error {
	if err := os.Chdir("/"); err != nil {
		return fmt.Errorf("changing to /: %w", err)
	}
	unix.Umask(0)
	return nil
}

// PIDFile is a file holding the daemon's process id.
type PIDFile struct {
	path string
}

// WritePIDFile writes the current pid followed by a newline to path.
func WritePIDFile(path string) (*PIDFile, error) {
	content := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // pid files are world readable
		return nil, fmt.Errorf("can't create pidfile: %w", err)
	}
	return &PIDFile{path: path}, nil
}

// Path returns the file location.
func (p *PIDFile) Path() string {
	return p.path
}

// Remove deletes the file. A file that is already gone is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing pidfile: %w", err)
	}
	return nil
}

// ReadPID returns the pid stored at path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading pidfile: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pidfile %s: %w", path, err)
	}
	return pid, nil
}
