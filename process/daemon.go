package process

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// DaemonCommand configures a detached background process.
type DaemonCommand struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// LogPath receives combined stdout/stderr. If empty, output is discarded.
	LogPath string
}

// StartDaemon launches a process detached from spinup in its own session.
// It returns the pid without waiting; the child outlives this process.
func StartDaemon(cmd DaemonCommand) (int, error) {
	if cmd.Binary == "" {
		return 0, fmt.Errorf("process: binary is required")
	}

	c := exec.Command(cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Env = mergeEnv(cmd.Env)
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if cmd.LogPath != "" {
		logFile, err := os.OpenFile(cmd.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, fmt.Errorf("process: open log %s: %w", cmd.LogPath, err)
		}
		defer logFile.Close()
		c.Stdout = logFile
		c.Stderr = logFile
	}

	if err := c.Start(); err != nil {
		return 0, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}
	pid := c.Process.Pid

	// Reap the child when it exits so it cannot linger as a zombie while
	// spinup is still running.
	go func() { _ = c.Wait() }()

	return pid, nil
}
