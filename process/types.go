package process

import (
	"io"
	"time"
)

// Command describes one foreground invocation: an apt-get call, a cqlsh
// run, a service control command. The binary is resolved via PATH and
// inherits spinup's working directory and environment.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin feeds the process standard input. Used for piping file
	// contents through privileged writers such as tee.
	Stdin io.Reader
	// GracePeriod is how long to wait after SIGTERM before SIGKILL on
	// context cancellation. Defaults to 5s.
	GracePeriod time.Duration
}

// Result captures what a finished command produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}
