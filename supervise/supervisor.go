// Package supervise starts the platform's service daemons in a fixed
// order. It performs no health checking; each daemon is launched once,
// detached, with its output redirected to a per-service log file.
package supervise

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/spinup-io/spinup/process"
)

// StartFunc launches a detached daemon and returns its pid.
type StartFunc func(cmd process.DaemonCommand) (int, error)

// Started records one launched daemon.
type Started struct {
	Name string
	Pid  int
}

// Supervisor launches service daemons sequentially.
type Supervisor struct {
	logDir string
	start  StartFunc
	log    zerolog.Logger
}

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithStarter replaces the daemon launcher, typically for tests.
func WithStarter(start StartFunc) Option {
	return func(s *Supervisor) { s.start = start }
}

// New creates a Supervisor writing service logs under logDir.
func New(logDir string, log zerolog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{logDir: logDir, start: process.StartDaemon, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartAll launches every service in manifest order. The first launch
// failure halts the run; services already launched keep running.
func (s *Supervisor) StartAll(manifest *Manifest) ([]Started, error) {
	started := make([]Started, 0, len(manifest.Services))
	for _, svc := range manifest.Services {
		s.log.Info().Str("service", svc.Name).Msg("starting service")
		pid, err := s.start(process.DaemonCommand{
			Binary:  svc.Binary,
			Args:    svc.Args,
			Env:     svc.Env,
			LogPath: filepath.Join(s.logDir, svc.Name+".log"),
		})
		if err != nil {
			return started, fmt.Errorf("supervise: start %s: %w", svc.Name, err)
		}
		s.log.Info().Str("service", svc.Name).Int("pid", pid).Msg("service started")
		started = append(started, Started{Name: svc.Name, Pid: pid})
	}
	return started, nil
}
