// Package redis starts the local Redis dependency. Redis comes up before
// the Cassandra bring-up so the queue-backed services find it as soon as
// they boot.
package redis

import (
	"context"

	"github.com/spinup-io/spinup/process"
)

// RunFunc executes an external command.
type RunFunc func(ctx context.Context, cmd process.Command) (*process.Result, error)

// Start brings up the local redis-server service. Starting an already
// running service is a no-op, so repeated runs are safe. Unlike the
// Cassandra local start there is no polling loop behind this, so a
// failed start is reported to the caller.
func Start(run RunFunc) func(ctx context.Context) error {
	if run == nil {
		run = process.Run
	}
	return func(ctx context.Context) error {
		_, err := run(ctx, process.Command{
			Binary: "sudo",
			Args:   []string{"service", "redis-server", "start"},
		})
		return err
	}
}
