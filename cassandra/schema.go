// Package cassandra wires the Cassandra dependency into the startup
// sequencer: the reachability endpoint, the local service start action,
// and the fixed-order schema initialization steps.
package cassandra

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/spinup-io/spinup/process"
	"github.com/spinup-io/spinup/sequencer"
)

// Defaults for the Cassandra endpoint.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 9042
)

// Schema scripts applied in fixed order once the endpoint is reachable.
// Both are idempotent: re-applying an existing keyspace definition is a
// no-op on the server side.
var schemaScripts = []string{
	"create_echo_keyspace.cql",
	"create_front50_keyspace.cql",
}

// RunFunc executes an external command.
type RunFunc func(ctx context.Context, cmd process.Command) (*process.Result, error)

// SchemaSteps builds the sequencer steps that apply the schema scripts
// under dir against the endpoint via cqlsh.
func SchemaSteps(dir string, ep sequencer.Endpoint, run RunFunc) []sequencer.Step {
	if run == nil {
		run = process.Run
	}
	steps := make([]sequencer.Step, 0, len(schemaScripts))
	for _, script := range schemaScripts {
		path := filepath.Join(dir, script)
		steps = append(steps, sequencer.Step{
			Name: script,
			Run: func(ctx context.Context) error {
				_, err := run(ctx, process.Command{
					Binary: "cqlsh",
					Args:   []string{"-f", path, ep.Host, strconv.Itoa(ep.Port)},
				})
				return err
			},
		})
	}
	return steps
}

// LocalStart returns the fire-and-forget action that starts the local
// Cassandra service. The sequencer ignores its error; the polling loop
// is the real gate.
func LocalStart(run RunFunc) func(ctx context.Context) error {
	if run == nil {
		run = process.Run
	}
	return func(ctx context.Context) error {
		_, err := run(ctx, process.Command{
			Binary: "sudo",
			Args:   []string{"service", "cassandra", "start"},
		})
		return err
	}
}
