package cassandra

import (
	"context"
	"strings"
	"testing"

	"github.com/spinup-io/spinup/process"
	"github.com/spinup-io/spinup/sequencer"
)

func TestSchemaSteps_FixedOrder(t *testing.T) {
	var ran []string
	run := func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		ran = append(ran, cmd.Binary+" "+strings.Join(cmd.Args, " "))
		return &process.Result{}, nil
	}

	ep := sequencer.Endpoint{Host: "127.0.0.1", Port: 9042}
	steps := SchemaSteps("/opt/spinnaker/cassandra", ep, run)

	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Name != "create_echo_keyspace.cql" || steps[1].Name != "create_front50_keyspace.cql" {
		t.Errorf("unexpected step order: %s, %s", steps[0].Name, steps[1].Name)
	}

	for _, s := range steps {
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("step %s: %v", s.Name, err)
		}
	}

	if len(ran) != 2 {
		t.Fatalf("expected 2 commands, got %v", ran)
	}
	if !strings.Contains(ran[0], "cqlsh -f /opt/spinnaker/cassandra/create_echo_keyspace.cql 127.0.0.1 9042") {
		t.Errorf("unexpected first command: %s", ran[0])
	}
	if !strings.Contains(ran[1], "create_front50_keyspace.cql") {
		t.Errorf("unexpected second command: %s", ran[1])
	}
}

func TestLocalStart(t *testing.T) {
	var got string
	run := func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		got = cmd.Binary + " " + strings.Join(cmd.Args, " ")
		return &process.Result{}, nil
	}

	if err := LocalStart(run)(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sudo service cassandra start" {
		t.Errorf("unexpected command: %s", got)
	}
}
