package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spinup-io/spinup/process"
)

func TestStart(t *testing.T) {
	var got string
	run := func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		got = cmd.Binary + " " + strings.Join(cmd.Args, " ")
		return &process.Result{}, nil
	}

	if err := Start(run)(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sudo service redis-server start" {
		t.Errorf("unexpected command: %s", got)
	}
}

func TestStart_ReportsFailure(t *testing.T) {
	run := func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		return &process.Result{ExitCode: 1}, errors.New("service not found")
	}

	if err := Start(run)(context.Background()); err == nil {
		t.Fatal("expected error when redis fails to start")
	}
}
