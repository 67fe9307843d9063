// Package bootstrap orchestrates one spinup run as a sequence of named
// phases. Each phase's side effects must be established before the next
// phase depends on them, so execution is strictly sequential and halts
// at the first failure.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spinup-io/spinup/logger"
)

// PhaseFunc is one stage of the bootstrap run.
type PhaseFunc func(ctx context.Context) error

type phase struct {
	name string
	run  PhaseFunc
}

// Run executes the bootstrap phases in order with per-phase timing and
// a run-wide ID carried in every log line.
type Run struct {
	ID      string
	Log     *logger.Logger
	Summary *Summary

	phases []phase
}

// NewRun creates a Run tagged with a fresh UUID.
func NewRun(log *logger.Logger) *Run {
	id := uuid.NewString()
	return &Run{
		ID:      id,
		Log:     log.WithFields(map[string]interface{}{logger.FieldRunID: id}),
		Summary: NewSummary(id),
	}
}

// AddPhase appends a named phase to the run.
func (r *Run) AddPhase(name string, fn PhaseFunc) {
	r.phases = append(r.phases, phase{name: name, run: fn})
}

// Execute runs every phase in order, stopping at the first failure.
// The summary records each phase's outcome either way.
func (r *Run) Execute(ctx context.Context) error {
	started := time.Now()
	for _, p := range r.phases {
		if err := ctx.Err(); err != nil {
			return err
		}

		log := r.Log.WithFields(map[string]interface{}{logger.FieldPhase: p.name})
		log.Info("phase starting")

		phaseStart := time.Now()
		err := p.run(ctx)
		elapsed := time.Since(phaseStart)

		if err != nil {
			r.Summary.Record(p.name, elapsed, err)
			log.Error("phase failed", logger.ErrorFields(p.name, err), logger.DurationFields(p.name, elapsed))
			r.Summary.Finish(time.Since(started))
			return fmt.Errorf("bootstrap: phase %s: %w", p.name, err)
		}
		r.Summary.Record(p.name, elapsed, nil)
		log.Info("phase complete", logger.DurationFields(p.name, elapsed))
	}
	r.Summary.Finish(time.Since(started))
	return nil
}
