package bootstrap

import (
	"fmt"
	"strings"
	"time"
)

// PhaseResult is the recorded outcome of one phase.
type PhaseResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Summary tracks what a bootstrap run did, for the end-of-run report.
type Summary struct {
	runID    string
	results  []PhaseResult
	total    time.Duration
	finished bool
}

// NewSummary creates a summary for the given run ID.
func NewSummary(runID string) *Summary {
	return &Summary{runID: runID}
}

// Record adds one phase outcome.
func (s *Summary) Record(name string, d time.Duration, err error) {
	s.results = append(s.results, PhaseResult{Name: name, Duration: d, Err: err})
}

// Finish sets the total run duration.
func (s *Summary) Finish(total time.Duration) {
	s.total = total
	s.finished = true
}

// Results returns the recorded phase outcomes.
func (s *Summary) Results() []PhaseResult {
	return s.results
}

// Render formats the run report.
func (s *Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "spinup run %s\n", s.runID)
	for _, r := range s.results {
		status := "ok"
		if r.Err != nil {
			status = "FAILED: " + r.Err.Error()
		}
		fmt.Fprintf(&b, "  %-12s %8s  %s\n", r.Name, r.Duration.Round(time.Millisecond), status)
	}
	if s.finished {
		fmt.Fprintf(&b, "  total        %8s\n", s.total.Round(time.Millisecond))
	}
	return b.String()
}
