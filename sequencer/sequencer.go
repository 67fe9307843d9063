package sequencer

import (
	"context"
	"fmt"
	"math"
	"net"
	"strconv"
	"time"
)

// Endpoint identifies the network dependency to bring up.
type Endpoint struct {
	Host string
	Port int
}

// Addr returns the host:port form of the endpoint.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Step is a named, idempotent initialization operation applied to the
// dependency once it is reachable. Run may be invoked more than once on
// retry and must be safe to re-apply.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// RetryPolicy governs spacing between re-attempts of a failing step.
type RetryPolicy struct {
	// InitialDelay is the delay after the first failed attempt.
	InitialDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
	// Multiplier is the backoff growth factor.
	Multiplier float64
	// MaxAttempts is the per-step attempt ceiling (including the first).
	MaxAttempts int
}

// DefaultRetryPolicy returns the standard schema-initialization policy:
// delays double from 1s up to 32s across 6 attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialDelay: time.Second,
		MaxDelay:     32 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  6,
	}
}

func (p *RetryPolicy) applyDefaults() {
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 32 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 6
	}
}

// Phase is the sequencer's current stage within one EnsureReady call.
type Phase string

const (
	PhaseChecking      Phase = "checking"
	PhaseStartingLocal Phase = "starting_local"
	PhaseWaiting       Phase = "waiting"
	PhaseInitializing  Phase = "initializing"
	PhaseDone          Phase = "done"
	PhaseFailed        Phase = "failed"
)

// StepExhaustedError reports an initialization step whose retry budget
// ran out. Steps after the failing one are not attempted.
type StepExhaustedError struct {
	Step     string
	Attempts int
	Cause    error
}

func (e *StepExhaustedError) Error() string {
	return fmt.Sprintf("sequencer: step %q exhausted after %d attempts: %v", e.Step, e.Attempts, e.Cause)
}

func (e *StepExhaustedError) Unwrap() error { return e.Cause }

// EnsureReady brings a network dependency to a usable state: it probes the
// endpoint, starts it locally when the host is this machine and it is not
// yet up, waits until the endpoint accepts connections, then applies the
// initialization steps in order with bounded exponential-backoff retry.
//
// localStart is fire-and-forget: its error is logged but never returned,
// because the subsequent polling loop is the real gate. The reachability
// wait has no attempt ceiling; cancel ctx to bound it.
func EnsureReady(ctx context.Context, ep Endpoint, localStart func(context.Context) error, steps []Step, policy RetryPolicy, opts ...Option) error {
	o := resolveOptions(opts)
	policy.applyDefaults()

	o.setPhase(PhaseChecking)
	if err := o.probe(ctx, ep.Addr()); err != nil {
		if localStart != nil && o.isLocal(ep.Host) {
			o.setPhase(PhaseStartingLocal)
			o.log.Info().Str("endpoint", ep.Addr()).Msg("endpoint not reachable, starting local service")
			if startErr := localStart(ctx); startErr != nil {
				o.log.Warn().Err(startErr).Msg("local start action failed, continuing to wait")
			}
		}
		o.setPhase(PhaseWaiting)
		if err := waitReachable(ctx, ep, o); err != nil {
			o.setPhase(PhaseFailed)
			return err
		}
	}

	o.setPhase(PhaseInitializing)
	for _, step := range steps {
		if err := runStep(ctx, step, policy, o); err != nil {
			o.setPhase(PhaseFailed)
			return err
		}
	}

	o.setPhase(PhaseDone)
	return nil
}

// waitReachable polls the endpoint at a fixed interval until a probe
// succeeds or ctx is canceled.
func waitReachable(ctx context.Context, ep Endpoint, o *options) error {
	o.log.Info().Str("endpoint", ep.Addr()).Msg("waiting for endpoint to accept connections")
	for attempt := 1; ; attempt++ {
		if o.onPoll != nil {
			o.onPoll(attempt)
		}
		if err := o.probe(ctx, ep.Addr()); err == nil {
			o.log.Info().Str("endpoint", ep.Addr()).Int("polls", attempt).Msg("endpoint is up")
			return nil
		}
		if err := o.sleep(ctx, o.pollInterval); err != nil {
			return err
		}
	}
}

// runStep attempts one step under the retry policy. The delay before
// attempt i+1 is min(InitialDelay * Multiplier^(i-1), MaxDelay).
func runStep(ctx context.Context, step Step, policy RetryPolicy, o *options) error {
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := step.Run(ctx)
		if err == nil {
			if attempt > 1 {
				o.log.Info().Str("step", step.Name).Int("attempt", attempt).Msg("step succeeded after retry")
			}
			return nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		delay := backoffDelay(attempt, policy)
		if o.onRetry != nil {
			o.onRetry(step.Name, attempt, err, delay)
		}
		o.log.Warn().Str("step", step.Name).Int("attempt", attempt).
			Dur("retry_in", delay).Err(err).Msg("step failed, retrying")

		if serr := o.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return &StepExhaustedError{Step: step.Name, Attempts: policy.MaxAttempts, Cause: lastErr}
}

// backoffDelay computes the delay after the given failed attempt.
func backoffDelay(attempt int, policy RetryPolicy) time.Duration {
	d := float64(policy.InitialDelay) * math.Pow(policy.Multiplier, float64(attempt-1))
	if d > float64(policy.MaxDelay) {
		d = float64(policy.MaxDelay)
	}
	return time.Duration(d)
}
