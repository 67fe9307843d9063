package sequencer

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// ProbeFunc attempts a connection to addr purely to test availability.
// A nil return means the endpoint is reachable.
type ProbeFunc func(ctx context.Context, addr string) error

// Option customizes EnsureReady behavior.
type Option func(*options)

type options struct {
	pollInterval time.Duration
	probeTimeout time.Duration
	probe        ProbeFunc
	isLocal      func(host string) bool
	sleep        func(ctx context.Context, d time.Duration) error
	onPoll       func(attempt int)
	onRetry      func(step string, attempt int, err error, delay time.Duration)
	onPhase      func(Phase)
	log          zerolog.Logger
}

// WithPollInterval sets the reachability polling interval (default 100ms).
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithProbeTimeout sets the per-probe dial timeout (default 1s).
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) { o.probeTimeout = d }
}

// WithProbe replaces the TCP dial probe, typically for tests.
func WithProbe(p ProbeFunc) Option {
	return func(o *options) { o.probe = p }
}

// WithLocalClassifier replaces the local-host predicate, typically for tests.
func WithLocalClassifier(fn func(host string) bool) Option {
	return func(o *options) { o.isLocal = fn }
}

// WithSleeper replaces the inter-attempt wait, typically for tests.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) { o.sleep = fn }
}

// WithOnPoll registers an observer invoked before every reachability probe
// in the waiting phase.
func WithOnPoll(fn func(attempt int)) Option {
	return func(o *options) { o.onPoll = fn }
}

// WithOnRetry registers an observer invoked before every step retry delay.
func WithOnRetry(fn func(step string, attempt int, err error, delay time.Duration)) Option {
	return func(o *options) { o.onRetry = fn }
}

// WithOnPhase registers an observer invoked on every phase transition.
func WithOnPhase(fn func(Phase)) Option {
	return func(o *options) { o.onPhase = fn }
}

// WithLogger sets the logger used for progress messages (default silent).
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

func resolveOptions(opts []Option) *options {
	o := &options{
		pollInterval: 100 * time.Millisecond,
		probeTimeout: time.Second,
		isLocal:      IsLocalHost,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.probe == nil {
		o.probe = dialProbe(o.probeTimeout)
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	return o
}

func (o *options) setPhase(p Phase) {
	if o.onPhase != nil {
		o.onPhase(p)
	}
	o.log.Debug().Str("phase", string(p)).Msg("sequencer phase")
}

// dialProbe returns a ProbeFunc backed by a plain TCP dial. The connection
// is closed immediately; no application traffic is sent.
func dialProbe(timeout time.Duration) ProbeFunc {
	return func(ctx context.Context, addr string) error {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

// sleepContext waits for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
