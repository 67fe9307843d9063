package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"
)

// harness wires fake probe/sleep/classifier hooks into EnsureReady and
// records everything the sequencer does.
type harness struct {
	reachableAfter int // probe succeeds once this many probes have failed
	probes         int
	localStarts    int
	sleeps         []time.Duration
	polls          int
	phases         []Phase
	local          bool
}

func (h *harness) options() []Option {
	return []Option{
		WithProbe(func(ctx context.Context, addr string) error {
			h.probes++
			if h.probes > h.reachableAfter {
				return nil
			}
			return errors.New("connection refused")
		}),
		WithLocalClassifier(func(host string) bool { return h.local }),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			h.sleeps = append(h.sleeps, d)
			return ctx.Err()
		}),
		WithOnPoll(func(attempt int) { h.polls++ }),
		WithOnPhase(func(p Phase) { h.phases = append(h.phases, p) }),
	}
}

func (h *harness) localStart(ctx context.Context) error {
	h.localStarts++
	return nil
}

func countingStep(name string, failures int, calls *int) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			*calls++
			if *calls <= failures {
				return errors.New(name + " not ready")
			}
			return nil
		},
	}
}

func TestEnsureReady_AlreadyReachable(t *testing.T) {
	h := &harness{reachableAfter: 0, local: true}
	var first, second int
	steps := []Step{
		countingStep("first", 0, &first),
		countingStep("second", 0, &second),
	}

	err := EnsureReady(context.Background(), Endpoint{Host: "127.0.0.1", Port: 9042},
		h.localStart, steps, DefaultRetryPolicy(), h.options()...)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if h.localStarts != 0 {
		t.Errorf("expected no local start for a reachable endpoint, got %d", h.localStarts)
	}
	if first != 1 || second != 1 {
		t.Errorf("expected each step to run once, got first=%d second=%d", first, second)
	}
	if len(h.sleeps) != 0 {
		t.Errorf("expected zero retries/polls, observed sleeps %v", h.sleeps)
	}
}

func TestEnsureReady_LocalUnreachable_StartsOnce(t *testing.T) {
	h := &harness{reachableAfter: 4, local: true} // initial probe + 3 failed polls
	var calls int
	steps := []Step{countingStep("schema", 0, &calls)}

	err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		h.localStart, steps, DefaultRetryPolicy(), h.options()...)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if h.localStarts != 1 {
		t.Errorf("expected exactly one local start, got %d", h.localStarts)
	}
	if h.polls < 3 {
		t.Errorf("expected at least 3 poll attempts, got %d", h.polls)
	}
	if calls != 1 {
		t.Errorf("expected step to run once, got %d", calls)
	}
}

func TestEnsureReady_RemoteUnreachable_NeverStartsLocal(t *testing.T) {
	h := &harness{reachableAfter: 2, local: false}

	err := EnsureReady(context.Background(), Endpoint{Host: "db.example.com", Port: 9042},
		h.localStart, nil, DefaultRetryPolicy(), h.options()...)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if h.localStarts != 0 {
		t.Errorf("expected no local start for a remote endpoint, got %d", h.localStarts)
	}
}

func TestEnsureReady_LocalStartFailureIsNotAnError(t *testing.T) {
	h := &harness{reachableAfter: 1, local: true}

	err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		func(ctx context.Context) error { return errors.New("service refused to start") },
		nil, DefaultRetryPolicy(), h.options()...)
	if err != nil {
		t.Fatalf("local start failure must not surface, got %v", err)
	}
}

func TestEnsureReady_StepsRunInOrder(t *testing.T) {
	h := &harness{reachableAfter: 0, local: true}
	var order []string
	steps := []Step{
		{Name: "a", Run: func(ctx context.Context) error { order = append(order, "a"); return nil }},
		{Name: "b", Run: func(ctx context.Context) error { order = append(order, "b"); return nil }},
		{Name: "c", Run: func(ctx context.Context) error { order = append(order, "c"); return nil }},
	}

	if err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		nil, steps, DefaultRetryPolicy(), h.options()...); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestEnsureReady_BackoffDelays(t *testing.T) {
	h := &harness{reachableAfter: 0, local: true}
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 32 * time.Second, Multiplier: 2.0, MaxAttempts: 6}

	var calls int
	steps := []Step{countingStep("schema", 5, &calls)} // fails attempts 1-5, succeeds on 6

	err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		nil, steps, policy, h.options()...)
	if err != nil {
		t.Fatalf("expected success on attempt 6, got %v", err)
	}
	if calls != 6 {
		t.Errorf("expected 6 attempts, got %d", calls)
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if len(h.sleeps) != len(want) {
		t.Fatalf("expected delays %v, observed %v", want, h.sleeps)
	}
	for i := range want {
		if h.sleeps[i] != want[i] {
			t.Errorf("delay %d: expected %v, got %v", i+1, want[i], h.sleeps[i])
		}
	}
}

func TestEnsureReady_BackoffCappedAtMaxDelay(t *testing.T) {
	h := &harness{reachableAfter: 0, local: true}
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 4 * time.Second, Multiplier: 2.0, MaxAttempts: 6}

	var calls int
	steps := []Step{countingStep("schema", 5, &calls)}

	if err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		nil, steps, policy, h.options()...); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second}
	for i := range want {
		if h.sleeps[i] != want[i] {
			t.Errorf("delay %d: expected %v, got %v", i+1, want[i], h.sleeps[i])
		}
	}
}

func TestEnsureReady_StepExhausted(t *testing.T) {
	h := &harness{reachableAfter: 0, local: true}
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 32 * time.Second, Multiplier: 2.0, MaxAttempts: 6}

	var firstCalls, secondCalls int
	steps := []Step{
		countingStep("first", 100, &firstCalls), // never succeeds
		countingStep("second", 0, &secondCalls),
	}

	err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		nil, steps, policy, h.options()...)
	if err == nil {
		t.Fatal("expected StepExhaustedError, got nil")
	}

	var exhausted *StepExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected StepExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Step != "first" {
		t.Errorf("expected failing step \"first\", got %q", exhausted.Step)
	}
	if exhausted.Attempts != 6 {
		t.Errorf("expected 6 attempts, got %d", exhausted.Attempts)
	}
	if firstCalls != 6 {
		t.Errorf("expected 6 invocations of the failing step, got %d", firstCalls)
	}
	if secondCalls != 0 {
		t.Errorf("later step must not run after exhaustion, ran %d times", secondCalls)
	}
}

func TestEnsureReady_NoStepBeforeReachable(t *testing.T) {
	h := &harness{reachableAfter: 5, local: true}
	stepRan := false
	probesWhenStepRan := 0
	steps := []Step{{Name: "schema", Run: func(ctx context.Context) error {
		stepRan = true
		probesWhenStepRan = h.probes
		return nil
	}}}

	if err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		h.localStart, steps, DefaultRetryPolicy(), h.options()...); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !stepRan {
		t.Fatal("step never ran")
	}
	if probesWhenStepRan <= h.reachableAfter {
		t.Errorf("step ran after %d probes, before reachability at probe %d",
			probesWhenStepRan, h.reachableAfter+1)
	}
}

func TestEnsureReady_ContextCancelsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{reachableAfter: 1 << 30, local: false}

	opts := h.options()
	polls := 0
	opts = append(opts, WithOnPoll(func(attempt int) {
		polls++
		if polls == 10 {
			cancel()
		}
	}))

	err := EnsureReady(ctx, Endpoint{Host: "db.example.com", Port: 9042},
		nil, nil, DefaultRetryPolicy(), opts...)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEnsureReady_PhaseTransitions(t *testing.T) {
	h := &harness{reachableAfter: 2, local: true}
	var calls int

	if err := EnsureReady(context.Background(), Endpoint{Host: "localhost", Port: 9042},
		h.localStart, []Step{countingStep("schema", 0, &calls)},
		DefaultRetryPolicy(), h.options()...); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	want := []Phase{PhaseChecking, PhaseStartingLocal, PhaseWaiting, PhaseInitializing, PhaseDone}
	if len(h.phases) != len(want) {
		t.Fatalf("expected phases %v, got %v", want, h.phases)
	}
	for i := range want {
		if h.phases[i] != want[i] {
			t.Fatalf("expected phases %v, got %v", want, h.phases)
		}
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.InitialDelay != time.Second || p.MaxDelay != 32*time.Second || p.Multiplier != 2.0 || p.MaxAttempts != 6 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestBackoffDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 32 * time.Second, Multiplier: 2.0, MaxAttempts: 6}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{5, 16 * time.Second},
		{6, 32 * time.Second},
		{10, 32 * time.Second},
	}
	for _, c := range cases {
		if got := backoffDelay(c.attempt, p); got != c.want {
			t.Errorf("attempt %d: expected %v, got %v", c.attempt, c.want, got)
		}
	}
}

func TestEndpointAddr(t *testing.T) {
	e := Endpoint{Host: "127.0.0.1", Port: 9042}
	if e.Addr() != "127.0.0.1:9042" {
		t.Errorf("expected 127.0.0.1:9042, got %s", e.Addr())
	}
	v6 := Endpoint{Host: "::1", Port: 9042}
	if v6.Addr() != "[::1]:9042" {
		t.Errorf("expected [::1]:9042, got %s", v6.Addr())
	}
}
