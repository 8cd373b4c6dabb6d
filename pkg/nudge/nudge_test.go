package nudge

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

func waitFired(t *testing.T, timer *Timer) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if timer.Fired() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("nudge did not fire in time")
}

func TestNudgeFiresOnce(t *testing.T) {
	rec := &recorder{}
	timer := NewTimer(rec.record,
		WithIdleTimeout(10*time.Millisecond),
		WithGenericProbability(1),
	)
	defer timer.Stop()

	timer.Start()
	waitFired(t, timer)

	if got := rec.count(); got != 1 {
		t.Fatalf("nudges = %d, want 1", got)
	}
	if got := rec.last(); got != GenericHint {
		t.Errorf("suggestion = %q, want generic hint", got)
	}

	// Activity resets never revive a fired period.
	timer.Reset()
	time.Sleep(30 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Errorf("nudges after reset = %d, want 1", got)
	}
}

func TestExplicitStartArmsNewIdlePeriod(t *testing.T) {
	rec := &recorder{}
	timer := NewTimer(rec.record,
		WithIdleTimeout(10*time.Millisecond),
		WithGenericProbability(1),
	)
	defer timer.Stop()

	timer.Start()
	waitFired(t, timer)

	timer.Start()
	waitFired(t, timer)

	if got := rec.count(); got != 2 {
		t.Errorf("nudges = %d, want one per idle period", got)
	}
}

func TestResetPostponesNudge(t *testing.T) {
	rec := &recorder{}
	timer := NewTimer(rec.record,
		WithIdleTimeout(40*time.Millisecond),
		WithGenericProbability(1),
	)
	defer timer.Stop()

	timer.Start()
	for i := 0; i < 4; i++ {
		time.Sleep(15 * time.Millisecond)
		timer.Reset()
	}
	if timer.Fired() {
		t.Fatal("nudge fired despite continual interaction")
	}

	waitFired(t, timer)
	if got := rec.count(); got != 1 {
		t.Errorf("nudges = %d, want 1", got)
	}
}

func TestStopDisarms(t *testing.T) {
	rec := &recorder{}
	timer := NewTimer(rec.record,
		WithIdleTimeout(10*time.Millisecond),
		WithGenericProbability(1),
	)

	timer.Start()
	timer.Stop()
	time.Sleep(40 * time.Millisecond)

	if timer.Fired() {
		t.Fatal("nudge fired after Stop")
	}
	if got := rec.count(); got != 0 {
		t.Errorf("nudges = %d, want 0", got)
	}
}

func TestRuleOrderDecidesTies(t *testing.T) {
	rec := &recorder{}
	timer := NewTimer(rec.record,
		WithIdleTimeout(10*time.Millisecond),
		WithRules([]Rule{
			{PathContains: "/pricing", Suggestion: "Curious about plans? Ask me anything."},
			{PathContains: "/pric", Suggestion: "never reached"},
		}),
	)
	defer timer.Stop()

	timer.SetURL("https://example.com/Pricing/enterprise")
	timer.Start()
	waitFired(t, timer)

	if got := rec.last(); got != "Curious about plans? Ask me anything." {
		t.Errorf("suggestion = %q, want first matching rule", got)
	}
}

func TestGenericProbabilityZeroConsumesTheShot(t *testing.T) {
	rec := &recorder{}
	timer := NewTimer(rec.record,
		WithIdleTimeout(10*time.Millisecond),
		WithGenericProbability(0),
		WithRandFunc(func() float64 { return 0.99 }),
	)
	defer timer.Stop()

	timer.SetURL("https://example.com/unmatched")
	timer.Start()
	waitFired(t, timer)

	// The idle deadline passed with no matching rule and a losing roll:
	// nothing was delivered, but the period's shot is spent and resets
	// cannot revive it.
	if got := rec.count(); got != 0 {
		t.Errorf("nudges = %d, want 0", got)
	}
	timer.Reset()
	time.Sleep(30 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("nudges after reset = %d, want 0", got)
	}
}

func TestGenericRollUsesInjectedRand(t *testing.T) {
	rec := &recorder{}
	timer := NewTimer(rec.record,
		WithIdleTimeout(10*time.Millisecond),
		WithGenericProbability(0.35),
		WithRandFunc(func() float64 { return 0.2 }),
	)
	defer timer.Stop()

	timer.Start()
	waitFired(t, timer)

	if got := rec.last(); got != GenericHint {
		t.Errorf("suggestion = %q, want generic hint on winning roll", got)
	}
}
