package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func testBreaker(threshold, halfOpenMax int, openTimeout time.Duration) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(threshold, openTimeout, halfOpenMax)
	now := time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAfterFailureStreak(t *testing.T) {
	t.Parallel()

	b, _ := testBreaker(3, 1, time.Minute)

	for i := 0; i < 2; i++ {
		b.RecordFailure()
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed below threshold, got %s", b.State())
	}

	b.RecordFailure()
	if b.State() != CircuitStateOpen {
		t.Fatalf("expected open after threshold, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsStreak(t *testing.T) {
	t.Parallel()

	b, _ := testBreaker(3, 1, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed after streak reset, got %s", b.State())
	}
}

func TestCircuitBreaker_HalfOpenProbing(t *testing.T) {
	t.Parallel()

	b, now := testBreaker(1, 2, time.Minute)

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit to reject, got %v", err)
	}

	*now = now.Add(2 * time.Minute)
	if b.State() != CircuitStateHalfOpen {
		t.Fatalf("expected half open after timeout, got %s", b.State())
	}

	// Two probes allowed, a third rejected while both are in flight.
	if err := b.Allow(); err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("second probe: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected third probe rejected, got %v", err)
	}

	b.RecordSuccess()
	b.RecordSuccess()
	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed after successful probes, got %s", b.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b, now := testBreaker(1, 1, time.Minute)

	b.RecordFailure()
	*now = now.Add(2 * time.Minute)

	if err := b.Allow(); err != nil {
		t.Fatalf("probe: %v", err)
	}
	b.RecordFailure()

	if b.State() != CircuitStateOpen {
		t.Fatalf("expected reopened circuit, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reject after reopen, got %v", err)
	}
}

func TestSingleFlight_SharesInFlightResult(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	gate := make(chan struct{})
	calls := 0

	var wg sync.WaitGroup
	shared := 0
	var sharedMu sync.Mutex

	first := func() (any, error) {
		calls++
		<-gate
		return 42, nil
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		value, err, _ := flight.Do("k", first)
		if err != nil || value != 42 {
			t.Errorf("leader got %v, %v", value, err)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err, wasShared := flight.Do("k", func() (any, error) {
				t.Error("follower must not run fn")
				return nil, nil
			})
			if err != nil || value != 42 {
				t.Errorf("follower got %v, %v", value, err)
			}
			if wasShared {
				sharedMu.Lock()
				shared++
				sharedMu.Unlock()
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	close(gate)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("expected one leader call, got %d", calls)
	}
	if shared != 4 {
		t.Fatalf("expected four shared results, got %d", shared)
	}
}

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	t.Parallel()

	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: true})
	want := DefaultCircuitBreakerConfig()

	if got.FailureThreshold != want.FailureThreshold {
		t.Fatalf("unexpected failure threshold: %d", got.FailureThreshold)
	}
	if got.OpenTimeout != want.OpenTimeout {
		t.Fatalf("unexpected open timeout: %s", got.OpenTimeout)
	}
	if got.HalfOpenMaxReq != want.HalfOpenMaxReq {
		t.Fatalf("unexpected half open max: %d", got.HalfOpenMaxReq)
	}

	custom := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 9,
		OpenTimeout:      time.Second,
		HalfOpenMaxReq:   3,
	})
	if custom.FailureThreshold != 9 || custom.OpenTimeout != time.Second || custom.HalfOpenMaxReq != 3 {
		t.Fatalf("custom values not preserved: %+v", custom)
	}
}
