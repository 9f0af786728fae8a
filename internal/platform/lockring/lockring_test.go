package lockring

import (
	"sync"
	"testing"
)

func TestRing_TryAcquire(t *testing.T) {
	t.Parallel()

	ring := New()

	release, ok := ring.TryAcquire("league-1")
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if !ring.Held("league-1") {
		t.Fatalf("expected lock held after acquire")
	}

	if _, ok := ring.TryAcquire("league-1"); ok {
		t.Fatalf("expected second acquire to fail while held")
	}

	// A different key is an independent lock.
	otherRelease, ok := ring.TryAcquire("league-2")
	if !ok {
		t.Fatalf("expected unrelated key to acquire")
	}
	otherRelease()

	release()
	if ring.Held("league-1") {
		t.Fatalf("expected lock free after release")
	}

	release2, ok := ring.TryAcquire("league-1")
	if !ok {
		t.Fatalf("expected reacquire after release")
	}
	release2()
}

func TestRing_ConcurrentAcquireGrantsOnce(t *testing.T) {
	t.Parallel()

	ring := New()

	const attempts = 64
	var wg sync.WaitGroup
	granted := make(chan func(), attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if release, ok := ring.TryAcquire("league-1"); ok {
				granted <- release
			}
		}()
	}
	wg.Wait()
	close(granted)

	releases := make([]func(), 0, attempts)
	for release := range granted {
		releases = append(releases, release)
	}
	if len(releases) != 1 {
		t.Fatalf("expected exactly one winner, got %d", len(releases))
	}
	releases[0]()
}
