package lockring

import "sync"

// Ring hands out one mutex per key, created on first use. Settlement
// uses it to serialize waiver runs per league inside a single process;
// the storage layer adds its own advisory lock for cross-process runs.
type Ring struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	held bool
}

func New() *Ring {
	return &Ring{locks: make(map[string]*entry)}
}

// TryAcquire takes the key's lock without blocking. It returns a
// release func on success and ok=false when the lock is already held.
func (r *Ring) TryAcquire(key string) (release func(), ok bool) {
	e := r.entryFor(key)

	e.mu.Lock()
	if e.held {
		e.mu.Unlock()
		return nil, false
	}
	e.held = true
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		e.held = false
		e.mu.Unlock()
	}, true
}

// Held reports whether the key's lock is currently taken.
func (r *Ring) Held(key string) bool {
	e := r.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held
}

func (r *Ring) entryFor(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locks == nil {
		r.locks = make(map[string]*entry)
	}
	e, ok := r.locks[key]
	if !ok {
		e = &entry{}
		r.locks[key] = e
	}
	return e
}
