package repository

import "sync"

// Outcome classifies the result of an idempotent upsert.
type Outcome int

const (
	// Inserted means no row existed for the natural key and one was created.
	Inserted Outcome = iota
	// Updated means a row existed and at least one field differed.
	Updated
	// Unchanged means a row existed and every field matched; no write occurred.
	Unchanged
)

// String returns the lower-case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// KeyLock serializes upserts per natural key. Distinct keys proceed
// concurrently; two upserts for the same key never interleave. The unique
// index in the schema remains the backstop, this lock keeps the
// select-compare-write sequence race free without table locks.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLock creates an empty per-key lock table.
func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*keyEntry)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *KeyLock) Lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the mutex for key and frees the entry when no other
// goroutine is waiting on it.
func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
	}
	k.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
