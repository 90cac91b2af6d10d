// Package store provides the shared in-memory key-value mapping.
//
// A single Store is owned by the process and handed to every
// connection. Expiry is lazy: deadlines are evaluated when a key is
// read, never by a background sweep, so an expired entry still
// occupies the mapping until an overwriting write replaces it.
package store

import (
	"time"

	"github.com/okrski/minikv/pkg/cmap"
)

// Entry is a stored value with an optional expiry deadline.
// A zero ExpiresAt means the entry never expires.
type Entry struct {
	Payload   []byte
	ExpiresAt time.Time
}

// Expired reports whether the entry's deadline is in the past
// relative to now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && e.ExpiresAt.Before(now)
}

// WriteResult reports the outcome of a Write.
type WriteResult struct {
	// Prev is the entry that occupied the key when the write ran,
	// valid only if Existed is true.
	Prev Entry
	// Existed reports whether the key was present, expired or not.
	Existed bool
	// Wrote reports whether the producer chose to store a new entry.
	Wrote bool
}

// Store is the process-wide mapping from key to Entry.
type Store struct {
	entries *cmap.Map[Entry]
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, used by tests to control
// expiry evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: cmap.New[Entry](),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Now returns the store's current instant.
func (s *Store) Now() time.Time {
	return s.now()
}

// Read looks up key and evaluates its expiry against the current
// instant. Absent and expired keys both report (zero, false); an
// expired entry is not removed.
func (s *Store) Read(key string) (Entry, bool) {
	e, ok := s.entries.Get(key)
	if !ok || e.Expired(s.now()) {
		return Entry{}, false
	}
	return e, true
}

// Write runs produce under the key's critical section. The producer
// observes the prior entry (if any) and decides whether to store a
// replacement: returning false skips the mutation entirely. The
// conflict check and the insert are a single atomic step, so two
// concurrent writers to the same key can never interleave a check
// with the other's mutation.
func (s *Store) Write(key string, produce func(prev Entry, exists bool) (Entry, bool)) WriteResult {
	prev, existed, wrote := s.entries.Mutate(key, produce)
	return WriteResult{Prev: prev, Existed: existed, Wrote: wrote}
}

// Len returns the number of entries in the mapping, including entries
// whose deadline has passed but which have not been overwritten.
func (s *Store) Len() int {
	return s.entries.Count()
}
