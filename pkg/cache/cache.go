// Package cache provides the time-boxed memoization of report query
// results. Entries are immutable snapshots keyed by query name plus
// the ordered parameter tuple; they expire after the TTL and are never
// invalidated explicitly.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL matches the dashboard's one-hour render cycle.
const DefaultTTL = time.Hour

type entry struct {
	value   any
	fetched time.Time
}

// Store maps a query key to its last result and fetch time.
type Store struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
}

// New creates a store with the given TTL.
func New(ttl time.Duration) *Store {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a store with an injected clock. Tests use this
// to step time across the TTL boundary.
func NewWithClock(ttl time.Duration, now func() time.Time) *Store {
	return &Store{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Key builds a cache key from a query name and its ordered parameters.
func Key(name string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, name)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, "|")
}

// Do returns the cached value for key when it is younger than the TTL,
// otherwise runs load, stores the result and returns it. Concurrent
// callers missing on the same key share a single load.
func (s *Store) Do(key string, load func() (any, error)) (any, error) {
	if v, ok := s.lookup(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// A concurrent flight may have stored the value while this
		// caller was queued behind it.
		if v, ok := s.lookup(key); ok {
			return v, nil
		}

		v, err := load()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.entries[key] = entry{value: v, fetched: s.now()}
		s.mu.Unlock()
		return v, nil
	})
	return v, err
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.fetched) >= s.ttl {
		return nil, false
	}
	return e.value, true
}

// Fetch is the typed front of Store.Do.
func Fetch[T any](s *Store, key string, load func() (T, error)) (T, error) {
	v, err := s.Do(key, func() (any, error) { return load() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
