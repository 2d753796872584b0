// Package memory provides the in-memory TTL store for minikv.
//
// One Store is shared by every connection of the process. A single mutex
// guards the whole map; each operation holds it for one lookup, one insert
// or one read-modify-write and never across network I/O.
package memory

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/pkg/resp"
)

// Entry is a stored value with its creation time and optional lifetime.
type Entry struct {
	CreatedAt time.Time
	// TTL is the lifetime measured from CreatedAt. Zero means no expiry.
	TTL   time.Duration
	Value resp.Value
}

// Valid reports whether the entry is still alive at now.
func (e Entry) Valid(now time.Time) bool {
	return e.TTL <= 0 || now.Sub(e.CreatedAt) <= e.TTL
}

// withValue keeps the timestamp and lifetime of e and replaces the value.
func (e Entry) withValue(v resp.Value) Entry {
	e.Value = v
	return e
}

// UpdateFunc computes a new value from the current one. exists is false
// when the key is absent or expired. Returning an error aborts the update.
type UpdateFunc func(current resp.Value, exists bool) (resp.Value, error)

// Store is a concurrent map from domain.Key to Entry with lazy expiry.
type Store struct {
	mu      sync.Mutex
	entries map[domain.Key]Entry

	now     func() time.Time
	expired atomic.Uint64
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[domain.Key]Entry),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// lookupLocked returns the live entry for key, evicting it if it expired.
// Caller must hold s.mu.
func (s *Store) lookupLocked(key domain.Key, now time.Time) (Entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	if !e.Valid(now) {
		delete(s.entries, key)
		s.expired.Add(1)
		return Entry{}, false
	}
	return e, true
}

// Insert stores value under key, discarding any previous value and TTL.
// A ttl of zero means the entry never expires.
func (s *Store) Insert(key domain.Key, value resp.Value, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		CreatedAt: s.now(),
		TTL:       ttl,
		Value:     value.Clone(),
	}
}

// Read returns a copy of the value stored under key.
// Expired entries are removed and reported as absent.
func (s *Store) Read(key domain.Key) (resp.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupLocked(key, s.now())
	if !ok {
		return resp.Value{}, false
	}
	return e.Value.Clone(), true
}

// Exists reports whether key holds a live entry, evicting it if expired.
func (s *Store) Exists(key domain.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookupLocked(key, s.now())
	return ok
}

// Update runs fn and stores its result in one critical section.
//
// An existing entry keeps its CreatedAt and TTL; a new entry is created
// without expiry.
func (s *Store) Update(key domain.Key, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cur, exists := s.lookupLocked(key, now)

	next, err := fn(cur.Value, exists)
	if err != nil {
		return err
	}

	if exists {
		s.entries[key] = cur.withValue(next.Clone())
	} else {
		s.entries[key] = Entry{CreatedAt: now, Value: next.Clone()}
	}
	return nil
}

// Increment adds one to the integer stored under key and returns the value
// held before the increment.
//
// An absent key counts as 0 and is seeded with 1 and no expiry. A key
// holding anything but an integer is left untouched and ErrNotInteger is
// returned.
func (s *Store) Increment(key domain.Key) (int64, error) {
	var prior int64

	err := s.Update(key, func(cur resp.Value, exists bool) (resp.Value, error) {
		if !exists {
			prior = 0
			return resp.Int(1), nil
		}
		n, ok := cur.AsInt()
		if !ok {
			return resp.Value{}, domain.ErrNotInteger
		}
		if n == math.MaxInt64 {
			return resp.Value{}, domain.ErrNotInteger.WithDetails("increment would overflow")
		}
		prior = n
		return resp.Int(n + 1), nil
	})

	return prior, err
}

// Remove deletes keys and returns how many were present.
func (s *Store) Remove(keys ...domain.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, k := range keys {
		if _, ok := s.entries[k]; ok {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired entries not
// yet evicted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Expired returns how many entries have been evicted lazily since start.
func (s *Store) Expired() uint64 {
	return s.expired.Load()
}
