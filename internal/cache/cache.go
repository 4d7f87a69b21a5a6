// Package cache provides an in-memory TTL cache for fetched documentation
// pages, keyed by URL. Entries expire a fixed duration after insertion and
// are evicted lazily when read.
package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is the default lifetime of a cached page.
const DefaultTTL = 300 * time.Second

// entry holds a cached page body and the time it was stored.
type entry struct {
	storedAt time.Time
	body     string
}

// Store is a process-wide TTL cache of page bodies keyed by URL.
// The store has no capacity bound; entries only leave it by expiring.
// Expiry is checked on read: an entry older than the TTL is removed
// and reported as absent.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
	logger  *slog.Logger
}

// NewStore creates a cache store with the given TTL.
//
// Parameters:
//   - ttl: Lifetime of an entry after insertion (must be positive)
//   - logger: Structured logger for debug logging
//
// Returns a ready Store, or an error if the TTL is not positive.
func NewStore(ttl time.Duration, logger *slog.Logger) (*Store, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %v", ttl)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
		logger:  logger,
	}, nil
}

// Get returns the cached body for a URL if present and unexpired.
// An expired entry is deleted as a side effect of the read.
func (s *Store) Get(url string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[url]
	if !ok {
		return "", false
	}

	age := s.now().Sub(e.storedAt)
	if age > s.ttl {
		delete(s.entries, url)
		s.logger.Debug("Cache entry expired", "url", url, "age", age, "ttl", s.ttl)
		return "", false
	}

	return e.body, true
}

// Set stores a page body for a URL with the current timestamp,
// overwriting any previous entry.
func (s *Store) Set(url, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[url] = entry{storedAt: s.now(), body: body}
	s.logger.Debug("Cache entry stored", "url", url, "size", len(body))
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Clear removes all entries. Intended for tests and explicit resets.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry)
	s.logger.Debug("Cache cleared")
}

// SetClock replaces the store's time source. Intended for tests that
// need to age entries without sleeping.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}
