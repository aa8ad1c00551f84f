// Package cache holds the in-memory market data snapshot shared between the
// refresh job and the HTTP handlers.
package cache

import (
	"sort"
	"sync"
	"time"

	"cryptodash/internal/clients/coingecko"
)

// Status is a point-in-time view of the store's metadata.
type Status struct {
	LastUpdate       time.Time
	CachedCurrencies []string
}

// Store maps currency codes to the most recently fetched asset records.
// All access is serialized store-wide: readers see either the pre- or the
// post-update slice for a currency, never a mixture. Slices are replaced
// wholesale on Put and never mutated in place, so returning them without
// copying is safe.
type Store struct {
	mu         sync.RWMutex
	entries    map[string][]coingecko.AssetRecord
	lastUpdate time.Time
	refreshing bool
}

// New creates an empty store. lastUpdate starts at process start time,
// matching the original service's behavior before the first refresh.
func New() *Store {
	return &Store{
		entries:    make(map[string][]coingecko.AssetRecord),
		lastUpdate: time.Now(),
	}
}

// Get returns the cached records for a currency, or nil if never stored.
func (s *Store) Get(currency string) []coingecko.AssetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[currency]
}

// Put replaces the records for a currency wholesale.
func (s *Store) Put(currency string, records []coingecko.AssetRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[currency] = records
}

// All returns a shallow copy of the currency map for scanning. The record
// slices are shared but immutable once stored.
func (s *Store) All() map[string][]coingecko.AssetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]coingecko.AssetRecord, len(s.entries))
	for currency, records := range s.entries {
		out[currency] = records
	}
	return out
}

// Snapshot returns the store's metadata: the shared last-update timestamp
// and the sorted list of currencies that have an entry.
func (s *Store) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	currencies := make([]string, 0, len(s.entries))
	for currency := range s.entries {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	return Status{
		LastUpdate:       s.lastUpdate,
		CachedCurrencies: currencies,
	}
}

// MarkUpdated records the completion time of a refresh cycle. The timestamp
// is shared across currencies and set once per cycle.
func (s *Store) MarkUpdated(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = t
}

// TryBeginRefresh attempts the idle -> refreshing transition. It returns
// false if a refresh cycle is already running, in which case the caller
// must skip its cycle (not queue it).
func (s *Store) TryBeginRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshing {
		return false
	}
	s.refreshing = true
	return true
}

// EndRefresh transitions back to idle. Callers must invoke it (deferred)
// on every exit path of a cycle so a failed cycle cannot wedge the flag.
func (s *Store) EndRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = false
}

// Refreshing reports whether a refresh cycle is in progress.
func (s *Store) Refreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing
}
