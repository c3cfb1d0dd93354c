package minigql

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// CacheEntry is a stored response payload plus its expiry instant.
type CacheEntry struct {
	Payload   json.RawMessage
	ExpiresAt time.Time
}

// SnapshotEntry is the portable form of one cache entry. A snapshot is an
// ordered sequence of these, JSON-serializable, reconstructible into an
// equivalent store on any instance including across process boundaries.
type SnapshotEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// CacheStore maps request fingerprints to cached response payloads.
//
// Implementations must be safe for concurrent use: a single store may be
// shared across multiple Client instances by injection.
type CacheStore interface {
	// Lookup returns the payload stored under key iff the entry exists and
	// now is before its expiry. Lookup has no mutating side effect: a stale
	// entry is ignored, not deleted, and remains until overwritten or
	// cleared.
	Lookup(key string, now time.Time) (json.RawMessage, bool)

	// Store unconditionally inserts or overwrites the entry under key with
	// expiry now+ttl.
	Store(key string, payload json.RawMessage, now time.Time, ttl time.Duration)

	// Clear removes all entries.
	Clear()

	// Snapshot exports all entries, expired ones included, ordered by key.
	Snapshot() []SnapshotEntry
}

// MemoryStore is the default CacheStore: a mutex-guarded map. Eviction is
// lazy; expired entries occupy the map until overwritten or cleared.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewMemoryStore creates an empty in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]CacheEntry),
	}
}

// NewMemoryStoreFromSnapshot builds a store pre-populated with the given
// entries, used for warm starts and cross-instance cache sharing. Expiry is
// deliberately not re-validated here; expired entries are skipped on first
// lookup.
func NewMemoryStoreFromSnapshot(entries []SnapshotEntry) *MemoryStore {
	s := NewMemoryStore()
	for _, e := range entries {
		s.entries[e.Key] = CacheEntry{Payload: e.Payload, ExpiresAt: e.ExpiresAt}
	}
	return s
}

// NewMemoryStoreFromJSON builds a store from a JSON-encoded snapshot as
// produced by MarshalSnapshot.
func NewMemoryStoreFromJSON(data []byte) (*MemoryStore, error) {
	var entries []SnapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &ClientError{Type: ErrorTypeValidation, Message: "invalid cache snapshot", Cause: err}
	}
	return NewMemoryStoreFromSnapshot(entries), nil
}

// Lookup implements CacheStore.
func (s *MemoryStore) Lookup(key string, now time.Time) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Payload, true
}

// Store implements CacheStore.
func (s *MemoryStore) Store(key string, payload json.RawMessage, now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = CacheEntry{Payload: payload, ExpiresAt: now.Add(ttl)}
}

// Clear implements CacheStore.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]CacheEntry)
}

// Snapshot implements CacheStore. Entries are ordered by key so the export
// is deterministic.
func (s *MemoryStore) Snapshot() []SnapshotEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SnapshotEntry, 0, len(s.entries))
	for key, entry := range s.entries {
		out = append(out, SnapshotEntry{Key: key, Payload: entry.Payload, ExpiresAt: entry.ExpiresAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len reports the number of entries currently in the map, expired ones
// included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// MarshalSnapshot serializes a store's snapshot to JSON.
func MarshalSnapshot(store CacheStore) ([]byte, error) {
	return json.Marshal(store.Snapshot())
}
