package minigql

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMemoryStoreLookupAndStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	if _, ok := store.Lookup("k", now); ok {
		t.Fatal("expected miss on empty store")
	}

	store.Store("k", json.RawMessage(`{"data":1}`), now, time.Minute)

	payload, ok := store.Lookup("k", now.Add(30*time.Second))
	if !ok {
		t.Fatal("expected hit before expiry")
	}
	if string(payload) != `{"data":1}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestMemoryStoreExpiredEntryIgnoredButRetained(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.Store("k", json.RawMessage(`{}`), now, time.Second)

	if _, ok := store.Lookup("k", now.Add(2*time.Second)); ok {
		t.Fatal("expected stale entry to be ignored")
	}
	// Eviction is lazy: the entry still occupies the map.
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1 (stale entry retained)", store.Len())
	}

	// Exact expiry instant is already stale (now < expiresAt required).
	if _, ok := store.Lookup("k", now.Add(time.Second)); ok {
		t.Error("entry at exact expiry instant should be stale")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.Store("k", json.RawMessage(`1`), now, time.Minute)
	store.Store("k", json.RawMessage(`2`), now, time.Minute)

	payload, ok := store.Lookup("k", now)
	if !ok || string(payload) != "2" {
		t.Errorf("Lookup = %s, %v; want 2, true", payload, ok)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.Store("a", json.RawMessage(`1`), now, time.Minute)
	store.Store("b", json.RawMessage(`2`), now, time.Minute)
	store.Clear()

	if store.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", store.Len())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.Store("b", json.RawMessage(`{"data":"b"}`), now, time.Hour)
	store.Store("a", json.RawMessage(`{"data":"a"}`), now, time.Hour)
	store.Store("stale", json.RawMessage(`{"data":"old"}`), now.Add(-2*time.Hour), time.Hour)

	snap := store.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot has %d entries, want 3", len(snap))
	}
	if snap[0].Key != "a" || snap[1].Key != "b" {
		t.Errorf("snapshot not key-ordered: %q, %q", snap[0].Key, snap[1].Key)
	}

	restored := NewMemoryStoreFromSnapshot(snap)

	// Observably identical for all non-expired keys.
	for _, key := range []string{"a", "b"} {
		want, _ := store.Lookup(key, now)
		got, ok := restored.Lookup(key, now)
		if !ok || string(got) != string(want) {
			t.Errorf("restored Lookup(%q) = %s, %v; want %s", key, got, ok, want)
		}
	}

	// Hydration must not re-validate expiry: the stale entry is carried
	// over and skipped on lookup.
	if restored.Len() != 3 {
		t.Errorf("restored Len = %d, want 3", restored.Len())
	}
	if _, ok := restored.Lookup("stale", now); ok {
		t.Error("stale entry served after hydration")
	}
}

func TestSnapshotJSONPortability(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().Truncate(time.Second)

	store.Store("k", json.RawMessage(`{"data":{"n":7}}`), now, time.Hour)

	data, err := MarshalSnapshot(store)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}

	restored, err := NewMemoryStoreFromJSON(data)
	if err != nil {
		t.Fatalf("NewMemoryStoreFromJSON: %v", err)
	}

	payload, ok := restored.Lookup("k", now)
	if !ok || string(payload) != `{"data":{"n":7}}` {
		t.Errorf("Lookup after JSON round trip = %s, %v", payload, ok)
	}
}

func TestNewMemoryStoreFromJSONInvalid(t *testing.T) {
	if _, err := NewMemoryStoreFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid snapshot")
	}
}
