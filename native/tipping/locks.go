package tipping

import (
	"bytes"
	"sort"
	"sync"
)

// lockTable hands out exclusive access to identities. Sets are locked in
// sorted order so overlapping operations cannot deadlock.
type lockTable struct {
	mu    sync.Mutex
	locks map[[20]byte]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[[20]byte]*lockEntry)}
}

func (t *lockTable) acquire(ids ...[20]byte) func() {
	keys := make([][20]byte, 0, len(ids))
	seen := make(map[[20]byte]struct{}, len(ids))
	for _, id := range ids {
		if id == ([20]byte{}) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	entries := make([]*lockEntry, len(keys))
	t.mu.Lock()
	for i, key := range keys {
		entry, ok := t.locks[key]
		if !ok {
			entry = &lockEntry{}
			t.locks[key] = entry
		}
		entry.refs++
		entries[i] = entry
	}
	t.mu.Unlock()

	for _, entry := range entries {
		entry.mu.Lock()
	}
	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
		t.mu.Lock()
		for i, key := range keys {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(t.locks, key)
			}
		}
		t.mu.Unlock()
	}
}
