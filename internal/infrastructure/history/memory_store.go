// Package history keeps the command history: an in-memory store owned by the
// pipeline for the lifetime of the process, and optional archives that persist
// entries across runs.
package history

import (
	"errors"
	"sync"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// ErrMissingID is returned when an entry without an id is recorded.
var ErrMissingID = errors.New("history entry has no id")

// MemoryStore is an append-only, insertion-ordered history.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
	index   map[string]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// Record appends a deep copy of entry.
func (m *MemoryStore) Record(entry domain.HistoryEntry) error {
	if entry.ID == "" {
		return ErrMissingID
	}
	stored := entry.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.index[stored.ID] = len(m.entries)
	m.entries = append(m.entries, stored)
	return nil
}

// List returns deep copies of all entries in insertion order.
func (m *MemoryStore) List() []domain.HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.HistoryEntry, len(m.entries))
	for i, entry := range m.entries {
		out[i] = entry.Clone()
	}
	return out
}

// Get returns a copy of the entry with id.
func (m *MemoryStore) Get(id string) (domain.HistoryEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return domain.HistoryEntry{}, false
	}
	return m.entries[i].Clone(), true
}

// Clear drops every entry and reports how many were removed.
func (m *MemoryStore) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	m.entries = nil
	m.index = make(map[string]int)
	return n
}

// Len reports the number of entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ ports.HistoryRepository = (*MemoryStore)(nil)
