package store

import (
	"sync"

	"record-ingest-backend/internal/model"
)

// LogBuffer holds operation outcomes for the lifetime of the process.
// Entries are kept in append order and never mutated or removed.
type LogBuffer interface {
	Append(entry model.LogEntry)
	List(entryType string) []model.LogEntry
	Len() int
}

type inMemoryLogBuffer struct {
	entries []model.LogEntry
	mu      sync.RWMutex
}

func NewInMemoryLogBuffer() LogBuffer {
	return &inMemoryLogBuffer{
		entries: make([]model.LogEntry, 0),
	}
}

func (b *inMemoryLogBuffer) Append(entry model.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entry)
}

// List returns a copy of the entries. An empty entryType returns everything,
// otherwise only entries whose Type matches exactly.
func (b *inMemoryLogBuffer) List(entryType string) []model.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.LogEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		if entryType != "" && entry.Type != entryType {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (b *inMemoryLogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
