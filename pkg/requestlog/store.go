package requestlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger records request entries.
type Logger interface {
	Log(entry *Entry)
}

// Store is a Logger that can be queried.
type Store interface {
	Logger

	// List returns up to limit entries, newest first. A limit <= 0 returns
	// everything.
	List(limit int) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries held.
	Count() int
}

// DefaultMaxEntries is used when NewMemoryStore is given a non-positive size.
const DefaultMaxEntries = 1000

// MemoryStore is a fixed-size ring buffer of entries. It is safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	next    int
	full    bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding at most maxEntries entries; older
// entries are overwritten.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{entries: make([]*Entry, maxEntries)}
}

// Log stores entry, filling in ID and Timestamp when they are unset.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
}

func (s *MemoryStore) List(limit int) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.count()
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	s.next = 0
	s.full = false
}

func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count()
}

func (s *MemoryStore) count() int {
	if s.full {
		return len(s.entries)
	}
	return s.next
}
