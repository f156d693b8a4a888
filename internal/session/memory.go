package session

import (
	"context"
	"sync"
	"time"

	"github.com/dyluth/commviz/pkg/artifact"
)

type memoryKey struct {
	id   string
	page artifact.PageName
}

type memoryEntry struct {
	sel       artifact.Selection
	expiresAt time.Time // zero means no expiry
}

// MemoryStore keeps selections in process memory. Entries expire ttl after their last Put.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[memoryKey]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty store. A ttl of zero disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[memoryKey]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, page artifact.PageName, id string) (artifact.Selection, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entry, ok := s.entries[memoryKey{id: id, page: page}]
	s.mu.RUnlock()

	if !ok || s.expired(entry) {
		return artifact.Selection{}, nil
	}
	return entry.sel.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, page artifact.PageName, id string, sel artifact.Selection) error {
	if err := validateID(id); err != nil {
		return err
	}

	key := memoryKey{id: id, page: page}
	clone := sel.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(clone) == 0 {
		delete(s.entries, key)
		return nil
	}

	entry := memoryEntry{sel: clone}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[key] = entry
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, page artifact.PageName, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, memoryKey{id: id, page: page})
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.entries = make(map[memoryKey]memoryEntry)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entry := range s.entries {
		if !s.expired(entry) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}

// sweepLocked drops expired entries. Caller holds the write lock.
func (s *MemoryStore) sweepLocked() {
	for key, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, key)
		}
	}
}
