package orderlog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// The zero value is ready to use.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Record implements [Store.Record].
func (s *MemStore) Record(ctx context.Context, entry Entry) (Entry, error) {
	id, err := generateID()
	if err != nil {
		return Entry{}, fmt.Errorf("orderlog: generate id: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return entry, nil
}

// Get implements [Store.Get].
func (s *MemStore) Get(ctx context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// List implements [Store.List].
func (s *MemStore) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	// Newest first: entries are appended in record order.
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if opts.Phone != "" && e.CustomerPhone != opts.Phone {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return slices.Clip(out), nil
}

// generateID produces a random 16-byte hex string using crypto/rand.
func generateID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
