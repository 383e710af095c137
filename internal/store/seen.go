// Package store remembers which listings earlier runs already handled and
// optionally records every discovered listing in PostgreSQL.
package store

import (
	"context"
	"sync"
	"time"

	"autojobfinder/pkg/models"
)

// SeenStore remembers listing keys across runs
type SeenStore interface {
	Seen(ctx context.Context, key models.ListingKey) (bool, error)
	MarkSeen(ctx context.Context, keys ...models.ListingKey) error
	Close() error
}

// MemoryStore is a process-local SeenStore. Entries expire after ttl; a zero
// ttl keeps them forever.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[models.ListingKey]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		seen: make(map[models.ListingKey]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *MemoryStore) Seen(ctx context.Context, key models.ListingKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	at, ok := m.seen[key]
	if !ok {
		return false, nil
	}
	if m.ttl > 0 && m.now().Sub(at) >= m.ttl {
		delete(m.seen, key)
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) MarkSeen(ctx context.Context, keys ...models.ListingKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, key := range keys {
		m.seen[key] = now
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// FilterUnseen drops listings the store already knows, keeping order
func FilterUnseen(ctx context.Context, s SeenStore, listings []*models.JobListing) ([]*models.JobListing, error) {
	fresh := make([]*models.JobListing, 0, len(listings))
	for _, listing := range listings {
		seen, err := s.Seen(ctx, listing.Key())
		if err != nil {
			return nil, err
		}
		if !seen {
			fresh = append(fresh, listing)
		}
	}
	return fresh, nil
}

// Keys returns the keys of the listings
func Keys(listings []*models.JobListing) []models.ListingKey {
	keys := make([]models.ListingKey, len(listings))
	for i, listing := range listings {
		keys[i] = listing.Key()
	}
	return keys
}
