package profilerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/astro-profile/internal/domain/profiles"
)

// MemoryRepository keeps profiles in process memory for tests and local runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]profiles.Record
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]profiles.Record)}
}

// Save inserts or replaces the record.
func (r *MemoryRepository) Save(_ context.Context, record profiles.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	return nil
}

// Get fetches by ID.
func (r *MemoryRepository) Get(_ context.Context, id string) (profiles.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	return record, ok, nil
}

// ListByUser returns the user's records, newest first.
func (r *MemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]profiles.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]profiles.Record, 0)
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ profiles.Repository = (*MemoryRepository)(nil)
