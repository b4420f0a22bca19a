package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/example/commit-swipe/internal/models"
)

// DecisionStore persists the local decision log.
type DecisionStore interface {
	Record(ctx context.Context, d models.Decision) error
	// Recent returns up to limit decisions, newest first.
	Recent(ctx context.Context, limit int) ([]models.Decision, error)
	Close() error
}

type MemoryStore struct {
	mu        sync.RWMutex
	decisions map[string]models.Decision
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{decisions: make(map[string]models.Decision)}
}

// Record upserts by decision id.
func (m *MemoryStore) Record(_ context.Context, d models.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[d.ID] = d
	return nil
}

func (m *MemoryStore) Get(id string) (models.Decision, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.decisions[id]
	return d, ok
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]models.Decision, error) {
	m.mu.RLock()
	out := make([]models.Decision, 0, len(m.decisions))
	for _, d := range m.decisions {
		out = append(out, d)
	}
	m.mu.RUnlock()
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

func (m *MemoryStore) Close() error { return nil }
