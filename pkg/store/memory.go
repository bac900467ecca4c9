package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps timelines in a map.
type MemoryStore struct {
	mu        sync.RWMutex
	timelines map[string]*Timeline
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{timelines: make(map[string]*Timeline)}
}

func (s *MemoryStore) Save(ctx context.Context, t *Timeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.timelines[t.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Timeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.timelines[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.timelines))
	for _, t := range s.timelines {
		out = append(out, t.Summary())
	}
	s.mu.RUnlock()
	return newestFirst(out, limit), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timelines, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// newestFirst sorts by creation time, then ID for equal timestamps.
func newestFirst(s []Summary, limit int) []Summary {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].CreatedAt.After(s[j].CreatedAt)
		}
		return s[i].ID < s[j].ID
	})
	if limit > 0 && len(s) > limit {
		s = s[:limit]
	}
	return s
}

var _ Store = (*MemoryStore)(nil)
