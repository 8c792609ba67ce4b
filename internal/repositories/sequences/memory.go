package sequences

import (
	"context"
	"sync"
)

// MemoryStore is a process-local store for tests and ephemeral runs.
// Counters are lost when the process exits.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]uint64)}
}

func (s *MemoryStore) Reserve(_ context.Context, name string, incrementBy uint64) (uint64, error) {
	if err := checkIncrement(name, incrementBy); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.counters[name]
	if prev > maxCounter-incrementBy {
		return 0, exhausted(name)
	}
	s.counters[name] = prev + incrementBy
	return prev + 1, nil
}

func (s *MemoryStore) Current(_ context.Context, name string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name], nil
}
