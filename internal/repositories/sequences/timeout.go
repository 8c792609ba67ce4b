package sequences

import (
	"context"
	"time"

	"github.com/lettucedream/roster/internal/identifier"
)

type timeoutStore struct {
	store   identifier.Store
	timeout time.Duration
}

// WithTimeout bounds every call to store by d. A zero d returns store as is.
func WithTimeout(store identifier.Store, d time.Duration) identifier.Store {
	if d <= 0 {
		return store
	}
	return &timeoutStore{store: store, timeout: d}
}

func (s *timeoutStore) Reserve(ctx context.Context, name string, incrementBy uint64) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Reserve(ctx, name, incrementBy)
}

func (s *timeoutStore) Current(ctx context.Context, name string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Current(ctx, name)
}
