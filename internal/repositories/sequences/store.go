// Package sequences provides the durable counters behind identifier
// generation. Every implementation satisfies identifier.Store: Reserve
// advances a named counter atomically and returns the first number of the
// reserved block; counters start at zero and never go back.
//
// Backend failures are reported wrapped in common.ErrStoreUnavailable. A
// number reserved by a failed or rolled-back caller is simply skipped.
package sequences

import (
	"fmt"
	"math"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/identifier"
)

// maxCounter is the largest value any backend can hold (BIGINT, Redis integer).
const maxCounter = math.MaxInt64

var (
	_ identifier.Store = (*SQLStore)(nil)
	_ identifier.Store = (*RedisStore)(nil)
	_ identifier.Store = (*FileStore)(nil)
	_ identifier.Store = (*MemoryStore)(nil)
)

func checkIncrement(name string, incrementBy uint64) error {
	if name == "" {
		return fmt.Errorf("%w: empty sequence name", common.ErrInvalidSequence)
	}
	if incrementBy == 0 || incrementBy > maxCounter {
		return fmt.Errorf("%w: sequence %q: increment %d out of range", common.ErrInvalidSequence, name, incrementBy)
	}
	return nil
}

func exhausted(name string) error {
	return fmt.Errorf("%w: sequence %q is exhausted", common.ErrInvalidSequence, name)
}

func unavailable(op, name string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", common.ErrStoreUnavailable, op, name, err)
}
