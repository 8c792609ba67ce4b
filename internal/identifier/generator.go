package identifier

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/logging"
)

const tracerName = "github.com/lettucedream/roster/internal/identifier"

// Store is the durable counter behind a Generator.
//
// Reserve advances the counter for name by incrementBy and returns the first
// number of the reserved block. Concurrent callers never receive overlapping
// blocks for the same name. Backend failures wrap common.ErrStoreUnavailable.
type Store interface {
	Reserve(ctx context.Context, name string, incrementBy uint64) (uint64, error)
	Current(ctx context.Context, name string) (uint64, error)
}

// Option configures a Generator.
type Option func(*Generator)

func WithLogger(l logging.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) { g.tracer = t }
}

// block is the unused tail of the last reservation made for one sequence.
type block struct {
	mu   sync.Mutex
	step uint64
	next uint64
	last uint64
}

// layout is the prefix and width first seen for a sequence name.
type layout struct {
	prefix string
	width  int
}

// Generator mints identifiers. It is safe for concurrent use.
//
// Each round trip to the store reserves a block of IncrementBy numbers that
// is handed out locally, so with IncrementBy == 1 every call reaches the
// store. Numbers left in a block when the process stops or the increment
// changes are skipped, never reissued.
type Generator struct {
	store  Store
	logger logging.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	blocks  map[string]*block
	layouts map[string]layout
}

func NewGenerator(store Store, opts ...Option) *Generator {
	g := &Generator{
		store:   store,
		logger:  logging.Discard(),
		tracer:  otel.Tracer(tracerName),
		blocks:  make(map[string]*block),
		layouts: make(map[string]layout),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next mints a new identifier for def. Every call returns a distinct
// identifier, including retries after a failed call.
func (g *Generator) Next(ctx context.Context, def SequenceDefinition) (ID, error) {
	if err := def.Validate(); err != nil {
		return "", err
	}
	b, err := g.blockFor(def)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.step != def.IncrementBy {
		// numbers cached under another block size are dropped
		b.step, b.next, b.last = def.IncrementBy, 0, 0
	}
	if b.next == 0 || b.next > b.last {
		first, err := g.reserve(ctx, def)
		if err != nil {
			return "", err
		}
		b.next, b.last = first, first+def.IncrementBy-1
	}

	n := b.next
	b.next++
	return def.Format(n), nil
}

// NextN mints n identifiers in increasing order. On error the identifiers
// minted so far are consumed and not returned.
func (g *Generator) NextN(ctx context.Context, def SequenceDefinition, n int) ([]ID, error) {
	ids := make([]ID, 0, n)
	for i := 0; i < n; i++ {
		id, err := g.Next(ctx, def)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NextNamed looks name up in r and mints an identifier for it.
func (g *Generator) NextNamed(ctx context.Context, r *Registry, name string) (ID, error) {
	def, err := r.Lookup(name)
	if err != nil {
		return "", err
	}
	return g.Next(ctx, def)
}

// Current returns the formatted last-reserved value of def's counter, or ""
// when nothing has been reserved yet.
func (g *Generator) Current(ctx context.Context, def SequenceDefinition) (ID, error) {
	n, err := g.store.Current(ctx, def.Name)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	return def.Format(n), nil
}

func (g *Generator) blockFor(def SequenceDefinition) (*block, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	want := layout{prefix: def.Prefix, width: def.Width}
	if seen, ok := g.layouts[def.Name]; ok && seen != want {
		return nil, fmt.Errorf("%w: sequence %q changed format from %q/%d to %q/%d",
			common.ErrInvalidSequence, def.Name, seen.prefix, seen.width, want.prefix, want.width)
	}
	g.layouts[def.Name] = want

	b, ok := g.blocks[def.Name]
	if !ok {
		b = &block{}
		g.blocks[def.Name] = b
	}
	return b, nil
}

func (g *Generator) reserve(ctx context.Context, def SequenceDefinition) (uint64, error) {
	ctx, span := g.tracer.Start(ctx, "identifier.reserve", trace.WithAttributes(
		attribute.String("sequence.name", def.Name),
		attribute.Int64("sequence.increment_by", int64(def.IncrementBy)),
	))
	defer span.End()

	first, err := g.store.Reserve(ctx, def.Name, def.IncrementBy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reserve failed")
		g.logger.Error(ctx, "sequence reservation failed", "sequence", def.Name, "error", err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("sequence.first", int64(first)))
	g.logger.Debug(ctx, "sequence block reserved", "sequence", def.Name, "first", first, "size", def.IncrementBy)
	return first, nil
}
