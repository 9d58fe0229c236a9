package luck

import (
	"context"
	"errors"
	"io"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	// DefaultMaxAttempts bounds compare-and-swap retries per spend.
	DefaultMaxAttempts = 5
)

// PoolStore persists luck pools. CompareAndSwapPool writes next only when the
// stored pool still equals expected, reporting false otherwise.
type PoolStore interface {
	GetPool(ctx context.Context, owner string) (Pool, error)
	CompareAndSwapPool(ctx context.Context, owner string, expected, next Pool) (bool, error)
}

// Intent is one requested spend.
type Intent struct {
	Move   string
	Gambit bool
	// Count is the feint repeat count; ignored by other moves.
	Count int
}

// Ledger applies spends to stored pools. Every spend re-reads the pool and
// is written with a compare-and-swap.
type Ledger struct {
	store       PoolStore
	maxAttempts int
	logger      *log.Logger
	tracer      trace.Tracer
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithMaxAttempts sets the number of compare-and-swap attempts.
func WithMaxAttempts(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for conflict reports.
func WithLogger(logger *log.Logger) LedgerOption {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTracer overrides the otel tracer.
func WithTracer(tracer trace.Tracer) LedgerOption {
	return func(l *Ledger) {
		if tracer != nil {
			l.tracer = tracer
		}
	}
}

// NewLedger creates a ledger over store.
func NewLedger(store PoolStore, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		logger:      log.New(io.Discard, "", 0),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Pool reads the stored pool for owner.
func (l *Ledger) Pool(ctx context.Context, owner string) (Pool, error) {
	return l.store.GetPool(ctx, owner)
}

// Spend applies one intent to owner's stored pool.
func (l *Ledger) Spend(ctx context.Context, owner string, intent Intent) (SpendResult, error) {
	ctx, span := l.tracer.Start(ctx, "luck.Ledger.Spend", trace.WithAttributes(
		attribute.String("luck.owner", owner),
		attribute.String("luck.move", intent.Move),
		attribute.Bool("luck.gambit", intent.Gambit),
	))
	defer span.End()

	var result SpendResult
	err := l.update(ctx, owner, func(pool Pool) (Pool, error) {
		result = Spend(pool, intent.Move, intent.Gambit, intent.Count)
		if !result.Success {
			return pool, result.Err
		}
		return result.Pool, nil
	})
	if err != nil {
		recordError(span, err)
		return result, err
	}
	span.SetAttributes(attribute.Int("luck.cost", result.Cost))
	return result, nil
}

// Commit applies intents in order as one all-or-nothing update. The first
// intent that cannot be paid rejects the batch with a *CommitError and
// nothing is written.
func (l *Ledger) Commit(ctx context.Context, owner string, intents []Intent) (Pool, error) {
	ctx, span := l.tracer.Start(ctx, "luck.Ledger.Commit", trace.WithAttributes(
		attribute.String("luck.owner", owner),
		attribute.Int("luck.intents", len(intents)),
	))
	defer span.End()

	var final Pool
	err := l.update(ctx, owner, func(pool Pool) (Pool, error) {
		next := pool
		for i, intent := range intents {
			res := Spend(next, intent.Move, intent.Gambit, intent.Count)
			if !res.Success {
				return pool, &CommitError{Index: i, Move: intent.Move, Err: res.Err}
			}
			next = res.Pool
		}
		final = next
		return next, nil
	})
	if err != nil {
		recordError(span, err)
		return Pool{}, err
	}
	return final, nil
}

func (l *Ledger) update(ctx context.Context, owner string, apply func(Pool) (Pool, error)) error {
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		current, err := l.store.GetPool(ctx, owner)
		if err != nil {
			return err
		}
		next, err := apply(current)
		if err != nil {
			return err
		}
		if next == current {
			return nil
		}
		swapped, err := l.store.CompareAndSwapPool(ctx, owner, current, next)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
		l.logger.Printf("luck pool for %s changed during spend (attempt %d/%d)", owner, attempt, l.maxAttempts)
	}
	return ErrPoolConflict
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	var commitErr *CommitError
	if errors.As(err, &commitErr) {
		span.SetAttributes(attribute.Int("luck.failed_index", commitErr.Index))
	}
	span.SetStatus(codes.Error, err.Error())
}
