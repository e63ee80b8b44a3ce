package quizgen

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizgen/internal/llm"
)

// ErrInvalidCount is returned when a batch asks for fewer than one quiz.
var ErrInvalidCount = errors.New("quizgen: batch size must be at least 1")

// FanOut runs fn for slots 0..n-1 concurrently, at most limit at a time
// (limit <= 0 means no bound). results[i] is slot i's value whatever order the
// slots finish in. The first error cancels the remaining slots and is
// returned alone; there are no partial results.
func FanOut[T any](ctx context.Context, n, limit int, fn func(ctx context.Context, slot int) (T, error)) ([]T, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidCount, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]T, n)
	for slot := range n {
		g.Go(func() error {
			v, err := fn(llm.WithSlot(gctx, slot), slot)
			if err != nil {
				return fmt.Errorf("slot %d: %w", slot, err)
			}
			results[slot] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
