// Package quizgen generates multiple-choice quizzes with an LLM. Each quiz
// costs exactly one model call; when the call or its output is unusable the
// generator's worked example is returned instead.
package quizgen

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quiz"
)

// generator binds a chain to a purpose label. The variants supply the
// template values per call.
type generator struct {
	purpose     string
	chain       *Chain
	maxParallel int
	logger      *zap.Logger
}

func newGenerator(purpose string, provider llm.Provider, prompt Prompt, cfg Config, logger *zap.Logger) generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("generator", purpose))
	return generator{
		purpose:     purpose,
		chain:       NewChain(provider, prompt, ExampleFallback{}, cfg, logger),
		maxParallel: cfg.MaxParallel,
		logger:      logger,
	}
}

func (g generator) generate(ctx context.Context, values map[string]any) (*Result, error) {
	return g.chain.Run(llm.WithPurpose(ctx, g.purpose), values)
}

func (g generator) generateBatch(ctx context.Context, values map[string]any, n int) (*quiz.Collection, error) {
	batchID := uuid.NewString()
	ctx = llm.WithPurpose(ctx, g.purpose)
	ctx = llm.WithBatchID(ctx, batchID)

	results, err := FanOut(ctx, n, g.maxParallel, func(ctx context.Context, _ int) (*Result, error) {
		return g.chain.Run(ctx, values)
	})
	if err != nil {
		g.logger.Error("batch failed", zap.String("batch_id", batchID), zap.Int("n", n), zap.Error(err))
		return nil, err
	}

	coll := &quiz.Collection{
		Quizzes: lo.Map(results, func(r *Result, _ int) quiz.Quiz { return *r.Quiz }),
	}
	fallbacks := lo.CountBy(results, func(r *Result) bool { return r.Source == SourceFallback })

	g.logger.Info("batch completed",
		zap.String("batch_id", batchID),
		zap.Int("n", n),
		zap.Int("fallbacks", fallbacks),
	)
	return coll, nil
}
