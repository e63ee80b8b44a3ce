package quizgen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quiz"
)

// Source tells where a quiz came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is the outcome of one chain invocation.
type Result struct {
	Quiz   *quiz.Quiz
	Source Source

	// Cause is the primary failure when Source is SourceFallback.
	Cause error
}

// FallbackError is the terminal failure: the primary attempt failed and the
// fallback payload did not parse either. With a correct configuration this
// cannot happen.
type FallbackError struct {
	Primary  error
	Fallback error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("fallback failed: %v (primary attempt: %v)", e.Fallback, e.Primary)
}

func (e *FallbackError) Unwrap() []error { return []error{e.Fallback, e.Primary} }

// Chain renders a prompt, makes one model call and parses the answer. When
// any of that fails it substitutes the fallback payload, parsed the same way.
type Chain struct {
	provider llm.Provider
	prompt   Prompt
	fallback Fallback
	config   Config
	logger   *zap.Logger
}

// NewChain creates a Chain. A nil logger discards logs.
func NewChain(provider llm.Provider, prompt Prompt, fallback Fallback, cfg Config, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		provider: provider,
		prompt:   prompt,
		fallback: fallback,
		config:   cfg,
		logger:   logger,
	}
}

// Run executes the chain once. It returns a Result or a terminal error: the
// context's error when the caller gave up, or *FallbackError.
func (c *Chain) Run(ctx context.Context, values map[string]any) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, cause := c.primary(ctx, values)
	if cause == nil {
		return &Result{Quiz: q, Source: SourceModel}, nil
	}

	// A cancelled caller is not a model failure.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := c.logger.With(
		zap.String("purpose", llm.PurposeFrom(ctx)),
		zap.Int("slot", llm.SlotFrom(ctx)),
	)
	log.Warn("primary attempt failed, using fallback",
		zap.String("kind", failureKind(cause)),
		zap.Error(cause),
	)

	q, err := c.runFallback(ctx, values)
	if err != nil {
		ferr := &FallbackError{Primary: cause, Fallback: err}
		log.DPanic("fallback payload rejected", zap.Error(ferr))
		return nil, ferr
	}

	return &Result{Quiz: q, Source: SourceFallback, Cause: cause}, nil
}

func (c *Chain) primary(ctx context.Context, values map[string]any) (*quiz.Quiz, error) {
	req, err := c.prompt.Render(values)
	if err != nil {
		return nil, err
	}
	req.Temperature = 0
	req.MaxTokens = c.config.MaxTokens
	if c.config.NativeSchema {
		req.Schema = quiz.Schema
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return quiz.Parse(resp.Text())
}

func (c *Chain) runFallback(ctx context.Context, values map[string]any) (*quiz.Quiz, error) {
	payload, err := c.fallback.Invoke(ctx, values)
	if err != nil {
		return nil, err
	}
	return quiz.Parse(payload)
}

// failureKind labels a primary failure for logs.
func failureKind(err error) string {
	var (
		pe *quiz.ParseError
		ve *quiz.ValidationError
	)
	switch {
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &ve):
		return "validation"
	case llm.IsTransportError(err):
		return "transport"
	default:
		return "other"
	}
}
