package quizgen

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quiz"
)

// PurposeHistory labels history quiz calls in logs and request events.
const PurposeHistory = "history-quiz"

// HistoryInputExample is the worked input shown to the model.
//
//go:embed prompts/history_input_example.json
var HistoryInputExample string

// HistoryOutputExample is the worked output shown to the model and the
// history fallback payload.
//
//go:embed prompts/history_output_example.json
var HistoryOutputExample string

// HistoryRequest is the per-call input for a history quiz.
type HistoryRequest struct {
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
}

// History generates multiple-choice history questions about given content.
type History struct {
	gen generator
}

// NewHistory creates a history quiz generator.
func NewHistory(provider llm.Provider, cfg Config, logger *zap.Logger) *History {
	prompt := NewPrompt(
		mustReadPrompt("history_system.tmpl"),
		mustReadPrompt("history_user.tmpl"),
		KeyInput, KeyInputExample, KeyOutputExample,
	)
	return &History{gen: newGenerator(PurposeHistory, provider, prompt, cfg, logger)}
}

// CreateQuiz generates one quiz about req.
func (h *History) CreateQuiz(ctx context.Context, req HistoryRequest) (*quiz.Quiz, error) {
	r, err := h.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.Quiz, nil
}

// Generate is CreateQuiz with the quiz's source reported.
func (h *History) Generate(ctx context.Context, req HistoryRequest) (*Result, error) {
	values, err := h.values(req)
	if err != nil {
		return nil, err
	}
	return h.gen.generate(ctx, values)
}

// CreateQuizzes generates n independent quizzes about the same req. Quizzes[i]
// comes from slot i. Any slot's terminal failure fails the whole batch.
func (h *History) CreateQuizzes(ctx context.Context, req HistoryRequest, n int) (*quiz.Collection, error) {
	values, err := h.values(req)
	if err != nil {
		return nil, err
	}
	return h.gen.generateBatch(ctx, values, n)
}

// values builds the template values for req. The request is embedded as
// indented JSON with non-ASCII text preserved.
func (h *History) values(req HistoryRequest) (map[string]any, error) {
	if req.Keywords == nil {
		req.Keywords = []string{}
	}
	input, err := quiz.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode history request: %w", err)
	}
	return map[string]any{
		KeyInput:         string(input),
		KeyInputExample:  HistoryInputExample,
		KeyOutputExample: HistoryOutputExample,
	}, nil
}
