package quizgen

import (
	"context"
	_ "embed"

	"go.uber.org/zap"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quiz"
)

// PurposeMath labels math quiz calls in logs and request events.
const PurposeMath = "math-quiz"

// MathOutputExample is the worked output shown to the model and the math
// fallback payload.
//
//go:embed prompts/math_output_example.json
var MathOutputExample string

// Math generates two-variable linear system word problems. It takes no
// per-call input.
type Math struct {
	gen generator
}

// NewMath creates a math quiz generator.
func NewMath(provider llm.Provider, cfg Config, logger *zap.Logger) *Math {
	prompt := NewPrompt("", mustReadPrompt("math_user.tmpl"), KeyOutputExample)
	return &Math{gen: newGenerator(PurposeMath, provider, prompt, cfg, logger)}
}

// CreateQuiz generates one word problem.
func (m *Math) CreateQuiz(ctx context.Context) (*quiz.Quiz, error) {
	r, err := m.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return r.Quiz, nil
}

// Generate is CreateQuiz with the quiz's source reported.
func (m *Math) Generate(ctx context.Context) (*Result, error) {
	return m.gen.generate(ctx, m.values())
}

// CreateQuizzes generates n independent word problems. Quizzes[i] comes from
// slot i. Any slot's terminal failure fails the whole batch.
func (m *Math) CreateQuizzes(ctx context.Context, n int) (*quiz.Collection, error) {
	return m.gen.generateBatch(ctx, m.values(), n)
}

func (m *Math) values() map[string]any {
	return map[string]any{KeyOutputExample: MathOutputExample}
}
