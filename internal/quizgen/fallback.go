package quizgen

import (
	"context"
	"errors"
)

// ErrNoFallbackPayload means the template values carried no output example.
var ErrNoFallbackPayload = errors.New("quizgen: no output example in template values")

// Fallback produces the substitute payload used when the primary attempt
// fails. It never calls the model; its output goes through quiz.Parse like a
// model response would.
type Fallback interface {
	Invoke(ctx context.Context, values map[string]any) (string, error)
}

// ExampleFallback returns the generator's documented output example.
type ExampleFallback struct{}

// Invoke returns values[KeyOutputExample]. The input content is ignored.
func (ExampleFallback) Invoke(_ context.Context, values map[string]any) (string, error) {
	payload, ok := values[KeyOutputExample].(string)
	if !ok {
		return "", ErrNoFallbackPayload
	}
	return payload, nil
}
