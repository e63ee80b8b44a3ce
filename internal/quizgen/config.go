package quizgen

// Config controls how the generators call the model. The model itself is
// chosen by the provider (llm.Config); temperature is always 0.
type Config struct {
	// MaxTokens is the token budget for each response. Zero leaves the
	// provider default in place.
	MaxTokens int `mapstructure:"max_tokens"`

	// NativeSchema sends quiz.Schema with each request so providers that
	// support structured output use it. The prompt already describes the
	// shape, so this is off by default.
	NativeSchema bool `mapstructure:"native_schema"`

	// MaxParallel bounds concurrent slots in a batch. Zero means unbounded.
	MaxParallel int `mapstructure:"max_parallel"`
}

// DefaultConfig returns the recommended generator settings.
func DefaultConfig() Config {
	return Config{
		MaxParallel: 4,
	}
}
