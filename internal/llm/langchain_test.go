package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

// recordingModel is an llms.Model that captures what it was sent.
type recordingModel struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (m *recordingModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = msgs
	for _, o := range options {
		o(&m.opts)
	}
	return m.resp, m.err
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangChainProvider_FakeLLM(t *testing.T) {
	p := NewLangChainProvider(fake.NewFakeLLM([]string{`{"question":"q1"}`, `{"question":"q2"}`}), "fake")

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"question":"q1"}`, resp.Text())
	assert.Equal(t, "fake", resp.Model)
	assert.Equal(t, "end", resp.StopReason)

	resp, err = p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `{"question":"q2"}`, resp.Text())
}

func TestLangChainProvider_OptionsAndMessages(t *testing.T) {
	m := &recordingModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content: `{}`,
			GenerationInfo: map[string]any{
				"PromptTokens":     11,
				"CompletionTokens": 4,
				"TotalTokens":      15,
			},
		}},
	}}
	p := NewLangChainProvider(m, "llama3.1")

	resp, err := p.Generate(context.Background(), Request{
		System:      "sys",
		Messages:    []Message{{Role: RoleUser, Content: "u"}, {Role: RoleAssistant, Content: "a"}},
		Schema:      &Schema{Name: "quiz"},
		MaxTokens:   300,
		Temperature: 0,
	})
	require.NoError(t, err)

	require.Len(t, m.messages, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, m.messages[2].Role)

	assert.True(t, m.opts.JSONMode)
	assert.Equal(t, 300, m.opts.MaxTokens)
	assert.Equal(t, 0.0, m.opts.Temperature)

	assert.Equal(t, Usage{InputTokens: 11, OutputTokens: 4, TotalTokens: 15}, resp.Usage)
}

func TestLangChainProvider_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model *recordingModel
		check func(t *testing.T, err error)
	}{
		{
			name:  "transport failure",
			model: &recordingModel{err: errors.New("connection refused")},
			check: func(t *testing.T, err error) {
				var unavail *ErrProviderUnavailable
				assert.ErrorAs(t, err, &unavail)
			},
		},
		{
			name:  "context cancelled",
			model: &recordingModel{err: context.Canceled},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, context.Canceled)
				assert.False(t, IsTransportError(err))
			},
		},
		{
			name:  "no choices",
			model: &recordingModel{resp: &llms.ContentResponse{}},
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				assert.ErrorAs(t, err, &inv)
			},
		},
		{
			name: "truncated",
			model: &recordingModel{resp: &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: `{"q`, StopReason: "length"}},
			}},
			check: func(t *testing.T, err error) {
				var maxTok *ErrMaxTokensExceeded
				assert.ErrorAs(t, err, &maxTok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLangChainProvider(tt.model, "m").Generate(context.Background(), Request{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewOllamaProvider(t *testing.T) {
	p, err := NewOllamaProvider(OllamaConfig{Model: "llama3.1"})
	require.NoError(t, err)
	assert.Equal(t, "llama3.1", p.ModelID())

	_, err = NewOllamaProvider(OllamaConfig{})
	assert.Error(t, err)
}
