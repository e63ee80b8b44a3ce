package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizgen/internal/llm"
)

func TestPromptRender(t *testing.T) {
	p := NewPrompt("You write {{ .subject }} quizzes.\n", "Topic:\n{{ .topic }}\n", "subject", "topic")

	req, err := p.Render(map[string]any{"subject": "history", "topic": "Ça ira"})
	require.NoError(t, err)

	assert.Equal(t, "You write history quizzes.", req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Topic:\nÇa ira"}, req.Messages[0])
	assert.Zero(t, req.Temperature)
	assert.Nil(t, req.Schema)
}

func TestPromptRender_MissingValue(t *testing.T) {
	p := NewPrompt("", "{{ .topic }}", "topic")

	_, err := p.Render(map[string]any{})
	assert.Error(t, err)
}

func TestPromptRender_NoEscaping(t *testing.T) {
	p := NewPrompt("", "{{ .input }}", KeyInput)

	req, err := p.Render(map[string]any{KeyInput: `{"content": "<b>&</b>"}`})
	require.NoError(t, err)
	assert.Equal(t, `{"content": "<b>&</b>"}`, req.Messages[0].Content)
}

func TestEmbeddedPrompts(t *testing.T) {
	for _, name := range []string{
		"history_system.tmpl",
		"history_user.tmpl",
		"math_user.tmpl",
	} {
		assert.NotEmpty(t, mustReadPrompt(name), name)
	}
	assert.Panics(t, func() { mustReadPrompt("nope.tmpl") })
}
