package quizgen

import (
	"embed"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/abhisek/quizgen/internal/llm"
)

// Template value keys shared by every generator.
const (
	KeyInput         = "input"
	KeyInputExample  = "input_example"
	KeyOutputExample = "output_example"
)

//go:embed prompts
var promptFS embed.FS

func mustReadPrompt(name string) string {
	b, err := promptFS.ReadFile("prompts/" + name)
	if err != nil {
		panic(fmt.Sprintf("quizgen: missing embedded prompt %q: %v", name, err))
	}
	return string(b)
}

// Prompt is a chat template that renders into a model request. Templates use
// Go text/template syntax with sprig functions; a missing value is an error.
type Prompt struct {
	template prompts.ChatPromptTemplate
}

// NewPrompt builds a Prompt from an optional system template and a user
// template.
func NewPrompt(system, user string, inputVariables ...string) Prompt {
	var msgs []prompts.MessageFormatter
	if system != "" {
		msgs = append(msgs, prompts.NewSystemMessagePromptTemplate(system, inputVariables))
	}
	msgs = append(msgs, prompts.NewHumanMessagePromptTemplate(user, inputVariables))
	return Prompt{template: prompts.NewChatPromptTemplate(msgs)}
}

// Render interpolates values into the template and maps the resulting chat
// messages onto an llm.Request. Decoding parameters are left to the caller.
func (p Prompt) Render(values map[string]any) (llm.Request, error) {
	msgs, err := p.template.FormatMessages(values)
	if err != nil {
		return llm.Request{}, fmt.Errorf("render prompt: %w", err)
	}

	var req llm.Request
	for _, m := range msgs {
		content := strings.TrimSpace(m.GetContent())
		switch m.GetType() {
		case llms.ChatMessageTypeSystem:
			if req.System != "" {
				req.System += "\n\n"
			}
			req.System += content
		case llms.ChatMessageTypeAI:
			req.Messages = append(req.Messages, llm.Message{Role: llm.RoleAssistant, Content: content})
		default:
			req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: content})
		}
	}
	return req, nil
}
