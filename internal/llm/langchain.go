package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaServerURL = "http://localhost:11434"

// LangChainProvider adapts any langchaingo model to Provider. It is how
// local models served by Ollama are reached.
type LangChainProvider struct {
	model   llms.Model
	modelID string
}

// NewLangChainProvider wraps an already constructed langchaingo model.
func NewLangChainProvider(model llms.Model, modelID string) *LangChainProvider {
	return &LangChainProvider{model: model, modelID: modelID}
}

// NewOllamaProvider creates a provider backed by a local Ollama server.
func NewOllamaProvider(cfg OllamaConfig) (*LangChainProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = defaultOllamaServerURL
	}

	model, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(&http.Client{}),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewLangChainProvider(model, cfg.Model), nil
}

func (p *LangChainProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Schema != nil {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := p.model.GenerateContent(ctx, buildLangChainMessages(req), opts...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in langchain response"),
		}
	}

	choice := resp.Choices[0]
	content := json.RawMessage(choice.Content)
	if choice.StopReason == "length" {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}

	return &Response{
		Content:    content,
		Usage:      langChainUsage(choice.GenerationInfo),
		Model:      p.modelID,
		StopReason: "end",
	}, nil
}

func (p *LangChainProvider) ModelID() string {
	return p.modelID
}

func buildLangChainMessages(req Request) []llms.MessageContent {
	var out []llms.MessageContent
	if req.System != "" {
		out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

// langChainUsage reads the token counters Ollama reports in GenerationInfo.
func langChainUsage(info map[string]any) Usage {
	return Usage{
		InputTokens:  intFromInfo(info, "PromptTokens"),
		OutputTokens: intFromInfo(info, "CompletionTokens"),
		TotalTokens:  intFromInfo(info, "TotalTokens"),
	}
}

func intFromInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
