package engine

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// LLM wraps the go-kit chat client with call/error accounting.
type LLM struct {
	client *llm.Client
}

// NewLLM builds the summarization client from config. Returns nil when no
// API key is configured.
func NewLLM(c Config) *LLM {
	if c.LLMAPIKey == "" {
		return nil
	}
	return &LLM{client: llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)}
}

// Complete sends one system+user exchange and returns the trimmed reply.
func (l *LLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	IncrLLMCalls()
	resp, err := l.client.Complete(ctx, system, prompt)
	if err != nil {
		IncrLLMErrors()
		return "", err
	}
	return stripFences(resp), nil
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
