package providers

import (
	"context"
	"fmt"
)

// ReviewRequest contains the prompts sent to an LLM reviewer.
type ReviewRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// ReviewResponse contains the raw response from an LLM reviewer.
type ReviewResponse struct {
	Content    string
	TokensUsed int
}

// Reviewer is the provider abstraction interface.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
	Name() string
}

// New creates a provider by name. baseURL overrides the provider's default
// endpoint when non-empty; providers that go through an SDK ignore it.
func New(provider, model, baseURL string) (Reviewer, error) {
	switch provider {
	case "ollama":
		return NewOllama(model, baseURL)
	case "openai":
		return NewOpenAI(model, baseURL)
	case "gemini", "google":
		return NewGemini(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
