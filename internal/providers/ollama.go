package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Reviewer interface against a local Ollama server
// using the native chat API, with a fallback to the older generate API for
// servers that predate /api/chat.
type Ollama struct {
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates a new Ollama provider. baseURL falls back to
// OLLAMA_HOST, then to the local default. No API key is required.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &Ollama{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 300 * time.Second},
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaChatResponse struct {
	Message   ollamaMessage `json:"message"`
	EvalCount int           `json:"eval_count"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
}

func (o *Ollama) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	opts := ollamaOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}

	var resp ReviewResponse
	err := retryWithBackoff(ctx, 3, func() error {
		chatBody := ollamaChatRequest{
			Model: o.model,
			Messages: []ollamaMessage{
				{Role: "system", Content: req.SystemPrompt},
				{Role: "user", Content: req.UserPrompt},
			},
			Stream:  false,
			Options: opts,
		}
		status, body, err := o.post(ctx, "/api/chat", chatBody)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound {
			// Older servers only speak /api/generate.
			return o.generate(ctx, req, opts, &resp)
		}
		if err := checkStatus(status, body); err != nil {
			return err
		}

		var result ollamaChatResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if result.Message.Content == "" {
			return fmt.Errorf("empty text content in API response")
		}
		resp = ReviewResponse{Content: result.Message.Content, TokensUsed: result.EvalCount}
		return nil
	})

	return resp, err
}

func (o *Ollama) generate(ctx context.Context, req ReviewRequest, opts ollamaOptions, resp *ReviewResponse) error {
	genBody := ollamaGenerateRequest{
		Model:   o.model,
		Prompt:  req.SystemPrompt + "\n\n" + req.UserPrompt,
		Stream:  false,
		Options: opts,
	}
	status, body, err := o.post(ctx, "/api/generate", genBody)
	if err != nil {
		return err
	}
	if err := checkStatus(status, body); err != nil {
		return err
	}

	var result ollamaGenerateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if result.Response == "" {
		return fmt.Errorf("empty text content in API response")
	}
	*resp = ReviewResponse{Content: result.Response, TokensUsed: result.EvalCount}
	return nil
}

func (o *Ollama) post(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return httpResp.StatusCode, respBody, nil
}

// ListModels returns the model names the server has pulled, for the models
// command.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func checkStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &rateLimitError{}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &authError{message: string(body)}
	case status >= 500:
		return &serverError{statusCode: status, body: string(body)}
	case status != http.StatusOK:
		return fmt.Errorf("API error (status %d): %s", status, string(body))
	}
	return nil
}
