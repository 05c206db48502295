package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAI_Review(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", r.Header.Get("Authorization"))
		}
		var body openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.Model != "gpt-4o" {
			t.Errorf("Model = %q, want gpt-4o", body.Model)
		}
		if len(body.Messages) != 2 {
			t.Errorf("Messages = %d, want 2", len(body.Messages))
		}

		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "[]"}},
			},
			Usage: openaiUsage{TotalTokens: 100},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	resp, err := o.Review(context.Background(), ReviewRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q, want %q", resp.Content, "[]")
	}
	if resp.TokensUsed != 100 {
		t.Errorf("TokensUsed = %d, want 100", resp.TokensUsed)
	}
}

func TestOpenAI_DefaultMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body openaiRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.MaxTokens != 4096 {
			t.Errorf("Default MaxTokens = %d, want 4096", body.MaxTokens)
		}
		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "[]"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := o.Review(context.Background(), ReviewRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
		MaxTokens:    0,
	})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
}

func TestOpenAI_AuthError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "bad-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := o.Review(context.Background(), ReviewRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Fatal("Expected auth error")
	}
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Auth errors should not retry, got %d attempts", attempts)
	}
}

func TestOpenAI_ServerErrorRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(503)
			w.Write([]byte(`{"error":"service unavailable"}`))
			return
		}
		resp := openaiResponse{
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: "[]"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	resp, err := o.Review(context.Background(), ReviewRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err != nil {
		t.Fatalf("Review should succeed after retry: %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Content = %q, want %q", resp.Content, "[]")
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openaiResponse{Choices: []openaiChoice{}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o := &OpenAI{
		apiKey:  "test-key",
		model:   "gpt-4o",
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := o.Review(context.Background(), ReviewRequest{
		SystemPrompt: "test",
		UserPrompt:   "test",
	})
	if err == nil {
		t.Error("Expected error for no choices")
	}
}

func TestOpenAI_Name(t *testing.T) {
	o := &OpenAI{model: "test"}
	if o.Name() != "openai" {
		t.Errorf("Name() = %q, want %q", o.Name(), "openai")
	}
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAI("gpt-4o", "")
	if err == nil {
		t.Error("Expected error when OPENAI_API_KEY is unset")
	}
}

func TestNewOpenAI_BaseURL(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	t.Run("default", func(t *testing.T) {
		t.Setenv("REDLINE_OPENAI_BASE_URL", "")
		o, err := NewOpenAI("gpt-4o", "")
		if err != nil {
			t.Fatalf("NewOpenAI error: %v", err)
		}
		if o.baseURL != defaultOpenAIURL {
			t.Errorf("baseURL = %q, want %q", o.baseURL, defaultOpenAIURL)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("REDLINE_OPENAI_BASE_URL", "http://proxy:8080/v1/chat/completions")
		o, err := NewOpenAI("gpt-4o", "")
		if err != nil {
			t.Fatalf("NewOpenAI error: %v", err)
		}
		if o.baseURL != "http://proxy:8080/v1/chat/completions" {
			t.Errorf("baseURL = %q, want env override", o.baseURL)
		}
	})

	t.Run("explicit beats env", func(t *testing.T) {
		t.Setenv("REDLINE_OPENAI_BASE_URL", "http://ignored:8080")
		o, err := NewOpenAI("gpt-4o", "http://explicit:8080")
		if err != nil {
			t.Fatalf("NewOpenAI error: %v", err)
		}
		if o.baseURL != "http://explicit:8080" {
			t.Errorf("baseURL = %q, want explicit value", o.baseURL)
		}
	})
}
