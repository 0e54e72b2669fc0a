package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func openAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("Expected model gpt-4o-mini, got %s", req.Model)
		}

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			}},
			Usage: openai.Usage{TotalTokens: 100},
		})
	}))
}

func TestOpenAIProvider_Summarize_Success(t *testing.T) {
	server := openAIServer(t, "The zoo ontology centres on <"+iriAnimal+">.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		Timeout:        5,
		StrictConcepts: true,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(resp.CitedIRIs) != 1 || resp.CitedIRIs[0] != iriAnimal {
		t.Errorf("Unexpected cited IRIs: %v", resp.CitedIRIs)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestOpenAIProvider_Summarize_UnknownConcept(t *testing.T) {
	server := openAIServer(t, "See http://example.org/zoo#Unicorn for more.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, StrictConcepts: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), testRequest())
	if !errors.Is(err, ErrUnknownConcept) {
		t.Fatalf("Expected ErrUnknownConcept, got %v", err)
	}
}

func TestOpenAIProvider_Summarize_LenientMode(t *testing.T) {
	server := openAIServer(t, "See http://example.org/zoo#Unicorn for more.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(resp.CitedIRIs) != 1 || resp.CitedIRIs[0] != "http://example.org/zoo#Unicorn" {
		t.Errorf("Unexpected cited IRIs: %v", resp.CitedIRIs)
	}
}

func TestOpenAIProvider_Summarize_APIError(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": {"message": "try later", "type": "server_error"}}`))
		}))

		provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}
		if _, err := provider.Summarize(context.Background(), testRequest()); err == nil {
			t.Errorf("status %d: expected error, got nil", status)
		}
		server.Close()
	}
}

func TestOpenAIProvider_Summarize_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if _, err := provider.Summarize(context.Background(), testRequest()); err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestOpenAIProvider_Summarize_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 1})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	// The caller's deadline is shorter than the provider timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := provider.Summarize(ctx, testRequest()); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_MissingKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}
