package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Summarize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama3.1:8b" || req.Stream {
			t.Errorf("Unexpected request: model=%s stream=%v", req.Model, req.Stream)
		}
		if req.Options.NumPredict != 256 {
			t.Errorf("Expected num_predict 256, got %d", req.Options.NumPredict)
		}

		_, _ = w.Write([]byte(`{"model": "llama3.1:8b", "response": " Animals and birds. ", "done": true, "prompt_eval_count": 40, "eval_count": 20}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL:        server.URL + "/",
		Model:          "llama3.1:8b",
		MaxTokens:      256,
		StrictConcepts: true,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if resp.Summary != "Animals and birds." {
		t.Errorf("Unexpected summary: %q", resp.Summary)
	}
	if resp.TokensUsed != 60 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
	if len(resp.CitedIRIs) != 0 {
		t.Errorf("Expected no cited IRIs, got %v", resp.CitedIRIs)
	}
}

func TestOllamaProvider_Summarize_EstimatesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": "abcd", "done": true}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	req := testRequest()
	req.Prompt = "abcdefgh"
	resp, err := provider.Summarize(context.Background(), req)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if resp.TokensUsed != 3 {
		t.Errorf("Expected estimated 3 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "mistral" {
		t.Errorf("Expected fallback model mistral, got %s", resp.Model)
	}
}

func TestOllamaProvider_Summarize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'llama9' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama9"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected model not found error, got %v", err)
	}
}

func TestOllamaProvider_Summarize_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if _, err := provider.Summarize(context.Background(), testRequest()); err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL})
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

func TestOllamaProvider_Summarize_NoModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Expected error when no model provided, got nil")
	}
	if !strings.Contains(err.Error(), "must be specified") {
		t.Errorf("Expected error about missing model, got %v", err)
	}
}
