package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jverdu/emissary/pkg/resilience"
)

func TestOllamaComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream must be disabled")
		}
		if req.Model != "llama3.2" || req.Prompt != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Response:        "hi there",
			Done:            true,
			EvalCount:       5,
			PromptEvalCount: 3,
		})
	}))
	defer server.Close()

	p := NewOllama(server.URL)
	resp, err := p.Complete(context.Background(), CompletionRequest{Model: "llama3.2", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "hi there" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 8 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
}

func TestOllamaStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewOllama(server.URL)
	if _, err := p.Complete(context.Background(), CompletionRequest{Model: "x", Prompt: "y"}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestOllamaRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	p := NewOllama(server.URL, WithRetry(resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	}))
	resp, err := p.Complete(context.Background(), CompletionRequest{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete after retries: %v", err)
	}
	if resp.Content != "ok" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestMockProvider(t *testing.T) {
	m := &MockProvider{Response: "scripted"}
	resp, err := m.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	if err != nil || resp.Content != "scripted" {
		t.Fatalf("unexpected: %v %v", resp, err)
	}
}
