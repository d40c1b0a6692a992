package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jverdu/emissary/pkg/resilience"
)

func TestSearchSendsSourcedAnswerRequest(t *testing.T) {
	var got searchRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"answer": "the answer",
			"sources": []map[string]string{
				{"name": "Example", "url": "https://example.com"},
			},
		})
	}))
	defer srv.Close()

	client := NewLinkupClient("key-123", WithBaseURL(srv.URL))
	answer, err := client.Search(context.Background(), "go release date")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if got.Query != "go release date" || got.Depth != "standard" || got.OutputType != "sourcedAnswer" {
		t.Fatalf("request payload: %+v", got)
	}
	if auth != "Bearer key-123" {
		t.Fatalf("authorization %q", auth)
	}
	if !strings.Contains(answer, "the answer") {
		t.Fatalf("answer %q", answer)
	}
	if !strings.Contains(answer, "- Example (https://example.com)") {
		t.Fatalf("sources missing: %q", answer)
	}
}

func TestSearchAnswerWithoutSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"answer": "plain"})
	}))
	defer srv.Close()

	answer, err := NewLinkupClient("k", WithBaseURL(srv.URL)).Search(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "plain" {
		t.Fatalf("answer %q", answer)
	}
}

func TestSearchServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"answer": "recovered"})
	}))
	defer srv.Close()

	cfg := resilience.DefaultRetryConfig()
	cfg.InitialDelay = 0
	client := NewLinkupClient("k", WithBaseURL(srv.URL), WithRetry(cfg))

	answer, err := client.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if answer != "recovered" || calls.Load() != 3 {
		t.Fatalf("answer %q after %d calls", answer, calls.Load())
	}
}

func TestSearchClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := resilience.DefaultRetryConfig()
	cfg.InitialDelay = 0
	client := NewLinkupClient("k", WithBaseURL(srv.URL), WithRetry(cfg))

	if _, err := client.Search(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls.Load())
	}
}

func TestToolWithoutAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without an api key")
	}))
	defer srv.Close()

	tl := NewLinkupClient("", WithBaseURL(srv.URL)).Tool()
	if tl.Name() != "web_search" {
		t.Fatalf("tool name %q", tl.Name())
	}
	out, err := tl.Call(context.Background(), "anything")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if out != "Error: Web search not available (LINKUP_API_KEY not set)" {
		t.Fatalf("output %v", out)
	}
}
