// Package search provides the web_search tool over the Linkup API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/resilience"
)

const defaultBaseURL = "https://api.linkup.so/v1"

// keyMissingAnswer is tool output, not an error: an unconfigured search
// key degrades the agent's information, not the run.
const keyMissingAnswer = "Error: Web search not available (LINKUP_API_KEY not set)"

// LinkupClient performs sourced-answer searches.
type LinkupClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retry   *resilience.RetryConfig
}

// ClientOption configures a LinkupClient.
type ClientOption func(*LinkupClient)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *LinkupClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *LinkupClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRetry enables retry with backoff on recoverable failures.
func WithRetry(cfg resilience.RetryConfig) ClientOption {
	return func(c *LinkupClient) { c.retry = &cfg }
}

// NewLinkupClient creates a client. An empty apiKey is allowed; the
// tool then reports unavailability instead of searching.
func NewLinkupClient(apiKey string, opts ...ClientOption) *LinkupClient {
	c := &LinkupClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query      string `json:"q"`
	Depth      string `json:"depth"`
	OutputType string `json:"outputType"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Sources []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"sources"`
}

// Search runs a standard-depth sourced-answer query.
func (c *LinkupClient) Search(ctx context.Context, query string) (string, error) {
	if c.retry == nil {
		return c.search(ctx, query)
	}
	var answer string
	err := c.retry.Do(ctx, func() error {
		var err error
		answer, err = c.search(ctx, query)
		return err
	})
	return answer, err
}

func (c *LinkupClient) search(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(searchRequest{
		Query:      query,
		Depth:      "standard",
		OutputType: "sourcedAnswer",
	})
	if err != nil {
		return "", errors.New(errors.CodeInternal, "marshal search request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", errors.New(errors.CodeInternal, "create search request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.New(errors.CodeToolFailure, "search api call failed", err).WithRecoverable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		e := errors.New(errors.CodeToolFailure,
			fmt.Sprintf("search api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
		return "", e.WithRecoverable(resp.StatusCode >= 500)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", errors.New(errors.CodeToolFailure, "decode search response", err)
	}
	return formatAnswer(sr), nil
}

func formatAnswer(sr searchResponse) string {
	if len(sr.Sources) == 0 {
		return sr.Answer
	}
	var b strings.Builder
	b.WriteString(sr.Answer)
	b.WriteString("\n\nSources:\n")
	for _, s := range sr.Sources {
		fmt.Fprintf(&b, "- %s (%s)\n", s.Name, s.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Tool exposes the client as the web_search tool. Without an API key
// every call answers with the unavailability text.
func (c *LinkupClient) Tool() core.Tool {
	return core.NewTool("web_search", func(ctx context.Context, query string) (string, error) {
		if c.apiKey == "" {
			return keyMissingAnswer, nil
		}
		return c.Search(ctx, query)
	})
}
