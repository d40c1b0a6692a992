package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/resilience"
)

// OllamaProvider implements Provider against Ollama's generate endpoint.
type OllamaProvider struct {
	baseURL string
	client  *http.Client
	retry   *resilience.RetryConfig
}

// OllamaOption configures the provider.
type OllamaOption func(*OllamaProvider)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) OllamaOption {
	return func(p *OllamaProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithRetry enables retry with backoff around each completion call.
func WithRetry(cfg resilience.RetryConfig) OllamaOption {
	return func(p *OllamaProvider) {
		p.retry = &cfg
	}
}

// NewOllama creates an OllamaProvider. An empty baseURL uses the local
// default.
func NewOllama(baseURL string, opts ...OllamaOption) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	p := &OllamaProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	EvalCount       int    `json:"eval_count"`
	PromptEvalCount int    `json:"prompt_eval_count"`
}

// Complete sends a generate request to Ollama and maps the response.
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.retry == nil {
		return p.complete(ctx, req)
	}
	var resp *CompletionResponse
	err := p.retry.Do(ctx, func() error {
		var callErr error
		resp, callErr = p.complete(ctx, req)
		return callErr
	})
	return resp, err
}

func (p *OllamaProvider) complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	oReq := ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
	}
	if req.Temperature != 0 {
		oReq.Options = map[string]any{"temperature": req.Temperature}
	}

	body, err := json.Marshal(oReq)
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "marshal ollama request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "create http request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "ollama api call failed", err).WithRecoverable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeLLMError, fmt.Sprintf("ollama api returned status %d", resp.StatusCode), nil).
			WithRecoverable(resp.StatusCode >= 500)
	}

	var oResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, errors.New(errors.CodeLLMError, "decode ollama response", err)
	}

	return &CompletionResponse{
		Content: oResp.Response,
		Usage: Usage{
			PromptTokens:     oResp.PromptEvalCount,
			CompletionTokens: oResp.EvalCount,
			TotalTokens:      oResp.PromptEvalCount + oResp.EvalCount,
		},
	}, nil
}

var _ Provider = (*OllamaProvider)(nil)
