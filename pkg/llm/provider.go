// Package llm adapts completion engines behind a single narrow contract:
// given a prompt, return generated text. The orchestration core treats the
// engine as opaque; retries and timeouts live in the adapter, never above.
package llm

import "context"

// CompletionRequest encapsulates one completion call.
type CompletionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
}

// CompletionResponse is the engine's output.
type CompletionResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider is the completion engine adapter. Complete may suspend; it is
// treated as always eventually returning or erroring.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
