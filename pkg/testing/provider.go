// Package testing provides scripted completion providers for exercising
// the orchestration core without a live engine.
package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/jverdu/emissary/pkg/llm"
)

// ScenarioProvider is a scripted mock for llm.Provider. Responses are
// returned in queue order; every request is captured for assertions.
type ScenarioProvider struct {
	mu           sync.Mutex
	responses    []ScriptedResponse
	currentIndex int
	requests     []llm.CompletionRequest
	defaultError error
	onComplete   func(req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// ScriptedResponse defines one queued response.
type ScriptedResponse struct {
	Content string
	Error   error
	Usage   llm.Usage
}

// NewScenarioProvider creates an empty scenario provider.
func NewScenarioProvider() *ScenarioProvider {
	return &ScenarioProvider{}
}

// AddResponse queues a content response.
func (p *ScenarioProvider) AddResponse(content string) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, ScriptedResponse{Content: content})
	return p
}

// AddErrorResponse queues an error response.
func (p *ScenarioProvider) AddErrorResponse(err error) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, ScriptedResponse{Error: err})
	return p
}

// WithDefaultError sets the error returned when the queue runs dry.
func (p *ScenarioProvider) WithDefaultError(err error) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultError = err
	return p
}

// WithCompleteFunc installs a custom handler, bypassing the queue.
func (p *ScenarioProvider) WithCompleteFunc(fn func(req llm.CompletionRequest) (*llm.CompletionResponse, error)) *ScenarioProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onComplete = fn
	return p
}

// Complete implements llm.Provider.
func (p *ScenarioProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	if p.onComplete != nil {
		return p.onComplete(req)
	}

	if p.currentIndex >= len(p.responses) {
		if p.defaultError != nil {
			return nil, p.defaultError
		}
		return nil, fmt.Errorf("no more scripted responses (call %d)", p.currentIndex+1)
	}

	resp := p.responses[p.currentIndex]
	p.currentIndex++

	if resp.Error != nil {
		return nil, resp.Error
	}
	return &llm.CompletionResponse{Content: resp.Content, Usage: resp.Usage}, nil
}

// Requests returns all captured requests.
func (p *ScenarioProvider) Requests() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// LastPrompt returns the most recent request's prompt, or "".
func (p *ScenarioProvider) LastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return ""
	}
	return p.requests[len(p.requests)-1].Prompt
}

// CallCount returns the number of Complete calls made.
func (p *ScenarioProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Reset clears queue position and captured requests.
func (p *ScenarioProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentIndex = 0
	p.requests = p.requests[:0]
}

var _ llm.Provider = (*ScenarioProvider)(nil)
