package subagent

import (
	"context"
	"fmt"
	"strings"

	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/llm"
)

// noGatheredInfo is the synthesis placeholder for an empty plan.
const noGatheredInfo = "No additional information gathered."

// Synthesizer combines the role template, task, caller context and
// gathered tool output into one final completion request. The engine's
// answer is the report, verbatim: no post-processing, no retries here.
type Synthesizer struct {
	provider llm.Provider
	model    string
}

// NewSynthesizer creates a synthesizer on the given engine.
func NewSynthesizer(provider llm.Provider, model string) *Synthesizer {
	return &Synthesizer{provider: provider, model: model}
}

// Synthesize produces the final report text.
func (s *Synthesizer) Synthesize(ctx context.Context, template, task, callerContext string, gathered []string) (string, error) {
	info := noGatheredInfo
	if len(gathered) > 0 {
		info = strings.Join(gathered, "\n---\n")
	}
	if callerContext != "" {
		info = fmt.Sprintf("PROVIDED CONTEXT:\n%s\n\nGATHERED INFORMATION:\n%s", callerContext, info)
	}

	prompt := fmt.Sprintf(`%s

TASK: %s

INFORMATION GATHERED:
%s

Based on all available information, provide your final report:`, template, task, info)

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{Model: s.model, Prompt: prompt})
	if err != nil {
		return "", errors.New(errors.CodeLLMError, "synthesis completion failed", err)
	}
	return resp.Content, nil
}
