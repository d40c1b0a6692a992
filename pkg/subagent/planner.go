package subagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/llm"
)

// maxPlanItems bounds a plan regardless of what the engine proposes.
const maxPlanItems = 3

// Planner asks the engine which tool calls would help with the task.
// Small local engines routinely return malformed plans, so parse failures
// resolve to a deterministic fallback instead of aborting the run.
type Planner struct {
	provider llm.Provider
	model    string
}

// NewPlanner creates a planner on the given engine.
func NewPlanner(provider llm.Provider, model string) *Planner {
	return &Planner{provider: provider, model: model}
}

const planningPromptFormat = `You are a planning assistant. Respond only with valid JSON.

Task to complete: %s

Available tools: %s

What tool calls would help gather the information needed?
Respond with a JSON array of tool calls, each with "tool" and "query" keys.
Example: [{"tool": "web_search", "query": "your search query"}]

If no tools are needed, respond with an empty array: []
Keep it to 1-3 tool calls maximum.

JSON response:`

// Plan produces an ordered list of 0-3 tool invocations restricted to
// allowedTools. Engine errors are fatal; unparseable engine output is not
// and resolves via the fallback plan.
func (p *Planner) Plan(ctx context.Context, task string, allowedTools []string) ([]core.PlanItem, error) {
	prompt := fmt.Sprintf(planningPromptFormat, task, strings.Join(allowedTools, ", "))
	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{Model: p.model, Prompt: prompt})
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "planning completion failed", err)
	}

	allowed := make(map[string]bool, len(allowedTools))
	for _, name := range allowedTools {
		allowed[name] = true
	}

	items, ok := parsePlan(resp.Content)
	if !ok {
		return fallbackPlan(task, allowed), nil
	}

	// Tools outside the allowlist are dropped silently, not errors.
	plan := make([]core.PlanItem, 0, maxPlanItems)
	for _, item := range items {
		if !allowed[item.Tool] {
			continue
		}
		plan = append(plan, item)
		if len(plan) == maxPlanItems {
			break
		}
	}
	return plan, nil
}

// parsePlan attempts a strict JSON parse of the engine output after
// removing a single wrapping fenced code block (optionally tagged json).
func parsePlan(text string) ([]core.PlanItem, bool) {
	text = stripFence(strings.TrimSpace(text))
	var items []core.PlanItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, false
	}
	return items, true
}

// stripFence unwraps engine output of the form ```json\n...\n```.
func stripFence(s string) string {
	idx := strings.Index(s, "```")
	if idx < 0 {
		return s
	}
	s = s[idx+3:]
	s = strings.TrimPrefix(s, "json")
	if end := strings.Index(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// fallbackPlan is the deterministic single-call plan used when the
// engine's plan cannot be parsed: prefer web_search, then rag, with the
// original task as query. Roles allowing neither gather nothing.
func fallbackPlan(task string, allowed map[string]bool) []core.PlanItem {
	switch {
	case allowed["web_search"]:
		return []core.PlanItem{{Tool: "web_search", Query: task}}
	case allowed["rag"]:
		return []core.PlanItem{{Tool: "rag", Query: task}}
	default:
		return nil
	}
}
