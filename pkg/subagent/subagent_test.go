package subagent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jverdu/emissary/pkg/capability"
	"github.com/jverdu/emissary/pkg/core"
	emtesting "github.com/jverdu/emissary/pkg/testing"
	"github.com/jverdu/emissary/pkg/tool"
)

func entryFor(t *testing.T, role core.Role) capability.Entry {
	t.Helper()
	entry, ok := capability.Default().EntryFor(role)
	if !ok {
		t.Fatalf("no capability entry for %s", role)
	}
	return entry
}

func TestRunAnalystSkipsPlanning(t *testing.T) {
	provider := emtesting.NewScenarioProvider().AddResponse("the analysis")
	agent := New(entryFor(t, core.RoleAnalyst), provider, tool.FromTools())

	res := agent.Run(context.Background(), "compare A and B", "")
	if !res.Success {
		t.Fatalf("run failed: %s", res.Report)
	}
	if res.Report != "the analysis" {
		t.Fatalf("report %q", res.Report)
	}
	if len(res.ToolCalls) != 0 {
		t.Fatalf("analyst must not record tool calls: %+v", res.ToolCalls)
	}
	if provider.CallCount() != 1 {
		t.Fatalf("expected exactly one completion, got %d", provider.CallCount())
	}
	if strings.Contains(provider.LastPrompt(), "JSON array") {
		t.Fatal("analyst prompt must not be a planning prompt")
	}
}

func TestRunEmptyRegistrySkipsPlanning(t *testing.T) {
	provider := emtesting.NewScenarioProvider().AddResponse("direct answer")
	agent := New(entryFor(t, core.RoleResearch), provider, tool.FromTools())

	res := agent.Run(context.Background(), "task", "")
	if !res.Success || res.Report != "direct answer" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if provider.CallCount() != 1 {
		t.Fatalf("expected one completion, got %d", provider.CallCount())
	}
}

func TestRunDirectPromptShape(t *testing.T) {
	provider := emtesting.NewScenarioProvider().AddResponse("ok")
	agent := New(entryFor(t, core.RoleAnalyst), provider, tool.FromTools())

	agent.Run(context.Background(), "weigh the options", "prior findings")
	prompt := provider.LastPrompt()
	for _, want := range []string{
		"SYSTEM: ",
		"CONTEXT:\nprior findings",
		"TASK: weigh the options",
		"Please provide your response:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("direct prompt missing %q", want)
		}
	}
}

func TestRunPlanExecuteSynthesize(t *testing.T) {
	provider := emtesting.NewScenarioProvider().
		AddResponse(`[{"tool":"web_search","query":"go 1.25 changes"}]`).
		AddResponse("final report text")
	reg := tool.FromTools(core.NewTool("web_search", func(ctx context.Context, query string) (string, error) {
		return "release notes", nil
	}))
	agent := New(entryFor(t, core.RoleResearch), provider, reg)

	res := agent.Run(context.Background(), "summarize go 1.25", "")
	if !res.Success {
		t.Fatalf("run failed: %s", res.Report)
	}
	if res.Report != "final report text" {
		t.Fatalf("report %q", res.Report)
	}
	if len(res.ToolCalls) != 1 || res.ToolCalls[0].Tool != "web_search" {
		t.Fatalf("unexpected call log: %+v", res.ToolCalls)
	}
	if res.AgentType != "research" {
		t.Fatalf("agentType %q", res.AgentType)
	}

	synthPrompt := provider.LastPrompt()
	if !strings.Contains(synthPrompt, "[web_search] Query: go 1.25 changes") {
		t.Fatalf("gathered info missing from synthesis prompt: %q", synthPrompt)
	}
}

func TestRunEmptyPlanSynthesizesWithPlaceholder(t *testing.T) {
	provider := emtesting.NewScenarioProvider().
		AddResponse("[]").
		AddResponse("report without tools")
	reg := tool.FromTools(core.NewTool("web_search", func(ctx context.Context, query string) (string, error) {
		t.Fatal("tool must not run on an empty plan")
		return "", nil
	}))
	agent := New(entryFor(t, core.RoleResearch), provider, reg)

	res := agent.Run(context.Background(), "task", "")
	if !res.Success {
		t.Fatalf("run failed: %s", res.Report)
	}
	if !strings.Contains(provider.LastPrompt(), "No additional information gathered.") {
		t.Fatal("synthesis prompt missing empty-plan placeholder")
	}
}

func TestRunToolFailureProducesFailedResult(t *testing.T) {
	provider := emtesting.NewScenarioProvider().
		AddResponse(`[{"tool":"web_search","query":"q"}]`)
	reg := tool.FromTools(core.NewTool("web_search", func(ctx context.Context, query string) (string, error) {
		return "", fmt.Errorf("network down")
	}))
	agent := New(entryFor(t, core.RoleResearch), provider, reg)

	res := agent.Run(context.Background(), "task", "")
	if res.Success {
		t.Fatal("expected failed result")
	}
	if !strings.HasPrefix(res.Report, "Agent encountered an error: ") {
		t.Fatalf("report %q", res.Report)
	}
	if len(res.ToolCalls) != 1 {
		t.Fatalf("failing call must be preserved in the log: %+v", res.ToolCalls)
	}
	if res.AgentType != "research" {
		t.Fatalf("agentType %q", res.AgentType)
	}
}

func TestRunSynthesisFailurePreservesLog(t *testing.T) {
	provider := emtesting.NewScenarioProvider().
		AddResponse(`[{"tool":"rag","query":"q"}]`).
		AddErrorResponse(fmt.Errorf("model unloaded"))
	reg := tool.FromTools(core.NewTool("rag", func(ctx context.Context, query string) (string, error) {
		return "chunk", nil
	}))
	agent := New(entryFor(t, core.RoleDocument), provider, reg)

	res := agent.Run(context.Background(), "task", "")
	if res.Success {
		t.Fatal("expected failed result")
	}
	if len(res.ToolCalls) != 1 || res.ToolCalls[0].Tool != "rag" {
		t.Fatalf("call log lost on synthesis failure: %+v", res.ToolCalls)
	}
}

func TestRunCallerContextReachesSynthesis(t *testing.T) {
	provider := emtesting.NewScenarioProvider().
		AddResponse("[]").
		AddResponse("done")
	reg := tool.FromTools(core.NewTool("web_search", func(ctx context.Context, query string) (string, error) {
		return "", nil
	}))
	agent := New(entryFor(t, core.RoleResearch), provider, reg)

	agent.Run(context.Background(), "task", "upstream summary")
	if !strings.Contains(provider.LastPrompt(), "PROVIDED CONTEXT:\nupstream summary") {
		t.Fatal("caller context missing from synthesis prompt")
	}
}
