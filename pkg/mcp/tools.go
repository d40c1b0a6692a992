package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/orchestrator"
)

// QueryTool is a single-query tool like web_search or rag.
type QueryTool interface {
	Name() string
	Call(ctx context.Context, input any) (any, error)
}

// RegisterQueryTool exposes a query tool directly over MCP, alongside
// its availability to spawned agents.
func (s *Server) RegisterQueryTool(t QueryTool, description string) {
	def := mcpgo.NewTool(t.Name(),
		mcpgo.WithDescription(description),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("The query to run"),
		),
	)
	s.RegisterTool(def, func(ctx context.Context, args map[string]any) (string, error) {
		query, _ := args["query"].(string)
		out, err := t.Call(ctx, query)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(out), nil
	})
}

// RegisterSpawnAgent exposes the orchestrator as the spawn_agent tool.
func (s *Server) RegisterSpawnAgent(orch *orchestrator.Orchestrator) {
	def := mcpgo.NewTool("spawn_agent",
		mcpgo.WithDescription("Spawn a specialized sub-agent to handle complex tasks autonomously. The sub-agent works independently and returns a comprehensive report."),
		mcpgo.WithString("task",
			mcpgo.Required(),
			mcpgo.Description("The task description for the agent to complete"),
		),
		mcpgo.WithString("agent_type",
			mcpgo.Description("Type of agent to spawn: research (web search + analysis), document (document queries + analysis), analyst (pure reasoning), general (all capabilities)"),
		),
		mcpgo.WithString("context",
			mcpgo.Description("Optional context, data, or code to provide to the agent"),
		),
	)
	s.RegisterTool(def, func(ctx context.Context, args map[string]any) (string, error) {
		task, _ := args["task"].(string)
		agentType, _ := args["agent_type"].(string)
		if agentType == "" {
			agentType = "general"
		}
		callerContext, _ := args["context"].(string)

		result := orch.Spawn(ctx, agentType, task, callerContext)
		return FormatRunResult(result), nil
	})
}

// FormatRunResult renders a run as the markdown report shape served to
// MCP clients.
func FormatRunResult(result core.RunResult) string {
	status := "❌ Failed"
	if result.Success {
		status = "✅ Success"
	}
	parts := []string{
		fmt.Sprintf("## Agent Report (%s)", strings.ToUpper(result.AgentType)),
		fmt.Sprintf("**Status**: %s", status),
	}

	if calls := result.ToolCallsMade(); len(calls) > 0 {
		parts = append(parts, fmt.Sprintf("**Tools Used**: %d", len(calls)))
		for _, call := range calls {
			parts = append(parts, fmt.Sprintf("  - %s", call))
		}
	}

	parts = append(parts, "", "### Report", result.Report)
	return strings.Join(parts, "\n")
}
