// Package subagent implements the per-run state machine: plan which tools
// to call, execute them sequentially, then synthesize a report. A run
// always terminates in a RunResult; errors anywhere transition to the
// failed state instead of escaping.
package subagent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jverdu/emissary/pkg/capability"
	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/llm"
	"github.com/jverdu/emissary/pkg/tool"
)

// state tracks where a run is in its lifecycle, for logging.
type state string

const (
	stateInit              state = "init"
	statePlanningExecuting state = "planning_executing"
	stateSynthesizing      state = "synthesizing"
	stateDirectCompletion  state = "direct_completion"
	stateDone              state = "done"
	stateFailed            state = "failed"
)

// SubAgent executes one task for one role. Instances are cheap and
// single-use; the orchestrator builds a fresh one per run with a
// capability-filtered registry view.
type SubAgent struct {
	role     core.Role
	template string
	provider llm.Provider
	model    string
	registry *tool.Registry

	planner     *Planner
	executor    *Executor
	synthesizer *Synthesizer
	logger      *slog.Logger
}

// Option configures a SubAgent.
type Option func(*SubAgent)

// WithModel sets the engine model used for every completion in the run.
func WithModel(model string) Option {
	return func(a *SubAgent) { a.model = model }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *SubAgent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds a SubAgent for the role using its capability entry and the
// already-filtered tool registry.
func New(entry capability.Entry, provider llm.Provider, registry *tool.Registry, opts ...Option) *SubAgent {
	a := &SubAgent{
		role:     entry.Role,
		template: entry.Template,
		provider: provider,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.planner = NewPlanner(a.provider, a.model)
	a.executor = NewExecutor(a.registry)
	a.synthesizer = NewSynthesizer(a.provider, a.model)
	return a
}

// Run executes the task and always returns a RunResult; errors become
// the failed shape with the partial call log preserved.
func (a *SubAgent) Run(ctx context.Context, task, callerContext string) core.RunResult {
	st := stateInit
	var log []core.ToolCallRecord

	fail := func(err error) core.RunResult {
		a.logger.ErrorContext(ctx, "subagent run failed",
			"role", a.role.String(),
			"state", string(st),
			"error", err,
			"tool_calls", len(log),
		)
		return core.Failure(a.role.String(), err, log)
	}

	// The analyst role and any role left without tools after capability
	// filtering reason directly over the prompt, no planning.
	if a.role == core.RoleAnalyst || a.registry.Len() == 0 {
		st = stateDirectCompletion
		report, err := a.completeDirect(ctx, task, callerContext)
		if err != nil {
			return fail(err)
		}
		st = stateDone
		a.logger.DebugContext(ctx, "subagent run finished", "role", a.role.String(), "state", string(st))
		return core.RunResult{Success: true, Report: report, ToolCalls: log, AgentType: a.role.String()}
	}

	st = statePlanningExecuting
	plan, err := a.planner.Plan(ctx, task, a.registry.Names())
	if err != nil {
		return fail(err)
	}

	gathered, log, err := a.executor.Execute(ctx, plan)
	if err != nil {
		return fail(err)
	}

	st = stateSynthesizing
	report, err := a.synthesizer.Synthesize(ctx, a.template, task, callerContext, gathered)
	if err != nil {
		return fail(err)
	}

	st = stateDone
	a.logger.DebugContext(ctx, "subagent run finished",
		"role", a.role.String(),
		"state", string(st),
		"tool_calls", len(log),
	)
	return core.RunResult{Success: true, Report: report, ToolCalls: log, AgentType: a.role.String()}
}

// completeDirect issues the single pure-reasoning completion.
func (a *SubAgent) completeDirect(ctx context.Context, task, callerContext string) (string, error) {
	parts := []string{fmt.Sprintf("SYSTEM: %s", a.template), ""}
	if callerContext != "" {
		parts = append(parts, fmt.Sprintf("CONTEXT:\n%s\n", callerContext))
	}
	parts = append(parts, fmt.Sprintf("TASK: %s", task))
	if a.registry.Len() > 0 {
		parts = append(parts,
			fmt.Sprintf("\nAVAILABLE TOOLS: %s", strings.Join(a.registry.Names(), ", ")),
			"Note: Tools will be used on your behalf if needed for your task.",
		)
	}
	parts = append(parts, "\nPlease provide your response:")

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model:  a.model,
		Prompt: strings.Join(parts, "\n"),
	})
	if err != nil {
		return "", errors.New(errors.CodeLLMError, "direct completion failed", err)
	}
	return resp.Content, nil
}
