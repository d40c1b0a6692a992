// Package orchestrator is the single entry point for spawning sub-agent
// runs. It validates the requested role, narrows the tool registry to
// the role's capabilities, drives the run, and guarantees a RunResult on
// every path, panics included.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jverdu/emissary/pkg/audit"
	"github.com/jverdu/emissary/pkg/capability"
	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/llm"
	"github.com/jverdu/emissary/pkg/subagent"
	"github.com/jverdu/emissary/pkg/telemetry"
	"github.com/jverdu/emissary/pkg/tool"
)

// Orchestrator spawns sub-agents over a shared engine and tool registry.
// It is safe for concurrent Spawn calls; runs share nothing but the
// registry and the capability table, both immutable.
type Orchestrator struct {
	provider llm.Provider
	registry *tool.Registry
	table    *capability.Table
	model    string
	logger   *slog.Logger
	metrics  *telemetry.RunMetrics
	store    audit.RunStore
	tracer   trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCapabilityTable replaces the default role table.
func WithCapabilityTable(table *capability.Table) Option {
	return func(o *Orchestrator) {
		if table != nil {
			o.table = table
		}
	}
}

// WithModel sets the engine model for all runs.
func WithModel(model string) Option {
	return func(o *Orchestrator) { o.model = model }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics enables run metrics.
func WithMetrics(metrics *telemetry.RunMetrics) Option {
	return func(o *Orchestrator) { o.metrics = metrics }
}

// WithAuditStore enables the durable run trail. Store failures are
// logged and never fail the run they describe.
func WithAuditStore(store audit.RunStore) Option {
	return func(o *Orchestrator) { o.store = store }
}

// New creates an orchestrator with the default capability table.
func New(provider llm.Provider, registry *tool.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		registry: registry,
		table:    capability.Default(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("emissary/orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Spawn runs one task under the named role and always returns a
// RunResult. An unrecognized role yields a failed result naming the
// valid roles, with the raw input echoed as the agent type and no
// engine traffic at all.
func (o *Orchestrator) Spawn(ctx context.Context, roleStr, task, callerContext string) (result core.RunResult) {
	runID := uuid.NewString()
	started := time.Now()

	ctx, span := o.tracer.Start(ctx, "Orchestrator.Spawn",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("agent.role", roleStr),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := errors.New(errors.CodeInternal, fmt.Sprintf("panic during run: %v", r), nil)
			o.logger.ErrorContext(ctx, "run panicked", "run_id", runID, "role", roleStr, "panic", r)
			result = core.Failure(roleStr, err, result.ToolCalls)
			o.finish(ctx, runID, roleStr, task, started, result)
		}
	}()

	role, err := core.ParseRole(roleStr)
	if err != nil {
		o.logger.WarnContext(ctx, "spawn rejected", "run_id", runID, "role", roleStr)
		o.metrics.RecordRejection(ctx, "unknown_role")
		return core.RunResult{
			Success:   false,
			Report:    fmt.Sprintf("Unknown agent type: %s. Available types: %v", roleStr, core.Roles()),
			AgentType: roleStr,
		}
	}

	entry, ok := o.table.EntryFor(role)
	if !ok {
		err := errors.New(errors.CodeNotFound, fmt.Sprintf("no capability entry for role %s", role), nil)
		result = core.Failure(role.String(), err, nil)
		o.finish(ctx, runID, role.String(), task, started, result)
		return result
	}

	agent := subagent.New(entry, o.provider, o.registry.Filter(entry.AllowedTools),
		subagent.WithModel(o.model),
		subagent.WithLogger(o.logger),
	)

	o.logger.InfoContext(ctx, "spawning sub-agent", "run_id", runID, "role", role.String())
	result = agent.Run(ctx, task, callerContext)
	o.finish(ctx, runID, role.String(), task, started, result)
	return result
}

// finish records metrics and the audit trail for a terminated run.
func (o *Orchestrator) finish(ctx context.Context, runID, role, task string, started time.Time, res core.RunResult) {
	elapsed := time.Since(started)
	o.metrics.RecordRun(ctx, role, res.Success, len(res.ToolCalls), elapsed)

	if o.store == nil {
		return
	}
	rec := audit.RunRecord{
		ID:         runID,
		Role:       role,
		Task:       task,
		Success:    res.Success,
		Report:     res.Report,
		ToolCalls:  res.ToolCallsMade(),
		StartedAt:  started,
		FinishedAt: started.Add(elapsed),
	}
	if err := o.store.Record(ctx, rec); err != nil {
		o.logger.WarnContext(ctx, "audit record failed", "run_id", runID, "error", err)
	}
}
