package subagent

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/tool"
)

// Executor invokes planned tool calls against a capability-filtered
// registry, strictly in plan order and never concurrently: the output
// ordering in the final report must match the plan.
type Executor struct {
	registry *tool.Registry
	tracer   trace.Tracer
}

// NewExecutor creates an executor over the filtered registry.
func NewExecutor(registry *tool.Registry) *Executor {
	return &Executor{
		registry: registry,
		tracer:   otel.Tracer("emissary/subagent"),
	}
}

// Execute runs at most three plan items sequentially. Every attempted
// call is recorded before invocation, so the log holds the failing call
// too. A missing registry entry yields error text in the gathered info
// rather than failing the run; a tool invocation error is fatal and
// returns alongside the partial log.
func (e *Executor) Execute(ctx context.Context, plan []core.PlanItem) ([]string, []core.ToolCallRecord, error) {
	var gathered []string
	var log []core.ToolCallRecord

	if len(plan) > maxPlanItems {
		plan = plan[:maxPlanItems]
	}

	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return gathered, log, errors.New(errors.CodeTimeout, "run canceled before tool call", err)
		}

		log = append(log, core.NewToolCallRecord(item.Tool, item.Query, len(log)))

		result, err := e.invoke(ctx, item)
		if err != nil {
			return gathered, log, err
		}
		gathered = append(gathered, fmt.Sprintf("[%s] Query: %s\nResult: %s\n", item.Tool, item.Query, result))
	}
	return gathered, log, nil
}

func (e *Executor) invoke(ctx context.Context, item core.PlanItem) (string, error) {
	t, ok := e.registry.Lookup(item.Tool)
	if !ok {
		// Uniform "always produces output" contract: the miss becomes
		// gathered text, not a run failure.
		return fmt.Sprintf("Tool '%s' not available to this agent", item.Tool), nil
	}

	callCtx, span := e.tracer.Start(ctx, "Executor.ToolCall",
		trace.WithAttributes(
			attribute.String("tool.name", item.Tool),
			attribute.String("tool.query", item.Query),
		),
	)
	out, err := t.Call(callCtx, item.Query)
	span.End()
	if err != nil {
		return "", errors.New(errors.CodeToolFailure, fmt.Sprintf("tool %s failed", item.Tool), err)
	}
	return fmt.Sprint(out), nil
}
