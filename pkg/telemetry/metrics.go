package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RunMetrics tracks sub-agent run outcomes. All methods are safe on a
// nil receiver so callers can skip metrics wiring entirely.
type RunMetrics struct {
	runCounter      metric.Int64Counter
	toolCallCounter metric.Int64Counter
	runDuration     metric.Float64Histogram
}

// NewRunMetrics registers the orchestration instruments on the global meter.
func NewRunMetrics() (*RunMetrics, error) {
	meter := otel.Meter("emissary/orchestrator")

	runCounter, err := meter.Int64Counter(
		"emissary.runs.total",
		metric.WithDescription("Sub-agent runs by role and outcome"),
	)
	if err != nil {
		return nil, err
	}

	toolCallCounter, err := meter.Int64Counter(
		"emissary.toolcalls.total",
		metric.WithDescription("Tool calls attempted by sub-agents, by role"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"emissary.run.duration",
		metric.WithDescription("Sub-agent run duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		runCounter:      runCounter,
		toolCallCounter: toolCallCounter,
		runDuration:     runDuration,
	}, nil
}

// RecordRun records one finished run.
func (m *RunMetrics) RecordRun(ctx context.Context, role string, success bool, toolCalls int, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	attrs := metric.WithAttributes(
		attribute.String("agent.role", role),
		attribute.String("run.outcome", outcome),
	)
	m.runCounter.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, elapsed.Seconds(), attrs)
	if toolCalls > 0 {
		m.toolCallCounter.Add(ctx, int64(toolCalls),
			metric.WithAttributes(attribute.String("agent.role", role)))
	}
}

// RecordRejection records a spawn refused before any run started, such
// as an unknown role string.
func (m *RunMetrics) RecordRejection(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.runCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("agent.role", "unknown"),
		attribute.String("run.outcome", "rejected"),
		attribute.String("reject.reason", reason),
	))
}
