package subagent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/tool"
)

func echoRegistry(names ...string) *tool.Registry {
	tools := make([]core.Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, core.NewTool(name, func(ctx context.Context, query string) (string, error) {
			return "echo:" + query, nil
		}))
	}
	return tool.FromTools(tools...)
}

func TestExecuteSequentialOrder(t *testing.T) {
	var seen []string
	reg := tool.FromTools(core.NewTool("rag", func(ctx context.Context, query string) (string, error) {
		seen = append(seen, query)
		return "ok", nil
	}))

	plan := []core.PlanItem{
		{Tool: "rag", Query: "first"},
		{Tool: "rag", Query: "second"},
		{Tool: "rag", Query: "third"},
	}
	gathered, log, err := NewExecutor(reg).Execute(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if want := "first,second,third"; strings.Join(seen, ",") != want {
		t.Fatalf("calls out of order: %v", seen)
	}
	if len(gathered) != 3 || len(log) != 3 {
		t.Fatalf("gathered=%d log=%d, want 3 each", len(gathered), len(log))
	}
	for i, rec := range log {
		if rec.Ordinal != i {
			t.Errorf("record %d has ordinal %d", i, rec.Ordinal)
		}
	}
}

func TestExecuteCapsAtThreeCalls(t *testing.T) {
	calls := 0
	reg := tool.FromTools(core.NewTool("rag", func(ctx context.Context, query string) (string, error) {
		calls++
		return "ok", nil
	}))

	plan := make([]core.PlanItem, 5)
	for i := range plan {
		plan[i] = core.PlanItem{Tool: "rag", Query: fmt.Sprintf("q%d", i)}
	}
	_, log, err := NewExecutor(reg).Execute(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 invocations, got %d", calls)
	}
	if len(log) != 3 {
		t.Fatalf("expected 3 records, got %d", len(log))
	}
}

func TestExecuteGatheredBlockFormat(t *testing.T) {
	gathered, _, err := NewExecutor(echoRegistry("web_search")).Execute(context.Background(),
		[]core.PlanItem{{Tool: "web_search", Query: "go generics"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "[web_search] Query: go generics\nResult: echo:go generics\n"
	if gathered[0] != want {
		t.Fatalf("gathered block %q, want %q", gathered[0], want)
	}
}

func TestExecuteUnregisteredToolSoftFails(t *testing.T) {
	gathered, log, err := NewExecutor(echoRegistry("rag")).Execute(context.Background(),
		[]core.PlanItem{{Tool: "web_search", Query: "q"}})
	if err != nil {
		t.Fatalf("unregistered tool must not fail the run: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("miss must still be recorded, got %d records", len(log))
	}
	if !strings.Contains(gathered[0], "Tool 'web_search' not available to this agent") {
		t.Fatalf("missing unavailability text: %q", gathered[0])
	}
}

func TestExecuteToolErrorIsFatalWithPartialLog(t *testing.T) {
	reg := tool.FromTools(
		core.NewTool("rag", func(ctx context.Context, query string) (string, error) {
			return "fine", nil
		}),
		core.NewTool("web_search", func(ctx context.Context, query string) (string, error) {
			return "", fmt.Errorf("upstream 503")
		}),
	)

	plan := []core.PlanItem{
		{Tool: "rag", Query: "a"},
		{Tool: "web_search", Query: "b"},
		{Tool: "rag", Query: "never"},
	}
	gathered, log, err := NewExecutor(reg).Execute(context.Background(), plan)
	if err == nil {
		t.Fatal("expected tool failure to propagate")
	}
	if len(gathered) != 1 {
		t.Fatalf("expected one gathered block before failure, got %d", len(gathered))
	}
	// The failing call itself is on the record.
	if len(log) != 2 || log[1].Tool != "web_search" {
		t.Fatalf("unexpected log: %+v", log)
	}
}

func TestExecuteCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, log, err := NewExecutor(echoRegistry("rag")).Execute(ctx,
		[]core.PlanItem{{Tool: "rag", Query: "q"}})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if len(log) != 0 {
		t.Fatalf("no call should be recorded after cancellation, got %d", len(log))
	}
}
