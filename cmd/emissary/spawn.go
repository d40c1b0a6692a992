package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jverdu/emissary/pkg/config"
	"github.com/jverdu/emissary/pkg/mcp"
)

// spawnArgs is one parsed spawn invocation.
type spawnArgs struct {
	AgentType     string
	Task          string
	CallerContext string
}

func runSpawn(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	parsed, err := parseSpawnArgs(args)
	if err != nil {
		fatal(err)
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer rt.shutdown(context.Background())

	result := rt.orch.Spawn(ctx, parsed.AgentType, parsed.Task, parsed.CallerContext)
	if global.JSON {
		printJSON(result)
		return
	}
	fmt.Println(mcp.FormatRunResult(result))
}

// parseSpawnArgs accepts --context before or after the two positional
// arguments; stdlib flag stops at the first positional, so trailing
// flags need a second parse over the remainder.
func parseSpawnArgs(args []string) (spawnArgs, error) {
	cmd := flag.NewFlagSet("spawn", flag.ContinueOnError)
	callerContext := cmd.String("context", "", "Optional context passed to the agent")
	if err := cmd.Parse(args); err != nil {
		return spawnArgs{}, err
	}
	if cmd.NArg() < 2 {
		return spawnArgs{}, fmt.Errorf("usage: emissary spawn <agent_type> <task> [--context <text>]")
	}
	agentType := cmd.Arg(0)
	task := cmd.Arg(1)
	if err := cmd.Parse(cmd.Args()[2:]); err != nil {
		return spawnArgs{}, err
	}
	if cmd.NArg() > 0 {
		return spawnArgs{}, fmt.Errorf("unexpected args: %v", cmd.Args())
	}
	return spawnArgs{
		AgentType:     agentType,
		Task:          task,
		CallerContext: *callerContext,
	}, nil
}
