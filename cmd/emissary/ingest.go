package main

import (
	"context"
	"fmt"

	"github.com/jverdu/emissary/pkg/config"
)

func runIngest(ctx context.Context, cfg *config.Config, args []string) {
	if len(args) != 1 {
		fatal(fmt.Errorf("usage: emissary ingest <dir>"))
	}
	if !cfg.Memory.Enabled {
		fatal(fmt.Errorf("document memory is disabled; set memory.enabled to true"))
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer rt.shutdown(context.Background())

	chunks, err := rt.rag.IngestDirectory(ctx, args[0])
	if err != nil {
		fatal(err)
	}
	fmt.Printf("ingested %d chunks from %s\n", chunks, args[0])
}
