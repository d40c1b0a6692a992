package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jverdu/emissary/pkg/audit"
	"github.com/jverdu/emissary/pkg/capability"
	"github.com/jverdu/emissary/pkg/config"
	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/llm"
	"github.com/jverdu/emissary/pkg/mcp"
	"github.com/jverdu/emissary/pkg/memory"
	ollamaembed "github.com/jverdu/emissary/pkg/memory/ollama"
	"github.com/jverdu/emissary/pkg/memory/qdrant"
	"github.com/jverdu/emissary/pkg/orchestrator"
	"github.com/jverdu/emissary/pkg/rag"
	"github.com/jverdu/emissary/pkg/resilience"
	"github.com/jverdu/emissary/pkg/search"
	"github.com/jverdu/emissary/pkg/telemetry"
	"github.com/jverdu/emissary/pkg/tool"
)

// runtime holds the wired service graph shared by serve and spawn.
type runtime struct {
	orch     *orchestrator.Orchestrator
	rag      *rag.Workflow
	search   *search.LinkupClient
	shutdown func(context.Context)
}

func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	telShutdown, err := telemetry.InitWithConfig("emissary", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	provider := llm.NewOllama(cfg.LLM.BaseURL, llm.WithRetry(resilience.DefaultRetryConfig()))

	apiKey := cfg.Search.LinkupAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("LINKUP_API_KEY")
	}
	searchClient := search.NewLinkupClient(apiKey,
		search.WithBaseURL(cfg.Search.LinkupURL),
		search.WithRetry(resilience.DefaultRetryConfig()),
	)
	tools := []core.Tool{searchClient.Tool()}

	var ragWorkflow *rag.Workflow
	if cfg.Memory.Enabled {
		store, err := qdrant.New(cfg.Memory.QdrantAddr)
		if err != nil {
			return nil, fmt.Errorf("connect qdrant: %w", err)
		}
		embedder := ollamaembed.NewEmbedder(cfg.Memory.EmbedderBaseURL, cfg.Memory.EmbedderModel)
		ragWorkflow = newRAGWorkflow(cfg, store, embedder, provider)
		tools = append(tools, ragWorkflow.Tool())
	}

	table := capability.Default()
	if cfg.Roles.ManifestPath != "" {
		table, err = capability.Load(cfg.Roles.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("load role manifest: %w", err)
		}
	}

	metrics, err := telemetry.NewRunMetrics()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithCapabilityTable(table),
		orchestrator.WithModel(cfg.LLM.Model),
		orchestrator.WithLogger(logger),
		orchestrator.WithMetrics(metrics),
	}

	var store *audit.SQLiteRunStore
	if cfg.Audit.Enabled {
		store, err = audit.Open(cfg.Audit.Path)
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		opts = append(opts, orchestrator.WithAuditStore(store))
	}

	rt := &runtime{
		orch:   orchestrator.New(provider, tool.FromTools(tools...), opts...),
		rag:    ragWorkflow,
		search: searchClient,
		shutdown: func(ctx context.Context) {
			if store != nil {
				store.Close()
			}
			_ = telShutdown(ctx)
		},
	}
	return rt, nil
}

func newRAGWorkflow(cfg *config.Config, store memory.VectorStore, embedder memory.Embedder, provider llm.Provider) *rag.Workflow {
	return rag.New(store, embedder, provider,
		rag.WithCollection(cfg.Memory.Collection),
		rag.WithModel(cfg.LLM.Model),
		rag.WithTopK(cfg.Memory.TopK),
		rag.WithScoreThreshold(cfg.Memory.ScoreThreshold),
	)
}

func runServe(ctx context.Context, cfg *config.Config) {
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer rt.shutdown(context.Background())

	srv := mcp.NewServer("emissary", version)
	srv.RegisterSpawnAgent(rt.orch)
	srv.RegisterQueryTool(rt.search.Tool(), "Search the web for the given query.")
	if rt.rag != nil {
		srv.RegisterQueryTool(rt.rag.Tool(), "Answer a question from the ingested document collection.")
	}

	if err := srv.ServeStdio(); err != nil {
		fatal(err)
	}
}
