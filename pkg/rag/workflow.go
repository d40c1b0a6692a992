// Package rag implements the document retrieval workflow behind the
// rag tool: ingest files into a vector collection, retrieve the chunks
// nearest a question, and synthesize a cited answer.
package rag

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jverdu/emissary/pkg/core"
	"github.com/jverdu/emissary/pkg/errors"
	"github.com/jverdu/emissary/pkg/llm"
	"github.com/jverdu/emissary/pkg/memory"
)

// noResultsAnswer is returned when nothing in the collection clears the
// score threshold.
const noResultsAnswer = "No relevant information found in the document collection."

var ingestExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".json": true,
	".csv":  true,
	".yaml": true,
	".yml":  true,
	".go":   true,
	".py":   true,
}

// Workflow ties a vector store, an embedder and a completion engine
// into the ingest/query pipeline.
type Workflow struct {
	store      memory.VectorStore
	embedder   memory.Embedder
	provider   llm.Provider
	collection string
	model      string
	topK       int
	threshold  float32
	chunkSize  int
	logger     *slog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithCollection sets the vector collection name.
func WithCollection(name string) Option {
	return func(w *Workflow) { w.collection = name }
}

// WithModel sets the synthesis model.
func WithModel(model string) Option {
	return func(w *Workflow) { w.model = model }
}

// WithTopK sets how many chunks retrieval returns.
func WithTopK(k int) Option {
	return func(w *Workflow) {
		if k > 0 {
			w.topK = k
		}
	}
}

// WithScoreThreshold sets the minimum similarity for a chunk to count.
func WithScoreThreshold(threshold float32) Option {
	return func(w *Workflow) { w.threshold = threshold }
}

// WithChunkSize sets the approximate chunk size in characters.
func WithChunkSize(size int) Option {
	return func(w *Workflow) {
		if size > 0 {
			w.chunkSize = size
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New builds a workflow with top-3 retrieval over the documents
// collection by default.
func New(store memory.VectorStore, embedder memory.Embedder, provider llm.Provider, opts ...Option) *Workflow {
	w := &Workflow{
		store:      store,
		embedder:   embedder,
		provider:   provider,
		collection: "documents",
		topK:       3,
		threshold:  0.3,
		chunkSize:  512,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// IngestDirectory walks dir recursively, chunks every supported file,
// embeds each chunk and upserts it. Returns the number of chunks stored.
func (w *Workflow) IngestDirectory(ctx context.Context, dir string) (int, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ingestExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, errors.New(errors.CodeInvalidInput, fmt.Sprintf("walk %s", dir), err)
	}

	total := 0
	created := false
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return total, errors.New(errors.CodeInternal, fmt.Sprintf("read %s", path), err)
		}
		n, err := w.ingestText(ctx, filepath.Base(path), string(data), &created)
		if err != nil {
			return total, err
		}
		total += n
	}
	w.logger.InfoContext(ctx, "ingest finished", "files", len(files), "chunks", total)
	return total, nil
}

func (w *Workflow) ingestText(ctx context.Context, source, text string, created *bool) (int, error) {
	chunks := splitChunks(text, w.chunkSize)
	var points []memory.Point
	for _, chunk := range chunks {
		vec, err := w.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, errors.New(errors.CodeLLMError, "embed chunk", err)
		}
		if !*created {
			if err := w.store.CreateCollection(ctx, w.collection, uint64(len(vec))); err != nil {
				return 0, errors.New(errors.CodeInternal, "create collection", err)
			}
			*created = true
		}
		points = append(points, memory.Point{
			ID:     uuid.NewString(),
			Vector: vec,
			Payload: map[string]any{
				"text":   chunk,
				"source": source,
			},
		})
	}
	if len(points) == 0 {
		return 0, nil
	}
	if err := w.store.Upsert(ctx, w.collection, points); err != nil {
		return 0, errors.New(errors.CodeInternal, "upsert chunks", err)
	}
	return len(points), nil
}

// Query retrieves the nearest chunks and synthesizes a cited answer.
func (w *Workflow) Query(ctx context.Context, question string) (string, error) {
	vec, err := w.embedder.Embed(ctx, question)
	if err != nil {
		return "", errors.New(errors.CodeLLMError, "embed query", err)
	}

	hits, err := w.store.Search(ctx, w.collection, vec, w.topK, w.threshold)
	if err != nil {
		return "", errors.New(errors.CodeInternal, "vector search", err)
	}
	w.logger.DebugContext(ctx, "retrieved chunks", "count", len(hits))
	if len(hits) == 0 {
		return noResultsAnswer, nil
	}

	var contextParts []string
	sources := map[string]bool{}
	for _, hit := range hits {
		text, _ := hit.Point.Payload["text"].(string)
		contextParts = append(contextParts, text)
		if source, _ := hit.Point.Payload["source"].(string); source != "" {
			sources[source] = true
		}
	}

	prompt := fmt.Sprintf(`Answer the question using only the context below.

CONTEXT:
%s

QUESTION: %s

ANSWER:`, strings.Join(contextParts, "\n---\n"), question)

	resp, err := w.provider.Complete(ctx, llm.CompletionRequest{Model: w.model, Prompt: prompt})
	if err != nil {
		return "", errors.New(errors.CodeLLMError, "synthesis completion failed", err)
	}
	return resp.Content + formatCitations(sources), nil
}

// Tool exposes the workflow as the rag tool.
func (w *Workflow) Tool() core.Tool {
	return core.NewTool("rag", func(ctx context.Context, query string) (string, error) {
		return w.Query(ctx, query)
	})
}

func formatCitations(sources map[string]bool) string {
	if len(sources) == 0 {
		return ""
	}
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("\n\nSources:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// splitChunks breaks text on blank lines, merging paragraphs until the
// chunk would exceed maxLen. A single oversized paragraph stays whole.
func splitChunks(text string, maxLen int) []string {
	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p)+2 > maxLen {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
