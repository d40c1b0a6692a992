package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jverdu/emissary/pkg/memory"
	emtesting "github.com/jverdu/emissary/pkg/testing"
)

// hashEmbedder maps known phrases to fixed directions so retrieval is
// deterministic without a live model.
type hashEmbedder struct {
	vectors map[string][]float32
	fallbak []float32
}

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	for key, vec := range e.vectors {
		if strings.Contains(text, key) {
			return vec, nil
		}
	}
	return e.fallbak, nil
}

func newTestWorkflow(t *testing.T, embedder memory.Embedder, provider *emtesting.ScenarioProvider) (*Workflow, *memory.InMemoryStore) {
	t.Helper()
	store := memory.NewInMemoryStore()
	return New(store, embedder, provider, WithTopK(2)), store
}

func TestIngestAndQuery(t *testing.T) {
	dir := t.TempDir()
	content := "Go modules were introduced in Go 1.11.\n\nThe garbage collector is concurrent."
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}

	embedder := &hashEmbedder{
		vectors: map[string][]float32{
			"modules": {1, 0},
			"garbage": {0, 1},
		},
		fallbak: []float32{0.7, 0.7},
	}
	provider := emtesting.NewScenarioProvider().AddResponse("Modules arrived in 1.11.")
	wf, _ := newTestWorkflow(t, embedder, provider)

	// Small chunk size forces the two paragraphs apart.
	wf.chunkSize = 40
	n, err := wf.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 chunks, got %d", n)
	}

	answer, err := wf.Query(context.Background(), "when were modules added?")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(answer, "Modules arrived in 1.11.") {
		t.Fatalf("answer %q", answer)
	}
	if !strings.Contains(answer, "Sources:\n- notes.md") {
		t.Fatalf("citations missing: %q", answer)
	}

	prompt := provider.LastPrompt()
	if !strings.Contains(prompt, "Go modules were introduced") {
		t.Fatalf("retrieved chunk missing from prompt: %q", prompt)
	}
}

func TestQueryNoHits(t *testing.T) {
	embedder := &hashEmbedder{fallbak: []float32{1, 0}}
	provider := emtesting.NewScenarioProvider()
	wf, store := newTestWorkflow(t, embedder, provider)
	store.CreateCollection(context.Background(), "documents", 2)

	answer, err := wf.Query(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "No relevant information found in the document collection." {
		t.Fatalf("answer %q", answer)
	}
	if provider.CallCount() != 0 {
		t.Fatal("no synthesis call expected without hits")
	}
}

func TestToolWrapsQuery(t *testing.T) {
	embedder := &hashEmbedder{
		vectors: map[string][]float32{"topic": {1, 0}},
		fallbak: []float32{1, 0},
	}
	provider := emtesting.NewScenarioProvider().AddResponse("tool answer")
	wf, store := newTestWorkflow(t, embedder, provider)
	store.Upsert(context.Background(), "documents", []memory.Point{
		{ID: "1", Vector: []float32{1, 0}, Payload: map[string]any{"text": "about the topic", "source": "a.txt"}},
	})

	tl := wf.Tool()
	if tl.Name() != "rag" {
		t.Fatalf("tool name %q", tl.Name())
	}
	out, err := tl.Call(context.Background(), "topic question")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.(string), "tool answer") {
		t.Fatalf("output %v", out)
	}
}

func TestSplitChunks(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\nthird"
	chunks := splitChunks(text, 1000)
	if len(chunks) != 1 {
		t.Fatalf("small text must stay one chunk, got %d", len(chunks))
	}

	chunks = splitChunks(text, 20)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}

	if got := splitChunks("\n\n  \n\n", 100); len(got) != 0 {
		t.Fatalf("blank input must yield no chunks: %v", got)
	}
}
