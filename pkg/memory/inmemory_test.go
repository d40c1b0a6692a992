package memory

import (
	"context"
	"testing"
)

func TestInMemorySearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	if err := store.CreateCollection(ctx, "docs", 3); err != nil {
		t.Fatal(err)
	}

	points := []Point{
		{ID: "aligned", Vector: []float32{1, 0, 0}, Payload: map[string]any{"text": "a"}},
		{ID: "close", Vector: []float32{0.9, 0.1, 0}},
		{ID: "orthogonal", Vector: []float32{0, 1, 0}},
	}
	if err := store.Upsert(ctx, "docs", points); err != nil {
		t.Fatal(err)
	}

	results, err := store.Search(ctx, "docs", []float32{1, 0, 0}, 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hits above threshold, got %d", len(results))
	}
	if results[0].ID != "aligned" || results[1].ID != "close" {
		t.Fatalf("wrong ranking: %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Point.Payload["text"] != "a" {
		t.Fatalf("payload lost: %+v", results[0].Point)
	}
}

func TestInMemorySearchLimit(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	store.Upsert(ctx, "docs", []Point{
		{ID: "1", Vector: []float32{1, 0}},
		{ID: "2", Vector: []float32{0.9, 0.1}},
		{ID: "3", Vector: []float32{0.8, 0.2}},
	})

	results, err := store.Search(ctx, "docs", []float32{1, 0}, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("limit ignored: %d results", len(results))
	}
}

func TestInMemoryUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	store.Upsert(ctx, "docs", []Point{{ID: "1", Vector: []float32{1, 0}}})
	store.Upsert(ctx, "docs", []Point{{ID: "1", Vector: []float32{0, 1}}})

	results, err := store.Search(ctx, "docs", []float32{0, 1}, 1, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "1" {
		t.Fatalf("replacement not visible: %+v", results)
	}
}

func TestInMemoryUnknownCollection(t *testing.T) {
	if _, err := NewInMemoryStore().Search(context.Background(), "absent", []float32{1}, 1, 0); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Fatalf("dimension mismatch must score 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Fatalf("zero vector must score 0, got %f", got)
	}
}
