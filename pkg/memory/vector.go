// Package memory defines the vector storage and embedding contracts
// behind the document retrieval tool.
package memory

import "context"

// VectorStore is a vector database. Implementations must be safe for
// concurrent use.
type VectorStore interface {
	// CreateCollection creates the collection if it does not exist.
	CreateCollection(ctx context.Context, name string, vectorSize uint64) error
	// Upsert adds or replaces points.
	Upsert(ctx context.Context, collection string, points []Point) error
	// Search returns the nearest points to vector, best first, dropping
	// anything scoring below scoreThreshold.
	Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float32) ([]SearchResult, error)
}

// Point is one stored vector with its payload.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// SearchResult is one search hit.
type SearchResult struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
	Point Point   `json:"point"`
}

// Embedder converts text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
