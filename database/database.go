package database

import (
	"context"

	"github.com/songwish/assistant-be/types"
)

// VectorStore is the nearest-neighbor capability the retrieval pipeline
// builds on. The in-process store is the default; the Weaviate adapter
// implements the same contract against an external engine.
type VectorStore interface {
	// AddChunks stores embedded chunks. len(chunks) must equal len(embeddings).
	AddChunks(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error

	// Search returns the limit most similar passages to the query vector,
	// most relevant first. An empty result is valid.
	Search(ctx context.Context, queryVector []float32, limit int) ([]types.RetrievedPassage, error)

	// Count reports how many chunks the store holds.
	Count(ctx context.Context) (int, error)
}
