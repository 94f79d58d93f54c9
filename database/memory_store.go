package database

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/songwish/assistant-be/types"
)

// MemoryStore is a brute-force cosine-similarity vector store living in
// process memory. It is the backing store of the per-process index cache.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors [][]float32
	chunks  []types.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AddChunks(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return errors.New("chunks and embeddings length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, embeddings...)
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, queryVector []float32, limit int) ([]types.RetrievedPassage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 3
	}

	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(s.vectors))
	for i, v := range s.vectors {
		scores[i] = scored{index: i, score: cosineSimilarity(v, queryVector)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if limit > len(scores) {
		limit = len(scores)
	}
	results := make([]types.RetrievedPassage, 0, limit)
	for i := 0; i < limit; i++ {
		results = append(results, types.RetrievedPassage{
			Chunk: s.chunks[scores[i].index],
			Score: scores[i].score,
		})
	}
	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
