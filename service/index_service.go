package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/songwish/assistant-be/database"
	"github.com/songwish/assistant-be/types"
)

const (
	// DefaultTopK is the retrieval depth used when a caller passes k <= 0.
	DefaultTopK = 3

	provisionTimeout = 60 * time.Second
)

// IndexService owns the per-process vector index. The first successful build
// is retained for the lifetime of the process and shared by all queries; a
// failed build is not cached and may be retried on the next call.
type IndexService struct {
	mu       sync.Mutex
	index    database.VectorStore
	corpus   *CorpusService
	embedder Embedder
	docsPath string
	fetchCmd string
	newStore func() database.VectorStore
}

func NewIndexService(corpus *CorpusService, embedder Embedder, docsPath, fetchCmd string, newStore func() database.VectorStore) *IndexService {
	if newStore == nil {
		newStore = func() database.VectorStore { return database.NewMemoryStore() }
	}
	return &IndexService{
		corpus:   corpus,
		embedder: embedder,
		docsPath: docsPath,
		fetchCmd: fetchCmd,
		newStore: newStore,
	}
}

// GetIndex returns the cached index, building it on first call. The mutex
// keeps at most one build in flight; concurrent cold-start callers wait for
// the winner's result instead of duplicating embedding work.
func (s *IndexService) GetIndex(ctx context.Context) (database.VectorStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index, nil
	}

	index, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.index = index
	return s.index, nil
}

// Ready reports whether the index has been built, without triggering a build.
func (s *IndexService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index != nil
}

func (s *IndexService) build(ctx context.Context) (database.VectorStore, error) {
	if empty, err := s.corpusEmpty(); err == nil && empty {
		if err := s.provisionContent(ctx); err != nil {
			return nil, err
		}
	}

	chunks, err := s.corpus.LoadAndChunk(s.docsPath)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, types.ErrNoContent
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		// No partial index: the whole build fails.
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}

	index := s.newStore()
	if err := index.AddChunks(ctx, chunks, embeddings); err != nil {
		return nil, fmt.Errorf("failed to populate index: %w", err)
	}
	log.Printf("Built vector index: %d chunks from %s", len(chunks), s.docsPath)
	return index, nil
}

func (s *IndexService) corpusEmpty() (bool, error) {
	entries, err := os.ReadDir(s.docsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			return false, nil
		}
	}
	return true, nil
}

// provisionContent runs the configured snapshot-fetch command once, bounded
// to provisionTimeout, so a cold deployment can pull its content bundle. Its
// failure is reported as ErrProvisionFailed so callers can tell it apart from
// an intentionally empty corpus.
func (s *IndexService) provisionContent(ctx context.Context) error {
	if s.fetchCmd == "" {
		return nil
	}
	cmdCtx, cancel := context.WithTimeout(ctx, provisionTimeout)
	defer cancel()

	parts := strings.Fields(s.fetchCmd)
	cmd := exec.CommandContext(cmdCtx, parts[0], parts[1:]...)
	if output, err := cmd.CombinedOutput(); err != nil {
		log.Printf("Content fetch failed: %v: %s", err, strings.TrimSpace(string(output)))
		return fmt.Errorf("%w: %v", types.ErrProvisionFailed, err)
	}
	log.Printf("Successfully fetched content snapshot into %s", filepath.Clean(s.docsPath))
	return nil
}

// Retrieve returns the top-k passages for a query, most relevant first. An
// empty result is valid; a missing index surfaces as ErrNoIndex.
func (s *IndexService) Retrieve(ctx context.Context, query string, k int) ([]types.RetrievedPassage, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	index, err := s.GetIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrNoIndex, err)
	}
	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return index.Search(ctx, queryVector, k)
}

// GroupBySource folds ranked passages into per-document groups. The first
// time a source is seen a new group opens; later passages from the same
// source append to it. Group order is retrieval-rank order of first
// occurrence, which the prompt's "Source N" ordinals depend on.
func GroupBySource(passages []types.RetrievedPassage) []types.SourceGroup {
	indexBySource := map[string]int{}
	var groups []types.SourceGroup
	for _, p := range passages {
		if i, ok := indexBySource[p.Chunk.Source]; ok {
			groups[i].Contents = append(groups[i].Contents, p.Chunk.Content)
			continue
		}
		indexBySource[p.Chunk.Source] = len(groups)
		groups = append(groups, types.SourceGroup{
			Source:   p.Chunk.Source,
			Contents: []string{p.Chunk.Content},
		})
	}
	return groups
}
