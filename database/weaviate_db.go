package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/songwish/assistant-be/config"
	"github.com/songwish/assistant-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "ContentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "route", DataType: []string{"text"}},
			{Name: "section", DataType: []string{"text"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore is the external vector-search adapter. It implements the same
// VectorStore contract as MemoryStore, with embeddings supplied by the caller.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		wcfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	if cfg.Text2Vec != "" {
		CHUNK_CLASS_OBJECT.Vectorizer = cfg.Text2Vec
		CHUNK_CLASS_OBJECT.ModuleConfig = cfg.ModuleConfig
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s class: %v", CHUNK_CLASS, err)
		}
	}
	return &WeaviateStore{client: client}, nil
}

// ReInit drops and recreates the chunk class, emptying the remote index.
func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete %s class: %v", CHUNK_CLASS, err)
	}
	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create %s class: %v", CHUNK_CLASS, err)
	}
	return nil
}

func (s *WeaviateStore) AddChunks(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch")
	}
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				Properties: chunkProperties(chunks[j]),
				Vector:     embeddings[j],
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}
	return nil
}

func (s *WeaviateStore) Search(ctx context.Context, queryVector []float32, limit int) ([]types.RetrievedPassage, error) {
	if limit <= 0 {
		limit = 3
	}
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "route"},
		{Name: "section"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(queryVector)

	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var passages []types.RetrievedPassage
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			passage := types.RetrievedPassage{
				Chunk: types.Chunk{
					Content: stringProp(obj, "content"),
					Source:  stringProp(obj, "source"),
					Metadata: map[string]string{
						"route":   stringProp(obj, "route"),
						"section": stringProp(obj, "section"),
						"type":    types.ContentTypeMarkdown,
					},
				},
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if distance, ok := additional["distance"].(float64); ok {
					// Cosine distance; smaller is closer.
					passage.Score = 1 - distance
				}
			}
			passages = append(passages, passage)
		}
	}
	return passages, nil
}

func (s *WeaviateStore) Count(ctx context.Context) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(CHUNK_CLASS).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if result.Errors != nil {
		return 0, fmt.Errorf("count failed: %v", result.Errors[0].Message)
	}
	if data, ok := result.Data["Aggregate"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok && len(data) > 0 {
		if obj, ok := data[0].(map[string]interface{}); ok {
			if meta, ok := obj["meta"].(map[string]interface{}); ok {
				if count, ok := meta["count"].(float64); ok {
					return int(count), nil
				}
			}
		}
	}
	return 0, nil
}

func chunkProperties(chunk types.Chunk) map[string]interface{} {
	return map[string]interface{}{
		"content": chunk.Content,
		"source":  chunk.Source,
		"route":   chunk.Metadata["route"],
		"section": sectionPath(chunk.Metadata),
	}
}

// sectionPath flattens header1..header4 metadata into one "a > b" string.
func sectionPath(metadata map[string]string) string {
	var parts []string
	for _, key := range []string{"header1", "header2", "header3", "header4"} {
		if v := metadata[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " > ")
}

func stringProp(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}
