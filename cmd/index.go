/*
Copyright © 2025 songwish
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/songwish/assistant-be/config"
	"github.com/songwish/assistant-be/database"
	"github.com/songwish/assistant-be/service"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the retrieval index offline",
	Long: `Loads the markdown knowledge base, chunks it, embeds every chunk
and fills the configured vector store. Useful for warming an external
Weaviate instance before starting the server.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		corpusService := service.NewCorpusService(service.DefaultChunkerConfig)
		chunks, err := corpusService.LoadAndChunk(cfg.DocsPath)
		if err != nil {
			log.Fatalf("Failed to chunk content: %v", err)
		}
		sources := service.SortedSources(chunks)
		log.Printf("Chunked %d documents into %d chunks", len(sources), len(chunks))
		for _, source := range sources {
			n := 0
			for _, chunk := range chunks {
				if chunk.Source == source {
					n++
				}
			}
			log.Printf("  %s: %d chunks", source, n)
		}

		statsOnly, _ := cmd.Flags().GetBool("stats-only")
		if statsOnly {
			return
		}

		embedder := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)

		newStore := func() database.VectorStore { return database.NewMemoryStore() }
		if cfg.WeaviateStoreConfig.Host != "" {
			weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
			if err != nil {
				log.Fatalf("Failed to connect to Weaviate database: %v", err)
			}
			if err := weaviateDb.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize Weaviate class: %v", err)
			}
			newStore = func() database.VectorStore { return weaviateDb }
		}

		indexService := service.NewIndexService(corpusService, embedder, cfg.DocsPath, cfg.ContentFetchCmd, newStore)
		store, err := indexService.GetIndex(context.Background())
		if err != nil {
			log.Fatalf("Failed to build index: %v", err)
		}
		count, err := store.Count(context.Background())
		if err != nil {
			log.Fatalf("Failed to count indexed chunks: %v", err)
		}
		log.Printf("Index ready with %d chunks", count)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().Bool("stats-only", false, "chunk and report statistics without embedding")
}
