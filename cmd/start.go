/*
Copyright © 2025 songwish
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/songwish/assistant-be/config"
	"github.com/songwish/assistant-be/database"
	"github.com/songwish/assistant-be/handler"
	"github.com/songwish/assistant-be/middleware"
	"github.com/songwish/assistant-be/repository"
	"github.com/songwish/assistant-be/service"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the assistant server",
	Long:  `Starts the HTTP API and websocket chat for the shopping assistant`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Initialize services
		corpusService := service.NewCorpusService(service.DefaultChunkerConfig)
		embedder := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)

		newStore := func() database.VectorStore { return database.NewMemoryStore() }
		if cfg.WeaviateStoreConfig.Host != "" {
			weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
			if err != nil {
				log.Fatalf("Failed to connect to Weaviate database: %v", err)
			}
			newStore = func() database.VectorStore {
				if err := weaviateDb.ReInit(); err != nil {
					log.Printf("Failed to reset Weaviate class: %v", err)
				}
				return weaviateDb
			}
		}

		indexService := service.NewIndexService(corpusService, embedder, cfg.DocsPath, cfg.ContentFetchCmd, newStore)
		fastspringService := service.NewFastSpringService(cfg.FastSpring)

		var aiService service.AIService
		switch cfg.AIProvider {
		case "gemini":
			aiService, err = service.NewGeminiService(cfg.GeminiAPIKeys, cfg.Model)
			if err != nil {
				log.Fatalf("Failed to create Gemini service: %v", err)
			}
		default:
			aiService = service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
		}

		var queryLog service.QueryLogger
		var adminHandler *handler.AdminHandler
		if cfg.MongoURI != "" {
			mongoClient, err := database.NewMongoClient(cfg.MongoURI)
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			if err := mongoClient.Ping(context.Background(), nil); err != nil {
				log.Fatalf("Failed to ping MongoDB: %v", err)
			}
			queryLogRepo := repository.NewQueryLogRepo(mongoClient.Database("assistant").Collection("query_logs"))
			queryLog = queryLogRepo
			adminHandler = handler.NewAdminHandler(queryLogRepo)
		}

		assistantService := service.NewAssistantService(indexService, fastspringService, aiService, queryLog)
		wsService := service.NewWebSocketService(assistantService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		aiHandler := handler.NewAIHandler(assistantService)
		productHandler := handler.NewProductHandler(fastspringService)
		accountHandler := handler.NewAccountHandler(fastspringService)
		systemHandler := handler.NewSystemHandler(cfg, indexService, fastspringService)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		apiV1.POST("/query", middleware.OptionalAuthMiddleware, aiHandler.HandleQuery)
		apiV1.GET("/products", productHandler.HandleListProducts)
		apiV1.GET("/products/categories", productHandler.HandleListCategories)
		apiV1.GET("/products/category/:category", productHandler.HandleProductsByCategory)
		apiV1.GET("/status", systemHandler.HandleStatus)

		// Account routes - require authentication
		accountRoutes := apiV1.Group("/")
		accountRoutes.Use(middleware.AuthMiddleware)
		{
			accountRoutes.POST("/lookup_account", accountHandler.HandleLookupAccount)
		}

		router.GET("/ws/chat", func(c *gin.Context) {
			wsService.HandleChat(c.Writer, c.Request)
		})

		if adminHandler != nil {
			adminRoutes := router.Group("/admin/api/v1")
			adminRoutes.Use(middleware.AuthMiddleware)
			{
				adminRoutes.GET("/queries", adminHandler.HandleRecentQueries)
			}
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
