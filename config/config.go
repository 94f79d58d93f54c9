package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"port"`
	IsProduction bool   `mapstructure:"is_production"`

	// Completion / embedding provider
	AIProvider     string   `mapstructure:"ai_provider"` // "openai" or "gemini"
	AIEndpoint     string   `mapstructure:"ai_endpoint"`
	Model          string   `mapstructure:"model"`
	EmbeddingModel string   `mapstructure:"embedding_model"`
	OpenAIAPIKey   string   `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys  []string `mapstructure:"gemini_api_keys"`

	// Content corpus
	DocsPath        string `mapstructure:"docs_path"`
	ContentFetchCmd string `mapstructure:"content_fetch_cmd"`

	// FastSpring commerce API
	FastSpring FastSpringConfig `mapstructure:"fastspring"`

	// Optional external vector store; when host is empty the in-process
	// index is used.
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`

	// Optional query log
	MongoURI string `mapstructure:"MONGODB_URI"`

	JWTSecret string `mapstructure:"JWT_SECRET"`
}

type FastSpringConfig struct {
	APIUser             string `mapstructure:"FASTSPRING_API_USER"`
	APIPassword         string `mapstructure:"FASTSPRING_API_PASSWORD"`
	AccountEndpointURL  string `mapstructure:"account_endpoint_url"`
	OrderEndpointURL    string `mapstructure:"order_endpoint_url"`
	ProductsEndpointURL string `mapstructure:"products_endpoint_url"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"`
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("ai_provider", "openai")
	v.SetDefault("model", "gpt-4")
	v.SetDefault("embedding_model", "text-embedding-ada-002")
	v.SetDefault("docs_path", "content")
	v.SetDefault("fastspring.account_endpoint_url", "https://api.fastspring.com/accounts")
	v.SetDefault("fastspring.order_endpoint_url", "https://api.fastspring.com/orders")
	v.SetDefault("fastspring.products_endpoint_url", "https://api.fastspring.com/products")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables for secrets
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("fastspring.FASTSPRING_API_USER", "FASTSPRING_API_USER")
	v.BindEnv("fastspring.FASTSPRING_API_PASSWORD", "FASTSPRING_API_PASSWORD")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
