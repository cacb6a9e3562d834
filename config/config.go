package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type EmbeddingConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider string
	Model    string
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type Config struct {
	PostgresDSN string
	Collection  string
	Metric      string
	TopK        int

	Embeddings EmbeddingConfig
	LLM        LLMConfig
	Retry      RetryConfig

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	HTTPAddr      string
	ScrapeTimeout time.Duration
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development. Missing keys fall back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/f1gpt?sslmode=disable"),
		Collection:  getEnv("F1GPT_COLLECTION", "f1gpt_chunks"),
		Metric:      getEnv("F1GPT_METRIC", "dot_product"),
		TopK:        getEnvInt("F1GPT_TOP_K", 10),
		Embeddings: EmbeddingConfig{
			Provider:  getEnv("EMBEDDING_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 1536),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvInt("EMBEDDING_RETRY_ATTEMPTS", 3),
			BaseDelay:   getEnvDuration("EMBEDDING_RETRY_BASE_DELAY", 5*time.Second),
		},
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		HTTPAddr:      getEnv("F1GPT_HTTP_ADDR", ":8080"),
		ScrapeTimeout: getEnvDuration("F1GPT_SCRAPE_TIMEOUT", 45*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
