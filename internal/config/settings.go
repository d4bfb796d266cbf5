package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings are the runtime knobs. Defaults come from the constants in this
// package, then config.yaml, then the environment.
type Settings struct {
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`

	Collection    string `yaml:"collection"`
	VectorBackend string `yaml:"vector_backend"`
	StorePath     string `yaml:"store_path"`

	QdrantHost   string `yaml:"qdrant_host"`
	QdrantPort   int    `yaml:"qdrant_port"`
	QdrantAPIKey string `yaml:"qdrant_api_key"`

	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
	EmbeddingBaseURL  string `yaml:"embedding_base_url"`
	EmbeddingDims     int    `yaml:"embedding_dimensions"`

	LLMProvider string `yaml:"llm_provider"`
	LLMModel    string `yaml:"llm_model"`
	LLMBaseURL  string `yaml:"llm_base_url"`

	RerankURL   string `yaml:"rerank_url"`
	RerankModel string `yaml:"rerank_model"`

	GoogleAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"`
}

func DefaultSettings() Settings {
	return Settings{
		ListenAddr:        ServerListenAddr,
		LogLevel:          "debug",
		Collection:        CollectionName,
		VectorBackend:     VectorBackend,
		StorePath:         VectorStorePath,
		QdrantHost:        QdrantHost,
		QdrantPort:        QdrantGrpcPort,
		EmbeddingProvider: EmbeddingProvider,
		EmbeddingModel:    OllamaEmbeddingModel,
		EmbeddingBaseURL:  OllamaBaseURL,
		EmbeddingDims:     int(EmbeddingOutputDimensionality),
		LLMProvider:       LLMProvider,
		LLMModel:          OllamaChatModel,
		LLMBaseURL:        OllamaBaseURL,
		RerankURL:         RerankURL,
		RerankModel:       RerankModel,
		OpenAIAPIKey:      OllamaAPIKey,
		RedisAddr:         RedisAddr,
	}
}

// Load reads .env (if any), the yaml file at path (if it exists) and the
// environment, in that order of increasing precedence.
func Load(path string) (Settings, error) {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	s := DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return s, err
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, err
			}
		}
	}

	applyEnv(&s)
	applyProviderDefaults(&s)
	return s, nil
}

func applyEnv(s *Settings) {
	s.ListenAddr = envOrDefault("LISTEN_ADDR", s.ListenAddr)
	s.LogLevel = envOrDefault("LOG_LEVEL", s.LogLevel)
	s.Collection = envOrDefault("COLLECTION_NAME", s.Collection)
	s.VectorBackend = envOrDefault("VECTOR_BACKEND", s.VectorBackend)
	s.StorePath = envOrDefault("VECTOR_STORE_PATH", s.StorePath)
	s.QdrantHost = envOrDefault("QDRANT_HOST", s.QdrantHost)
	s.QdrantPort = envOrDefaultInt("QDRANT_PORT", s.QdrantPort)
	s.QdrantAPIKey = envOrDefault("QDRANT_API_KEY", s.QdrantAPIKey)
	s.EmbeddingProvider = envOrDefault("EMBEDDING_PROVIDER", s.EmbeddingProvider)
	s.EmbeddingModel = envOrDefault("EMBEDDING_MODEL", s.EmbeddingModel)
	s.EmbeddingBaseURL = envOrDefault("EMBEDDING_BASE_URL", s.EmbeddingBaseURL)
	s.EmbeddingDims = envOrDefaultInt("EMBEDDING_DIMENSIONS", s.EmbeddingDims)
	s.LLMProvider = envOrDefault("LLM_PROVIDER", s.LLMProvider)
	s.LLMModel = envOrDefault("LLM_MODEL", s.LLMModel)
	s.LLMBaseURL = envOrDefault("LLM_BASE_URL", s.LLMBaseURL)
	s.RerankURL = envOrDefault("RERANK_URL", s.RerankURL)
	s.RerankModel = envOrDefault("RERANK_MODEL", s.RerankModel)
	s.GoogleAPIKey = envOrDefault("GOOGLE_API_KEY", s.GoogleAPIKey)
	s.OpenAIAPIKey = envOrDefault("OPENAI_API_KEY", s.OpenAIAPIKey)
	s.RedisAddr = envOrDefault("REDIS_ADDR", s.RedisAddr)
	s.RedisPassword = envOrDefault("REDIS_PASSWORD", s.RedisPassword)
}

// google models differ from the ollama defaults, swap them in unless the
// user picked a model explicitly
func applyProviderDefaults(s *Settings) {
	if s.EmbeddingProvider == "google" && s.EmbeddingModel == OllamaEmbeddingModel {
		s.EmbeddingModel = GoogleEmbeddingModel
	}
	if s.LLMProvider == "google" && s.LLMModel == OllamaChatModel {
		s.LLMModel = GeminiModelName
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
