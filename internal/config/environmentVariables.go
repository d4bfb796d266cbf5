package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//the whole app works against one collection
	CollectionName   = "rag_app"
	VectorStorePath  = "./demo-rag-store"
	LocalDBFileName  = "rag.db"
	VectorBackend    = "local" //local | qdrant
	UpsertBatchSize  = 100
	DefaultQueryTopK = 10

	//chunking
	ChunkSize    = 400
	ChunkOverlap = 100

	//re-ranking
	RerankTopK       = 3
	RerankURL        = "http://localhost:8081"
	RerankModel      = "cross-encoder/ms-marco-MiniLM-L-6-v2"
	RerankTimeout    = 30 * time.Second
	MaxUploadSize    = 32 << 20 //32mb
	TempFilePrefix   = "docqa-upload-"
	TempUploadFolder = "temporary_data"

	//single user - one ingestion or one question at a time
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 1
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobTimeout                      = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 0 //answers are streamed, the handler owns the deadline
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false //set for https
	QdrantPoolSize = 1     //2-5 is preferred for prod according to documentation

	//providers: ollama | google
	EmbeddingProvider = "ollama"
	LLMProvider       = "ollama"

	//ollama speaks the openai protocol under /v1
	OllamaBaseURL        = "http://localhost:11434/v1"
	OllamaEmbeddingModel = "nomic-embed-text:latest"
	OllamaChatModel      = "llama3.2:3b"
	OllamaAPIKey         = "ollama" //ignored by ollama, required by the client

	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	EmbeddingOutputDimensionality int32 = 768 //nomic-embed-text
	EmbeddingTimeout                    = 60 * time.Second
	LLMTimeout                          = 5 * time.Minute

	ModelTemperature float32 = 0.7

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
	ChatHistoryLength    = 5

	//mcp
	MCPServerName    = "docqa"
	MCPServerVersion = "1.0.0"
)
