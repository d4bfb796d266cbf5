package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/customHttpClient"
	"github.com/akolanti/docqa/internal/data/redisStore"
	"github.com/akolanti/docqa/internal/data/store"
	jobmodel "github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/internal/handlers"
	"github.com/akolanti/docqa/internal/job"
	"github.com/akolanti/docqa/internal/mcpserver"
	"github.com/akolanti/docqa/internal/rag"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/docqa/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/docqa/internal/rag/ingest"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/internal/rag/llm/gemini"
	"github.com/akolanti/docqa/internal/rag/llm/openaiLLM"
	"github.com/akolanti/docqa/internal/rag/rerank"
	"github.com/akolanti/docqa/internal/rag/vectorDB"
	"github.com/akolanti/docqa/internal/rag/vectorDB/localDB"
	"github.com/akolanti/docqa/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/docqa/internal/server"
	"github.com/akolanti/docqa/internal/worker"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var (
	listenAddr        string
	configPath        string
	mcpMode           bool
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address")
	flag.StringVar(&configPath, "config", envOr("DOCQA_CONFIG", "config.yaml"), "path of the yaml config file")
	flag.BoolVar(&mcpMode, "mcp", false, "serve MCP tools on stdio instead of HTTP")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.ListenAddr = listenAddr
	}

	// stdout belongs to the protocol in mcp mode
	if mcpMode {
		logger_i.InitStderr(settings.LogLevel)
	} else {
		logger_i.Init(settings.LogLevel)
	}
	logger := logger_i.NewLogger("main")

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	indexClient, ragService, err := buildRagService(serviceContext, settings)
	if err != nil {
		logger.Error("External services failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := indexClient.Close(); err != nil {
			logger.Error("Closing vector store", "error", err)
		}
	}()

	if mcpMode {
		ctx, stop := signal.NotifyContext(serviceContext, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := mcpserver.NewServer(ragService).Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("MCP server stopped", "error", err)
		}
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	redisOpts := redisStore.Options{Addr: settings.RedisAddr, Password: settings.RedisPassword}
	jobStore, jobErr := store.GetRedisJobStore(serviceContext, redisOpts)
	messageStore, msgErr := store.GetRedisMessageStore(serviceContext, redisOpts)
	if jobErr != nil || msgErr != nil {
		logger.Error("Redis stores are offline, keeping jobs in memory", "jobStore", jobErr, "messageStore", msgErr)
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.ListenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// buildRagService wires the providers picked in settings. The collection is
// acquired here once and handed to the service.
func buildRagService(ctx context.Context, settings config.Settings) (vectorDB.IndexClient, rag.Service, error) {
	embedder, err := newEmbedder(ctx, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding provider: %w", err)
	}
	generator, err := newGenerator(ctx, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("llm provider: %w", err)
	}
	backend, err := newBackend(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("vector store: %w", err)
	}

	indexClient := vectorDB.NewIndexClient(backend, embedder)
	collection, err := indexClient.GetOrCreateCollection(ctx, settings.Collection)
	if err != nil {
		indexClient.Close()
		return nil, nil, err
	}

	reranker := rerank.NewReranker(rerank.NewTEIScorer(settings.RerankURL, settings.RerankModel, customHttpClient.New(config.RerankTimeout)))
	return indexClient, rag.NewService(collection, ingest.NewDefaultChunker(), reranker, generator), nil
}

func newEmbedder(ctx context.Context, settings config.Settings) (embedding.Embedder, error) {
	httpClient := customHttpClient.New(config.EmbeddingTimeout)
	switch settings.EmbeddingProvider {
	case "google":
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, settings.EmbeddingModel, settings.GoogleAPIKey, settings.EmbeddingDims, httpClient)
	case "ollama", "openai":
		return openaiEmbedding.NewEmbedder(openaiEmbedding.Config{
			BaseURL:    settings.EmbeddingBaseURL,
			APIKey:     settings.OpenAIAPIKey,
			Model:      settings.EmbeddingModel,
			Dimensions: settings.EmbeddingDims,
			HTTPClient: httpClient,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", settings.EmbeddingProvider)
	}
}

func newGenerator(ctx context.Context, settings config.Settings) (llm.Generator, error) {
	// streaming calls are bounded by the request context
	httpClient := customHttpClient.New(0)
	switch settings.LLMProvider {
	case "google":
		return gemini.GetGeminiClient(ctx, gemini.Config{
			APIKey:     settings.GoogleAPIKey,
			Model:      settings.LLMModel,
			HTTPClient: httpClient,
		})
	case "ollama", "openai":
		return openaiLLM.NewGenerator(openaiLLM.Config{
			BaseURL:     settings.LLMBaseURL,
			APIKey:      settings.OpenAIAPIKey,
			Model:       settings.LLMModel,
			Temperature: config.ModelTemperature,
			HTTPClient:  httpClient,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", settings.LLMProvider)
	}
}

func newBackend(settings config.Settings) (vectorDB.Backend, error) {
	switch settings.VectorBackend {
	case "qdrant":
		return qdrantDB.NewClient(qdrantDB.Config{
			Host:   settings.QdrantHost,
			Port:   settings.QdrantPort,
			APIKey: settings.QdrantAPIKey,
		})
	case "local", "":
		return localDB.Open(settings.StorePath)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", settings.VectorBackend)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
