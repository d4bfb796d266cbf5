package openaiLLM

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("llm_openai")

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	HTTPClient  *http.Client
}

type llmClient struct {
	client      openai.Client
	modelName   string
	temperature float32
}

// NewGenerator talks to any OpenAI compatible chat endpoint, Ollama included.
func NewGenerator(cfg Config) llm.Generator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = config.ModelTemperature
	}

	logger.Info("OpenAI compatible generator created", "model", cfg.Model, "baseURL", cfg.BaseURL)
	return &llmClient{
		client:      openai.NewClient(opts...),
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (c *llmClient) ModelName() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, contextText string, question string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		log := logger.WithTrace(ctx)
		start := time.Now()
		defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

		stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.modelName),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(llm.SystemPrompt),
				openai.UserMessage(llm.UserPrompt(contextText, question)),
			},
			Temperature: openai.Float(float64(c.temperature)),
		})
		defer stream.Close()

		fragments := 0
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			fragments++
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				log.Debug("Consumer stopped the stream", "fragments", fragments)
				return
			}
		}
		if err := stream.Err(); err != nil {
			log.Error("Generation stream failed", "error", err, "fragments", fragments)
			yield("", llm.AsGenerationError(err))
			return
		}
		log.Debug("Generation finished", "fragments", fragments)
	}
}
