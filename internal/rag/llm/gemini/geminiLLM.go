package gemini

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	prompt    string
}

var logger = logger_i.NewLogger("llm_gemini")

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func GetGeminiClient(ctx context.Context, cfg Config) (llm.Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: GOOGLE_API_KEY is not set")
	}
	if cfg.Model == "" {
		cfg.Model = config.GeminiModelName
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return nil, err
	}
	logger.Info("Gemini client created", "model", cfg.Model)
	return &llmClient{client: c, modelName: cfg.Model, prompt: llm.SystemPrompt}, nil
}

func (c *llmClient) ModelName() string {
	return c.modelName
}

func (c *llmClient) Generate(ctx context.Context, contextText string, question string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		log := logger.WithTrace(ctx)
		start := time.Now()
		defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

		contentConfig := &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{
					{Text: c.prompt},
				},
			},
			Temperature: genai.Ptr(config.ModelTemperature),
		}

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.modelName, genai.Text(llm.UserPrompt(contextText, question)), contentConfig) {
			if err != nil {
				log.Error("Generation stream failed", "error", err)
				yield("", llm.AsGenerationError(err))
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}
