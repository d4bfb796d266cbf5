package openaiEmbedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("openai_embedding")

// client talks to any OpenAI compatible /embeddings endpoint. Ollama serves
// one under /v1.
type client struct {
	api        openai.Client
	model      string
	dimensions int
}

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	HTTPClient *http.Client
}

func NewEmbedder(cfg Config) embedding.Embedder {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	logger.Info("Embedding client created", "model", cfg.Model, "baseURL", cfg.BaseURL)
	return &client{
		api:        openai.NewClient(opts...),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (c *client) ModelName() string { return c.model }

func (c *client) Dimensions() int { return c.dimensions }

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.WithTrace(ctx)
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		log.Error("Error getting Embeddings", "model", c.model, "error", err)
		return nil, fmt.Errorf("%w: %v", commonModels.ErrEmbedding, err)
	}
	if len(res.Data) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", commonModels.ErrEmbedding, len(res.Data), len(chunks))
	}

	// the response carries an index per vector, do not rely on its order
	vectors := make([][]float32, len(chunks))
	for _, d := range res.Data {
		if d.Index < 0 || int(d.Index) >= len(chunks) {
			return nil, fmt.Errorf("%w: vector index %d out of range", commonModels.ErrEmbedding, d.Index)
		}
		vectors[d.Index] = toFloat32(d.Embedding)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: missing vector for input %d", commonModels.ErrEmbedding, i)
		}
	}
	log.Debug("Embedded batch", "count", len(vectors), "dimension", len(vectors[0]))
	return vectors, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
