package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/pkg/logger_i"
	"google.golang.org/genai"
)

var logger = logger_i.NewLogger("google_embedding")

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string, dimension int, httpClient *http.Client) (embedding.Embedder, error) {
	if apikey == "" {
		return nil, errors.New("google embedding: GOOGLE_API_KEY is not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return nil, err
	}
	logger.Info("Google Embedding client created", "model", modelName)
	return &client{genAi: c, model: modelName, dimension: int32(dimension)}, nil
}

func (c *client) ModelName() string { return c.model }

func (c *client) Dimensions() int { return int(c.dimension) }

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.doCall(ctx, genai.Text(query), taskQuery)
	if err != nil {
		logger.WithTrace(ctx).Error("Error getting query Embedding from Google", "error", err)
		return nil, err
	}
	return res[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	res, err := c.doCall(ctx, getContent(chunks), taskDocument)
	if err != nil {
		logger.WithTrace(ctx).Error("Error getting Embeddings from Google", "error", err, "batch", len(chunks))
		return nil, err
	}
	return res, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) ([][]float32, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", commonModels.ErrEmbedding, err)
	}
	if result == nil || len(result.Embeddings) != len(content) {
		return nil, fmt.Errorf("%w: expected %d embeddings", commonModels.ErrEmbedding, len(content))
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		vectors = append(vectors, e.Values)
	}
	return vectors, nil
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}
