package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("VectorDB")

// IndexClient hands out collections bound to one embedder and the cosine
// metric. GetOrCreateCollection is idempotent.
type IndexClient interface {
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)
	Close() error
}

type Collection interface {
	Name() string
	// Upsert stores chunks under ids {idPrefix}_{index}, replacing existing ids.
	Upsert(ctx context.Context, chunks []commonModels.Chunk, idPrefix string) error
	// Query returns up to k records nearest first. An empty collection is not an error.
	Query(ctx context.Context, text string, k int) (commonModels.QueryResultSet, error)
	Count(ctx context.Context) (int, error)
	Info(ctx context.Context) (commonModels.CollectionInfo, error)
}

// Record is what a backend persists for one chunk.
type Record struct {
	Id       string
	Vector   []float32
	Document string
	Metadata map[string]any
}

type CollectionSpec struct {
	Name           string
	EmbeddingModel string
	Dimension      int
	Space          string
}

// Backend is the storage engine behind a Collection. Embedding happens
// above it, a backend only ever sees vectors.
type Backend interface {
	EnsureCollection(ctx context.Context, spec CollectionSpec) (CollectionSpec, error)
	UpsertRecords(ctx context.Context, collection string, records []Record) error
	QueryVector(ctx context.Context, collection string, vector []float32, k int) (commonModels.QueryResultSet, error)
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

type indexClient struct {
	backend     Backend
	embedder    embedding.Embedder
	batchSize   int
	mu          sync.Mutex
	collections map[string]*collection
}

func NewIndexClient(backend Backend, embedder embedding.Embedder) IndexClient {
	return &indexClient{
		backend:     backend,
		embedder:    embedder,
		batchSize:   config.UpsertBatchSize,
		collections: make(map[string]*collection),
	}
}

func (c *indexClient) GetOrCreateCollection(ctx context.Context, name string) (Collection, error) {
	if name == "" {
		return nil, errors.New("empty collection name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.collections[name]; ok {
		return col, nil
	}

	requested := CollectionSpec{
		Name:           name,
		EmbeddingModel: c.embedder.ModelName(),
		Dimension:      c.embedder.Dimensions(),
		Space:          commonModels.CosineSpace,
	}
	stored, err := c.backend.EnsureCollection(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", name, err)
	}
	if stored.EmbeddingModel != "" && stored.EmbeddingModel != requested.EmbeddingModel {
		logger.Warn("Collection was created with another embedding model, results will be meaningless",
			"collection", name, "stored", stored.EmbeddingModel, "current", requested.EmbeddingModel)
	}

	col := &collection{spec: stored, client: c}
	c.collections[name] = col
	logger.Info("Collection ready", "collection", name, "model", stored.EmbeddingModel, "space", stored.Space)
	return col, nil
}

func (c *indexClient) Close() error {
	return c.backend.Close()
}

type collection struct {
	spec   CollectionSpec
	client *indexClient
}

func (col *collection) Name() string { return col.spec.Name }

func (col *collection) Upsert(ctx context.Context, chunks []commonModels.Chunk, idPrefix string) error {
	if len(chunks) == 0 {
		return nil
	}
	log := logger.WithTrace(ctx).With("collection", col.spec.Name)

	ids := RecordIds(chunks, idPrefix)
	records := make([]Record, 0, len(chunks))
	batchSize := col.client.batchSize

	// embed everything first so a failed batch leaves the index untouched
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, ch := range chunks[start:end] {
			texts = append(texts, ch.Text)
		}

		log.Debug("Starting embedding call", "batch start", start, "batch length", len(texts))
		embedStart := time.Now()
		vectors, err := col.client.embedder.BatchEmbedding(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
		if err != nil {
			return asEmbeddingError(err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: got %d vectors for %d chunks", commonModels.ErrEmbedding, len(vectors), len(texts))
		}

		for i, ch := range chunks[start:end] {
			records = append(records, Record{
				Id:       ids[start+i],
				Vector:   vectors[i],
				Document: ch.Text,
				Metadata: SanitizeMetadata(ch.Metadata),
			})
		}
	}

	if err := col.client.backend.UpsertRecords(ctx, col.spec.Name, records); err != nil {
		log.Error("Upsert failed", "error", err)
		return fmt.Errorf("%w: %v", commonModels.ErrIndexWrite, err)
	}
	log.Debug("Upserted records", "count", len(records))
	return nil
}

func (col *collection) Query(ctx context.Context, text string, k int) (commonModels.QueryResultSet, error) {
	if k <= 0 {
		k = config.DefaultQueryTopK
	}

	embedStart := time.Now()
	vector, err := col.client.embedder.GetEmbedding(ctx, text)
	metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
	if err != nil {
		return nil, asEmbeddingError(err)
	}

	results, err := col.client.backend.QueryVector(ctx, col.spec.Name, vector, k)
	if err != nil {
		logger.WithTrace(ctx).Error("Query failed", "collection", col.spec.Name, "error", err)
		return nil, fmt.Errorf("%w: %v", commonModels.ErrIndexRead, err)
	}
	if results == nil {
		results = commonModels.QueryResultSet{}
	}
	return results, nil
}

func (col *collection) Count(ctx context.Context) (int, error) {
	n, err := col.client.backend.Count(ctx, col.spec.Name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", commonModels.ErrIndexRead, err)
	}
	return n, nil
}

func (col *collection) Info(ctx context.Context) (commonModels.CollectionInfo, error) {
	n, err := col.Count(ctx)
	if err != nil {
		return commonModels.CollectionInfo{}, err
	}
	return commonModels.CollectionInfo{
		Name:           col.spec.Name,
		Count:          n,
		EmbeddingModel: col.spec.EmbeddingModel,
		Dimension:      col.spec.Dimension,
		Space:          col.spec.Space,
	}, nil
}

func asEmbeddingError(err error) error {
	if errors.Is(err, commonModels.ErrEmbedding) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", commonModels.ErrEmbedding, err)
}
