package embedding

import "context"

// Embedder maps text to fixed dimension vectors. A collection is bound to
// exactly one Embedder, queries and upserts must go through the same one.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	ModelName() string
	Dimensions() int
}
