package rerank

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("Rerank")

// Scorer returns one relevance score per text for the query, aligned with
// the input. Higher is more relevant.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float32, error)
}

type Reranker struct {
	scorer Scorer
}

func NewReranker(scorer Scorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Rerank keeps the topK candidates by cross-encoder score. The selected texts
// are concatenated as is, in score order.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []string, topK int) (commonModels.Selection, error) {
	if len(candidates) == 0 {
		return commonModels.Selection{Text: "", Indices: []int{}}, nil
	}
	if topK <= 0 {
		topK = config.RerankTopK
	}

	start := time.Now()
	scores, err := r.scorer.Score(ctx, query, candidates)
	metrics.CaptureExecutionMetrics("rerank", time.Since(start))
	if err != nil {
		logger.WithTrace(ctx).Error("Scoring failed", "error", err)
		return commonModels.Selection{}, fmt.Errorf("%w: %v", commonModels.ErrRerank, err)
	}
	if len(scores) != len(candidates) {
		return commonModels.Selection{}, fmt.Errorf("%w: got %d scores for %d candidates", commonModels.ErrRerank, len(scores), len(candidates))
	}

	indices := rankIndices(scores)
	if len(indices) > topK {
		indices = indices[:topK]
	}

	var b strings.Builder
	for _, i := range indices {
		b.WriteString(candidates[i])
	}
	logger.WithTrace(ctx).Debug("Reranked candidates", "candidates", len(candidates), "selected", indices)
	return commonModels.Selection{Text: b.String(), Indices: indices}, nil
}

// rankIndices orders candidate positions by score, highest first. Equal
// scores keep their original order.
func rankIndices(scores []float32) []int {
	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})
	return indices
}
