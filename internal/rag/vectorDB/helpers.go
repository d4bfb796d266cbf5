package vectorDB

import (
	"fmt"
	"math"

	"github.com/akolanti/docqa/internal/domain/commonModels"
)

// RecordIds numbers chunks in input order. Without a prefix the chunk's own
// id is kept.
func RecordIds(chunks []commonModels.Chunk, idPrefix string) []string {
	ids := make([]string, len(chunks))
	for i, ch := range chunks {
		if idPrefix == "" && ch.Id != "" {
			ids[i] = ch.Id
			continue
		}
		ids[i] = fmt.Sprintf("%s_%d", idPrefix, i)
	}
	return ids
}

// SanitizeMetadata keeps strings, numbers and bools, everything else is
// stored in its printed form.
func SanitizeMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
			continue
		case string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// CosineDistance is 1 - cosine similarity. Zero vectors and vectors of
// different length are maximally distant from everything.
func CosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
