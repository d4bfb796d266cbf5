package rag_test

import (
	"context"
	"hash/fnv"
	"iter"
	"strings"

	"github.com/akolanti/docqa/internal/domain/commonModels"
)

// MockEmbedder implements embedding.Embedder with a bag of words hash.
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

const mockDims = 64

func hashEmbed(text string) []float32 {
	v := make([]float32, mockDims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
		v[h.Sum32()%mockDims]++
	}
	return v
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return hashEmbed(query), nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = hashEmbed(c)
	}
	return out, nil
}

func (m *MockEmbedder) ModelName() string { return "mock-embedder" }
func (m *MockEmbedder) Dimensions() int   { return mockDims }

// MockProcessor implements ingest.Processor
type MockProcessor struct {
	OnProcess func(ctx context.Context, content []byte, displayName string) ([]commonModels.Chunk, error)
}

func (m *MockProcessor) Process(ctx context.Context, content []byte, displayName string) ([]commonModels.Chunk, error) {
	if m.OnProcess != nil {
		return m.OnProcess(ctx, content, displayName)
	}
	return []commonModels.Chunk{{Text: string(content)}}, nil
}

// MockReranker keeps candidates in retrieval order unless told otherwise.
type MockReranker struct {
	OnRerank  func(ctx context.Context, query string, candidates []string, topK int) (commonModels.Selection, error)
	LastQuery string
}

func (m *MockReranker) Rerank(ctx context.Context, query string, candidates []string, topK int) (commonModels.Selection, error) {
	m.LastQuery = query
	if m.OnRerank != nil {
		return m.OnRerank(ctx, query, candidates, topK)
	}
	sel := commonModels.Selection{Indices: []int{}}
	for i := 0; i < len(candidates) && i < topK; i++ {
		sel.Indices = append(sel.Indices, i)
		sel.Text += candidates[i]
	}
	return sel, nil
}

// MockGenerator implements llm.Generator
type MockGenerator struct {
	OnGenerate  func(ctx context.Context, contextText, question string) iter.Seq2[string, error]
	LastContext string
}

func (m *MockGenerator) Generate(ctx context.Context, contextText, question string) iter.Seq2[string, error] {
	m.LastContext = contextText
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, contextText, question)
	}
	return Fragments("mocked ", "llm ", "response")
}

func (m *MockGenerator) ModelName() string { return "mock-llm" }

func Fragments(parts ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func FailingStream(err error, before ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range before {
			if !yield(p, nil) {
				return
			}
		}
		yield("", err)
	}
}
