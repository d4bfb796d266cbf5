package localDB

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/vectorDB"
)

// wordEmbedder hashes words into a small bag of words vector so texts that
// share words end up close together.
type wordEmbedder struct {
	calls int
	fail  error
}

const dims = 64

func (e *wordEmbedder) embed(text string) []float32 {
	v := make([]float32, dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
		v[h.Sum32()%dims]++
	}
	return v
}

func (e *wordEmbedder) GetEmbedding(_ context.Context, query string) ([]float32, error) {
	e.calls++
	if e.fail != nil {
		return nil, e.fail
	}
	return e.embed(query), nil
}

func (e *wordEmbedder) BatchEmbedding(_ context.Context, chunks []string) ([][]float32, error) {
	e.calls++
	if e.fail != nil {
		return nil, e.fail
	}
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = e.embed(c)
	}
	return out, nil
}

func (e *wordEmbedder) ModelName() string { return "word-hash" }
func (e *wordEmbedder) Dimensions() int   { return dims }

func chunks(texts ...string) []commonModels.Chunk {
	out := make([]commonModels.Chunk, len(texts))
	for i, t := range texts {
		out[i] = commonModels.Chunk{Text: t, Metadata: map[string]any{"source": "report.pdf", "page": i}}
	}
	return out
}

func openCollection(t *testing.T, dir string, emb *wordEmbedder) (vectorDB.IndexClient, vectorDB.Collection) {
	t.Helper()
	store, err := Open(dir)
	require.NoError(t, err)
	client := vectorDB.NewIndexClient(store, emb)
	t.Cleanup(func() { _ = client.Close() })

	col, err := client.GetOrCreateCollection(context.Background(), "rag_app")
	require.NoError(t, err)
	return client, col
}

func TestCollection_EmptyQuery(t *testing.T) {
	_, col := openCollection(t, t.TempDir(), &wordEmbedder{})

	results, err := col.Query(context.Background(), "anything at all", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	n, err := col.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollection_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, col := openCollection(t, t.TempDir(), &wordEmbedder{})
	docs := chunks("revenue grew in march", "costs fell in april", "the team hired two engineers")

	require.NoError(t, col.Upsert(ctx, docs, "report_pdf"))
	require.NoError(t, col.Upsert(ctx, docs, "report_pdf"))

	n, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := col.Query(ctx, "revenue", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Id
	}
	assert.ElementsMatch(t, []string{"report_pdf_0", "report_pdf_1", "report_pdf_2"}, ids)
}

func TestCollection_UpsertReplacesText(t *testing.T) {
	ctx := context.Background()
	_, col := openCollection(t, t.TempDir(), &wordEmbedder{})

	require.NoError(t, col.Upsert(ctx, chunks("old text"), "doc"))
	require.NoError(t, col.Upsert(ctx, chunks("new text"), "doc"))

	results, err := col.Query(ctx, "text", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new text", results[0].Document)
}

func TestCollection_NearestFirst(t *testing.T) {
	ctx := context.Background()
	_, col := openCollection(t, t.TempDir(), &wordEmbedder{})
	docs := chunks(
		"bananas are yellow fruit",
		"the quarterly revenue report shows growth",
		"kubernetes schedules pods on nodes",
	)
	require.NoError(t, col.Upsert(ctx, docs, "mixed"))

	results, err := col.Query(ctx, "quarterly revenue growth", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "mixed_1", results[0].Id)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
	assert.Equal(t, "report.pdf", results[0].Metadata["source"])
	// numbers come back from json as float64
	assert.EqualValues(t, 1, results[0].Metadata["page"])
}

func TestCollection_KLargerThanCount(t *testing.T) {
	ctx := context.Background()
	_, col := openCollection(t, t.TempDir(), &wordEmbedder{})
	require.NoError(t, col.Upsert(ctx, chunks("one", "two"), "small"))

	results, err := col.Query(ctx, "one", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestCollection_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	client, col := openCollection(t, dir, &wordEmbedder{})
	require.NoError(t, col.Upsert(ctx, chunks("persisted chunk one", "persisted chunk two"), "saved"))
	require.NoError(t, client.Close())

	_, reopened := openCollection(t, dir, &wordEmbedder{})
	info, err := reopened.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Count)
	assert.Equal(t, "word-hash", info.EmbeddingModel)
	assert.Equal(t, commonModels.CosineSpace, info.Space)
	assert.Equal(t, dims, info.Dimension)
}

func TestCollection_EmbeddingFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	emb := &wordEmbedder{}
	_, col := openCollection(t, t.TempDir(), emb)

	emb.fail = errors.New("connection refused")
	err := col.Upsert(ctx, chunks("a", "b"), "doc")
	assert.ErrorIs(t, err, commonModels.ErrEmbedding)

	emb.fail = nil
	n, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFloat32Blob(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
}
