package qdrantDB

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"

	"github.com/akolanti/docqa/internal/rag/vectorDB"
)

func TestPointId_Stable(t *testing.T) {
	a := PointId("rag_app", "report_pdf_0")
	if a != PointId("rag_app", "report_pdf_0") {
		t.Error("point id should be deterministic")
	}
	if a == PointId("rag_app", "report_pdf_1") || a == PointId("other", "report_pdf_0") {
		t.Error("point ids should differ per record and collection")
	}
}

func TestToPoints_Payload(t *testing.T) {
	records := []vectorDB.Record{{
		Id:       "report_pdf_3",
		Vector:   []float32{0.1, 0.2},
		Document: "chunk text",
		Metadata: map[string]any{"source": "report.pdf", "page": 2},
	}}

	points, err := toPoints("rag_app", records)
	if err != nil {
		t.Fatalf("toPoints failed: %v", err)
	}
	p := points[0]
	if p.GetId().GetUuid() != PointId("rag_app", "report_pdf_3") {
		t.Errorf("unexpected point id %v", p.GetId())
	}
	if p.Payload[payloadRecordId].GetStringValue() != "report_pdf_3" || p.Payload[payloadDocument].GetStringValue() != "chunk text" {
		t.Errorf("unexpected payload %v", p.Payload)
	}
	fields := p.Payload[payloadMetadata].GetStructValue().GetFields()
	if fields["page"].GetIntegerValue() != 2 || fields["source"].GetStringValue() != "report.pdf" {
		t.Errorf("metadata not carried: %v", fields)
	}
}

func TestFromScoredPoint(t *testing.T) {
	hit := &qdrant.ScoredPoint{
		Id: qdrant.NewID(PointId("rag_app", "a_0")),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadRecordId: "a_0",
			payloadDocument: "hello",
			payloadMetadata: map[string]any{"page": 4, "source": "a.pdf"},
		}),
		Score: 0.75,
	}

	r := fromScoredPoint(hit)
	if r.Id != "a_0" || r.Document != "hello" {
		t.Errorf("unexpected result %+v", r)
	}
	if r.Distance != 0.25 {
		t.Errorf("distance should be 1 - score, got %f", r.Distance)
	}
	if r.Metadata["page"] != int64(4) || r.Metadata["source"] != "a.pdf" {
		t.Errorf("unexpected metadata %v", r.Metadata)
	}
}

func TestSpecFromInfo(t *testing.T) {
	requested := vectorDB.CollectionSpec{Name: "rag_app", EmbeddingModel: "new-model", Dimension: 768, Space: "cosine"}
	info := &qdrant.CollectionInfo{
		Config: &qdrant.CollectionConfig{
			Metadata: qdrant.NewValueMap(map[string]any{metaEmbeddingModel: "old-model"}),
			Params: &qdrant.CollectionParams{
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{Size: 384, Distance: qdrant.Distance_Cosine}),
			},
		},
	}

	got := specFromInfo(requested, info)
	if got.EmbeddingModel != "old-model" || got.Dimension != 384 || got.Space != "cosine" {
		t.Errorf("unexpected spec %+v", got)
	}
}
