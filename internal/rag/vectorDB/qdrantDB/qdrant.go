package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/vectorDB"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("Qdrant")

// point ids must be uuids or integers, record ids are hashed into this namespace
var pointNamespace = uuid.MustParse("6f1c3a52-8a8e-4f5e-9d55-0c2f7a1b9e41")

const (
	payloadRecordId = "record_id"
	payloadDocument = "document"
	payloadMetadata = "metadata"

	metaEmbeddingModel = "embedding_model"
	metaSpace          = "space"
)

type Config struct {
	Host   string
	Port   int
	APIKey string
}

type ClientHolder struct {
	QObj *qdrant.Client
}

func NewClient(cfg Config) (*ClientHolder, error) {
	if cfg.Host == "" {
		cfg.Host = config.QdrantHost
	}
	if cfg.Port == 0 {
		cfg.Port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}
	logger.Info("Qdrant client ready", "host", cfg.Host, "port", cfg.Port)
	return &ClientHolder{QObj: client}, nil
}

func (db *ClientHolder) Close() error {
	logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, spec vectorDB.CollectionSpec) (vectorDB.CollectionSpec, error) {
	if spec.Name == "" {
		return vectorDB.CollectionSpec{}, errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, spec.Name)
	if err != nil {
		return vectorDB.CollectionSpec{}, err
	}
	if !exists {
		err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: spec.Name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(spec.Dimension),
				Distance: qdrant.Distance_Cosine,
			}),
			Metadata: qdrant.NewValueMap(map[string]any{
				metaEmbeddingModel: spec.EmbeddingModel,
				metaSpace:          spec.Space,
			}),
		})
		// another process may have won the race
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return vectorDB.CollectionSpec{}, err
		}
		if err == nil {
			logger.Info("Created collection", "collection", spec.Name, "dimension", spec.Dimension)
			return spec, nil
		}
	}

	info, err := db.QObj.GetCollectionInfo(ctx, spec.Name)
	if err != nil {
		return vectorDB.CollectionSpec{}, err
	}
	return specFromInfo(spec, info), nil
}

// specFromInfo reads back what the collection was created with, falling back
// to the requested values for collections created without metadata.
func specFromInfo(requested vectorDB.CollectionSpec, info *qdrant.CollectionInfo) vectorDB.CollectionSpec {
	stored := requested
	meta := info.GetConfig().GetMetadata()
	if v := meta[metaEmbeddingModel].GetStringValue(); v != "" {
		stored.EmbeddingModel = v
	}
	if v := meta[metaSpace].GetStringValue(); v != "" {
		stored.Space = v
	}
	if size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize(); size > 0 {
		stored.Dimension = int(size)
	}
	return stored
}

func (db *ClientHolder) UpsertRecords(ctx context.Context, collection string, records []vectorDB.Record) error {
	points, err := toPoints(collection, records)
	if err != nil {
		return err
	}

	for start := 0; start < len(points); start += config.UpsertBatchSize {
		end := min(start+config.UpsertBatchSize, len(points))
		_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points[start:end],
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant upsert failed: %w", err)
		}
	}
	return nil
}

func toPoints(collection string, records []vectorDB.Record) ([]*qdrant.PointStruct, error) {
	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		payload, err := qdrant.TryValueMap(map[string]any{
			payloadRecordId: r.Id,
			payloadDocument: r.Document,
			payloadMetadata: r.Metadata,
		})
		if err != nil {
			return nil, fmt.Errorf("payload for %s: %w", r.Id, err)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointId(collection, r.Id)),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: payload,
		}
	}
	return points, nil
}

// PointId is stable for a collection and record id, so re-ingesting a
// document overwrites its points.
func PointId(collection, recordId string) string {
	return uuid.NewSHA1(pointNamespace, []byte(collection+"/"+recordId)).String()
}

func (db *ClientHolder) QueryVector(ctx context.Context, collection string, vector []float32, k int) (commonModels.QueryResultSet, error) {
	hits, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.WithTrace(ctx).Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	results := make(commonModels.QueryResultSet, 0, len(hits))
	for _, hit := range hits {
		results = append(results, fromScoredPoint(hit))
	}
	return results, nil
}

func fromScoredPoint(hit *qdrant.ScoredPoint) commonModels.QueryResult {
	payload := hit.GetPayload()
	id := payload[payloadRecordId].GetStringValue()
	if id == "" {
		id = hit.GetId().GetUuid()
	}
	return commonModels.QueryResult{
		Id:       id,
		Document: payload[payloadDocument].GetStringValue(),
		Metadata: fromFields(payload[payloadMetadata].GetStructValue().GetFields()),
		// qdrant reports cosine similarity
		Distance: 1 - hit.GetScore(),
	}
}

func fromFields(fields map[string]*qdrant.Value) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}

func (db *ClientHolder) Count(ctx context.Context, collection string) (int, error) {
	n, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
	return int(n), err
}
