package localDB

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/vectorDB"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("LocalVectorStore")

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name            TEXT PRIMARY KEY,
	embedding_model TEXT NOT NULL,
	dimension       INTEGER NOT NULL,
	space           TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
	id         TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	document   TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);`

// Store is a path addressed vector store in a single SQLite file. Nearest
// neighbours are found by a full scan, which is fine for one local document
// collection.
type Store struct {
	db *sql.DB
}

// Open creates dir if needed and opens dir/rag.db.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = config.VectorStorePath
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	dbPath := filepath.Join(dir, config.LocalDBFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("Local vector store opened", "path", dbPath)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) EnsureCollection(ctx context.Context, spec vectorDB.CollectionSpec) (vectorDB.CollectionSpec, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, embedding_model, dimension, space, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		spec.Name, spec.EmbeddingModel, spec.Dimension, spec.Space, time.Now().Unix())
	if err != nil {
		return vectorDB.CollectionSpec{}, fmt.Errorf("creating collection: %w", err)
	}

	var stored vectorDB.CollectionSpec
	err = s.db.QueryRowContext(ctx,
		`SELECT name, embedding_model, dimension, space FROM collections WHERE name = ?`, spec.Name).
		Scan(&stored.Name, &stored.EmbeddingModel, &stored.Dimension, &stored.Space)
	if err != nil {
		return vectorDB.CollectionSpec{}, fmt.Errorf("reading collection: %w", err)
	}
	return stored, nil
}

// UpsertRecords writes all records in one transaction.
func (s *Store) UpsertRecords(ctx context.Context, collection string, records []vectorDB.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, embedding, document, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			embedding = excluded.embedding,
			document = excluded.document,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", r.Id, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, r.Id, float32SliceToBytes(r.Vector), r.Document, string(meta), now); err != nil {
			return fmt.Errorf("upserting %s: %w", r.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

func (s *Store) QueryVector(ctx context.Context, collection string, vector []float32, k int) (commonModels.QueryResultSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, embedding, document, metadata FROM records WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	results := commonModels.QueryResultSet{}
	skipped := 0
	for rows.Next() {
		var (
			id, document, metadata string
			blob                   []byte
		)
		if err := rows.Scan(&id, &blob, &document, &metadata); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(vector) {
			skipped++
			continue
		}

		var meta map[string]any
		if metadata != "" && metadata != "null" {
			if err := json.Unmarshal([]byte(metadata), &meta); err != nil {
				return nil, fmt.Errorf("decoding metadata of %s: %w", id, err)
			}
		}
		results = append(results, commonModels.QueryResult{
			Id:       id,
			Document: document,
			Metadata: meta,
			Distance: vectorDB.CosineDistance(vector, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	if skipped > 0 {
		logger.WithTrace(ctx).Warn("Skipped records with a different dimension", "collection", collection, "skipped", skipped)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// float32SliceToBytes converts a []float32 to little endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
