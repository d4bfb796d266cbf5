package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

var pageExtractTimeout = 10 * time.Second

// Processor turns raw document bytes into chunks ready for indexing.
type Processor interface {
	Process(ctx context.Context, content []byte, displayName string) ([]commonModels.Chunk, error)
}

type Chunker struct {
	splitter *textSplitter
	tempDir  string
}

// NewChunker stages documents under tempDir, empty means os.TempDir.
func NewChunker(chunkSize, overlap int, tempDir string) *Chunker {
	return &Chunker{
		splitter: newTextSplitter(chunkSize, overlap),
		tempDir:  tempDir,
	}
}

func NewDefaultChunker() *Chunker {
	return NewChunker(config.ChunkSize, config.ChunkOverlap, "")
}

var nameReplacer = strings.NewReplacer("-", "_", ".", "_", " ", "_")

// NormalizeName maps a display name to the id prefix used for its chunks.
func NormalizeName(displayName string) string {
	return nameReplacer.Replace(displayName)
}

// Process stages the bytes in a temp file that is removed on every exit path,
// extracts text page by page and splits each page. Chunk ids are
// {normalized name}_{index} in document order.
func (c *Chunker) Process(ctx context.Context, content []byte, displayName string) ([]commonModels.Chunk, error) {
	log := logger.WithTrace(ctx).With("document", displayName)

	format, err := detectFormat(content)
	if err != nil {
		log.Warn("Unsupported document", "error", err)
		return nil, err
	}
	log.Debug("Processing document", "type", format.label)

	stagedPath, err := c.stage(content, format.extension)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(stagedPath); err != nil {
			log.Error("Error removing file", "path", stagedPath, "error", err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := extractText(stagedPath, format)
	if err != nil {
		log.Error("Error processing document", "error", err)
		return nil, err
	}
	log.Debug("Processing document", "pages", doc.TotalPages, "readable", len(doc.Pages))

	chunks := c.prepareChunks(doc, displayName, stagedPath, format)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text could be extracted from %s", commonModels.ErrDocumentParse, displayName)
	}
	log.Debug("Processing document", "chunks", len(chunks))
	return chunks, nil
}

func (c *Chunker) stage(content []byte, extension string) (string, error) {
	dir := c.tempDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("staging directory: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, config.TempFilePrefix+"*"+extension)
	if err != nil {
		return "", fmt.Errorf("staging document: %w", err)
	}
	path := f.Name()

	_, writeErr := f.Write(content)
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("staging document: %w", firstErr(writeErr, closeErr))
	}
	return path, nil
}

func (c *Chunker) prepareChunks(doc extractedDoc, displayName, path string, format docFormat) []commonModels.Chunk {
	prefix := NormalizeName(displayName)
	totalPages := max(doc.TotalPages, len(doc.Pages))

	var allChunks []commonModels.Chunk
	for _, page := range doc.Pages {
		for _, text := range c.splitter.split(page.Content) {
			allChunks = append(allChunks, commonModels.Chunk{
				Id:   fmt.Sprintf("%s_%d", prefix, len(allChunks)),
				Text: text,
				Metadata: map[string]any{
					"source":      displayName,
					"file_path":   path,
					"page":        page.Number,
					"total_pages": totalPages,
					"format":      format.label,
				},
			})
		}
	}
	return allChunks
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
