package rag

import (
	"context"
	"fmt"
	"iter"
	"os"
	"sync"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag/ingest"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/internal/rag/vectorDB"
	"github.com/akolanti/docqa/pkg/logger_i"
)

// Service is everything the worker, the HTTP handlers and the MCP tools need.
// The collaborators stay private to this package.
type Service interface {
	Ask(ctx context.Context, question string) (AskResult, error)
	Ingest(ctx context.Context, content []byte, displayName string) (IngestResult, error)
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	CollectionInfo(ctx context.Context) (commonModels.CollectionInfo, error)
}

type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []string, topK int) (commonModels.Selection, error)
}

// AskResult carries the retrieval diagnostics next to the answer stream. The
// stream is lazy, nothing is generated until it is ranged over.
type AskResult struct {
	Candidates      commonModels.QueryResultSet
	SelectedIndices []int
	RelevantText    string
	Answer          iter.Seq2[string, error]
}

// Sources are the ids of the selected candidates, in score order.
func (r AskResult) Sources() []string {
	sources := make([]string, 0, len(r.SelectedIndices))
	for _, i := range r.SelectedIndices {
		sources = append(sources, r.Candidates[i].Id)
	}
	return sources
}

type IngestResult struct {
	DocumentId string
	ChunkCount int
}

type service struct {
	collection vectorDB.Collection
	processor  ingest.Processor
	reranker   Reranker
	generator  llm.Generator
	logger     *logger_i.Logger

	// one retrieval or ingestion at a time
	mu sync.Mutex
}

func NewService(collection vectorDB.Collection, processor ingest.Processor, reranker Reranker, generator llm.Generator) Service {
	return &service{
		collection: collection,
		processor:  processor,
		reranker:   reranker,
		generator:  generator,
		logger:     logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Ask(ctx context.Context, question string) (AskResult, error) {
	log := s.logger.WithTrace(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates, err := s.retrieve(ctx, question)
	if err != nil {
		log.Error("Retrieval failed", "error", err)
		return AskResult{}, err
	}

	selection, err := s.reranker.Rerank(ctx, question, candidates.Documents(), config.RerankTopK)
	if err != nil {
		log.Error("Rerank failed", "error", err)
		return AskResult{}, err
	}
	log.Debug("Selected context", "candidates", len(candidates), "selected", selection.Indices)

	return AskResult{
		Candidates:      candidates,
		SelectedIndices: selection.Indices,
		RelevantText:    selection.Text,
		Answer:          s.generator.Generate(ctx, selection.Text, question),
	}, nil
}

func (s *service) retrieve(ctx context.Context, question string) (commonModels.QueryResultSet, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_query", time.Since(start)) }()
	return s.collection.Query(ctx, question, config.DefaultQueryTopK)
}

func (s *service) Ingest(ctx context.Context, content []byte, displayName string) (IngestResult, error) {
	log := s.logger.WithTrace(ctx).With("document", displayName)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	chunks, err := s.processor.Process(ctx, content, displayName)
	if err != nil {
		metrics.CaptureIngest("parse_error")
		return IngestResult{}, err
	}

	prefix := ingest.NormalizeName(displayName)
	if err := s.collection.Upsert(ctx, chunks, prefix); err != nil {
		metrics.CaptureIngest("index_error")
		return IngestResult{}, err
	}

	metrics.CaptureIngest("ok")
	metrics.AddChunksIndexed(len(chunks))
	log.Info("Document indexed", "prefix", prefix, "chunks", len(chunks))
	return IngestResult{DocumentId: prefix, ChunkCount: len(chunks)}, nil
}

// ProcessRequest answers a chat job and collects the whole answer into it.
func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.WithTrace(ctx).With("JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.JobTimeout)
	defer cancel()

	jobt = logOutput(jobt, jobModel.RAGCall, inMethodLogger)
	result, err := s.Ask(processContext, jobt.JobPayload.Question)
	if err != nil {
		return s.jobError(jobt, err)
	}
	jobt.JobPayload.Sources = result.Sources()
	jobt.JobPayload.SelectedIndices = result.SelectedIndices

	jobt = logOutput(jobt, jobModel.LLMCall, inMethodLogger)
	answer, err := llm.Collect(result.Answer)
	if err != nil {
		return s.jobError(jobt, err)
	}
	return returnOutput(jobt, answer)
}

// IngestDocument indexes the upload staged at IngestURL. The staged file is
// removed whatever the outcome.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.WithTrace(ctx).With("JobId", job.Id)

	processContext, cancel := context.WithTimeout(ctx, config.JobTimeout)
	defer cancel()

	job = logOutput(job, jobModel.IngestInit, inMethodLogger)
	content, err := os.ReadFile(job.JobPayload.IngestURL)
	if err != nil {
		return s.jobError(job, fmt.Errorf("%w: reading upload: %v", commonModels.ErrDocumentParse, err))
	}
	defer func() {
		if err := os.Remove(job.JobPayload.IngestURL); err != nil {
			inMethodLogger.Error("Error removing upload", "path", job.JobPayload.IngestURL, "error", err)
		}
	}()

	job = logOutput(job, jobModel.IngestProcessing, inMethodLogger)
	result, err := s.Ingest(processContext, content, job.JobPayload.IngestFileName)
	if err != nil {
		return s.jobError(job, err)
	}

	job.JobPayload.DocumentId = result.DocumentId
	job.JobPayload.ChunkCount = result.ChunkCount
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) CollectionInfo(ctx context.Context) (commonModels.CollectionInfo, error) {
	return s.collection.Info(ctx)
}
