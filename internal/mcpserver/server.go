package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/rag"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("MCP")

// Server exposes the question and ingestion paths as MCP tools.
type Server struct {
	rag    rag.Service
	server *mcp.Server
}

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

type AskOutput struct {
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources"`
	SelectedIndices []int    `json:"selected_indices"`
	RelevantText    string   `json:"relevant_text"`
}

type IngestInput struct {
	Path         string `json:"path" jsonschema:"local path of a PDF, DOCX or text file"`
	DocumentName string `json:"document_name,omitempty" jsonschema:"display name used for record ids, defaults to the file name"`
}

type IngestOutput struct {
	DocumentId string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

func NewServer(ragService rag.Service) *Server {
	s := &Server{
		rag: ragService,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    config.MCPServerName,
			Version: config.MCPServerVersion,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question using only the ingested documents",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Chunk, embed and index a local document so it can be asked about",
	}, s.handleIngest)
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("MCP server starting on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	result, err := s.rag.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}
	answer, err := llm.Collect(result.Answer)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	return nil, AskOutput{
		Answer:          answer,
		Sources:         result.Sources(),
		SelectedIndices: result.SelectedIndices,
		RelevantText:    result.RelevantText,
	}, nil
}

func (s *Server) handleIngest(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, IngestOutput, error) {
	if input.Path == "" {
		return nil, IngestOutput{}, errors.New("path is required")
	}
	content, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}
	name := input.DocumentName
	if name == "" {
		name = filepath.Base(input.Path)
	}

	res, err := s.rag.Ingest(ctx, content, name)
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}
	logger.WithTrace(ctx).Info("Ingested document", "document", name, "chunks", res.ChunkCount)
	return nil, IngestOutput{DocumentId: res.DocumentId, ChunkCount: res.ChunkCount}, nil
}

// toolError prefixes the same failure code the HTTP surface reports.
func toolError(err error) error {
	jobErr := rag.ToJobError(err)
	if jobErr.Message == "" {
		return err
	}
	return fmt.Errorf("%s: %w", jobErr.Message, err)
}
