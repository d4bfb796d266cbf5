package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id,omitempty" example:"chat_550"`
	JobType   string            `json:"job_type" example:"Query"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources"`
	SelectedIndices []int    `json:"selected_indices,omitempty"`
}

type IngestResponse struct {
	DocumentName string `json:"document_name" example:"report.pdf"`
	DocumentId   string `json:"document_id" example:"report_pdf"`
	ChunkCount   int    `json:"chunk_count" example:"5"`
}

type Result struct {
	Status              string          `json:"status"`
	Step                string          `json:"step,omitempty"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	IngestResponse      *IngestResponse `json:"ingest_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	ChatId    string `json:"chat_id,omitempty"`
	StatusURL string `json:"status_url"`
}

// Candidate is one retrieved chunk shown in ask diagnostics.
type Candidate struct {
	Id       string         `json:"id" example:"report_pdf_0"`
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Distance float32        `json:"distance" example:"0.21"`
}

type AskDiagnostics struct {
	Candidates      []Candidate `json:"candidates"`
	SelectedIndices []int       `json:"selected_indices"`
	RelevantText    string      `json:"relevant_text"`
}

type ChatExchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Sources  []string  `json:"sources,omitempty"`
	AskedAt  time.Time `json:"asked_at"`
}

type ChatHistoryResponse struct {
	ChatId    string         `json:"chat_id" example:"chat_550"`
	Exchanges []ChatExchange `json:"exchanges"`
}

type CollectionResponse struct {
	Name           string `json:"name" example:"rag_app"`
	Count          int    `json:"count" example:"42"`
	EmbeddingModel string `json:"embedding_model" example:"nomic-embed-text:latest"`
	Dimension      int    `json:"dimension,omitempty" example:"768"`
	Space          string `json:"space,omitempty" example:"cosine"`
}

type ErrorResponse struct {
	Error JobOutgoingError `json:"error"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" `
	ChatID  string `json:"chatID,omitempty" `
}

type AskRequest struct {
	Question string `json:"question" validate:"required" example:"What does the report say about revenue?"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type IngestDocumentRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
}
