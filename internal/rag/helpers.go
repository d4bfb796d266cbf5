package rag

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error) jobModel.Job {
	job.Error = ToJobError(err)
	s.logger.Error(job.Error.Message, "JobId", job.Id, "step", job.CurrentStep, "error", err)

	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

// ToJobError maps the error taxonomy onto what a client sees. Parse failures
// are the caller's to fix; everything downstream may succeed on retry.
func ToJobError(err error) jobModel.JobError {
	switch {
	case errors.Is(err, commonModels.ErrUnsupportedFormat):
		return jobModel.JobError{Code: http.StatusUnsupportedMediaType, Message: "Unsupported document format", Retry: false}
	case errors.Is(err, commonModels.ErrDocumentParse):
		return jobModel.JobError{Code: http.StatusUnprocessableEntity, Message: "Document could not be parsed", Retry: false}
	case errors.Is(err, context.DeadlineExceeded):
		return jobModel.JobError{Code: http.StatusGatewayTimeout, Message: "Request timed out", Retry: true}
	case errors.Is(err, commonModels.ErrEmbedding):
		return jobModel.JobError{Code: http.StatusBadGateway, Message: "EMBEDDING_FAILURE", Retry: true}
	case errors.Is(err, commonModels.ErrIndexWrite):
		return jobModel.JobError{Code: http.StatusServiceUnavailable, Message: "INGESTION_FAILURE", Retry: true}
	case errors.Is(err, commonModels.ErrIndexRead):
		return jobModel.JobError{Code: http.StatusServiceUnavailable, Message: "VECTOR_DB_FAILURE", Retry: true}
	case errors.Is(err, commonModels.ErrRerank):
		return jobModel.JobError{Code: http.StatusBadGateway, Message: "RERANK_FAILURE", Retry: true}
	case errors.Is(err, commonModels.ErrGeneration):
		return jobModel.JobError{Code: http.StatusBadGateway, Message: "LLM_GENERATION_FAILURE", Retry: true}
	default:
		return jobModel.JobError{Code: http.StatusInternalServerError, Message: "Internal Server Error", Retry: true}
	}
}
