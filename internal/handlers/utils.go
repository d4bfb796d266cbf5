package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/docqa/internal/adapter"
	"github.com/akolanti/docqa/internal/adapter/utils"
	"github.com/akolanti/docqa/internal/api"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/pkg/logger_i"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateId(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.WithTrace(ctx).Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(ctx, id)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return handlerInstance != nil
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, config.TempUploadFolder)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

func processNewJobData(request *http.Request, w http.ResponseWriter, newJob newJobData) {
	log := logRH.WithTrace(request.Context())
	if !newJob.isDocumentIngest && newJob.chatId == "" {
		newJob.chatId = utils.GetNewUUID()
		newJob.isNewChat = true
		log.Debug("New Chat request", "chatID", newJob.chatId)
	}
	newJob.id = utils.GetNewUUID()
	newJob.traceId = logger_i.TraceID(request.Context())

	created, err := CreateNewJob(request.Context(), newJob)
	if err != nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.id, "Could not create job")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(created))
}

// errorBody is what /ask and the json endpoints send for a failed step.
func errorBody(e jobModel.JobError) api.ErrorResponse {
	return api.ErrorResponse{Error: api.JobOutgoingError{Code: e.Code, Message: e.Message, Retry: e.Retry}}
}
