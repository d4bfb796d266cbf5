package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/docqa/internal/adapter"
	"github.com/akolanti/docqa/internal/adapter/utils"
	"github.com/akolanti/docqa/internal/api"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/data/store"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

// the fields a queued job starts from
type newJobData struct {
	id               string
	chatId           string
	message          string
	isNewChat        bool
	traceId          string
	isDocumentIngest bool
	documentName     string
	documentSource   string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Start a new chat job
// @Description  Accepts a question, queues a background retrieval and answer job, and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Question and optional Chat ID"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}
	log := logRH.WithTrace(request.Context())

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the Chat handler reader", "error", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(request.Context(), requestData) {
		log.Warn("Bad Chat Request", "error", err, "chatId", requestData.ChatID)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}

	processNewJobData(request, w, newJobData{
		chatId:  requestData.ChatID,
		message: requestData.Message,
	})
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a chat or ingestion job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	logRH.WithTrace(r.Context()).Debug("Get Status Request", "URL path", r.URL.Path)

	result, isFound := validateId(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// ChatHistoryHandler godoc
// @Summary      Get chat history
// @Description  Returns the most recent exchanges of a chat, oldest first.
// @Tags         Messaging
// @Produce      json
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  api.ChatHistoryResponse
// @Failure      404  {object}  api.JobResponse   "Chat not found"
// @Failure      503  {object}  api.JobResponse   "History store unavailable"
// @Router       /chat/{id}/history [get]
func ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	chatId := utils.GetChiURLParam(r, "id")
	history, err := handlerInstance.service.MessageStore.GetMessageHistory(r.Context(), chatId)
	if errors.Is(err, store.ErrUnknownChat) {
		WriteErrorResponse(w, http.StatusNotFound, chatId, "Chat not found")
		return
	}
	if err != nil {
		logRH.WithTrace(r.Context()).Error("Could not read chat history", "chatId", chatId, "error", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, chatId, "History unavailable")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatHistoryResponse(chatId, history))
}

// CollectionHandler godoc
// @Summary      Describe the document collection
// @Description  Returns the collection name, record count and the embedding model it was created with.
// @Tags         Ingestion
// @Produce      json
// @Success      200  {object}  api.CollectionResponse
// @Failure      503  {object}  api.ErrorResponse  "Vector store unavailable"
// @Router       /collection [get]
func CollectionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	info, err := handlerInstance.rag.CollectionInfo(r.Context())
	if err != nil {
		logRH.WithTrace(r.Context()).Error("Could not read collection", "error", err)
		writeJsonResponse(w, http.StatusServiceUnavailable, api.ErrorResponse{Error: api.JobOutgoingError{
			Code: http.StatusServiceUnavailable, Message: "VECTOR_DB_FAILURE", Retry: true,
		}})
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToCollectionResponse(info))
}

// PostIngestHandler handles the uploading of PDF, DOCX or text documents for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stages it in a temporary directory, and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document, used for its record ids"
// @Param        document       formData  file    true  "The PDF, DOCX or text file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	log := logRH.WithTrace(r.Context())

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		log.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := strings.TrimSpace(r.FormValue("document_name"))
	if docName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	// the worker removes the staged copy once ingestion ends
	destination, err := os.CreateTemp(targetDir, "upload-*"+filepath.Ext(fileMetadata.Filename))
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}
	defer destination.Close()

	if _, err := io.Copy(destination, fileReader); err != nil {
		os.Remove(destination.Name())
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}
	log.Info("Staged upload", "document", docName, "bytes", fileMetadata.Size)

	processNewJobData(r, w, newJobData{
		isDocumentIngest: true,
		documentName:     docName,
		documentSource:   destination.Name(),
	})
}
