package handlers

import (
	"context"
	"time"

	"github.com/akolanti/docqa/internal/api"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/internal/job"
	"github.com/akolanti/docqa/internal/rag"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var (
	handlerInstance *JobHandler
	logJH           = logger_i.NewLogger("JobHandler")
)

type JobHandler struct {
	service *job.Service
	rag     rag.Service
}

// InitJobHandler wires the handlers to the job queue and the rag service.
// Called once from main, and per test.
func InitJobHandler(jobService *job.Service, ragService rag.Service) {
	handlerInstance = &JobHandler{service: jobService, rag: ragService}
	logJH.Info("Starting job handler")
}

func CreateNewJob(ctx context.Context, newJob newJobData) (jobModel.Job, error) {
	log := logJH.WithTrace(ctx).With("job id", newJob.id)
	log.Info("To create new job")
	if newJob.isNewChat {
		log.Info("Create new chat", "chatId", newJob.chatId)
		if err := handlerInstance.service.MessageStore.InitNewChat(ctx, newJob.chatId); err != nil {
			log.Error("Error initiating new chat", "chatId", newJob.chatId, "error", err)
			return jobModel.Job{}, err
		}
	}
	return handlerInstance.pushToJobChannel(ctx, newJob), nil
}

func GetJobStatus(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctx, id)
	}
	return result, false
}

func ValidateChatRequest(ctx context.Context, chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.WithTrace(ctx).Debug("Validating chat id", "chatId", chatReq.ChatID)
	if chatReq.Message == "" {
		return false
	}
	if chatReq.ChatID == "" {
		return true
	}
	return handlerInstance.service.MessageStore.ValidateChatId(ctx, chatReq.ChatID)
}

// private methods
func (h *JobHandler) pushToJobChannel(ctx context.Context, newJob newJobData) jobModel.Job {
	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestURL = newJob.documentSource
	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.ChatId = newJob.chatId
		_job.JobPayload.Question = newJob.message
		_job.CurrentStep = jobModel.UserQueryInit
	}

	h.service.Enqueue(ctx, _job)
	return _job
}
