package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/docqa/internal/adapter"
	"github.com/akolanti/docqa/internal/config"
	jobmodel "github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var recordJobDuration = metrics.CaptureJobMetrics

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		recordJobDuration(string(job.Status), time.Since(start))
	}()
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	log := logger.WithTrace(ctx).With("jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeIngest:
		job.CurrentStep = jobmodel.IngestProcessing
		job = _ragService.IngestDocument(ctx, job)
	default:
		job.CurrentStep = jobmodel.RAGCall
		job = _ragService.ProcessRequest(ctx, job)
		if job.Status != jobmodel.JobStatusError {
			saveExchange(ctx, job, log)
		}
	}

	job.EndTime = time.Now()
	final := jobmodel.JobStatusComplete
	if job.Status == jobmodel.JobStatusError {
		final = jobmodel.JobStatusError
	}
	job.Status = final
	saveJobState(ctx, job, final)
	log.Info("Job finished", "status", final, "elapsed", time.Since(start))
}

func saveExchange(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) {
	if job.ChatId == "" {
		return
	}
	if err := _jobService.MessageStore.TrySaveChat(ctx, job.ChatId, adapter.ToExchange(job)); err != nil {
		log.Error("Failed to save chat history", "chatId", job.ChatId, "err", err)
	}
}

// workerExited runs after the worker count was already decremented.
func workerExited(reason string) {
	metrics.DecrementActiveWorkerCount()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	workerWaitGroup.Done()
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.WithTrace(ctx).Error("Failed to update job status", "err", err)
	}
}
