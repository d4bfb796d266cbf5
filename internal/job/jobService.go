package job

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var logger = logger_i.NewLogger("JobService")

// Service is the queue shared by the handlers and the worker pool. Ingest and
// query jobs go through the same channel.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		MessageStore:      cfg.MessageStore,
	}
}

// Enqueue records the job as queued and hands it to the workers. The send
// blocks when the buffer is full so a burst cannot overwhelm the system.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) {
	log := logger.WithTrace(ctx).With("jobId", j.Id)
	j.Status = jobModel.JobStatusQueued

	// visible on /status before a worker picks it up
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Warn("Could not save queued job", "error", err)
	}

	metrics.IncrementJobsInQueue()
	s.JobChannel <- j
	log.Info("Queued job", "type", j.JobType)

	// ingestion always wakes the dispatcher, questions every RequestsPerNewWorkerCount
	count := atomic.AddInt64(&s.RequestCount, 1)
	if j.JobType == jobModel.JobTypeIngest || count%config.RequestsPerNewWorkerCount == 0 {
		s.signalDispatcher()
	}
}

func (s *Service) signalDispatcher() {
	metrics.StartDispatcherSignalCount()
	select {
	case s.DispatcherChannel <- true:
	default: // a signal is already pending
	}
}
