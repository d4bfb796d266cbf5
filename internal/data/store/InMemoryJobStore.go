package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore backs the api when Redis is not reachable. Jobs expire
// like their Redis counterparts and are lost on restart.
type InMemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]storedJob
	ttl  time.Duration
	now  func() time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs: make(map[string]storedJob),
		ttl:  config.RedisJobStoreTTL,
		now:  time.Now,
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now()
	for id, stored := range store.jobs {
		if now.After(stored.expiresAt) {
			delete(store.jobs, id)
		}
	}
	store.jobs[job.Id] = storedJob{job: job, expiresAt: now.Add(store.ttl)}
	inMemLogger.WithTrace(ctx).Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	stored, found := store.jobs[jobId]
	if !found || store.now().After(stored.expiresAt) {
		return jobModel.Job{}, false
	}
	return stored.job, true
}

