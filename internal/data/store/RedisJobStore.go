package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/data/redisStore"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/pkg/logger_i"
)

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobStore(ctx context.Context, opts redisStore.Options) (*RedisJobStore, error) {
	s, err := redisStore.GetRedisStore(ctx, opts, config.RedisJobStore)
	if err != nil {
		return nil, err
	}
	return NewRedisJobStore(s), nil
}

func NewRedisJobStore(s *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  s,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("job Id", job.Id)
	log.Debug("saving job")
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, job.Id, data, config.RedisJobStoreTTL)
	if err == nil {
		log.Debug("Saved job to Redis")
	}
	return err
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	log := s.logger.WithTrace(ctx).With("job Id", jobId)
	val, err := s.store.Get(ctx, jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		log.Error("Error reading job", "error", err)
		return job, false
	}

	if err = json.Unmarshal([]byte(val), &job); err != nil {
		log.Error("Stored job is not valid json", "error", err)
		return job, false
	}

	log.Debug("Job found in Redis")
	return job, true
}

