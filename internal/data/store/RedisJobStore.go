package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/data/redisStore"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

const jobKeyPrefix = "job:"

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisJobStore returns nil when redis is unreachable so callers can fall back.
func GetRedisJobStore(ctx context.Context) *RedisJobStore {
	s := redisStore.GetRedisStore(ctx, config.RedisJobStore)
	if s == nil {
		return nil
	}
	return NewRedisJobStore(s)
}

func NewRedisJobStore(s *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  s,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.IngestionJob) error {
	log := s.logger.FromContext(ctx).With("jobId", job.Id)
	log.Debug("saving job", "status", job.Status)
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, jobKeyPrefix+job.Id, data, config.RedisJobStoreTTL)
	if err != nil {
		log.Error("Saving job to Redis failed", "error", err)
	}
	return err
}

// GetJob returns found=false with a nil error only when the key does not exist.
func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.IngestionJob, bool, error) {
	var job jobModel.IngestionJob
	log := s.logger.FromContext(ctx).With("jobId", jobId)
	val, err := s.store.Get(ctx, jobKeyPrefix+jobId)
	if s.store.IsNil(err) {
		return job, false, nil
	} else if err != nil {
		log.Error("Reading job from Redis failed", "error", err)
		return job, false, commonModels.Transient(fmt.Errorf("%w: reading job %s: %w", commonModels.ErrTransport, jobId, err))
	}

	if err = json.Unmarshal([]byte(val), &job); err != nil {
		log.Error("Stored job is not valid json", "error", err)
		return job, false, fmt.Errorf("decoding job %s: %w", jobId, err)
	}
	return job, true, nil
}

func (s *RedisJobStore) CreateJob(ctx context.Context, job jobModel.IngestionJob) (jobModel.IngestionJob, bool, error) {
	log := s.logger.FromContext(ctx).With("jobId", job.Id)
	data, err := json.Marshal(job)
	if err != nil {
		return job, false, err
	}

	created, err := s.store.SetNX(ctx, jobKeyPrefix+job.Id, data, config.RedisJobStoreTTL)
	if err != nil {
		log.Error("Creating job in Redis failed", "error", err)
		return job, false, commonModels.Transient(fmt.Errorf("%w: creating job %s: %w", commonModels.ErrTransport, job.Id, err))
	}
	if created {
		return job, true, nil
	}

	existing, found, err := s.GetJob(ctx, job.Id)
	if err != nil {
		return job, false, err
	}
	if !found {
		// expired between the two calls
		return s.CreateJob(ctx, job)
	}
	return existing, false, nil
}
