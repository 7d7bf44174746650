package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]jobModel.IngestionJob
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]jobModel.IngestionJob),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStore jobModel.IngestionJob) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[jobToStore.Id] = jobToStore
	inMemLogger.Debug("Saved job to store", "jobId", jobToStore.Id, "status", jobToStore.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.IngestionJob, bool, error) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	return result, found, nil
}

func (store *InMemoryJobStore) CreateJob(ctx context.Context, jobToStore jobModel.IngestionJob) (jobModel.IngestionJob, bool, error) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	if existing, found := store.jobMap[jobToStore.Id]; found {
		return existing, false, nil
	}
	store.jobMap[jobToStore.Id] = jobToStore
	inMemLogger.Debug("Created job in store", "jobId", jobToStore.Id)
	return jobToStore, true, nil
}
