package job

import (
	"sync/atomic"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/metrics"
)

type Service struct {
	TaskChannel       chan jobModel.Task
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MetadataStore     jobModel.MetadataStore
}

type ServiceConfig struct {
	TaskChannel       chan jobModel.Task
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MetadataStore     jobModel.MetadataStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		TaskChannel:       cfg.TaskChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		MetadataStore:     cfg.MetadataStore,
	}
}

// Enqueue hands a task to the worker pool. The send blocks while the buffer is full,
// which slows queue consumers down to the pace of the workers.
func (s *Service) Enqueue(task jobModel.Task) {
	metrics.IncrementTasksInQueue()
	s.TaskChannel <- task

	// every Nth task, and every completion (a full ingestion run), asks for one more worker
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || task.Type == jobModel.TaskTypeCompletion {
		metrics.StartDispatcherSignalCount()
		select {
		case s.DispatcherChannel <- true:
		default:
		}
	}
}
