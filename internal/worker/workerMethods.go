package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

const ackTimeout = 10 * time.Second

// execute runs one task in isolation: its own deadline, its own trace id, and a panic
// in one task never takes the worker down.
func (p *Pool) execute(task jobModel.Task) {
	start := time.Now()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, task.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.taskTimeout)
	defer cancel()

	log := p.logger.FromContext(ctx).With("taskId", task.Id, "taskType", task.Type)
	log.Debug("Processing task")

	outcome := "error"
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", "panic", r)
		}
		metrics.CaptureTaskMetrics(outcome, time.Since(start))
	}()

	job, err := p.run(ctx, task)
	if job.Status != "" {
		outcome = string(job.Status)
	}

	if err != nil && !errors.Is(err, commonModels.ErrUnexpectedState) {
		log.Error("task not completed, leaving it for redelivery", "jobId", job.Id, "error", err)
		return
	}
	log.Info("task finished", "jobId", job.Id, "status", job.Status)
	p.ack(task, log)
}

func (p *Pool) run(ctx context.Context, task jobModel.Task) (jobModel.IngestionJob, error) {
	switch task.Type {
	case jobModel.TaskTypeCompletion:
		if task.Notification == nil {
			return jobModel.IngestionJob{}, fmt.Errorf("%w: completion task without notification", commonModels.ErrValidation)
		}
		return p.ragService.HandleCompletion(ctx, *task.Notification)
	case jobModel.TaskTypeObjectCreated:
		if task.Object == nil {
			return jobModel.IngestionJob{}, fmt.Errorf("%w: object task without event", commonModels.ErrValidation)
		}
		return p.ragService.StartIngestion(ctx, *task.Object)
	default:
		return jobModel.IngestionJob{}, fmt.Errorf("%w: unknown task type %q", commonModels.ErrValidation, task.Type)
	}
}

func (p *Pool) ack(task jobModel.Task, log *logger_i.Logger) {
	if task.Ack == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
	defer cancel()
	if err := task.Ack(ctx); err != nil {
		log.Error("could not acknowledge task", "error", err)
	}
}
