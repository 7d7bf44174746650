package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

// NotificationTarget is where the OCR service reports completion and writes raw output.
type NotificationTarget struct {
	TopicArn     string
	RoleArn      string
	OutputBucket string
	OutputPrefix string
}

func NotificationTargetFromEnv() NotificationTarget {
	return NotificationTarget{
		TopicArn:     config.OCRTopicArn(),
		RoleArn:      config.OCRRoleArn(),
		OutputBucket: config.OCROutputBucket(),
		OutputPrefix: config.OCROutputPrefix(),
	}
}

type Orchestrator struct {
	starter ocr.JobStarter
	jobs    jobModel.JobStore
	target  NotificationTarget
	now     func() time.Time
}

func NewOrchestrator(starter ocr.JobStarter, jobs jobModel.JobStore, target NotificationTarget) *Orchestrator {
	return &Orchestrator{
		starter: starter,
		jobs:    jobs,
		target:  target,
		now:     time.Now,
	}
}

// StartJob submits one OCR analysis for the uploaded object and records the job as STARTED.
// Failures are returned to the caller without retrying.
func (o *Orchestrator) StartJob(ctx context.Context, event jobModel.ObjectCreatedEvent) (jobModel.IngestionJob, error) {
	if event.Bucket == "" || event.Key == "" {
		return jobModel.IngestionJob{}, fmt.Errorf("%w: object event needs bucket and key", commonModels.ErrValidation)
	}
	log := logger.FromContext(ctx).With("bucket", event.Bucket, "key", event.Key)

	callCtx, cancel := context.WithTimeout(ctx, config.OCRCallTimeout)
	defer cancel()

	jobId, err := o.starter.StartAnalysis(callCtx, ocr.StartRequest{
		Bucket:               event.Bucket,
		Key:                  event.Key,
		Features:             []string{ocr.FeatureForms, ocr.FeatureTables},
		NotificationTopicArn: o.target.TopicArn,
		NotificationRoleArn:  o.target.RoleArn,
		OutputBucket:         o.target.OutputBucket,
		OutputPrefix:         o.target.OutputPrefix,
		ClientRequestToken:   requestToken(event),
	})
	if err != nil {
		log.Error("could not start OCR job", "error", err)
		return jobModel.IngestionJob{}, err
	}

	now := o.now().UTC()
	job := jobModel.IngestionJob{
		Id:           jobId,
		TraceId:      traceFrom(ctx),
		SourceBucket: event.Bucket,
		SourceKey:    event.Key,
		Status:       jobModel.JobStatusStarted,
		CreatedTime:  now,
		UpdatedTime:  now,
	}
	// a redelivered event, or a completion that got here first, keeps the stored record
	stored, created, err := o.jobs.CreateJob(ctx, job)
	if err != nil {
		log.Error("could not record job", "jobId", jobId, "error", err)
		if !errors.Is(err, commonModels.ErrTransport) {
			err = fmt.Errorf("%w: saving job %s: %w", commonModels.ErrTransport, jobId, err)
		}
		return job, err
	}
	if !created {
		log.Info("OCR job already tracked", "jobId", jobId, "status", stored.Status)
		return stored, nil
	}
	metrics.RecordJobTransition(string(jobModel.JobStatusStarted))
	log.Info("ingestion job started", "jobId", jobId)
	return stored, nil
}

// requestToken is stable for one upload so duplicate events map to one OCR job.
func requestToken(event jobModel.ObjectCreatedEvent) string {
	sum := sha256.Sum256([]byte(event.Bucket + "/" + event.Key + "@" + event.Sequencer))
	return hex.EncodeToString(sum[:])
}

func traceFrom(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}
