package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocSearch/internal/data/store"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
)

func TestStartJob_RecordsStartedJob(t *testing.T) {
	jobs := store.InitInMemoryJobStore()
	var got ocr.StartRequest
	starter := &mockStarter{OnStart: func(ctx context.Context, req ocr.StartRequest) (string, error) {
		got = req
		return "job-123", nil
	}}
	target := NotificationTarget{TopicArn: "arn:topic", RoleArn: "arn:role", OutputBucket: "ocr-out", OutputPrefix: "raw/"}

	job, err := NewOrchestrator(starter, jobs, target).StartJob(context.Background(), jobModel.ObjectCreatedEvent{Bucket: "uploads", Key: "a.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Id != "job-123" || job.Status != jobModel.JobStatusStarted {
		t.Errorf("unexpected job %+v", job)
	}
	if starter.calls != 1 {
		t.Errorf("expected exactly one OCR start, got %d", starter.calls)
	}
	if len(got.Features) != 2 || got.Features[0] != ocr.FeatureForms || got.Features[1] != ocr.FeatureTables {
		t.Errorf("features got %v", got.Features)
	}
	if got.NotificationTopicArn != "arn:topic" || got.OutputBucket != "ocr-out" {
		t.Errorf("notification target not forwarded: %+v", got)
	}
	if got.ClientRequestToken == "" {
		t.Error("expected a client request token")
	}
	stored, found, _ := jobs.GetJob(context.Background(), "job-123")
	if !found || stored.SourceLocation() != "s3://uploads/a.pdf" {
		t.Errorf("job not stored correctly: %+v", stored)
	}
}

func TestStartJob_FailureIsSynchronous(t *testing.T) {
	jobs := store.InitInMemoryJobStore()
	starter := &mockStarter{OnStart: func(ctx context.Context, req ocr.StartRequest) (string, error) {
		return "", commonModels.Transient(errors.New("quota exceeded"))
	}}

	_, err := NewOrchestrator(starter, jobs, NotificationTarget{}).StartJob(context.Background(), jobModel.ObjectCreatedEvent{Bucket: "b", Key: "k"})
	if err == nil {
		t.Fatal("expected error")
	}
	if starter.calls != 1 {
		t.Errorf("orchestrator must not retry, got %d calls", starter.calls)
	}
}

func TestStartJob_RejectsIncompleteEvent(t *testing.T) {
	starter := &mockStarter{OnStart: func(ctx context.Context, req ocr.StartRequest) (string, error) {
		return "x", nil
	}}
	_, err := NewOrchestrator(starter, store.InitInMemoryJobStore(), NotificationTarget{}).StartJob(context.Background(), jobModel.ObjectCreatedEvent{Bucket: "b"})
	if !errors.Is(err, commonModels.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if starter.calls != 0 {
		t.Error("OCR must not be called for an invalid event")
	}
}

func TestStartJob_RedeliveryKeepsProgress(t *testing.T) {
	jobs := store.InitInMemoryJobStore()
	_ = jobs.SaveJob(context.Background(), jobModel.IngestionJob{Id: "job-9", Status: jobModel.JobStatusIndexed})
	starter := &mockStarter{OnStart: func(ctx context.Context, req ocr.StartRequest) (string, error) {
		return "job-9", nil
	}}

	job, err := NewOrchestrator(starter, jobs, NotificationTarget{}).StartJob(context.Background(), jobModel.ObjectCreatedEvent{Bucket: "b", Key: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != jobModel.JobStatusIndexed {
		t.Errorf("existing job must not be reset, got %s", job.Status)
	}
}

// raceStore runs beforeCreate once, just before the orchestrator writes its record.
type raceStore struct {
	*store.InMemoryJobStore
	beforeCreate func()
}

func (r *raceStore) CreateJob(ctx context.Context, job jobModel.IngestionJob) (jobModel.IngestionJob, bool, error) {
	if r.beforeCreate != nil {
		hook := r.beforeCreate
		r.beforeCreate = nil
		hook()
	}
	return r.InMemoryJobStore.CreateJob(ctx, job)
}

func TestStartJob_CompletionFirstWins(t *testing.T) {
	ctx := context.Background()
	jobs := &raceStore{InMemoryJobStore: store.InitInMemoryJobStore()}
	embedder := &mockEmbedder{OnEmbed: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 1}, nil
	}}
	c := NewCoordinator(jobs, nil, NewAggregator(pagerFor([]string{"fast document"})), embedder, &mockIndex{}, fastConfig())
	jobs.beforeCreate = func() {
		job, err := c.HandleNotification(ctx, jobModel.CompletionNotification{
			JobId: "job-fast", Status: jobModel.OCRStatusSucceeded, Bucket: "b", Key: "k",
		})
		if err != nil || job.Status != jobModel.JobStatusIndexed {
			t.Errorf("completion failed: %s (%v)", job.Status, err)
		}
	}
	starter := &mockStarter{OnStart: func(ctx context.Context, req ocr.StartRequest) (string, error) {
		return "job-fast", nil
	}}

	job, err := NewOrchestrator(starter, jobs, NotificationTarget{}).StartJob(ctx, jobModel.ObjectCreatedEvent{Bucket: "b", Key: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != jobModel.JobStatusIndexed {
		t.Errorf("StartJob must return the stored job, got %s", job.Status)
	}
	stored, _, _ := jobs.GetJob(ctx, "job-fast")
	if stored.Status != jobModel.JobStatusIndexed {
		t.Errorf("STARTED must not overwrite a finished job, stored status %s", stored.Status)
	}
}

func TestRequestToken_StablePerUpload(t *testing.T) {
	a := requestToken(jobModel.ObjectCreatedEvent{Bucket: "b", Key: "k", Sequencer: "01"})
	b := requestToken(jobModel.ObjectCreatedEvent{Bucket: "b", Key: "k", Sequencer: "01"})
	c := requestToken(jobModel.ObjectCreatedEvent{Bucket: "b", Key: "k", Sequencer: "02"})
	if a != b {
		t.Error("same upload must give the same token")
	}
	if a == c {
		t.Error("a re-upload must give a new token")
	}
	if len(a) > 64 {
		t.Errorf("token too long: %d", len(a))
	}
}
