package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/internal/rag/embedding"
	"github.com/akolanti/DocSearch/internal/rag/vectorDB"
	"github.com/akolanti/DocSearch/internal/retry"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

const (
	reasonOCRFailed = "OCR job failed"
	reasonNoText    = "document produced no text"
)

type CoordinatorConfig struct {
	ChunkLimit       int
	FanOut           int
	EmbeddingRetry   retry.Policy
	IndexRetry       retry.Policy
	EmbeddingTimeout time.Duration
	IndexTimeout     time.Duration
}

func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		ChunkLimit:       config.ChunkLimit(),
		FanOut:           config.EmbeddingWorkers(),
		EmbeddingRetry:   retry.DefaultPolicy("embedding"),
		IndexRetry:       retry.DefaultPolicy("index_upsert"),
		EmbeddingTimeout: config.EmbeddingCallTimeout,
		IndexTimeout:     config.IndexWriteTimeout,
	}
}

// Coordinator owns the IngestionJob state machine:
// STARTED -> EXTRACTING -> EXTRACTED -> EMBEDDING -> INDEXED, with FAILED reachable from any non-terminal state.
type Coordinator struct {
	jobs       jobModel.JobStore
	metadata   jobModel.MetadataStore
	aggregator *Aggregator
	embedder   embedding.Embedder
	index      vectorDB.DocumentIndex
	cfg        CoordinatorConfig
	now        func() time.Time
}

// NewCoordinator wires the pipeline. metadata may be nil.
func NewCoordinator(jobs jobModel.JobStore, metadata jobModel.MetadataStore, aggregator *Aggregator,
	embedder embedding.Embedder, index vectorDB.DocumentIndex, cfg CoordinatorConfig) *Coordinator {
	if cfg.FanOut < 1 {
		cfg.FanOut = 1
	}
	return &Coordinator{
		jobs:       jobs,
		metadata:   metadata,
		aggregator: aggregator,
		embedder:   embedder,
		index:      index,
		cfg:        cfg,
		now:        time.Now,
	}
}

// HandleNotification applies one OCR completion notification to its job.
// A pipeline failure is recorded on the returned job and is not an error; errors mean the
// notification was not applied. A job store read error never counts as a missing job.
func (c *Coordinator) HandleNotification(ctx context.Context, n jobModel.CompletionNotification) (jobModel.IngestionJob, error) {
	if n.JobId == "" {
		return jobModel.IngestionJob{}, fmt.Errorf("%w: notification without job id", commonModels.ErrValidation)
	}
	log := logger.FromContext(ctx).With("jobId", n.JobId, "ocrStatus", n.Status)

	job, found, err := c.jobs.GetJob(ctx, n.JobId)
	if err != nil {
		log.Error("could not read job, leaving notification for redelivery", "error", err)
		if !errors.Is(err, commonModels.ErrTransport) {
			err = fmt.Errorf("%w: reading job %s: %w", commonModels.ErrTransport, n.JobId, err)
		}
		return jobModel.IngestionJob{Id: n.JobId}, err
	}
	if !found {
		log.Warn("no record for notified job, creating one")
		now := c.now().UTC()
		job = jobModel.IngestionJob{
			Id:           n.JobId,
			TraceId:      traceFrom(ctx),
			SourceBucket: n.Bucket,
			SourceKey:    n.Key,
			Status:       jobModel.JobStatusStarted,
			CreatedTime:  now,
			UpdatedTime:  now,
		}
	}

	if job.Status.IsTerminal() {
		metrics.IncrementDuplicateDelivery()
		log.Info("job already finished, ignoring redelivery", "status", job.Status)
		return job, nil
	}

	switch n.Status {
	case jobModel.OCRStatusSucceeded:
		return c.ingest(ctx, job, log)
	case jobModel.OCRStatusFailed:
		reason := n.FailureReason
		if reason == "" {
			reason = reasonOCRFailed
		}
		return c.fail(ctx, job, reason, log)
	default:
		metrics.IncrementUnexpectedStatus()
		log.Warn("unexpected OCR status, leaving job for review", "status", job.Status)
		job.NeedsReview = true
		job.ReviewReason = fmt.Sprintf("unexpected OCR status %q", n.Status)
		job.UpdatedTime = c.now().UTC()
		if err := c.jobs.SaveJob(ctx, job); err != nil {
			log.Error("could not flag job for review", "error", err)
		}
		return job, fmt.Errorf("%w: OCR status %q for job %s", commonModels.ErrUnexpectedState, n.Status, n.JobId)
	}
}

func (c *Coordinator) ingest(ctx context.Context, job jobModel.IngestionJob, log *logger_i.Logger) (jobModel.IngestionJob, error) {
	var err error

	if job, err = c.transition(ctx, job, jobModel.JobStatusExtracting, log); err != nil {
		return job, err
	}

	doc, err := c.aggregator.Aggregate(ctx, job.Id)
	if err != nil {
		return c.fail(ctx, job, err.Error(), log)
	}
	job.LineCount = doc.LineCount
	if job, err = c.transition(ctx, job, jobModel.JobStatusExtracted, log); err != nil {
		return job, err
	}

	chunks := PrepareChunks(job.Id, doc.FullText, c.cfg.ChunkLimit)
	if len(chunks) == 0 {
		return c.fail(ctx, job, reasonNoText, log)
	}
	job.ChunkCount = len(chunks)
	if job, err = c.transition(ctx, job, jobModel.JobStatusEmbedding, log); err != nil {
		return job, err
	}

	vectors, err := c.embedChunks(ctx, chunks)
	if err != nil {
		return c.fail(ctx, job, err.Error(), log)
	}
	documentVector, err := MeanVector(vectors)
	if err != nil {
		return c.fail(ctx, job, err.Error(), log)
	}

	indexed := commonModels.IndexedDocument{
		DocumentId:  job.Id,
		TextContent: doc.FullText,
		Embedding:   documentVector,
		Timestamp:   c.now().UTC(),
	}
	err = retry.Do(ctx, c.cfg.IndexRetry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.IndexTimeout)
		defer cancel()
		return c.index.UpsertDocument(callCtx, indexed)
	})
	if err != nil {
		if !errors.Is(err, commonModels.ErrIndexWriteFailed) {
			err = fmt.Errorf("%w: %w", commonModels.ErrIndexWriteFailed, err)
		}
		return c.fail(ctx, job, err.Error(), log)
	}

	if job, err = c.transition(ctx, job, jobModel.JobStatusIndexed, log); err != nil {
		return job, err
	}
	c.recordMetadata(ctx, job, log)
	log.Info("document indexed", "lines", job.LineCount, "chunks", job.ChunkCount)
	return job, nil
}

// embedChunks embeds every chunk with at most FanOut calls in flight.
// Vectors are placed by sequence index, never by arrival order.
func (c *Coordinator) embedChunks(ctx context.Context, chunks []commonModels.TextChunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.FanOut)

	for _, chunk := range chunks {
		g.Go(func() error {
			err := retry.Do(gctx, c.cfg.EmbeddingRetry, func(ctx context.Context) error {
				callCtx, cancel := context.WithTimeout(ctx, c.cfg.EmbeddingTimeout)
				defer cancel()
				v, err := c.embedder.GetEmbedding(callCtx, chunk.Text)
				if err != nil {
					return err
				}
				vectors[chunk.SequenceIndex] = v
				return nil
			})
			if err != nil {
				if !errors.Is(err, commonModels.ErrEmbeddingUnavailable) {
					err = fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)
				}
				return fmt.Errorf("chunk %d: %w", chunk.SequenceIndex, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// MeanVector is the element-wise arithmetic mean, summed in slice order.
func MeanVector(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, errors.New("no vectors to average")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("empty embedding vector")
	}

	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(v), dim)
		}
		for j, f := range v {
			sums[j] += float64(f)
		}
	}

	mean := make([]float32, dim)
	n := float64(len(vectors))
	for j, s := range sums {
		mean[j] = float32(s / n)
	}
	return mean, nil
}

func (c *Coordinator) fail(ctx context.Context, job jobModel.IngestionJob, reason string, log *logger_i.Logger) (jobModel.IngestionJob, error) {
	log.Error("ingestion failed", "status", job.Status, "reason", reason)
	job.FailureReason = reason
	job, err := c.transition(ctx, job, jobModel.JobStatusFailed, log)
	if err != nil {
		return job, err
	}
	c.recordMetadata(ctx, job, log)
	return job, nil
}

func (c *Coordinator) transition(ctx context.Context, job jobModel.IngestionJob, status jobModel.JobStatus, log *logger_i.Logger) (jobModel.IngestionJob, error) {
	from := job.Status
	job.Status = status
	job.UpdatedTime = c.now().UTC()
	if status.IsTerminal() {
		job.NeedsReview = false
		job.ReviewReason = ""
	}
	if err := c.jobs.SaveJob(ctx, job); err != nil {
		log.Error("could not save job state", "status", status, "error", err)
		return job, fmt.Errorf("%w: saving job %s as %s: %w", commonModels.ErrTransport, job.Id, status, err)
	}
	metrics.RecordJobTransition(string(status))
	log.Debug("job transition", "from", from, "to", status)
	return job, nil
}

func (c *Coordinator) recordMetadata(ctx context.Context, job jobModel.IngestionJob, log *logger_i.Logger) {
	if c.metadata == nil {
		return
	}
	err := c.metadata.SaveRecord(ctx, jobModel.MetadataRecord{
		DocumentId: job.Id,
		S3Path:     job.SourceLocation(),
		Status:     job.Status,
		Timestamp:  job.UpdatedTime,
	})
	if err != nil {
		log.Error("could not write metadata record", "error", err)
	}
}
