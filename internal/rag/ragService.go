package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/rag/embedding"
	"github.com/akolanti/DocSearch/internal/rag/ingest"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
	"github.com/akolanti/DocSearch/internal/rag/search"
	"github.com/akolanti/DocSearch/internal/rag/vectorDB"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

/*
OPAQUE INTERFACE PATTERN

  - Service is the public contract. Workers, handlers and the MCP tools only see this.
  - service is the private implementation holding the pipeline (OCR, embedder,
    index, stores). It is lowercase so callers cannot reach those dependencies.
  - NewService wires everything once at process start; tests pass mocks through
    Dependencies without touching caller code.
*/

type Service interface {
	StartIngestion(ctx context.Context, event jobModel.ObjectCreatedEvent) (jobModel.IngestionJob, error)
	HandleCompletion(ctx context.Context, notification jobModel.CompletionNotification) (jobModel.IngestionJob, error)
	Search(ctx context.Context, queryText string, k int) ([]commonModels.SearchResult, error)
	JobStatus(ctx context.Context, jobId string) (jobModel.IngestionJob, error)
}

type Dependencies struct {
	Starter  ocr.JobStarter
	Pager    ocr.ResultPager
	Embedder embedding.Embedder
	Index    vectorDB.DocumentIndex
	Jobs     jobModel.JobStore
	// Metadata is optional.
	Metadata    jobModel.MetadataStore
	Target      ingest.NotificationTarget
	Coordinator ingest.CoordinatorConfig
}

type service struct {
	orchestrator *ingest.Orchestrator
	coordinator  *ingest.Coordinator
	query        *search.Service
	jobs         jobModel.JobStore
	logger       *logger_i.Logger
}

func NewService(deps Dependencies) Service {
	return &service{
		orchestrator: ingest.NewOrchestrator(deps.Starter, deps.Jobs, deps.Target),
		coordinator: ingest.NewCoordinator(deps.Jobs, deps.Metadata, ingest.NewAggregator(deps.Pager),
			deps.Embedder, deps.Index, deps.Coordinator),
		query:  search.NewService(deps.Embedder, deps.Index),
		jobs:   deps.Jobs,
		logger: logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) StartIngestion(ctx context.Context, event jobModel.ObjectCreatedEvent) (jobModel.IngestionJob, error) {
	defer s.timed("start_ingestion", time.Now())
	return s.orchestrator.StartJob(ctx, event)
}

func (s *service) HandleCompletion(ctx context.Context, notification jobModel.CompletionNotification) (jobModel.IngestionJob, error) {
	defer s.timed("document_ingestion", time.Now())
	job, err := s.coordinator.HandleNotification(ctx, notification)
	if err != nil {
		s.logger.FromContext(ctx).Error("completion not applied", "jobId", notification.JobId, "error", err)
	}
	return job, err
}

func (s *service) Search(ctx context.Context, queryText string, k int) ([]commonModels.SearchResult, error) {
	defer s.timed("search", time.Now())
	searchCtx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()
	return s.query.Search(searchCtx, queryText, k)
}

func (s *service) JobStatus(ctx context.Context, jobId string) (jobModel.IngestionJob, error) {
	job, found, err := s.jobs.GetJob(ctx, jobId)
	if err != nil {
		return jobModel.IngestionJob{}, err
	}
	if !found {
		return jobModel.IngestionJob{}, fmt.Errorf("%w: %s", commonModels.ErrJobNotFound, jobId)
	}
	return job, nil
}
