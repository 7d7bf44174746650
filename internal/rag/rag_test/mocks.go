package rag_test

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
)

// MockStarter implements ocr.JobStarter
type MockStarter struct {
	OnStartAnalysis func(ctx context.Context, req ocr.StartRequest) (string, error)
}

func (m *MockStarter) StartAnalysis(ctx context.Context, req ocr.StartRequest) (string, error) {
	if m.OnStartAnalysis != nil {
		return m.OnStartAnalysis(ctx, req)
	}
	return "job-123", nil
}

// MockPager implements ocr.ResultPager
type MockPager struct {
	OnGetResultPage func(ctx context.Context, jobId, token string) (ocr.Page, error)
}

func (m *MockPager) GetResultPage(ctx context.Context, jobId string, token string) (ocr.Page, error) {
	if m.OnGetResultPage != nil {
		return m.OnGetResultPage(ctx, jobId, token)
	}
	return ocr.Page{Lines: []string{"default line"}}, nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.GetEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// MockRagService implements rag.Service for worker and handler tests.
type MockRagService struct {
	OnStartIngestion   func(ctx context.Context, event jobModel.ObjectCreatedEvent) (jobModel.IngestionJob, error)
	OnHandleCompletion func(ctx context.Context, n jobModel.CompletionNotification) (jobModel.IngestionJob, error)
	OnSearch           func(ctx context.Context, queryText string, k int) ([]commonModels.SearchResult, error)
	OnJobStatus        func(ctx context.Context, jobId string) (jobModel.IngestionJob, error)

	mu          sync.Mutex
	Completions []jobModel.CompletionNotification
	Starts      []jobModel.ObjectCreatedEvent
}

func (m *MockRagService) StartIngestion(ctx context.Context, event jobModel.ObjectCreatedEvent) (jobModel.IngestionJob, error) {
	m.mu.Lock()
	m.Starts = append(m.Starts, event)
	m.mu.Unlock()
	if m.OnStartIngestion != nil {
		return m.OnStartIngestion(ctx, event)
	}
	return jobModel.IngestionJob{Id: "job-123", SourceBucket: event.Bucket, SourceKey: event.Key, Status: jobModel.JobStatusStarted}, nil
}

func (m *MockRagService) HandleCompletion(ctx context.Context, n jobModel.CompletionNotification) (jobModel.IngestionJob, error) {
	m.mu.Lock()
	m.Completions = append(m.Completions, n)
	m.mu.Unlock()
	if m.OnHandleCompletion != nil {
		return m.OnHandleCompletion(ctx, n)
	}
	return jobModel.IngestionJob{Id: n.JobId, Status: jobModel.JobStatusIndexed}, nil
}

func (m *MockRagService) Search(ctx context.Context, queryText string, k int) ([]commonModels.SearchResult, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, queryText, k)
	}
	return []commonModels.SearchResult{}, nil
}

func (m *MockRagService) JobStatus(ctx context.Context, jobId string) (jobModel.IngestionJob, error) {
	if m.OnJobStatus != nil {
		return m.OnJobStatus(ctx, jobId)
	}
	return jobModel.IngestionJob{}, errors.New("not configured")
}

func (m *MockRagService) CompletionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Completions)
}

func (m *MockRagService) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Starts)
}
