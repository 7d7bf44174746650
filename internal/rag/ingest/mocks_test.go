package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/rag/ocr"
	"github.com/akolanti/DocSearch/internal/retry"
)

type mockStarter struct {
	OnStart func(ctx context.Context, req ocr.StartRequest) (string, error)
	calls   int
}

func (m *mockStarter) StartAnalysis(ctx context.Context, req ocr.StartRequest) (string, error) {
	m.calls++
	return m.OnStart(ctx, req)
}

type mockPager struct {
	OnPage func(ctx context.Context, jobId, token string) (ocr.Page, error)
}

func (m *mockPager) GetResultPage(ctx context.Context, jobId string, token string) (ocr.Page, error) {
	return m.OnPage(ctx, jobId, token)
}

// pagerFor serves pages[0] for the empty token and pages[i] for token "p<i>".
func pagerFor(pages ...[]string) *mockPager {
	return &mockPager{OnPage: func(ctx context.Context, jobId, token string) (ocr.Page, error) {
		idx := 0
		if token != "" {
			_, _ = fmt.Sscanf(token, "p%d", &idx)
		}
		if idx >= len(pages) {
			return ocr.Page{}, fmt.Errorf("unknown token %q", token)
		}
		page := ocr.Page{Lines: pages[idx]}
		if idx+1 < len(pages) {
			page.NextToken = fmt.Sprintf("p%d", idx+1)
		}
		return page, nil
	}}
}

type mockEmbedder struct {
	OnEmbed func(ctx context.Context, text string) ([]float32, error)
	mu      sync.Mutex
	calls   int
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.OnEmbed(ctx, text)
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
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

func (m *mockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockIndex struct {
	OnUpsert func(ctx context.Context, doc commonModels.IndexedDocument) error
	mu       sync.Mutex
	upserts  []commonModels.IndexedDocument
}

func (m *mockIndex) EnsureCollection(ctx context.Context) error { return nil }

func (m *mockIndex) UpsertDocument(ctx context.Context, doc commonModels.IndexedDocument) error {
	m.mu.Lock()
	m.upserts = append(m.upserts, doc)
	m.mu.Unlock()
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, doc)
	}
	return nil
}

func (m *mockIndex) Search(ctx context.Context, vector []float32, k int) ([]commonModels.SearchHit, error) {
	return nil, nil
}

func constantVector(dim int, value float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = value
	}
	return v
}

func fastConfig() CoordinatorConfig {
	p := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Label: "test"}
	return CoordinatorConfig{
		ChunkLimit:       1000,
		FanOut:           4,
		EmbeddingRetry:   p,
		IndexRetry:       p,
		EmbeddingTimeout: time.Second,
		IndexTimeout:     time.Second,
	}
}
