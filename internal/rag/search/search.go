package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/rag/embedding"
	"github.com/akolanti/DocSearch/internal/rag/vectorDB"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

var logger = logger_i.NewLogger("Query Service")

type Service struct {
	embedder     embedding.Embedder
	index        vectorDB.DocumentIndex
	previewLimit int
}

func NewService(embedder embedding.Embedder, index vectorDB.DocumentIndex) *Service {
	return &Service{
		embedder:     embedder,
		index:        index,
		previewLimit: config.PreviewCharLimit,
	}
}

// NormalizeK applies the default for k <= 0 and the upper bound.
func NormalizeK(k int) int {
	if k <= 0 {
		return config.DefaultSearchK
	}
	if k > config.MaxSearchK {
		return config.MaxSearchK
	}
	return k
}

func (s *Service) embedQuery(ctx context.Context, queryText string) ([]float32, error) {
	if qe, ok := s.embedder.(embedding.QueryEmbedder); ok {
		return qe.GetQueryEmbedding(ctx, queryText)
	}
	return s.embedder.GetEmbedding(ctx, queryText)
}

// Search embeds queryText and returns up to k documents ordered by descending score.
func (s *Service) Search(ctx context.Context, queryText string, k int) ([]commonModels.SearchResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: query_text is empty", commonModels.ErrInvalidQuery)
	}
	k = NormalizeK(k)
	log := logger.FromContext(ctx).With("k", k)

	vector, err := s.embedQuery(ctx, queryText)
	if err != nil {
		log.Error("query embedding failed", "error", err)
		if !errors.Is(err, commonModels.ErrEmbeddingUnavailable) {
			err = fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)
		}
		return nil, err
	}

	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		log.Error("index search failed", "error", err)
		if !errors.Is(err, commonModels.ErrSearchUnavailable) {
			err = fmt.Errorf("%w: %w", commonModels.ErrSearchUnavailable, err)
		}
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]commonModels.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, commonModels.SearchResult{
			Score:       h.Score,
			JobId:       h.DocumentId,
			DocumentId:  h.DocumentId,
			TextPreview: Preview(h.TextContent, s.previewLimit),
			Timestamp:   h.Timestamp,
		})
	}
	log.Debug("search complete", "results", len(results))
	return results, nil
}

// Preview cuts text to at most limit characters without splitting a code point.
func Preview(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	cut := 0
	for i := range text {
		if cut == limit {
			return text[:i]
		}
		cut++
	}
	return text
}
