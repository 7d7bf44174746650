package openaiEmbedding

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/openai/openai-go"
)

func apiError(code int) *openai.Error {
	return &openai.Error{
		StatusCode: code,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/embeddings", nil),
		Response:   &http.Response{StatusCode: code},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limited", apiError(http.StatusTooManyRequests), true},
		{"server error", apiError(http.StatusBadGateway), true},
		{"bad request", apiError(http.StatusBadRequest), false},
		{"unauthorized", apiError(http.StatusUnauthorized), false},
		{"connection reset", errors.New("read: connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			if !errors.Is(err, commonModels.ErrEmbeddingUnavailable) {
				t.Errorf("class lost: %v", err)
			}
			if commonModels.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable got %v, want %v", commonModels.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestToVectors_PlacesByIndex(t *testing.T) {
	vectors, err := toVectors([]openai.Embedding{
		{Index: 1, Embedding: []float64{0, 1}},
		{Index: 0, Embedding: []float64{1, 0}},
	}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Errorf("vectors not placed by index: %v", vectors)
	}
}

func TestToVectors_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []openai.Embedding
	}{
		{"count mismatch", []openai.Embedding{{Index: 0, Embedding: []float64{1}}}},
		{"index out of range", []openai.Embedding{{Index: 0, Embedding: []float64{1}}, {Index: 2, Embedding: []float64{1}}}},
		{"duplicate index", []openai.Embedding{{Index: 0, Embedding: []float64{1}}, {Index: 0, Embedding: []float64{1}}}},
		{"empty vector", []openai.Embedding{{Index: 0, Embedding: []float64{1}}, {Index: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toVectors(tt.data, 2)
			if !errors.Is(err, commonModels.ErrEmbeddingUnavailable) {
				t.Errorf("expected embedding unavailable, got %v", err)
			}
		})
	}
}
