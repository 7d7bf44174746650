package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("openai_embedding")

// Client works against OpenAI and any server speaking its embeddings API.
type Client struct {
	api       openai.Client
	model     string
	dimension int64
}

func New(apiKey, baseURL, model string) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// retries are owned by the ingestion coordinator
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		api:       openai.NewClient(opts...),
		model:     model,
		dimension: int64(config.EmbeddingDimension),
	}
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no text to embed", commonModels.ErrValidation)
	}

	start := time.Now()
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(c.dimension),
	})
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		logger.FromContext(ctx).Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, classify(err)
	}
	return toVectors(resp.Data, len(texts))
}

// toVectors places each embedding by its reported index.
func toVectors(data []openai.Embedding, want int) ([][]float32, error) {
	if len(data) != want {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", commonModels.ErrEmbeddingUnavailable, len(data), want)
	}
	vectors := make([][]float32, want)
	for _, d := range data {
		if d.Index < 0 || int(d.Index) >= want || len(d.Embedding) == 0 {
			return nil, fmt.Errorf("%w: malformed embedding at index %d", commonModels.ErrEmbeddingUnavailable, d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: missing embedding for position %d", commonModels.ErrEmbeddingUnavailable, i)
		}
	}
	return vectors, nil
}

// classify treats API errors by status code and anything else, such as a dropped connection, as transient.
func classify(err error) error {
	wrapped := fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && !commonModels.IsTransientStatus(apiErr.StatusCode) {
		return wrapped
	}
	return commonModels.Transient(wrapped)
}
