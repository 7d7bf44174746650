package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger = logger_i.NewLogger("google_embedding")

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
}

// NewGoogleEmbedder returns nil when the genai client cannot be built.
func NewGoogleEmbedder(ctx context.Context, modelName string, apikey string) *Client {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return nil
	}
	logger.Info("Google Embedding client created", "model", modelName)
	return &Client{
		genAi:     c,
		model:     modelName,
		dimension: config.EmbeddingDimension,
	}
}

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, taskDocument)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) GetQueryEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts, taskDocument)
}

func (c *Client) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no text to embed", commonModels.ErrValidation)
	}
	log := logger.FromContext(ctx)

	start := time.Now()
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, getContent(texts), embedConfig(c.dimension, taskType))
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err, "taskType", taskType)
		return nil, classify(err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: empty response", commonModels.ErrEmbeddingUnavailable)
	}
	return toVectors(result.Embeddings, len(texts))
}

func embedConfig(dimension int32, taskType string) *genai.EmbedContentConfig {
	return &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	}
}

func toVectors(embeddings []*genai.ContentEmbedding, want int) ([][]float32, error) {
	if len(embeddings) != want {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", commonModels.ErrEmbeddingUnavailable, want, len(embeddings))
	}
	vectors := make([][]float32, want)
	for i, e := range embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at position %d", commonModels.ErrEmbeddingUnavailable, i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		})
	}
	return contents
}

func classify(err error) error {
	wrapped := fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return commonModels.Transient(wrapped)
		}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && commonModels.IsTransientStatus(apiErr.Code) {
		return commonModels.Transient(wrapped)
	}
	return wrapped
}
