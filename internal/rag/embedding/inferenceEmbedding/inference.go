package inferenceEmbedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/customHttpClient"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

var logger = logger_i.NewLogger("inference_embedding")

// Client talks to a sentence-embedding container exposing /invocations and /ping.
type Client struct {
	endpoint string
	http     *http.Client
}

type invocationRequest struct {
	Text []string `json:"text"`
}

type invocationResponse struct {
	Embeddings json.RawMessage `json:"embeddings"`
	Error      string          `json:"error,omitempty"`
}

func New(endpoint string) *Client {
	return NewWithHTTPClient(endpoint, customHttpClient.NewPooledClient(config.EmbeddingCallTimeout))
}

func NewWithHTTPClient(endpoint string, client *http.Client) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     client,
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
	log := logger.FromContext(ctx)

	body, err := json.Marshal(invocationRequest{Text: texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/invocations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commonModels.ErrValidation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		log.Error("embedding endpoint unreachable", "error", err)
		return nil, commonModels.Transient(fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, commonModels.Transient(fmt.Errorf("%w: reading response: %w", commonModels.ErrEmbeddingUnavailable, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = fmt.Errorf("%w: endpoint returned %d: %s", commonModels.ErrEmbeddingUnavailable, resp.StatusCode, truncate(string(raw), 200))
		log.Error("embedding request rejected", "status", resp.StatusCode)
		if commonModels.IsTransientStatus(resp.StatusCode) {
			return nil, commonModels.Transient(err)
		}
		return nil, err
	}

	var parsed invocationResponse
	if err = json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", commonModels.ErrEmbeddingUnavailable, err)
	}
	vectors, err := decodeVectors(parsed.Embeddings, len(texts))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)
	}
	return vectors, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", commonModels.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping returned %d", commonModels.ErrEmbeddingUnavailable, resp.StatusCode)
	}
	return nil
}

// decodeVectors accepts a list of vectors, or a bare vector when a single text was sent.
func decodeVectors(raw json.RawMessage, want int) ([][]float32, error) {
	if len(raw) == 0 {
		return nil, errors.New("response has no embeddings")
	}

	var vectors [][]float32
	if err := json.Unmarshal(raw, &vectors); err != nil {
		var single []float32
		if err2 := json.Unmarshal(raw, &single); err2 != nil || want != 1 {
			return nil, fmt.Errorf("unexpected embeddings shape: %w", err)
		}
		vectors = [][]float32{single}
	}

	if len(vectors) != want {
		return nil, fmt.Errorf("got %d vectors for %d texts", len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty vector at position %d", i)
		}
	}
	return vectors, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
