package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. Implementations never retry;
// transient failures are marked with commonModels.Transient for the caller to decide.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	// BatchEmbedding returns one vector per input text, in input order.
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryEmbedder is implemented by providers that embed search queries differently from documents.
type QueryEmbedder interface {
	GetQueryEmbedding(ctx context.Context, text string) ([]float32, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}
