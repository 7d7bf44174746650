package vectorDB

import (
	"context"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
)

// DocumentIndex stores one vector per document. UpsertDocument is idempotent on DocumentId:
// writing the same id again replaces vector and payload.
type DocumentIndex interface {
	EnsureCollection(ctx context.Context) error
	UpsertDocument(ctx context.Context, doc commonModels.IndexedDocument) error
	// Search returns up to k hits, best first.
	Search(ctx context.Context, vector []float32, k int) ([]commonModels.SearchHit, error)
}
