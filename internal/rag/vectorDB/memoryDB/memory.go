package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

var logger = logger_i.NewLogger("InMem Index")

// Index is a process-local DocumentIndex with exact cosine KNN.
type Index struct {
	lock      *sync.RWMutex
	documents map[string]commonModels.IndexedDocument
	dimension int
}

func New(dimension int) *Index {
	logger.Warn("using in-memory vector index, documents are lost on restart")
	return &Index{
		lock:      new(sync.RWMutex),
		documents: make(map[string]commonModels.IndexedDocument),
		dimension: dimension,
	}
}

func (idx *Index) EnsureCollection(ctx context.Context) error {
	return nil
}

func (idx *Index) UpsertDocument(ctx context.Context, doc commonModels.IndexedDocument) error {
	if doc.DocumentId == "" {
		return fmt.Errorf("%w: empty document id", commonModels.ErrValidation)
	}
	if idx.dimension > 0 && len(doc.Embedding) != idx.dimension {
		return fmt.Errorf("%w: vector has %d dimensions, index expects %d", commonModels.ErrValidation, len(doc.Embedding), idx.dimension)
	}
	stored := doc
	stored.Embedding = append([]float32(nil), doc.Embedding...)

	idx.lock.Lock()
	defer idx.lock.Unlock()
	idx.documents[doc.DocumentId] = stored
	return nil
}

func (idx *Index) Search(ctx context.Context, vector []float32, k int) ([]commonModels.SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}

	idx.lock.RLock()
	hits := make([]commonModels.SearchHit, 0, len(idx.documents))
	for _, doc := range idx.documents {
		if len(doc.Embedding) != len(vector) {
			continue
		}
		hits = append(hits, commonModels.SearchHit{
			Score:       cosine(vector, doc.Embedding),
			DocumentId:  doc.DocumentId,
			TextContent: doc.TextContent,
			Timestamp:   doc.Timestamp,
		})
	}
	idx.lock.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].DocumentId < hits[j].DocumentId
		}
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (idx *Index) Len() int {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	return len(idx.documents)
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
