package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger = logger_i.NewLogger("Qdrant")

// pointNamespace maps document ids onto stable qdrant point ids.
var pointNamespace = uuid.MustParse("6f1c6d0e-3a53-4c59-9d0b-4b8a3f7c2e11")

const (
	payloadDocumentId = "document_id"
	payloadText       = "text_content"
	payloadTimestamp  = "timestamp"
)

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
	dimension  uint64
}

// GetQdrantClient connects and makes sure the collection exists. It returns nil when qdrant is unreachable.
func GetQdrantClient(ctx context.Context) *ClientHolder {
	host, port := config.QdrantAddress()
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		APIKey:   config.QdrantAPIKey(),
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate", "error", err)
		return nil
	}

	holder := &ClientHolder{
		QObj:       client,
		collection: config.QdrantCollection(),
		dimension:  uint64(config.EmbeddingDimension),
	}

	initCtx, cancel := context.WithTimeout(ctx, config.IndexWriteTimeout)
	defer cancel()
	if err = holder.EnsureCollection(initCtx); err != nil {
		logger.Error("could not create collection", "collectionName", holder.collection, "error", err)
		_ = client.Close()
		return nil
	}

	go closeQdrant(ctx, client)
	return holder
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

// PointID is the qdrant point id used for a document id.
func PointID(documentId string) string {
	return uuid.NewSHA1(pointNamespace, []byte(documentId)).String()
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	if db.collection == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, db.collection)
	if err != nil {
		return classify(commonModels.ErrIndexWriteFailed, err)
	}
	if exists {
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classify(commonModels.ErrIndexWriteFailed, err)
	}
	logger.Info("created collection", "collectionName", db.collection, "dimension", db.dimension)
	return nil
}

func (db *ClientHolder) UpsertDocument(ctx context.Context, doc commonModels.IndexedDocument) error {
	if doc.DocumentId == "" {
		return fmt.Errorf("%w: empty document id", commonModels.ErrValidation)
	}
	if uint64(len(doc.Embedding)) != db.dimension {
		return fmt.Errorf("%w: vector has %d dimensions, collection expects %d", commonModels.ErrValidation, len(doc.Embedding), db.dimension)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(PointID(doc.DocumentId)),
		Vectors: qdrant.NewVectors(doc.Embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadDocumentId: doc.DocumentId,
			payloadText:       doc.TextContent,
			payloadTimestamp:  doc.Timestamp.UTC().Format(time.RFC3339Nano),
		}),
	}

	start := time.Now()
	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         []*qdrant.PointStruct{point},
		Wait:           qdrant.PtrOf(true),
	})
	metrics.CaptureExecutionMetrics("index_upsert", time.Since(start))
	if err != nil {
		logger.FromContext(ctx).Error("qdrant upsert failed", "documentId", doc.DocumentId, "error", err)
		return classify(commonModels.ErrIndexWriteFailed, err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, k int) ([]commonModels.SearchHit, error) {
	loggr := logger.FromContext(ctx)
	if k <= 0 {
		return nil, nil
	}

	start := time.Now()
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, classify(commonModels.ErrSearchUnavailable, err)
	}

	hits := make([]commonModels.SearchHit, 0, len(result))
	for _, point := range result {
		hit := commonModels.SearchHit{
			Score:       point.Score,
			DocumentId:  point.Payload[payloadDocumentId].GetStringValue(),
			TextContent: point.Payload[payloadText].GetStringValue(),
		}
		if ts, perr := time.Parse(time.RFC3339Nano, point.Payload[payloadTimestamp].GetStringValue()); perr == nil {
			hit.Timestamp = ts
		}
		hits = append(hits, hit)
	}
	loggr.Debug("qdrant search", "hits", len(hits))
	return hits, nil
}

func classify(class error, err error) error {
	wrapped := fmt.Errorf("%w: %w", class, err)
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return commonModels.Transient(wrapped)
		}
	}
	return wrapped
}
