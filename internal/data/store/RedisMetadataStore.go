package store

import (
	"context"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/data/redisStore"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

const docKeyPrefix = "doc:"

// RedisMetadataStore keeps one hash per document, rewritten at each terminal transition.
type RedisMetadataStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMetadataStore(ctx context.Context) *RedisMetadataStore {
	s := redisStore.GetRedisStore(ctx, config.RedisMetadataStore)
	if s == nil {
		return nil
	}
	return NewRedisMetadataStore(s)
}

func NewRedisMetadataStore(s *redisStore.Store) *RedisMetadataStore {
	return &RedisMetadataStore{
		store:  s,
		logger: logger_i.NewLogger("MetadataStore"),
	}
}

func (s *RedisMetadataStore) SaveRecord(ctx context.Context, record jobModel.MetadataRecord) error {
	log := s.logger.FromContext(ctx).With("documentId", record.DocumentId)
	err := s.store.HashSet(ctx, docKeyPrefix+record.DocumentId, map[string]interface{}{
		"document_id": record.DocumentId,
		"s3_path":     record.S3Path,
		"status":      string(record.Status),
		"timestamp":   record.Timestamp.UTC().Format(time.RFC3339Nano),
	}, config.RedisMetadataStoreTTL)
	if err != nil {
		log.Error("error saving metadata record", "error", err)
		return err
	}
	log.Debug("Saved metadata record", "status", record.Status)
	return nil
}

func (s *RedisMetadataStore) GetRecord(ctx context.Context, documentId string) (jobModel.MetadataRecord, bool) {
	fields, err := s.store.HashGetAll(ctx, docKeyPrefix+documentId)
	if err != nil {
		s.logger.FromContext(ctx).Error("error reading metadata record", "documentId", documentId, "error", err)
		return jobModel.MetadataRecord{}, false
	}
	if len(fields) == 0 {
		return jobModel.MetadataRecord{}, false
	}

	ts, _ := time.Parse(time.RFC3339Nano, fields["timestamp"])
	return jobModel.MetadataRecord{
		DocumentId: fields["document_id"],
		S3Path:     fields["s3_path"],
		Status:     jobModel.JobStatus(fields["status"]),
		Timestamp:  ts,
	}, true
}
