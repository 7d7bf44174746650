package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/DocSearch/internal/data/store"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
)

func TestRedisMetadataStore_TerminalRecordOverwrites(t *testing.T) {
	mr, internalStore := newRedis(t)
	metaStore := store.NewRedisMetadataStore(internalStore)
	ctx := context.Background()

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := jobModel.MetadataRecord{
		DocumentId: "job-123",
		S3Path:     "s3://uploads/a.pdf",
		Status:     jobModel.JobStatusFailed,
		Timestamp:  ts,
	}
	if err := metaStore.SaveRecord(ctx, first); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	second := first
	second.Status = jobModel.JobStatusIndexed
	second.Timestamp = ts.Add(time.Minute)
	if err := metaStore.SaveRecord(ctx, second); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	got, found := metaStore.GetRecord(ctx, "job-123")
	if !found {
		t.Fatal("record not found")
	}
	if got.Status != jobModel.JobStatusIndexed || !got.Timestamp.Equal(second.Timestamp) {
		t.Errorf("expected latest record, got %+v", got)
	}
	if got.S3Path != "s3://uploads/a.pdf" {
		t.Errorf("s3 path got %s", got.S3Path)
	}
	if v := mr.HGet("doc:job-123", "status"); v != "INDEXED" {
		t.Errorf("hash field status got %q", v)
	}
}

func TestRedisMetadataStore_Missing(t *testing.T) {
	_, internalStore := newRedis(t)
	metaStore := store.NewRedisMetadataStore(internalStore)
	if _, found := metaStore.GetRecord(context.Background(), "nope"); found {
		t.Error("expected missing record")
	}
}

func TestInMemoryMetadataStore(t *testing.T) {
	s := store.InitInMemoryMetadataStore()
	ctx := context.Background()
	_ = s.SaveRecord(ctx, jobModel.MetadataRecord{DocumentId: "d", Status: jobModel.JobStatusIndexed})
	got, ok := s.GetRecord(ctx, "d")
	if !ok || got.Status != jobModel.JobStatusIndexed {
		t.Errorf("unexpected record %+v", got)
	}
}
