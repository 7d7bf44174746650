package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/data/redisStore"
	"github.com/akolanti/DocSearch/internal/data/store"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redisStore.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewStoreFromClient(client)
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job-123"

	testJob := jobModel.IngestionJob{
		Id:           jobID,
		SourceBucket: "uploads",
		SourceKey:    "abc_invoice.pdf",
		Status:       jobModel.JobStatusStarted,
		CreatedTime:  time.Now().UTC(),
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found, err := jobStore.GetJob(ctx, jobID)
		if err != nil || !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.SourceLocation() != "s3://uploads/abc_invoice.pdf" {
			t.Errorf("Data mismatch! Got %s", retrievedJob.SourceLocation())
		}
		if retrievedJob.Status != jobModel.JobStatusStarted {
			t.Errorf("Status got %s, want %s", retrievedJob.Status, jobModel.JobStatusStarted)
		}
	})

	t.Run("Status update overwrites", func(t *testing.T) {
		updated := testJob
		updated.Status = jobModel.JobStatusFailed
		updated.FailureReason = "OCR job failed"
		if err := jobStore.SaveJob(ctx, updated); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
		got, _, _ := jobStore.GetJob(ctx, jobID)
		if got.Status != jobModel.JobStatusFailed || got.FailureReason != "OCR job failed" {
			t.Errorf("expected FAILED with reason, got %+v", got)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found, err := jobStore.GetJob(ctx, "ghost-id")
		if found || err != nil {
			t.Errorf("Expected found=false and no error for non-existent key, got %v %v", found, err)
		}
	})

	t.Run("Read error is not a missing job", func(t *testing.T) {
		mr.SetError("LOADING Redis is loading the dataset in memory")
		defer mr.SetError("")

		_, found, err := jobStore.GetJob(ctx, jobID)
		if found {
			t.Error("found must be false when the read failed")
		}
		if !errors.Is(err, commonModels.ErrTransport) || !commonModels.IsRetryable(err) {
			t.Errorf("expected a retryable transport error, got %v", err)
		}
	})
}

func TestRedisJobStore_CreateJobKeepsExisting(t *testing.T) {
	mr, internalStore := newRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)
	ctx := context.Background()

	stored, created, err := jobStore.CreateJob(ctx, jobModel.IngestionJob{Id: "j1", Status: jobModel.JobStatusStarted})
	if err != nil || !created || stored.Status != jobModel.JobStatusStarted {
		t.Fatalf("first create: %+v %v %v", stored, created, err)
	}

	_ = jobStore.SaveJob(ctx, jobModel.IngestionJob{Id: "j1", Status: jobModel.JobStatusIndexed})
	stored, created, err = jobStore.CreateJob(ctx, jobModel.IngestionJob{Id: "j1", Status: jobModel.JobStatusStarted})
	if err != nil || created {
		t.Fatalf("second create must not write, got created=%v err=%v", created, err)
	}
	if stored.Status != jobModel.JobStatusIndexed {
		t.Errorf("expected the stored INDEXED job back, got %s", stored.Status)
	}
	got, _, _ := jobStore.GetJob(ctx, "j1")
	if got.Status != jobModel.JobStatusIndexed {
		t.Errorf("stored job was overwritten: %s", got.Status)
	}

	mr.SetError("READONLY You can't write against a read only replica.")
	defer mr.SetError("")
	if _, _, err = jobStore.CreateJob(ctx, jobModel.IngestionJob{Id: "j2"}); !errors.Is(err, commonModels.ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestRedisJobStore_ConcurrentWriters(t *testing.T) {
	_, internalStore := newRedis(t)
	jobStore := store.NewRedisJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.IngestionJob{Id: "race-job", Status: jobModel.JobStatusExtracting}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found, _ := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("expected a single record after concurrent saves")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	s := store.InitInMemoryJobStore()
	ctx := context.Background()
	_ = s.SaveJob(ctx, jobModel.IngestionJob{Id: "a", Status: jobModel.JobStatusStarted})
	_ = s.SaveJob(ctx, jobModel.IngestionJob{Id: "a", Status: jobModel.JobStatusIndexed})

	got, found, err := s.GetJob(ctx, "a")
	if err != nil || !found || got.Status != jobModel.JobStatusIndexed {
		t.Errorf("expected latest write INDEXED, got %+v (found=%v)", got, found)
	}

	stored, created, _ := s.CreateJob(ctx, jobModel.IngestionJob{Id: "a", Status: jobModel.JobStatusStarted})
	if created || stored.Status != jobModel.JobStatusIndexed {
		t.Errorf("create must keep the existing job, got %+v created=%v", stored, created)
	}
	if _, created, _ = s.CreateJob(ctx, jobModel.IngestionJob{Id: "b"}); !created {
		t.Error("expected a new job to be created")
	}
}
