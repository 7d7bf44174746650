package jobModel

import (
	"context"
	"fmt"
	"time"
)

type JobStatus string

type TaskType string

const (
	JobStatusStarted    JobStatus = "STARTED"
	JobStatusExtracting JobStatus = "EXTRACTING"
	JobStatusExtracted  JobStatus = "EXTRACTED"
	JobStatusEmbedding  JobStatus = "EMBEDDING"
	JobStatusIndexed    JobStatus = "INDEXED"
	JobStatusFailed     JobStatus = "FAILED"

	TaskTypeCompletion    TaskType = "CompletionNotification"
	TaskTypeObjectCreated TaskType = "ObjectCreated"

	//status values reported by the OCR service in its completion notification
	OCRStatusSucceeded = "SUCCEEDED"
	OCRStatusFailed    = "FAILED"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusIndexed || s == JobStatusFailed
}

// IngestionJob is owned by the ingestion coordinator; nothing else mutates Status.
type IngestionJob struct {
	Id            string    `json:"job_id"`
	TraceId       string    `json:"trace_id,omitempty"`
	SourceBucket  string    `json:"source_bucket"`
	SourceKey     string    `json:"source_key"`
	Status        JobStatus `json:"status"`
	CreatedTime   time.Time `json:"created_at"`
	UpdatedTime   time.Time `json:"updated_at"`
	FailureReason string    `json:"failure_reason,omitempty"`
	NeedsReview   bool      `json:"needs_review,omitempty"`
	ReviewReason  string    `json:"review_reason,omitempty"`
	LineCount     int       `json:"line_count,omitempty"`
	ChunkCount    int       `json:"chunk_count,omitempty"`
}

func (j IngestionJob) SourceLocation() string {
	if j.SourceBucket == "" && j.SourceKey == "" {
		return ""
	}
	return fmt.Sprintf("s3://%s/%s", j.SourceBucket, j.SourceKey)
}

type ObjectCreatedEvent struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	// Sequencer orders writes to the same key; it distinguishes re-uploads.
	Sequencer string `json:"sequencer,omitempty"`
}

// CompletionNotification is the OCR service's out-of-band completion signal.
// Delivery is at-least-once.
type CompletionNotification struct {
	JobId         string `json:"job_id"`
	Status        string `json:"status"`
	Bucket        string `json:"bucket,omitempty"`
	Key           string `json:"key,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Task is one unit of work for the worker pool.
// Ack is called once the outcome is final; it is nil for tasks that did not come from a queue.
type Task struct {
	Id           string
	TraceId      string
	Type         TaskType
	Notification *CompletionNotification
	Object       *ObjectCreatedEvent
	Ack          func(ctx context.Context) error
}

type MetadataRecord struct {
	DocumentId string    `json:"document_id"`
	S3Path     string    `json:"s3_path"`
	Status     JobStatus `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// JobStore reports a failed read as an error, never as a missing job.
type JobStore interface {
	GetJob(ctx context.Context, jobId string) (IngestionJob, bool, error)
	SaveJob(ctx context.Context, job IngestionJob) error
	// CreateJob writes job only if no record exists for its id. It returns the stored job
	// and whether this call created it.
	CreateJob(ctx context.Context, job IngestionJob) (IngestionJob, bool, error)
}

type MetadataStore interface {
	SaveRecord(ctx context.Context, record MetadataRecord) error
	GetRecord(ctx context.Context, documentId string) (MetadataRecord, bool)
}
