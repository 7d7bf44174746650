package api

import "time"

type ErrorBody struct {
	Error *OutgoingError `json:"error"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"query_text is required"`
	Retry   bool   `json:"can_retry" example:"false"`
}

// requests---------------------

type SearchRequest struct {
	QueryText string `json:"query_text" validate:"required" example:"invoice total for march"`
	K         int    `json:"k,omitempty" example:"5"`
}

type IngestRequest struct {
	Bucket string `json:"bucket" validate:"required" example:"uploads"`
	Key    string `json:"key" validate:"required" example:"3f2a_invoice.pdf"`
}

type UploadRequest struct {
	FileName string `json:"fileName" validate:"required" example:"invoice.pdf"`
	FileType string `json:"fileType" validate:"required" example:"application/pdf"`
}

// responses--------------------

type SearchResponse struct {
	QueryText string         `json:"query_text"`
	Results   []SearchResult `json:"results"`
}

type SearchResult struct {
	Score       float32   `json:"score" example:"0.83"`
	JobId       string    `json:"job_id" example:"job-123"`
	DocumentId  string    `json:"document_id" example:"job-123"`
	TextPreview string    `json:"full_text_preview"`
	Timestamp   time.Time `json:"timestamp"`
}

type JobAccepted struct {
	Id        string `json:"id" example:"job-123"`
	StatusURL string `json:"status_url" example:"status/job-123"`
}

type JobStatusResponse struct {
	Id            string    `json:"id" example:"job-123"`
	Status        string    `json:"status" example:"INDEXED"`
	Source        string    `json:"source,omitempty" example:"s3://uploads/invoice.pdf"`
	FailureReason string    `json:"failure_reason,omitempty"`
	NeedsReview   bool      `json:"needs_review,omitempty"`
	ReviewReason  string    `json:"review_reason,omitempty"`
	LineCount     int       `json:"line_count,omitempty"`
	ChunkCount    int       `json:"chunk_count,omitempty"`
	CreatedTime   time.Time `json:"created_at"`
	UpdatedTime   time.Time `json:"updated_at"`
}

type UploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Embedding string `json:"embedding" example:"ok"`
}
