package adapter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocSearch/internal/api"
	"github.com/akolanti/DocSearch/internal/domain/commonModels"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/storage/s3Upload"
)

func ToJobAccepted(id string) api.JobAccepted {
	return api.JobAccepted{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToJobStatusResponse(job jobModel.IngestionJob) api.JobStatusResponse {
	return api.JobStatusResponse{
		Id:            job.Id,
		Status:        string(job.Status),
		Source:        job.SourceLocation(),
		FailureReason: job.FailureReason,
		NeedsReview:   job.NeedsReview,
		ReviewReason:  job.ReviewReason,
		LineCount:     job.LineCount,
		ChunkCount:    job.ChunkCount,
		CreatedTime:   job.CreatedTime,
		UpdatedTime:   job.UpdatedTime,
	}
}

// ToSearchResponse never returns a nil Results slice so an empty hit list encodes as [].
func ToSearchResponse(queryText string, results []commonModels.SearchResult) api.SearchResponse {
	out := api.SearchResponse{
		QueryText: queryText,
		Results:   make([]api.SearchResult, 0, len(results)),
	}
	for _, r := range results {
		out.Results = append(out.Results, api.SearchResult{
			Score:       r.Score,
			JobId:       r.JobId,
			DocumentId:  r.DocumentId,
			TextPreview: r.TextPreview,
			Timestamp:   r.Timestamp,
		})
	}
	return out
}

func ToUploadResponse(ticket s3Upload.UploadTicket) api.UploadResponse {
	return api.UploadResponse{
		UploadURL: ticket.UploadURL,
		FileKey:   ticket.FileKey,
		ExpiresAt: ticket.ExpiresAt,
	}
}

func ErrorResponse(code int, message string, retry bool) api.ErrorBody {
	return api.ErrorBody{
		Error: &api.OutgoingError{
			Code:    code,
			Message: message,
			Retry:   retry,
		},
	}
}

// StatusFor maps the error taxonomy onto HTTP: caller mistakes are 400, unknown jobs 404,
// anything that failed upstream is 500.
func StatusFor(err error) (code int, retry bool) {
	switch {
	case errors.Is(err, commonModels.ErrValidation), errors.Is(err, commonModels.ErrInvalidQuery):
		return http.StatusBadRequest, false
	case errors.Is(err, commonModels.ErrJobNotFound):
		return http.StatusNotFound, false
	default:
		return http.StatusInternalServerError, commonModels.IsRetryable(err) ||
			errors.Is(err, commonModels.ErrEmbeddingUnavailable) || errors.Is(err, commonModels.ErrSearchUnavailable)
	}
}
