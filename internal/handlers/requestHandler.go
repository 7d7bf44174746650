package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/akolanti/DocSearch/internal/adapter"
	"github.com/akolanti/DocSearch/internal/adapter/utils"
	"github.com/akolanti/DocSearch/internal/api"
	"github.com/akolanti/DocSearch/internal/domain/jobModel"
	"github.com/akolanti/DocSearch/internal/rag"
	"github.com/akolanti/DocSearch/internal/rag/embedding"
	"github.com/akolanti/DocSearch/internal/storage/s3Upload"
	"github.com/akolanti/DocSearch/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

// UploadIssuer hands out presigned upload URLs.
type UploadIssuer interface {
	IssueUploadURL(ctx context.Context, fileName, fileType string) (s3Upload.UploadTicket, error)
}

type Handler struct {
	ragService rag.Service
	uploads    UploadIssuer
	health     embedding.HealthChecker
}

// NewHandler builds the request handlers. uploads and health may be nil when the
// upload bucket or the embedding health endpoint is not configured.
func NewHandler(ragService rag.Service, uploads UploadIssuer, health embedding.HealthChecker) *Handler {
	return &Handler{ragService: ragService, uploads: uploads, health: health}
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HealthHandler godoc
// @Summary      Dependency health
// @Description  Checks that the embedding endpoint answers its ping.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	res := api.HealthResponse{Status: "ok", Embedding: "not checked"}
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			logRH.FromContext(r.Context()).Warn("embedding endpoint unhealthy", "error", err)
			res.Status, res.Embedding = "degraded", err.Error()
			writeJsonResponse(w, http.StatusServiceUnavailable, res)
			return
		}
		res.Embedding = "ok"
	}
	writeJsonResponse(w, http.StatusOK, res)
}

// SearchHandler godoc
// @Summary      Semantic search
// @Description  Embeds the query text and returns the k most similar indexed documents.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest   true  "Query text and optional k"
// @Success      200      {object}  api.SearchResponse
// @Failure      400      {object}  api.ErrorBody  "Missing or empty query_text"
// @Failure      500      {object}  api.ErrorBody  "Embedding or index unavailable"
// @Router       /search [post]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.FromContext(r.Context())

	var req api.SearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Warn("Bad search request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "request body must be JSON with query_text", false)
		return
	}
	if strings.TrimSpace(req.QueryText) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "query_text is required", false)
		return
	}

	results, err := h.ragService.Search(r.Context(), req.QueryText, req.K)
	if err != nil {
		log.Error("search failed", "error", err)
		writeError(w, err, "search is unavailable")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(req.QueryText, results))
}

// PostIngestHandler godoc
// @Summary      Start ingestion of an uploaded object
// @Description  Starts OCR for an object already in the upload bucket. Normally triggered by the S3 event queue.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest  true  "Bucket and key of the uploaded document"
// @Success      202      {object}  api.JobAccepted
// @Failure      400      {object}  api.ErrorBody
// @Failure      500      {object}  api.ErrorBody
// @Router       /ingest [post]
func (h *Handler) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.FromContext(r.Context())

	var req api.IngestRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "request body must be JSON with bucket and key", false)
		return
	}

	job, err := h.ragService.StartIngestion(r.Context(), jobModel.ObjectCreatedEvent{Bucket: req.Bucket, Key: req.Key})
	if err != nil {
		log.Error("could not start ingestion", "bucket", req.Bucket, "key", req.Key, "error", err)
		writeError(w, err, "could not start ingestion")
		return
	}
	log.Info("Ingestion started", "jobId", job.Id)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToJobAccepted(job.Id))
}

// GetStatusHandler godoc
// @Summary      Get ingestion job status
// @Description  Retrieves the current state of an ingestion job by its OCR job id.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobStatusResponse
// @Failure      404  {object}  api.ErrorBody  "Job not found"
// @Router       /status/{id} [get]
func (h *Handler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "job id is required", false)
		return
	}

	job, err := h.ragService.JobStatus(r.Context(), id)
	if err != nil {
		writeError(w, err, "could not read job status")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToJobStatusResponse(job))
}

// PostUploadHandler godoc
// @Summary      Get an upload URL
// @Description  Returns a presigned PUT URL, valid for five minutes, for uploading a document to the ingestion bucket.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.UploadRequest  true  "File name and content type"
// @Success      200      {object}  api.UploadResponse
// @Failure      400      {object}  api.ErrorBody
// @Failure      503      {object}  api.ErrorBody  "Uploads are not configured"
// @Router       /upload [post]
func (h *Handler) PostUploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if h.uploads == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "uploads are not configured", false)
		return
	}

	var req api.UploadRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "request body must be JSON with fileName and fileType", false)
		return
	}
	if req.FileName == "" || req.FileType == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "fileName and fileType are required", false)
		return
	}

	ticket, err := h.uploads.IssueUploadURL(r.Context(), req.FileName, req.FileType)
	if err != nil {
		logRH.FromContext(r.Context()).Error("could not issue upload url", "error", err)
		writeError(w, err, "could not issue upload url")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(ticket))
}
