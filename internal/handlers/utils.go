package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akolanti/DocSearch/internal/adapter"
)

const maxBodyBytes = 1 << 20

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left but logging
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string, retry bool) {
	writeJsonResponse(w, httpCode, adapter.ErrorResponse(httpCode, message, retry))
}

func writeError(w http.ResponseWriter, err error, message string) {
	code, retry := adapter.StatusFor(err)
	if code == http.StatusBadRequest || code == http.StatusNotFound {
		message = err.Error()
	}
	WriteErrorResponse(w, code, message, retry)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.FromContext(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}
