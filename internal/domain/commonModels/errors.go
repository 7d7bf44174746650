package commonModels

import (
	"context"
	"errors"
	"net"
)

var (
	ErrTransport            = errors.New("transport error")
	ErrValidation           = errors.New("validation error")
	ErrUpstreamJobFailed    = errors.New("upstream job failed")
	ErrExtractionFailed     = errors.New("extraction failed")
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrIndexWriteFailed     = errors.New("index write failed")
	ErrUnexpectedState      = errors.New("unexpected state")
	ErrInvalidQuery         = errors.New("invalid query")
	ErrSearchUnavailable    = errors.New("search unavailable")
	ErrJobNotFound          = errors.New("job not found")
)

type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

// Transient marks err as retryable. nil stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryable reports whether err is a timeout, a network failure or was marked Transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var t *transientError
	if errors.As(err, &t) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTransport) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// IsTransientStatus reports whether an HTTP status code is worth retrying.
func IsTransientStatus(code int) bool {
	return code == 429 || code >= 500
}
