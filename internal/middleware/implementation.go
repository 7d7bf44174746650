package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocSearch/internal/metrics"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
	limiter    *IPRateLimiter
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	retry        bool
}

var logger = logger_i.NewLogger("middleware")

// Chain runs every request through trace injection and, when limiter is set, per-IP rate limiting.
type Chain struct {
	limiter *IPRateLimiter
}

func NewChain(limiter *IPRateLimiter) *Chain {
	return &Chain{limiter: limiter}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := c.processRequest(requestResponseStruct{req: r, writer: rec})

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
	}
}

// Handler wraps a plain http.Handler, used for the MCP endpoint.
func (c *Chain) Handler(next http.Handler) http.Handler {
	return c.Wrap(next.ServeHTTP)
}

func (c *Chain) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger
	re.limiter = c.limiter
	re = injectTrace(re)
	if !re.badRequest.isBadRequest && re.limiter != nil {
		re = rateLimiter(re)
	}
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	return re
}

// routePattern keeps the metric label bounded: /status/{id} rather than every job id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
