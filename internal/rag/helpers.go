package rag

import (
	"time"

	"github.com/akolanti/DocSearch/internal/metrics"
)

func (s *service) timed(label string, start time.Time) {
	metrics.CaptureExecutionMetrics(label, time.Since(start))
}
