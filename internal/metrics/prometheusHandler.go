package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countTasksInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_tasks_in_queue",
	Help: "Number of ingestion tasks waiting for a worker",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var jobTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingestion_job_transitions_total",
	Help: "Ingestion job state transitions labelled by target status",
}, []string{"status"})

var unexpectedStatusCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingestion_unexpected_status_total",
	Help: "Completion notifications carrying an unknown OCR status, flagged for review",
})

var duplicateDeliveryCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingestion_duplicate_delivery_total",
	Help: "Completion notifications for jobs already in a terminal state",
})

var retryCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dependency_retries_total",
	Help: "Retries of transient dependency failures",
}, []string{"service"})

var rejectedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "queue_rejected_messages_total",
	Help: "Queue messages that could not be parsed",
}, []string{"queue"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementTasksInQueue() {
	countTasksInQueue.Inc()
}

func DecrementTasksInQueue() {
	countTasksInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func RecordJobTransition(status string) {
	jobTransitions.WithLabelValues(status).Inc()
}

func IncrementUnexpectedStatus() {
	unexpectedStatusCount.Inc()
}

func IncrementDuplicateDelivery() {
	duplicateDeliveryCount.Inc()
}

func IncrementRetryCount(service string) {
	retryCount.WithLabelValues(service).Inc()
}

func IncrementRejectedMessage(queue string) {
	rejectedMessages.WithLabelValues(queue).Inc()
}

var taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingestion_task_duration_seconds",
	Help:    "Total time spent processing one ingestion task.",
	Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureTaskMetrics(label string, timeElapsed time.Duration) {
	taskDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
