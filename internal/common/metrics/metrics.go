// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AssessmentSessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_sessions_started_total",
			Help: "Assessment sessions started per visa type",
		},
		[]string{"visa_type"},
	)

	AssessmentSessionsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_sessions_finished_total",
			Help: "Assessment sessions that reached the end of the question graph",
		},
		[]string{"visa_type"},
	)

	QuestionSetSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "question_set_loads_total",
			Help: "Question set loads by source (backend, cache, fallback)",
		},
		[]string{"visa_type", "source"},
	)

	ContentFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fallbacks_total",
			Help: "Content reads answered with a fallback or not-found state",
		},
		[]string{"kind", "reason"},
	)

	EnquiriesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enquiries_received_total",
			Help: "Enquiries accepted by dispatch mode",
		},
		[]string{"mode"},
	)
)
