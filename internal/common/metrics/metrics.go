// internal/common/metrics/metrics.go
package metrics

import (
	"time"

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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	PolicyEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_evaluations_total",
			Help: "Total number of content policy evaluations by resulting status",
		},
		[]string{"status"},
	)

	PolicyEvaluationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policy_evaluation_score",
			Help:    "Distribution of content policy scores",
			Buckets: []float64{0, 20, 40, 60, 70, 80, 85, 90, 95, 100},
		},
	)

	PolicyEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "policy_evaluation_duration_seconds",
			Help: "Duration of content policy evaluations in seconds",
		},
	)

	PolicyCheckerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_checker_failures_total",
			Help: "Total number of checker failures by category",
		},
		[]string{"category"},
	)

	PolicyReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_reloads_total",
			Help: "Total number of policy reload attempts by result",
		},
		[]string{"result"},
	)
)

// ObserveJob records the outcome of one worker job. An empty errorCode
// counts as a completion.
func ObserveJob(taskType, errorCode string, duration time.Duration) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(duration.Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

func ObserveEvaluation(status string, score int, duration time.Duration) {
	PolicyEvaluations.WithLabelValues(status).Inc()
	PolicyEvaluationScore.Observe(float64(score))
	PolicyEvaluationDuration.Observe(duration.Seconds())
}
