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

	QRISPayloadsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qris_payloads_generated_total",
			Help: "Dynamic QRIS payloads built from the base template",
		},
	)

	QRISCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qris_cache_hits_total",
			Help: "QRIS payloads served from Redis",
		},
	)

	QRISVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qris_verifications_total",
			Help: "QRIS payload verifications by result",
		},
		[]string{"result"},
	)

	PaymentNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_notifications_total",
			Help: "Payment instruction deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)
)

// JobTimer tracks one in-flight job for a task type.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active and starts its duration clock.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Done records the outcome. An empty errorCode counts as completed.
func (t *JobTimer) Done(errorCode string) {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}
