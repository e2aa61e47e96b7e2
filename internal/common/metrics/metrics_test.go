package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJobTimer(t *testing.T) {
	const task = "metrics-test"

	StartJob(task).Done("")
	StartJob(task).Done("QRIS_GENERATION_FAILED")

	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(task)))
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(task, "QRIS_GENERATION_FAILED")))
	assert.Equal(t, float64(0), testutil.ToFloat64(WorkerJobsActive.WithLabelValues(task)))
}

func TestPaymentCounters(t *testing.T) {
	before := testutil.ToFloat64(QRISVerifications.WithLabelValues("valid"))
	QRISVerifications.WithLabelValues("valid").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(QRISVerifications.WithLabelValues("valid")))

	PaymentNotifications.WithLabelValues("telegram", "sent").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(PaymentNotifications.WithLabelValues("telegram", "sent")))
}
