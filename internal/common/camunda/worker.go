// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc matches the Handle method every task worker exposes.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerOptions controls job activation for one task type.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. A panicking handler is logged and
// the job left to time out, so one bad payload cannot stop the worker.
func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler HandlerFunc, logger *zap.Logger) *CamundaWorker {
	log := logger.With(zap.String("taskType", taskType))

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Recover(handler, log)).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Name(fmt.Sprintf("qris-workers/%s", taskType)).
		Open()

	log.Info("worker started",
		zap.Int("maxJobsActive", opts.MaxJobsActive),
		zap.Duration("timeout", opts.Timeout))

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// Recover wraps handler so a panic is logged instead of crashing the poller.
func Recover(handler HandlerFunc, logger *zap.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panicked",
					zap.Any("panic", r),
					zap.Int64("jobKey", job.Key))
			}
		}()
		handler(client, job)
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker")
	w.worker.Close()
	w.worker.AwaitClose()
}
