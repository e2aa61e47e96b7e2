package notifypaymentinstruction

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/metrics"
	"qris-workers/internal/common/observability"
)

const (
	TaskType = "notify-payment-instruction"
)

// Executor is the part of Service the handler depends on.
type Executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config  *Config
	service Executor
	errors  *commonerrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Executor, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: service,
		errors:  commonerrors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		bpmnErr := h.errors.HandleJobError(ctx, client, job,
			commonerrors.New(commonerrors.ErrCodeParseError, "parse input", err))
		timer.Done(bpmnErr.Code)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		bpmnErr := h.errors.HandleJobError(ctx, client, job, err)
		timer.Done(bpmnErr.Code)
		return
	}

	h.completeJob(ctx, client, job, output)
	timer.Done("")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (output *Output, err error) {
	ctx, span := observability.StartSpan(ctx, TaskType, attribute.String("orderId", input.OrderID))
	defer func() { observability.EndSpan(span, err) }()

	return h.service.Execute(ctx, input)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}
