// internal/workers/payment/update-payment-status/handler.go
package updatepaymentstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"qris-workers/internal/common/camunda"
	"qris-workers/internal/common/database"
	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/metrics"
	"qris-workers/internal/common/observability"
)

const (
	TaskType = "update-payment-status"
)

var (
	ErrInvalidPaymentStatus      = errors.New("INVALID_PAYMENT_STATUS")
	ErrPaymentCodeNotFound       = errors.New("PAYMENT_CODE_NOT_FOUND")
	ErrPaymentStatusUpdateFailed = errors.New("PAYMENT_STATUS_UPDATE_FAILED")
)

const updateStatus = `UPDATE payment_codes
SET payment_status = $2, status_note = $3, confirmed_by = $4, updated_at = NOW()
WHERE order_id = $1`

// Publisher correlates status changes to the process instance waiting on the order.
type Publisher interface {
	PublishMessage(ctx context.Context, msg camunda.Message) error
}

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     redis.Cmdable
	publisher Publisher
	errors    *commonerrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis redis.Cmdable, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		errors: commonerrors.NewErrorHandler(log),
		logger: log,
	}
}

// WithPublisher enables the status-changed message. Without one the handler
// only updates storage.
func (h *Handler) WithPublisher(p Publisher) *Handler {
	h.publisher = p
	return h
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		bpmnErr := h.errors.HandleJobError(ctx, client, job, err)
		timer.Done(bpmnErr.Code)
		return
	}

	h.completeJob(ctx, client, job, output)
	timer.Done("")
}

func (h *Handler) execute(ctx context.Context, input *Input) (output *Output, err error) {
	ctx, span := observability.StartSpan(ctx, TaskType,
		attribute.String("orderId", input.OrderID),
		attribute.String("status", input.Status))
	defer func() { observability.EndSpan(span, err) }()

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if input.OrderID == "" {
		return nil, commonerrors.NewInvalidPaymentRequestError("orderId is required")
	}
	if !validStatuses[status] {
		return nil, commonerrors.NewInvalidPaymentStatusError(input.Status, fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, input.Status))
	}

	res, err := h.db.ExecContext(ctx, updateStatus,
		input.OrderID, status, nullable(input.Note), nullable(input.ConfirmedBy))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, commonerrors.NewQueryTimeoutError("update-payment-status")
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return nil, commonerrors.NewDatabaseConnectionFailedError(err)
		}
		return nil, commonerrors.NewPaymentStatusUpdateFailedError(input.OrderID,
			fmt.Errorf("%w: %v", ErrPaymentStatusUpdateFailed, err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, commonerrors.NewPaymentStatusUpdateFailedError(input.OrderID,
			fmt.Errorf("%w: rows affected: %v", ErrPaymentStatusUpdateFailed, err))
	}
	if rows == 0 {
		return nil, commonerrors.NewPaymentCodeNotFoundError(input.OrderID,
			fmt.Errorf("%w: orderId %s", ErrPaymentCodeNotFound, input.OrderID))
	}

	output = &Output{
		OrderID:   input.OrderID,
		Status:    status,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	// A stale cache entry only costs a regeneration, so Redis failures are logged.
	removed, err := database.DeletePattern(ctx, h.redis, fmt.Sprintf("qris:%s:*", input.OrderID))
	if err != nil {
		h.logger.Warn("failed to invalidate cached payment codes", map[string]interface{}{
			"orderId": input.OrderID,
			"error":   err,
		})
	} else {
		output.CacheKeysRemoved = removed
		output.CacheInvalidated = true
	}

	if h.publisher != nil {
		err := h.publisher.PublishMessage(ctx, camunda.Message{
			Name:           h.config.MessageName,
			CorrelationKey: input.OrderID,
			MessageID:      fmt.Sprintf("%s:%s:%s", input.OrderID, status, output.UpdatedAt),
			TTL:            h.config.MessageTTL,
			Variables:      map[string]interface{}{"orderId": input.OrderID, "paymentStatus": status},
		})
		if err != nil {
			h.logger.Warn("failed to publish status message", map[string]interface{}{
				"orderId": input.OrderID,
				"message": h.config.MessageName,
				"error":   err,
			})
		} else {
			output.MessagePublished = true
		}
	}

	h.logger.Info("payment status updated", map[string]interface{}{
		"orderId":     input.OrderID,
		"status":      status,
		"confirmedBy": input.ConfirmedBy,
	})

	return output, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
