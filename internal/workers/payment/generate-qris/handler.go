// internal/workers/payment/generate-qris/handler.go
package generateqris

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/metrics"
	"qris-workers/internal/common/money"
	"qris-workers/internal/common/observability"
	"qris-workers/internal/common/validation"
	"qris-workers/internal/qris"
)

const (
	TaskType = "generate-qris"
)

var (
	ErrInvalidPaymentRequest    = errors.New("INVALID_PAYMENT_REQUEST")
	ErrQRISGenerationFailed     = errors.New("QRIS_GENERATION_FAILED")
	ErrPaymentCodePersistFailed = errors.New("PAYMENT_CODE_PERSIST_FAILED")
)

// A new amount is a new bill, so a confirmation recorded for the old code is dropped.
const upsertPaymentCode = `INSERT INTO payment_codes (order_id, amount, payload, checksum, payment_status)
VALUES ($1, $2, $3, $4, 'unpaid')
ON CONFLICT (order_id) DO UPDATE
SET amount = EXCLUDED.amount, payload = EXCLUDED.payload, checksum = EXCLUDED.checksum,
    payment_status = CASE WHEN payment_codes.amount = EXCLUDED.amount THEN payment_codes.payment_status ELSE 'unpaid' END,
    status_note = CASE WHEN payment_codes.amount = EXCLUDED.amount THEN payment_codes.status_note END,
    confirmed_by = CASE WHEN payment_codes.amount = EXCLUDED.amount THEN payment_codes.confirmed_by END,
    updated_at = NOW()`

type Handler struct {
	config    *Config
	generator *qris.Generator
	formatter *money.Formatter
	schema    *validation.Schema
	db        *sql.DB
	redis     *redis.Client
	errors    *commonerrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, generator *qris.Generator, db *sql.DB, redis *redis.Client, log logger.Logger) (*Handler, error) {
	formatter, err := money.NewFormatter(config.Currency, config.Locale)
	if err != nil {
		return nil, fmt.Errorf("currency formatter: %w", err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		generator: generator,
		formatter: formatter,
		schema:    validation.MustCompileJSON(inputSchema),
		db:        db,
		redis:     redis,
		errors:    commonerrors.NewErrorHandler(log),
		logger:    log,
	}, nil
}

// UseInputSchema replaces the built-in input schema, typically with the one
// from the activity registry.
func (h *Handler) UseInputSchema(schemaMap map[string]interface{}) error {
	s, err := validation.Compile(schemaMap)
	if err != nil {
		return err
	}
	h.schema = s
	return nil
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
		attribute.Int64("amount", input.Amount))
	defer func() { observability.EndSpan(span, err) }()

	if err := h.validate(input); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("qris:%s:%d", input.OrderID, input.Amount)
	if cached, ok := h.fromCache(ctx, cacheKey); ok {
		metrics.QRISCacheHits.Inc()
		return h.output(input, cached, true), nil
	}

	payload, err := h.generator.Generate(input.Amount)
	if err != nil {
		return nil, commonerrors.NewQRISGenerationFailedError(fmt.Errorf("%w: %v", ErrQRISGenerationFailed, err))
	}

	entry := cachedPayment{
		Payload:     payload,
		Checksum:    payload[len(payload)-4:],
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := h.db.ExecContext(ctx, upsertPaymentCode,
		input.OrderID, input.Amount, entry.Payload, entry.Checksum); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, commonerrors.NewQueryTimeoutError("upsert-payment-code")
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return nil, commonerrors.NewDatabaseConnectionFailedError(err)
		}
		return nil, commonerrors.NewPaymentCodePersistFailedError(input.OrderID,
			fmt.Errorf("%w: %v", ErrPaymentCodePersistFailed, err))
	}

	if data, err := json.Marshal(entry); err == nil {
		if err := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); err != nil {
			h.logger.Warn("failed to cache payment code", map[string]interface{}{
				"orderId": input.OrderID,
				"error":   err,
			})
		}
	}

	metrics.QRISPayloadsGenerated.Inc()
	h.logger.Info("payment code generated", map[string]interface{}{
		"orderId":  input.OrderID,
		"amount":   input.Amount,
		"checksum": entry.Checksum,
	})

	return h.output(input, entry, false), nil
}

func (h *Handler) validate(input *Input) error {
	result, err := h.schema.Validate(input)
	if err != nil {
		return commonerrors.NewInvalidPaymentRequestError(err.Error())
	}
	if !result.Valid {
		return commonerrors.New(commonerrors.ErrCodeInvalidPaymentRequest, "Payment request failed validation",
			fmt.Errorf("%w: %s", ErrInvalidPaymentRequest, result.Summary()))
	}
	return nil
}

// fromCache treats every Redis failure as a miss.
func (h *Handler) fromCache(ctx context.Context, key string) (cachedPayment, bool) {
	var entry cachedPayment

	val, err := h.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		}
		return entry, false
	}

	if err := json.Unmarshal([]byte(val), &entry); err != nil || !qris.ValidateChecksum(entry.Payload) {
		h.logger.Warn("discarding corrupt cache entry", map[string]interface{}{"key": key})
		return entry, false
	}
	return entry, true
}

func (h *Handler) output(input *Input, entry cachedPayment, cached bool) *Output {
	return &Output{
		OrderID:         input.OrderID,
		QRISString:      entry.Payload,
		Amount:          input.Amount,
		AmountFormatted: h.formatter.Format(input.Amount),
		Checksum:        entry.Checksum,
		GeneratedAt:     entry.GeneratedAt,
		Cached:          cached,
	}
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
