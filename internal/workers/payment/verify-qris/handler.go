// internal/workers/payment/verify-qris/handler.go
package verifyqris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/metrics"
	"qris-workers/internal/common/money"
	"qris-workers/internal/qris"
)

const (
	TaskType = "verify-qris"
)

var (
	ErrInvalidQRISPayload = errors.New("INVALID_QRIS_PAYLOAD")
)

type Handler struct {
	config    *Config
	formatter *money.Formatter
	errors    *commonerrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	formatter, err := money.NewFormatter(config.Currency, config.Locale)
	if err != nil {
		return nil, fmt.Errorf("currency formatter: %w", err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		formatter: formatter,
		errors:    commonerrors.NewErrorHandler(log),
		logger:    log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)

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

// execute never fails on a bad payload; it reports valid=false instead.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	payload := strings.TrimSpace(input.QRISString)
	if payload == "" {
		return nil, commonerrors.NewInvalidQRISPayloadError(fmt.Errorf("%w: qrisString is empty", ErrInvalidQRISPayload))
	}

	out := h.inspect(payload)

	if out.Valid && input.ExpectedAmount != nil {
		want := *input.ExpectedAmount
		switch {
		case !out.HasAmount:
			out.Valid = false
			out.Reason = ReasonAmountMismatch
			out.ReasonDetail = fmt.Sprintf("expected %s, payload is static", h.formatter.Format(want))
		case out.Amount != want:
			out.Valid = false
			out.Reason = ReasonAmountMismatch
			out.ReasonDetail = fmt.Sprintf("expected %s, got %s", h.formatter.Format(want), out.AmountFormatted)
		}
	}

	result := "valid"
	if !out.Valid {
		result = "invalid"
		h.logger.Info("payload rejected", map[string]interface{}{
			"reason": out.Reason,
			"detail": out.ReasonDetail,
		})
	}
	metrics.QRISVerifications.WithLabelValues(result).Inc()

	return out, nil
}

func (h *Handler) inspect(payload string) *Output {
	p, err := qris.Decode(payload)
	if p == nil {
		return &Output{Reason: reasonFor(err), ReasonDetail: err.Error()}
	}

	out := &Output{
		Valid:            err == nil,
		Checksum:         p.Checksum,
		ExpectedChecksum: p.ExpectedChecksum,
		Dynamic:          p.Dynamic(),
		HasAmount:        p.HasAmount,
		Amount:           p.Amount,
		CurrencyCode:     p.CurrencyCode,
		CountryCode:      p.CountryCode,
		MerchantName:     p.MerchantName,
		MerchantCity:     p.MerchantCity,
	}
	if p.HasAmount {
		out.AmountFormatted = h.formatter.Format(p.Amount)
	}
	if err != nil {
		out.Reason = reasonFor(err)
		out.ReasonDetail = err.Error()
	}
	return out
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, qris.ErrChecksumMismatch):
		return ReasonChecksumMismatch
	case errors.Is(err, qris.ErrMissingChecksum):
		return ReasonMissingChecksum
	case errors.Is(err, qris.ErrInvalidAmount):
		return ReasonInvalidAmount
	default:
		return ReasonMalformed
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
