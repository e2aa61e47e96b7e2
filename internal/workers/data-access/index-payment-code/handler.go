// internal/workers/data-access/index-payment-code/handler.go
package indexpaymentcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"

	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/metrics"
	"qris-workers/internal/common/observability"
)

const (
	TaskType = "index-payment-code"
)

var (
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrIndexRequestFailed            = errors.New("INDEX_REQUEST_FAILED")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	errors *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		client: client,
		errors: commonerrors.NewErrorHandler(log),
		logger: log,
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
		attribute.String("index", h.config.Index))
	defer func() { observability.EndSpan(span, err) }()

	if input.OrderID == "" || input.QRISString == "" {
		return nil, commonerrors.NewInvalidPaymentRequestError("orderId and qrisString are required")
	}

	status := input.PaymentStatus
	if status == "" {
		status = "unpaid"
	}
	body, err := json.Marshal(paymentDocument{
		OrderID:       input.OrderID,
		Amount:        input.Amount,
		Payload:       input.QRISString,
		Checksum:      input.Checksum,
		PaymentStatus: status,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		GeneratedAt:   input.GeneratedAt,
		IndexedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, commonerrors.New(commonerrors.ErrCodeInternal, "encode document", err)
	}

	req := esapi.IndexRequest{
		Index:      h.config.Index,
		DocumentID: input.OrderID,
		Body:       bytes.NewReader(body),
		Refresh:    h.config.Refresh,
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, commonerrors.NewTimeoutError("elasticsearch", err)
		}
		return nil, commonerrors.NewElasticsearchConnectionFailedError(
			fmt.Errorf("%w: %v", ErrElasticsearchConnectionFailed, err))
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, commonerrors.NewIndexRequestFailedError(h.config.Index,
			fmt.Errorf("%w: %s: %s", ErrIndexRequestFailed, res.Status(), bytes.TrimSpace(msg)))
	}

	var ir indexResponse
	if err := json.NewDecoder(res.Body).Decode(&ir); err != nil {
		return nil, commonerrors.NewIndexRequestFailedError(h.config.Index,
			fmt.Errorf("%w: decode response: %v", ErrIndexRequestFailed, err))
	}

	h.logger.Info("payment code indexed", map[string]interface{}{
		"orderId": input.OrderID,
		"result":  ir.Result,
		"version": ir.Version,
	})

	return &Output{
		Indexed:    true,
		Index:      h.config.Index,
		DocumentID: input.OrderID,
		Result:     ir.Result,
		Version:    ir.Version,
	}, nil
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
