// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParseError ErrorCode = "PARSE_ERROR"

	ErrCodeInvalidPaymentRequest    ErrorCode = "INVALID_PAYMENT_REQUEST"
	ErrCodeQRISGenerationFailed     ErrorCode = "QRIS_GENERATION_FAILED"
	ErrCodePaymentCodePersistFailed ErrorCode = "PAYMENT_CODE_PERSIST_FAILED"
	ErrCodeInvalidQRISPayload       ErrorCode = "INVALID_QRIS_PAYLOAD"

	ErrCodeInvalidPaymentStatus      ErrorCode = "INVALID_PAYMENT_STATUS"
	ErrCodePaymentCodeNotFound       ErrorCode = "PAYMENT_CODE_NOT_FOUND"
	ErrCodePaymentStatusUpdateFailed ErrorCode = "PAYMENT_STATUS_UPDATE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexRequestFailed            ErrorCode = "INDEX_REQUEST_FAILED"

	ErrCodeInvalidNotificationRequest ErrorCode = "INVALID_NOTIFICATION_REQUEST"
	ErrCodeNotificationSendFailed     ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// New builds a StandardError whose retryability follows the code's retry policy.
// cause, when non-nil, supplies the details and stays reachable through errors.Is.
func New(code ErrorCode, message string, cause error) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewInvalidPaymentRequestError creates a non-retryable validation error.
func NewInvalidPaymentRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPaymentRequest,
		Message:   "Payment request failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQRISGenerationFailedError creates a non-retryable codec error. The base
// template is static, so retrying cannot succeed.
func NewQRISGenerationFailedError(err error) *StandardError {
	return New(ErrCodeQRISGenerationFailed, "QRIS payload generation failed", err)
}

// NewPaymentCodePersistFailedError creates a retryable database error.
func NewPaymentCodePersistFailedError(orderID string, err error) *StandardError {
	return New(ErrCodePaymentCodePersistFailed, "Failed to store payment code", err).
		WithMetadata("orderId", orderID)
}

// NewInvalidQRISPayloadError creates a non-retryable error for unusable payloads.
func NewInvalidQRISPayloadError(err error) *StandardError {
	return New(ErrCodeInvalidQRISPayload, "QRIS payload is missing or unusable", err)
}

// NewInvalidPaymentStatusError creates a non-retryable status error.
func NewInvalidPaymentStatusError(status string, err error) *StandardError {
	return New(ErrCodeInvalidPaymentStatus, "Unsupported payment status", err).
		WithMetadata("status", status)
}

// NewPaymentCodeNotFoundError creates a non-retryable lookup error.
func NewPaymentCodeNotFoundError(orderID string, err error) *StandardError {
	return New(ErrCodePaymentCodeNotFound, "No payment code for order", err).
		WithMetadata("orderId", orderID)
}

// NewPaymentStatusUpdateFailedError creates a retryable database error.
func NewPaymentStatusUpdateFailedError(orderID string, err error) *StandardError {
	return New(ErrCodePaymentStatusUpdateFailed, "Failed to update payment status", err).
		WithMetadata("orderId", orderID)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return New(ErrCodeDatabaseConnectionFailed, "Database connection error", err)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return New(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err)
}

// NewIndexRequestFailedError creates a retryable indexing error.
func NewIndexRequestFailedError(indexName string, err error) *StandardError {
	return New(ErrCodeIndexRequestFailed, "Elasticsearch index request failed", err).
		WithMetadata("index", indexName)
}

// NewInvalidNotificationRequestError creates a non-retryable validation error.
func NewInvalidNotificationRequestError(err error) *StandardError {
	return New(ErrCodeInvalidNotificationRequest, "Notification request failed validation", err)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	e := New(ErrCodeNotificationSendFailed, "Notification delivery failed", err)
	e.Details = fmt.Sprintf("type: %s, error: %s", notificationType, err.Error())
	return e
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The two are
// identical today; the table exists so a process model can diverge.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:                    "PARSE_ERROR",
	ErrCodeInvalidPaymentRequest:         "INVALID_PAYMENT_REQUEST",
	ErrCodeQRISGenerationFailed:          "QRIS_GENERATION_FAILED",
	ErrCodePaymentCodePersistFailed:      "PAYMENT_CODE_PERSIST_FAILED",
	ErrCodeInvalidQRISPayload:            "INVALID_QRIS_PAYLOAD",
	ErrCodeInvalidPaymentStatus:          "INVALID_PAYMENT_STATUS",
	ErrCodePaymentCodeNotFound:           "PAYMENT_CODE_NOT_FOUND",
	ErrCodePaymentStatusUpdateFailed:     "PAYMENT_STATUS_UPDATE_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeIndexRequestFailed:            "INDEX_REQUEST_FAILED",
	ErrCodeInvalidNotificationRequest:    "INVALID_NOTIFICATION_REQUEST",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePaymentCodePersistFailed,
		ErrCodePaymentStatusUpdateFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeIndexRequestFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "QRIS"):
		return "QRIS"
	case strings.Contains(codeStr, "PAYMENT"):
		return "PAYMENT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
