// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qris-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const (
	ErrCodeZeebeNotFound     errors.ErrorCode = "ZEEBE_RESOURCE_NOT_FOUND"
	ErrCodeZeebeUnauthorized errors.ErrorCode = "ZEEBE_UNAUTHORIZED"
)

// Client is the gateway connection shared by all payment workers.
type Client struct {
	zeebe  zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  time.Second,
	MaxDelay:   10 * time.Second,
}

// delay returns the backoff before the given retry, capped at MaxDelay.
func (r *RetryConfig) delay(attempt int) time.Duration {
	d := r.BaseDelay << attempt
	if d <= 0 || d > r.MaxDelay {
		return r.MaxDelay
	}
	return d
}

// Message is a BPMN message correlated to a waiting process instance.
type Message struct {
	Name           string
	CorrelationKey string
	MessageID      string
	TTL            time.Duration
	Variables      interface{}
}

// NewClientWithConfig dials the gateway and fails unless the topology answers.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}

	zc, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{zeebe: zc, config: config}
	if err := c.HealthCheck(context.Background()); err != nil {
		zc.Close()
		return nil, fmt.Errorf("gateway %s: %w", config.GatewayAddress, err)
	}
	return c, nil
}

// GetClient exposes the raw client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.zeebe
}

func (c *Client) Close() error {
	return c.zeebe.Close()
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.zeebe.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// PublishMessage sends msg, retrying while the gateway is unavailable.
func (c *Client) PublishMessage(ctx context.Context, msg Message) error {
	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		if c.config.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
			defer cancel()
		}

		step := c.zeebe.NewPublishMessageCommand().
			MessageName(msg.Name).
			CorrelationKey(msg.CorrelationKey).
			TimeToLive(msg.TTL)
		if msg.MessageID != "" {
			step = step.MessageId(msg.MessageID)
		}
		if msg.Variables == nil {
			return step.Send(ctx)
		}
		cmd, err := step.VariablesFromObject(msg.Variables)
		if err != nil {
			return nil, err
		}
		return cmd.Send(ctx)
	}, "publish "+msg.Name)
	return err
}

// ExecuteWithRetry runs fn with exponential backoff. Only transient gateway
// errors are retried; the final error is mapped to a StandardError.
func (c *Client) ExecuteWithRetry(
	ctx context.Context,
	fn func(context.Context) (interface{}, error),
	operation string,
) (interface{}, error) {
	retry := c.config.RetryConfig
	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !isRetryableZeebeError(err) || attempt == retry.MaxRetries {
			return nil, mapZeebeError(err, operation, attempt)
		}

		select {
		case <-time.After(retry.delay(attempt)):
		case <-ctx.Done():
			return nil, fmt.Errorf("operation %s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}
	}
}

var retryablePhrases = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"deadline exceeded",
	"unavailable",
	"unreachable",
	"broken pipe",
	"resource_exhausted",
}

func isRetryableZeebeError(err error) bool {
	return containsAny(strings.ToLower(err.Error()), retryablePhrases...)
}

func containsAny(s string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, operation string, attempt int) error {
	msg := fmt.Sprintf("zeebe %s failed", operation)
	if attempt > 0 {
		msg += fmt.Sprintf(" after %d attempts", attempt+1)
	}
	lower := strings.ToLower(err.Error())

	switch {
	case containsAny(lower, "timeout", "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", fmt.Errorf("%s: %w", msg, err))
	case containsAny(lower, "not found"):
		return errors.New(ErrCodeZeebeNotFound, msg, err)
	case containsAny(lower, "permission denied", "unauthorized", "unauthenticated"):
		return errors.New(ErrCodeZeebeUnauthorized, msg, err)
	default:
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("%s: %w", msg, err))
	}
}
