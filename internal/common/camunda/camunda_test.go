package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"qris-workers/internal/common/errors"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig:       &RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := map[string]bool{
		"rpc error: code = Unavailable desc = connection refused": true,
		"context deadline exceeded":                               true,
		"NOT_FOUND: process definition":                           false,
		"invalid argument":                                        false,
	}
	for msg, want := range tests {
		assert.Equal(t, want, isRetryableZeebeError(stderrors.New(msg)), msg)
	}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	result, err := testClient(3).ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("unavailable")
		}
		return "ok", nil
	}, "publish-message")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_MapsErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      string
		wantCode errors.ErrorCode
		attempts int
	}{
		{"not found stops immediately", "process not found", ErrCodeZeebeNotFound, 1},
		{"unauthorized", "permission denied", ErrCodeZeebeUnauthorized, 1},
		{"timeouts exhaust retries", "deadline exceeded", "TIMEOUT_ERROR", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := testClient(2).ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
				calls++
				return nil, stderrors.New(tt.err)
			}, "op")

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.attempts, calls)
		})
	}
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recover(func(worker.JobClient, entities.Job) { panic("boom") }, zap.New(core))

	assert.NotPanics(t, func() {
		h(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7}})
	})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(7), logs.All()[0].ContextMap()["jobKey"])
}
