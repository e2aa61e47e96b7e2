// internal/workers/data-access/index-payment-code/handler_test.go
package indexpaymentcode

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
)

const payload150k = "00020101021126670016COM.NOBUBANK.WWW01189360050300000879140214353153527368570303UMI51440014ID.CO.QRIS.WWW0215ID20232679645180303UMI52044812530336054061500005802ID5920MEFZ STORE OK11724136006BEKASI61051711162070703A016304661E"

// ==========================
// Test Helper Functions
// ==========================

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func respond(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func createTestHandler(t *testing.T, transport http.RoundTripper) *Handler {
	t.Helper()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{"http://es.local:9200"},
		Transport:    transport,
		DisableRetry: true,
	})
	require.NoError(t, err)
	return NewHandler(LoadConfig(), es, logger.NewTestLogger(t))
}

func validInput() *Input {
	return &Input{
		OrderID:      "ORD-1",
		Amount:       150000,
		QRISString:   payload150k,
		Checksum:     "661E",
		CustomerName: "Budi",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_IndexesDocument(t *testing.T) {
	var (
		gotPath string
		gotDoc  map[string]interface{}
	)
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		if r.Body != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		}
		return respond(http.StatusCreated, `{"_index":"payment-codes","_id":"ORD-1","_version":1,"result":"created"}`), nil
	})

	out, err := createTestHandler(t, transport).Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "/payment-codes/_doc/ORD-1", gotPath)
	assert.Equal(t, "unpaid", gotDoc["payment_status"])
	assert.Equal(t, float64(150000), gotDoc["amount"])
	assert.Equal(t, "661E", gotDoc["checksum"])
	assert.NotEmpty(t, gotDoc["indexed_at"])

	assert.True(t, out.Indexed)
	assert.Equal(t, "created", out.Result)
	assert.Equal(t, int64(1), out.Version)
	assert.Equal(t, "ORD-1", out.DocumentID)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		transport roundTripFunc
		wantCode  commonerrors.ErrorCode
		wantErr   error
	}{
		{
			name:     "missing payload",
			input:    &Input{OrderID: "ORD-1"},
			wantCode: commonerrors.ErrCodeInvalidPaymentRequest,
		},
		{
			name:  "cluster unreachable",
			input: validInput(),
			transport: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
			wantCode: commonerrors.ErrCodeElasticsearchConnectionFailed,
			wantErr:  ErrElasticsearchConnectionFailed,
		},
		{
			name:  "mapping rejected",
			input: validInput(),
			transport: func(*http.Request) (*http.Response, error) {
				return respond(http.StatusBadRequest, `{"error":{"type":"mapper_parsing_exception"}}`), nil
			},
			wantCode: commonerrors.ErrCodeIndexRequestFailed,
			wantErr:  ErrIndexRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := tt.transport
			if transport == nil {
				transport = func(*http.Request) (*http.Response, error) {
					t.Fatal("unexpected request")
					return nil, nil
				}
			}

			_, err := createTestHandler(t, transport).Execute(context.Background(), tt.input)
			require.Error(t, err)

			stdErr, ok := commonerrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, stdErr.Retryable)
			}
		})
	}
}
