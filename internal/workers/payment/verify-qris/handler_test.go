// internal/workers/payment/verify-qris/handler_test.go
package verifyqris

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "qris-workers/internal/common/errors"
	"qris-workers/internal/common/logger"
)

const (
	baseTemplate = "00020101021126670016COM.NOBUBANK.WWW01189360050300000879140214353153527368570303UMI51440014ID.CO.QRIS.WWW0215ID20232679645180303UMI5204481253033605802ID5920MEFZ STORE OK11724136006BEKASI61051711162070703A016304DE60"
	payload150k  = "00020101021126670016COM.NOBUBANK.WWW01189360050300000879140214353153527368570303UMI51440014ID.CO.QRIS.WWW0215ID20232679645180303UMI52044812530336054061500005802ID5920MEFZ STORE OK11724136006BEKASI61051711162070703A016304661E"
)

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

func amount(v int64) *int64 { return &v }

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name       string
		input      *Input
		wantValid  bool
		wantReason string
		check      func(t *testing.T, out *Output)
	}{
		{
			name:      "dynamic payload with amount",
			input:     &Input{QRISString: payload150k},
			wantValid: true,
			check: func(t *testing.T, out *Output) {
				assert.True(t, out.HasAmount)
				assert.Equal(t, int64(150000), out.Amount)
				assert.Equal(t, "Rp\u00a0150.000", out.AmountFormatted)
				assert.Equal(t, "661E", out.Checksum)
				assert.Equal(t, "MEFZ STORE OK1172413", out.MerchantName)
				assert.Equal(t, "BEKASI", out.MerchantCity)
				assert.Equal(t, "360", out.CurrencyCode)
			},
		},
		{
			name:      "matching expected amount",
			input:     &Input{QRISString: payload150k, ExpectedAmount: amount(150000)},
			wantValid: true,
		},
		{
			name:      "surrounding whitespace is ignored",
			input:     &Input{QRISString: "  " + payload150k + "\n"},
			wantValid: true,
		},
		{
			name:      "static template",
			input:     &Input{QRISString: baseTemplate},
			wantValid: true,
			check: func(t *testing.T, out *Output) {
				assert.False(t, out.HasAmount)
				assert.Empty(t, out.AmountFormatted)
			},
		},
		{
			name:       "different expected amount",
			input:      &Input{QRISString: payload150k, ExpectedAmount: amount(200000)},
			wantReason: ReasonAmountMismatch,
			check: func(t *testing.T, out *Output) {
				assert.Contains(t, out.ReasonDetail, "Rp\u00a0200.000")
			},
		},
		{
			name:       "expected amount on static template",
			input:      &Input{QRISString: baseTemplate, ExpectedAmount: amount(1)},
			wantReason: ReasonAmountMismatch,
		},
		{
			name:       "tampered merchant city",
			input:      &Input{QRISString: strings.Replace(payload150k, "BEKASI", "BEKASU", 1)},
			wantReason: ReasonChecksumMismatch,
			check: func(t *testing.T, out *Output) {
				assert.Equal(t, "661E", out.Checksum)
				assert.NotEqual(t, out.Checksum, out.ExpectedChecksum)
				assert.Equal(t, "BEKASU", out.MerchantCity)
			},
		},
		{
			name:       "no checksum field",
			input:      &Input{QRISString: "0002015802ID"},
			wantReason: ReasonMissingChecksum,
		},
		{
			name:       "truncated",
			input:      &Input{QRISString: "00020158"},
			wantReason: ReasonMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := createTestHandler(t).Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, out.Valid)
			assert.Equal(t, tt.wantReason, out.Reason)
			if !tt.wantValid {
				assert.NotEmpty(t, out.ReasonDetail)
			}
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestHandler_Execute_EmptyPayload(t *testing.T) {
	for _, payload := range []string{"", "   "} {
		_, err := createTestHandler(t).Execute(context.Background(), &Input{QRISString: payload})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidQRISPayload)

		stdErr, ok := commonerrors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, commonerrors.ErrCodeInvalidQRISPayload, stdErr.Code)
		assert.False(t, stdErr.Retryable)
	}
}

func TestNewHandler_RejectsUnknownCurrency(t *testing.T) {
	_, err := NewHandler(&Config{Currency: "RUPIAH", Locale: "id-ID"}, logger.NewNoOpLogger())
	assert.Error(t, err)
}
