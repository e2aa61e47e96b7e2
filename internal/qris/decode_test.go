package qris

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_BaseTemplate(t *testing.T) {
	p, err := Decode(baseTemplate)
	require.NoError(t, err)

	assert.Equal(t, "01", p.PayloadFormat)
	assert.Equal(t, "11", p.PointOfInitiation)
	assert.False(t, p.Dynamic())
	assert.Equal(t, "4812", p.MerchantCategoryCode)
	assert.Equal(t, "360", p.CurrencyCode)
	assert.Equal(t, "ID", p.CountryCode)
	assert.Equal(t, "MEFZ STORE OK1172413", p.MerchantName)
	assert.Equal(t, "BEKASI", p.MerchantCity)
	assert.Equal(t, "17111", p.PostalCode)
	assert.False(t, p.HasAmount)
	assert.Equal(t, "DE60", p.Checksum)
	assert.Equal(t, p.Checksum, p.ExpectedChecksum)
}

func TestDecode_InjectedAmount(t *testing.T) {
	for _, amount := range []int64{0, 150000, 2500000} {
		payload, err := InjectAmount(baseTemplate, amount)
		require.NoError(t, err)

		p, err := Decode(payload)
		require.NoError(t, err)
		assert.True(t, p.HasAmount)
		assert.Equal(t, amount, p.Amount)
	}
}

func TestDecode_Errors(t *testing.T) {
	tampered := strings.Replace(baseTemplate, "BEKASI", "BEKASU", 1)

	tests := []struct {
		name        string
		payload     string
		wantErr     error
		wantPayload bool
	}{
		{name: "checksum mismatch", payload: tampered, wantErr: ErrChecksumMismatch, wantPayload: true},
		{name: "missing checksum", payload: "0002015802ID", wantErr: ErrMissingChecksum},
		{name: "empty", payload: "", wantErr: ErrMissingChecksum},
		{name: "truncated", payload: "00020158", wantErr: ErrTruncated},
		{name: "non-numeric amount", payload: seal("0002015403A.05802ID"), wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.payload)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantPayload {
				require.NotNil(t, p)
				assert.NotEqual(t, p.Checksum, p.ExpectedChecksum)
			} else {
				assert.Nil(t, p)
			}
		})
	}
}
