package qris

import (
	"context"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// spliceReference is the plain string-search algorithm: strip the checksum
// field, insert before the first "5802", re-seal.
func spliceReference(template string, amount int64) string {
	amountStr := strconv.FormatInt(amount, 10)
	field := "54" + pad2(len(amountStr)) + amountStr

	body := template[:len(template)-8]
	if i := strings.Index(body, "5802"); i >= 0 {
		body = body[:i] + field + body[i:]
	} else {
		body += field
	}
	return body + "6304" + CRC16(body+"6304")
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ==========================
// Scenario Tests
// ==========================

func TestInjectAmount_TypicalCheckout(t *testing.T) {
	got, err := InjectAmount(baseTemplate, 150000)
	require.NoError(t, err)

	want := "00020101021126670016COM.NOBUBANK.WWW01189360050300000879140214353153527368570303UMI51440014ID.CO.QRIS.WWW0215ID20232679645180303UMI52044812530336054061500005802ID5920MEFZ STORE OK11724136006BEKASI61051711162070703A016304661E"
	assert.Equal(t, want, got)

	amountField := "5406150000"
	assert.Len(t, got, len(baseTemplate)-4+len(amountField)+4)

	body := got[:len(got)-8]
	assert.Equal(t, CRC16(body+"6304"), got[len(got)-4:])
	assert.True(t, ValidateChecksum(got))
}

func TestInjectAmount_FieldPrecedesCountryCode(t *testing.T) {
	for _, amount := range []int64{0, 7, 42, 150000, 1000000000, math.MaxInt64} {
		t.Run(strconv.FormatInt(amount, 10), func(t *testing.T) {
			got, err := InjectAmount(baseTemplate, amount)
			require.NoError(t, err)

			amountStr := strconv.FormatInt(amount, 10)
			i := strings.Index(got, "5802")
			require.Greater(t, i, 0)

			field := "54" + pad2(len(amountStr)) + amountStr
			assert.Equal(t, field, got[i-len(field):i])
			assert.True(t, ValidateChecksum(got))
		})
	}
}

func TestInjectAmount_AmountFieldBoundaries(t *testing.T) {
	tests := []struct {
		amount int64
		field  string
	}{
		{amount: 0, field: "54010"},
		{amount: 150000, field: "5406150000"},
		{amount: math.MaxInt64, field: "54199223372036854775807"},
	}

	for _, tt := range tests {
		f, err := AmountField(tt.amount)
		require.NoError(t, err)
		assert.Equal(t, tt.field, f.String())

		got, err := InjectAmount(baseTemplate, tt.amount)
		require.NoError(t, err)
		assert.Contains(t, got, tt.field+"5802ID")
	}
}

func TestInjectAmount_MissingCountryCode(t *testing.T) {
	template := "000201010211530336059055STORE6304C564"
	require.True(t, ValidateChecksum(template))

	got, err := InjectAmount(template, 150)
	require.NoError(t, err)
	assert.Equal(t, "000201010211530336059055STORE54031506304905B", got)
}

func TestInjectAmount_ReplacesExistingAmount(t *testing.T) {
	withAmount, err := InjectAmount(baseTemplate, 99999)
	require.NoError(t, err)

	got, err := InjectAmount(withAmount, 150000)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(got, "5406150000"))
	assert.NotContains(t, got, "540599999")

	direct, err := InjectAmount(baseTemplate, 150000)
	require.NoError(t, err)
	assert.Equal(t, direct, got)
}

func TestInjectAmount_MatchesStringSplicing(t *testing.T) {
	for _, amount := range []int64{0, 1, 150000, math.MaxInt64} {
		got, err := InjectAmount(baseTemplate, amount)
		require.NoError(t, err)
		assert.Equal(t, spliceReference(baseTemplate, amount), got, "amount %d", amount)
	}
}

func TestInjectAmount_MalformedTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{name: "garbage with country code", template: "HELLO5802ID6304ABCD"},
		{name: "non-numeric length", template: "00XX015802ID6304ABCD"},
		{name: "shorter than a checksum", template: "AB"},
		{name: "empty", template: ""},
		{name: "tokenizes but lacks checksum field", template: "0002015802ID0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			assert.NotPanics(t, func() {
				var err error
				got, err = InjectAmount(tt.template, 500)
				assert.NoError(t, err)
			})
			assert.Contains(t, got, "5403500")
			assert.True(t, ValidateChecksum(got))
		})
	}
}

func TestInjectAmount_SplicesBeforeCountryCodeWhenMalformed(t *testing.T) {
	got, err := InjectAmount("HELLO5802ID6304ABCD", 5)
	require.NoError(t, err)

	body := "HELLO54015" + "5802ID"
	assert.Equal(t, body+"6304"+CRC16(body+"6304"), got)
	assert.Equal(t, 1, strings.Count(got, "6304"), "stale checksum tag is trimmed before sealing")
}

func TestInjectAmount_NegativeAmount(t *testing.T) {
	got, err := InjectAmount(baseTemplate, -1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.Empty(t, got)
}

// ==========================
// Concurrency
// ==========================

func TestInjectAmount_Concurrent(t *testing.T) {
	want, err := InjectAmount(baseTemplate, 150000)
	require.NoError(t, err)

	results := make([]string, 64)
	g, _ := errgroup.WithContext(context.Background())
	for i := range results {
		i := i
		g.Go(func() error {
			out, err := InjectAmount(baseTemplate, 150000)
			results[i] = out
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

// ==========================
// Generator
// ==========================

func TestGenerator(t *testing.T) {
	g, err := NewGenerator(baseTemplate)
	require.NoError(t, err)
	assert.Equal(t, baseTemplate, g.Template())

	got, err := g.Generate(150000)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "6304661E"))
}

func TestNewGenerator_RejectsBadTemplates(t *testing.T) {
	_, err := NewGenerator(baseTemplate[:len(baseTemplate)-4] + "0000")
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = NewGenerator("00XX01")
	assert.ErrorIs(t, err, ErrInvalidLength)
}
