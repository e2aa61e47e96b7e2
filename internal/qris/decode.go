package qris

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrMissingChecksum  = errors.New("qris: payload does not end with a checksum field")
	ErrChecksumMismatch = errors.New("qris: checksum mismatch")
	ErrInvalidAmount    = errors.New("qris: amount field is not a whole number")
)

// Payload is the decoded view of a payment string.
type Payload struct {
	Fields []Field `json:"-"`

	PayloadFormat        string `json:"payloadFormat"`
	PointOfInitiation    string `json:"pointOfInitiation"`
	MerchantCategoryCode string `json:"merchantCategoryCode"`
	CurrencyCode         string `json:"currencyCode"`
	Amount               int64  `json:"amount"`
	HasAmount            bool   `json:"hasAmount"`
	CountryCode          string `json:"countryCode"`
	MerchantName         string `json:"merchantName"`
	MerchantCity         string `json:"merchantCity"`
	PostalCode           string `json:"postalCode,omitempty"`
	Checksum             string `json:"checksum"`
	ExpectedChecksum     string `json:"expectedChecksum"`
}

// Dynamic reports whether the point of initiation marks a single-use code.
func (p *Payload) Dynamic() bool {
	return p.PointOfInitiation == "12"
}

// Decode tokenizes payload and checks its checksum. On ErrChecksumMismatch the
// returned Payload is still populated so callers can report both values.
func Decode(payload string) (*Payload, error) {
	fields, err := Parse(payload)
	if err != nil {
		return nil, err
	}

	n := len(fields)
	if n == 0 || fields[n-1].Tag != TagChecksum || len(fields[n-1].Value) != 4 {
		return nil, ErrMissingChecksum
	}

	p := &Payload{
		Fields:           fields,
		Checksum:         fields[n-1].Value,
		ExpectedChecksum: CRC16(payload[:len(payload)-4]),
	}
	p.PayloadFormat, _ = Lookup(fields, TagPayloadFormat)
	p.PointOfInitiation, _ = Lookup(fields, TagPointOfInitiation)
	p.MerchantCategoryCode, _ = Lookup(fields, TagMerchantCategoryCode)
	p.CurrencyCode, _ = Lookup(fields, TagCurrency)
	p.CountryCode, _ = Lookup(fields, TagCountryCode)
	p.MerchantName, _ = Lookup(fields, TagMerchantName)
	p.MerchantCity, _ = Lookup(fields, TagMerchantCity)
	p.PostalCode, _ = Lookup(fields, TagPostalCode)

	if raw, ok := Lookup(fields, TagAmount); ok {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || amount < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
		}
		p.Amount, p.HasAmount = amount, true
	}

	if p.Checksum != p.ExpectedChecksum {
		return p, fmt.Errorf("%w: have %s, want %s", ErrChecksumMismatch, p.Checksum, p.ExpectedChecksum)
	}
	return p, nil
}
