// internal/workers/payment/verify-qris/models.go
package verifyqris

type Input struct {
	QRISString     string `json:"qrisString"`
	ExpectedAmount *int64 `json:"expectedAmount,omitempty"`
}

type Output struct {
	Valid            bool   `json:"valid"`
	Reason           string `json:"reason,omitempty"`
	ReasonDetail     string `json:"reasonDetail,omitempty"`
	Checksum         string `json:"checksum,omitempty"`
	ExpectedChecksum string `json:"expectedChecksum,omitempty"`
	Dynamic          bool   `json:"dynamic"`
	HasAmount        bool   `json:"hasAmount"`
	Amount           int64  `json:"amount"`
	AmountFormatted  string `json:"amountFormatted,omitempty"`
	CurrencyCode     string `json:"currencyCode,omitempty"`
	CountryCode      string `json:"countryCode,omitempty"`
	MerchantName     string `json:"merchantName,omitempty"`
	MerchantCity     string `json:"merchantCity,omitempty"`
}

const (
	ReasonMalformed        = "MALFORMED_PAYLOAD"
	ReasonMissingChecksum  = "MISSING_CHECKSUM"
	ReasonChecksumMismatch = "CHECKSUM_MISMATCH"
	ReasonInvalidAmount    = "INVALID_AMOUNT"
	ReasonAmountMismatch   = "AMOUNT_MISMATCH"
)
