// internal/workers/payment/generate-qris/models.go
package generateqris

type Input struct {
	OrderID string `json:"orderId"`
	Amount  int64  `json:"amount"`
}

type Output struct {
	OrderID         string `json:"orderId"`
	QRISString      string `json:"qrisString"`
	Amount          int64  `json:"amount"`
	AmountFormatted string `json:"amountFormatted"`
	Checksum        string `json:"checksum"`
	GeneratedAt     string `json:"generatedAt"` // ISO 8601
	Cached          bool   `json:"cached"`
}

// cachedPayment is the Redis value under qris:<orderId>:<amount>.
type cachedPayment struct {
	Payload     string `json:"payload"`
	Checksum    string `json:"checksum"`
	GeneratedAt string `json:"generatedAt"`
}

// inputSchema applies when the activity registry supplies none.
const inputSchema = `{
	"type": "object",
	"required": ["orderId", "amount"],
	"properties": {
		"orderId": {"type": "string", "minLength": 1, "maxLength": 64, "pattern": "^[A-Za-z0-9._:-]+$"},
		"amount": {"type": "integer", "minimum": 0}
	}
}`
