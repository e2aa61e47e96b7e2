// internal/workers/data-access/index-payment-code/models.go
package indexpaymentcode

type Input struct {
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	QRISString    string `json:"qrisString"`
	Checksum      string `json:"checksum"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	GeneratedAt   string `json:"generatedAt,omitempty"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	Index      string `json:"index"`
	DocumentID string `json:"documentId"`
	Result     string `json:"result"` // created or updated
	Version    int64  `json:"version"`
}

// paymentDocument is the stored shape, kept flat for keyword search by admins.
type paymentDocument struct {
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	Payload       string `json:"payload"`
	Checksum      string `json:"checksum"`
	PaymentStatus string `json:"payment_status"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	GeneratedAt   string `json:"generated_at,omitempty"`
	IndexedAt     string `json:"indexed_at"`
}

type indexResponse struct {
	Result  string `json:"result"`
	Version int64  `json:"_version"`
}
