// internal/workers/payment/update-payment-status/models.go
package updatepaymentstatus

type Input struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
	ConfirmedBy string `json:"confirmedBy,omitempty"`
}

type Output struct {
	OrderID          string `json:"orderId"`
	Status           string `json:"status"`
	UpdatedAt        string `json:"updatedAt"` // ISO 8601
	CacheKeysRemoved int64  `json:"cacheKeysRemoved"`
	CacheInvalidated bool   `json:"cacheInvalidated"`
	MessagePublished bool   `json:"messagePublished"`
}

const (
	StatusUnpaid   = "unpaid"
	StatusPaid     = "paid"
	StatusRefunded = "refunded"
)

var validStatuses = map[string]bool{
	StatusUnpaid:   true,
	StatusPaid:     true,
	StatusRefunded: true,
}
