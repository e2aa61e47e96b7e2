// internal/workers/payment/update-payment-status/config.go
package updatepaymentstatus

import "time"

type Config struct {
	Timeout     time.Duration
	MessageName string
	MessageTTL  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		MessageName: "payment-status-changed",
		MessageTTL:  time.Hour,
	}
}
