// internal/workers/payment/verify-qris/config.go
package verifyqris

import "time"

type Config struct {
	Timeout  time.Duration
	Currency string
	Locale   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		Currency: "IDR",
		Locale:   "id-ID",
	}
}
