// internal/workers/payment/generate-qris/config.go
package generateqris

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Currency string
	Locale   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		CacheTTL: 24 * time.Hour,
		Currency: "IDR",
		Locale:   "id-ID",
	}
}
