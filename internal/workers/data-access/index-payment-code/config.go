// internal/workers/data-access/index-payment-code/config.go
package indexpaymentcode

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
	Refresh string // "", "true", "false" or "wait_for"
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
		Index:   "payment-codes",
		Refresh: "false",
	}
}
