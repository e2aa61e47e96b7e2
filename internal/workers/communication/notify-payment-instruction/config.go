package notifypaymentinstruction

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout       time.Duration
	Currency      string
	Locale        string
	FromEmail     string
	EmailEnabled  bool
	SMSEnabled    bool
	AdminName     string
	AdminWhatsApp string
	AdminTelegram string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       20 * time.Second,
		Currency:      "IDR",
		Locale:        "id-ID",
		FromEmail:     "billing@kograph.id",
		EmailEnabled:  true,
		SMSEnabled:    false,
		AdminName:     "KOGRAPH",
		AdminWhatsApp: "085776568948",
		AdminTelegram: "@Kokociixx",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.EmailEnabled && c.FromEmail == "" {
		return fmt.Errorf("from_email is required when email is enabled")
	}
	if c.AdminWhatsApp == "" {
		return fmt.Errorf("admin whatsapp number is required")
	}
	return nil
}
