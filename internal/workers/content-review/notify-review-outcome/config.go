// internal/workers/content-review/notify-review-outcome/config.go
package notifyreviewoutcome

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	EmailEnabled      bool          `mapstructure:"email_enabled"`
	FromEmail         string        `mapstructure:"from_email"`
	ModerationEnabled bool          `mapstructure:"moderation_enabled"`
	TopicARN          string        `mapstructure:"topic_arn"`
	// DeliveryTTL is how long a delivery is remembered so retried jobs
	// skip channels that already went out.
	DeliveryTTL time.Duration `mapstructure:"delivery_ttl"`
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     15 * time.Second,
		FromEmail:   "reviews@example.org",
		DeliveryTTL: 7 * 24 * time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.EmailEnabled && !isValidEmail(c.FromEmail) {
		return fmt.Errorf("from_email is required when email is enabled")
	}
	if c.ModerationEnabled && c.TopicARN == "" {
		return fmt.Errorf("topic_arn is required when moderation is enabled")
	}
	return nil
}
