// internal/workers/content-review/index-policy-decision/config.go
package indexpolicydecision

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Index:   "policy-decisions",
	}
}
