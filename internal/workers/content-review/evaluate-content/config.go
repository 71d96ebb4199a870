// internal/workers/content-review/evaluate-content/config.go
package evaluatecontent

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
