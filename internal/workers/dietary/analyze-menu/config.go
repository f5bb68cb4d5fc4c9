// internal/workers/dietary/analyze-menu/config.go
package analyzemenu

import (
	"time"

	"dinefine-workers/internal/common/config"
)

type Config struct {
	// Timeout bounds the whole job, including a fresh extraction.
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig, extraction config.ExtractionAPIConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if floor := config.GetDuration(extraction.Timeout) + 5*time.Second; timeout < floor {
		timeout = floor
	}
	return &Config{Timeout: timeout}
}
