// internal/workers/pricing/project-premiums/config.go
package projectpremiums

import (
	"time"

	"premium-service/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// ConfigFromWorker maps the workers.<taskType> block onto Config, keeping the
// default timeout when none is set.
func ConfigFromWorker(wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
