package coordinator

import (
	"time"

	"github.com/stacklok/registry-console/internal/config"
)

// getRefreshInterval extracts the refresh interval from the refresh configuration
func getRefreshInterval(cfg *config.RefreshConfig) time.Duration {
	if cfg == nil {
		return config.DefaultRefreshInterval
	}
	return cfg.GetInterval()
}
