package mirror

import (
	"time"

	"github.com/stacklok/registry-console/internal/registry"
)

// PlaceholderAvgResponseTime is reported as the average response time in
// milliseconds. The registry exposes no latency data yet.
const PlaceholderAvgResponseTime = 41

// Statistics is an aggregate snapshot of the mirror
type Statistics struct {
	// TotalServices is the number of distinct service names
	TotalServices int
	// OnlineServices is the number of distinct service names with at least one UP instance
	OnlineServices int
	// TotalInstances is the number of instances in the mirror
	TotalInstances int
	// AvgResponseTime is in milliseconds
	AvgResponseTime int
	// LastUpdateTime is when the snapshot was computed
	LastUpdateTime time.Time
}

// ComputeStatistics derives the statistics of instances at time now
func ComputeStatistics(instances []registry.ServiceInstance, now time.Time) Statistics {
	names := make(map[string]struct{}, len(instances))
	online := make(map[string]struct{})
	for i := range instances {
		names[instances[i].ServiceName] = struct{}{}
		if instances[i].IsUp() {
			online[instances[i].ServiceName] = struct{}{}
		}
	}

	return Statistics{
		TotalServices:   len(names),
		OnlineServices:  len(online),
		TotalInstances:  len(instances),
		AvgResponseTime: PlaceholderAvgResponseTime,
		LastUpdateTime:  now,
	}
}
