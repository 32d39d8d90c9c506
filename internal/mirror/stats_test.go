package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/registry-console/internal/registry"
)

func TestComputeStatistics(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		instances []registry.ServiceInstance
		want      Statistics
	}{
		{
			name:      "empty",
			instances: nil,
			want:      Statistics{AvgResponseTime: PlaceholderAvgResponseTime, LastUpdateTime: now},
		},
		{
			name: "distinct names counted once",
			instances: []registry.ServiceInstance{
				instance(1, "order-service", "UP"),
				instance(2, "order-service", "UP"),
				instance(3, "pay-service", "DOWN"),
			},
			want: Statistics{
				TotalServices:   2,
				OnlineServices:  1,
				TotalInstances:  3,
				AvgResponseTime: PlaceholderAvgResponseTime,
				LastUpdateTime:  now,
			},
		},
		{
			name: "service online when any instance is up",
			instances: []registry.ServiceInstance{
				instance(1, "order-service", "DOWN"),
				instance(2, "order-service", "UP"),
			},
			want: Statistics{
				TotalServices:   1,
				OnlineServices:  1,
				TotalInstances:  2,
				AvgResponseTime: PlaceholderAvgResponseTime,
				LastUpdateTime:  now,
			},
		},
		{
			name: "status comparison is exact",
			instances: []registry.ServiceInstance{
				instance(1, "order-service", "up"),
				instance(2, "pay-service", "Up"),
			},
			want: Statistics{
				TotalServices:   2,
				TotalInstances:  2,
				AvgResponseTime: PlaceholderAvgResponseTime,
				LastUpdateTime:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComputeStatistics(tt.instances, now))
		})
	}
}
