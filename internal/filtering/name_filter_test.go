package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameFilter_ShouldInclude(t *testing.T) {
	t.Parallel()

	filter := NewDefaultNameFilter()

	tests := []struct {
		name       string
		service    string
		include    []string
		exclude    []string
		want       bool
		wantReason string
	}{
		{
			name:       "no patterns",
			service:    "order-service",
			want:       true,
			wantReason: "no include patterns",
		},
		{
			name:       "include match",
			service:    "order-service",
			include:    []string{"pay-*", "order-*"},
			want:       true,
			wantReason: "included by pattern 'order-*'",
		},
		{
			name:       "include miss",
			service:    "user-service",
			include:    []string{"order-*"},
			want:       false,
			wantReason: "no match found in include patterns [order-*]",
		},
		{
			name:       "exclude match",
			service:    "order-service",
			exclude:    []string{"*-service"},
			want:       false,
			wantReason: "excluded by pattern '*-service'",
		},
		{
			name:    "star crosses dots",
			service: "orders.internal.local",
			include: []string{"orders*local"},
			want:    true,
		},
		{
			name:    "single character wildcard",
			service: "pay-v2",
			include: []string{"pay-v?"},
			want:    true,
		},
		{
			name:    "invalid exclude pattern",
			service: "order-service",
			exclude: []string{"[z-a"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, reason := filter.ShouldInclude(tt.service, tt.include, tt.exclude)
			assert.Equal(t, tt.want, got)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}
