package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/registry-console/internal/registry"
)

func fixture() []registry.ServiceInstance {
	return []registry.ServiceInstance{
		{ID: 1, ServiceName: "Order-Service", Status: "UP"},
		{ID: 2, ServiceName: "pay-service", Status: "DOWN"},
		{ID: 3, ServiceName: "order-api", Status: "UP"},
		{ID: 4, ServiceName: "user-service", Status: "UNKNOWN"},
	}
}

func ids(instances []registry.ServiceInstance) []int64 {
	out := make([]int64, 0, len(instances))
	for _, inst := range instances {
		out = append(out, inst.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{
			name:     "empty query and all status returns everything in order",
			criteria: Criteria{Query: "", Status: StatusAll},
			want:     []int64{1, 2, 3, 4},
		},
		{
			name:     "empty status behaves as all",
			criteria: Criteria{},
			want:     []int64{1, 2, 3, 4},
		},
		{
			name:     "query is case-insensitive",
			criteria: Criteria{Query: "order", Status: StatusAll},
			want:     []int64{1, 3},
		},
		{
			name:     "upper case query",
			criteria: Criteria{Query: "SERVICE", Status: StatusAll},
			want:     []int64{1, 2, 4},
		},
		{
			name:     "status equality",
			criteria: Criteria{Status: "UP"},
			want:     []int64{1, 3},
		},
		{
			name:     "status comparison is exact",
			criteria: Criteria{Status: "up"},
			want:     []int64{},
		},
		{
			name:     "pass-through status",
			criteria: Criteria{Status: "UNKNOWN"},
			want:     []int64{4},
		},
		{
			name:     "query and status combine",
			criteria: Criteria{Query: "order", Status: "DOWN"},
			want:     []int64{},
		},
		{
			name:     "include pattern",
			criteria: Criteria{Include: []string{"order-*"}},
			want:     []int64{3},
		},
		{
			name:     "exclude wins over include",
			criteria: Criteria{Include: []string{"*-service"}, Exclude: []string{"pay-*"}},
			want:     []int64{4},
		},
		{
			name:     "invalid pattern excludes",
			criteria: Criteria{Include: []string{"["}},
			want:     []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(Apply(fixture(), tt.criteria)))
		})
	}
}

type staticSource []registry.ServiceInstance

func (s *staticSource) List() []registry.ServiceInstance {
	return *s
}

func TestView(t *testing.T) {
	t.Parallel()

	src := staticSource(fixture())
	view := NewView(&src)

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(view.Services()))

	view.SetQuery("order")
	assert.Equal(t, []int64{1, 3}, ids(view.Services()))

	view.SetStatus("DOWN")
	assert.Empty(t, view.Services())

	view.SetStatus("")
	assert.Equal(t, StatusAll, view.Criteria().Status)

	// Reads are recomputed from the source
	src = append(src, registry.ServiceInstance{ID: 5, ServiceName: "ORDER-worker", Status: "UP"})
	assert.Equal(t, []int64{1, 3, 5}, ids(view.Services()))

	view.SetNamePatterns(nil, []string{"*worker"})
	assert.Equal(t, []int64{1, 3}, ids(view.Services()))
}

func TestValidatePatterns(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidatePatterns([]string{"order-*", "pay-v?", "svc[1-3]"}))
	assert.Error(t, ValidatePatterns([]string{"ok", "["}))
}
