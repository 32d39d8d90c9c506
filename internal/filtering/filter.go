package filtering

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/stacklok/registry-console/internal/registry"
)

// StatusAll disables the status filter
const StatusAll = "all"

// Criteria selects which instances are shown
type Criteria struct {
	// Query is matched case-insensitively as a substring of the service name
	Query string
	// Status is compared exactly against the instance status; "all" or "" matches any
	Status string
	// Include and Exclude are optional glob patterns on the service name
	Include []string
	Exclude []string
}

// Apply returns the instances matching c, in input order
func Apply(instances []registry.ServiceInstance, c Criteria) []registry.ServiceInstance {
	return apply(NewDefaultNameFilter(), instances, c)
}

func apply(names NameFilter, instances []registry.ServiceInstance, c Criteria) []registry.ServiceInstance {
	query := strings.ToLower(c.Query)
	usePatterns := len(c.Include) > 0 || len(c.Exclude) > 0

	out := make([]registry.ServiceInstance, 0, len(instances))
	for _, inst := range instances {
		if query != "" && !strings.Contains(strings.ToLower(inst.ServiceName), query) {
			continue
		}
		if c.Status != "" && c.Status != StatusAll && inst.Status != c.Status {
			continue
		}
		if usePatterns {
			if ok, reason := names.ShouldInclude(inst.ServiceName, c.Include, c.Exclude); !ok {
				slog.Debug("Service filtered out by name patterns",
					"service", inst.ServiceName,
					"reason", reason)
				continue
			}
		}
		out = append(out, inst)
	}
	return out
}

// Source supplies the instances a View filters
type Source interface {
	List() []registry.ServiceInstance
}

// View holds the current criteria and filters its source on every read
type View struct {
	source Source
	names  NameFilter

	mu       sync.RWMutex
	criteria Criteria
}

// NewView creates a view over source matching everything
func NewView(source Source) *View {
	return &View{
		source:   source,
		names:    NewDefaultNameFilter(),
		criteria: Criteria{Status: StatusAll},
	}
}

// SetQuery sets the search text
func (v *View) SetQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria.Query = query
}

// SetStatus sets the status filter; "" is treated as "all"
func (v *View) SetStatus(status string) {
	if status == "" {
		status = StatusAll
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria.Status = status
}

// SetNamePatterns sets the include/exclude glob patterns
func (v *View) SetNamePatterns(include, exclude []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria.Include = include
	v.criteria.Exclude = exclude
}

// Criteria returns the current criteria
func (v *View) Criteria() Criteria {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.criteria
}

// Services returns the source instances matching the current criteria
func (v *View) Services() []registry.ServiceInstance {
	return apply(v.names, v.source.List(), v.Criteria())
}
