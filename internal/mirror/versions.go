package mirror

import (
	"github.com/stacklok/registry-console/internal/registry"
	"github.com/stacklok/registry-console/internal/versions"
)

// LatestVersions returns the newest ServiceVersion of every service name
func LatestVersions(instances []registry.ServiceInstance) map[string]string {
	latest := make(map[string]string)
	for i := range instances {
		name, version := instances[i].ServiceName, instances[i].ServiceVersion
		current, ok := latest[name]
		if !ok || versions.IsNewerVersion(version, current) {
			latest[name] = version
		}
	}
	return latest
}

// IsOutdated reports whether inst runs an older version than another
// instance of the same service in latest
func IsOutdated(inst registry.ServiceInstance, latest map[string]string) bool {
	newest, ok := latest[inst.ServiceName]
	return ok && versions.IsNewerVersion(newest, inst.ServiceVersion)
}
