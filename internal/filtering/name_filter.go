package filtering

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// NameFilter decides whether a service name passes include/exclude glob patterns
type NameFilter interface {
	// ShouldInclude returns whether name passes and the reason for the decision
	ShouldInclude(name string, include, exclude []string) (bool, string)
}

// defaultNameFilter implements name filtering using glob patterns
type defaultNameFilter struct{}

var _ NameFilter = (*defaultNameFilter)(nil)

// NewDefaultNameFilter creates a new defaultNameFilter
func NewDefaultNameFilter() NameFilter {
	return &defaultNameFilter{}
}

// ValidatePatterns reports the first pattern that does not compile
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if _, err := compilePattern(pattern); err != nil {
			return err
		}
	}
	return nil
}

func compilePattern(pattern string) (glob.Glob, error) {
	// filepath.Match reports malformed character classes that glob accepts
	if _, err := filepath.Match(pattern, "test"); err != nil {
		return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
	}
	compiled, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
	}
	return compiled, nil
}

// ShouldInclude applies exclude patterns first; when include patterns are
// given the name must match one of them. No patterns means include.
// An invalid pattern excludes the name.
func (*defaultNameFilter) ShouldInclude(name string, include, exclude []string) (bool, string) {
	for _, pattern := range exclude {
		compiled, err := compilePattern(pattern)
		if err != nil {
			return false, err.Error()
		}
		if compiled.Match(name) {
			return false, fmt.Sprintf("excluded by pattern '%s'", pattern)
		}
	}

	if len(include) == 0 {
		return true, "no include patterns"
	}

	for _, pattern := range include {
		compiled, err := compilePattern(pattern)
		if err != nil {
			return false, err.Error()
		}
		if compiled.Match(name) {
			return true, fmt.Sprintf("included by pattern '%s'", pattern)
		}
	}
	return false, fmt.Sprintf("no match found in include patterns %v", include)
}
