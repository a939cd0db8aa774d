package mirror

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

type Options struct {
	// DryRun reports what would be created or copied without touching the destination.
	DryRun bool

	// Excludes are doublestar patterns matched against paths relative to the source root.
	Excludes []string
}

// IsExcluded reports whether relPath matches any of patterns.
func IsExcluded(relPath string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
