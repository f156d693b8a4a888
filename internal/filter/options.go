package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dyluth/commviz/pkg/artifact"
)

// Criteria narrows an option listing.
// All filters are ANDed together - an option must match ALL criteria to pass.
type Criteria struct {
	Glob  string // Glob pattern for the identifier, empty = no filter
	Label string // Case-insensitive substring of the display label, empty = no filter
}

// Validate checks that the glob pattern is well formed.
func (c *Criteria) Validate() error {
	if c.Glob == "" {
		return nil
	}
	if _, err := filepath.Match(c.Glob, ""); err != nil {
		return fmt.Errorf("invalid match pattern '%s': %w", c.Glob, err)
	}
	return nil
}

// Matches returns true if the option identifier matches all criteria.
func (c *Criteria) Matches(id string) bool {
	if c.Glob != "" {
		matched, err := filepath.Match(c.Glob, id)
		if err != nil || !matched {
			return false
		}
	}

	if c.Label != "" && !strings.Contains(strings.ToLower(artifact.DisplayLabel(id)), strings.ToLower(c.Label)) {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.Glob != "" || c.Label != ""
}

// Apply returns the options that match, preserving order. Never nil.
func (c *Criteria) Apply(options []string) []string {
	out := make([]string, 0, len(options))
	for _, id := range options {
		if c.Matches(id) {
			out = append(out, id)
		}
	}
	return out
}
