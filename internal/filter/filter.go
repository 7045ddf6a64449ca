package filter

import (
	"fmt"
	"regexp"

	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/models"
)

// Filter represents a compiled filter for one channel attribute
type Filter struct {
	Attribute       string // "name" or "category"
	IncludePatterns []*regexp.Regexp
	ExcludePatterns []*regexp.Regexp
}

// Manager applies configured include and exclude patterns to ingested
// channels before they reach the catalog
type Manager struct {
	filters []Filter
}

// NewManager creates a new filter manager
func NewManager() *Manager {
	return &Manager{
		filters: make([]Filter, 0),
	}
}

// LoadFromConfig compiles the filter patterns from configuration
func (m *Manager) LoadFromConfig(cfg config.FilterConfig) error {
	if err := m.loadFilterSet("name", cfg.Name.IncludePatterns, cfg.Name.ExcludePatterns); err != nil {
		return fmt.Errorf("failed to load name filters: %w", err)
	}

	if err := m.loadFilterSet("category", cfg.Category.IncludePatterns, cfg.Category.ExcludePatterns); err != nil {
		return fmt.Errorf("failed to load category filters: %w", err)
	}

	return nil
}

// Matches checks if a value passes the filters for the given attribute.
// Exclude patterns win over include patterns; with no filters configured
// for an attribute everything passes.
func (m *Manager) Matches(attribute, value string) bool {
	var applicable []Filter
	for _, filter := range m.filters {
		if filter.Attribute == attribute {
			applicable = append(applicable, filter)
		}
	}

	if len(applicable) == 0 {
		return true
	}

	for _, filter := range applicable {
		for _, exclude := range filter.ExcludePatterns {
			if exclude.MatchString(value) {
				return false
			}
		}

		// If there are include patterns, at least one must match
		if len(filter.IncludePatterns) > 0 {
			matched := false
			for _, include := range filter.IncludePatterns {
				if include.MatchString(value) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}

	return true
}

// Keep checks if a parsed channel should enter the catalog
func (m *Manager) Keep(channel models.Channel) bool {
	if !m.Matches("name", channel.Name) {
		return false
	}
	if !m.Matches("category", channel.Category) {
		return false
	}
	return true
}

// Apply returns the channels that pass all filters
func (m *Manager) Apply(channels []models.Channel) []models.Channel {
	if len(m.filters) == 0 {
		return channels
	}

	kept := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if m.Keep(ch) {
			kept = append(kept, ch)
		}
	}
	return kept
}

// loadFilterSet compiles a set of filter patterns
func (m *Manager) loadFilterSet(attribute string, includePatterns, excludePatterns []string) error {
	filter := Filter{
		Attribute:       attribute,
		IncludePatterns: make([]*regexp.Regexp, 0),
		ExcludePatterns: make([]*regexp.Regexp, 0),
	}

	for _, pattern := range includePatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("failed to compile include pattern '%s': %w", pattern, err)
		}
		filter.IncludePatterns = append(filter.IncludePatterns, compiled)
	}

	for _, pattern := range excludePatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("failed to compile exclude pattern '%s': %w", pattern, err)
		}
		filter.ExcludePatterns = append(filter.ExcludePatterns, compiled)
	}

	if len(filter.IncludePatterns) > 0 || len(filter.ExcludePatterns) > 0 {
		m.filters = append(m.filters, filter)
	}

	return nil
}

// ValidatePattern validates a regex pattern
func ValidatePattern(pattern string) error {
	_, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	return nil
}

// FilterCount returns the number of loaded filters
func (m *Manager) FilterCount() int {
	return len(m.filters)
}
