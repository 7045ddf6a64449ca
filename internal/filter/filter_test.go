package filter

import (
	"testing"

	"github.com/lcastelli/streampulse/internal/config"
	"github.com/lcastelli/streampulse/internal/models"
)

func loadManager(t *testing.T, cfg config.FilterConfig) *Manager {
	t.Helper()
	m := NewManager()
	if err := m.LoadFromConfig(cfg); err != nil {
		t.Fatalf("failed to load filters: %v", err)
	}
	return m
}

func TestNoFiltersAllowsEverything(t *testing.T) {
	m := loadManager(t, config.FilterConfig{})

	if !m.Keep(models.Channel{Name: "Anything", Category: "general"}) {
		t.Error("expected channel to pass with no filters configured")
	}
	if m.FilterCount() != 0 {
		t.Errorf("expected 0 filters, got %d", m.FilterCount())
	}
}

func TestExcludePatternsWin(t *testing.T) {
	m := loadManager(t, config.FilterConfig{
		Name: config.FilterDef{
			IncludePatterns: []string{".*"},
			ExcludePatterns: []string{"(?i)xxx", "(?i)adult"},
		},
	})

	tests := []struct {
		name     string
		expected bool
	}{
		{"News One", true},
		{"XXX Movies", false},
		{"Adult Swim", false},
	}

	for _, tt := range tests {
		if got := m.Keep(models.Channel{Name: tt.name, Category: "general"}); got != tt.expected {
			t.Errorf("Keep(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestIncludePatternsRequireMatch(t *testing.T) {
	m := loadManager(t, config.FilterConfig{
		Category: config.FilterDef{
			IncludePatterns: []string{"^news$", "^sports$"},
		},
	})

	if !m.Keep(models.Channel{Name: "News One", Category: "news"}) {
		t.Error("expected news channel to pass")
	}
	if m.Keep(models.Channel{Name: "Movie Time", Category: "movies"}) {
		t.Error("expected movies channel to be filtered out")
	}
}

func TestApplyFiltersSlice(t *testing.T) {
	m := loadManager(t, config.FilterConfig{
		Name: config.FilterDef{ExcludePatterns: []string{"(?i)test"}},
	})

	channels := []models.Channel{
		{ID: "ch_1", Name: "News One", Category: "news"},
		{ID: "ch_2", Name: "Test Pattern", Category: "general"},
		{ID: "ch_3", Name: "Sports Hub", Category: "sports"},
	}

	kept := m.Apply(channels)
	if len(kept) != 2 {
		t.Fatalf("expected 2 channels kept, got %d", len(kept))
	}
	if kept[0].ID != "ch_1" || kept[1].ID != "ch_3" {
		t.Errorf("unexpected kept channels: %+v", kept)
	}
}

func TestLoadRejectsInvalidPattern(t *testing.T) {
	m := NewManager()
	err := m.LoadFromConfig(config.FilterConfig{
		Name: config.FilterDef{IncludePatterns: []string{"["}},
	})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestValidatePattern(t *testing.T) {
	if err := ValidatePattern("^news$"); err != nil {
		t.Errorf("unexpected error for valid pattern: %v", err)
	}
	if err := ValidatePattern("["); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
