package normalizer

import "testing"

func TestCountryExplicitAttribute(t *testing.T) {
	n := New()

	tests := []struct {
		explicit string
		origin   string
		expected string
	}{
		{"us", "", "US"},
		{"GB", "streams/fr.m3u", "GB"},
		{"de ", "", "DE"},
		{"usa", "", "unknown"}, // not alpha-2
		{"", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.explicit+"/"+tt.origin, func(t *testing.T) {
			result := n.Country(tt.explicit, tt.origin)
			if result != tt.expected {
				t.Errorf("Country(%q, %q) = %q, want %q", tt.explicit, tt.origin, result, tt.expected)
			}
		})
	}
}

func TestCountryFromOriginPath(t *testing.T) {
	n := New()

	tests := []struct {
		origin   string
		expected string
	}{
		{"streams/us.m3u", "US"},
		{"us.m3u", "US"},
		{"playlists/uk_sports.m3u", "UK"},
		{"de-news.m3u", "DE"},
		{"playlists/united_kingdom.m3u", "GB"},
		{"playlists/south-korea.m3u", "KR"},
		{"playlists/everything.m3u", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			result := n.Country("", tt.origin)
			if result != tt.expected {
				t.Errorf("Country(\"\", %q) = %q, want %q", tt.origin, result, tt.expected)
			}
		})
	}
}

func TestCategoryExplicitAttribute(t *testing.T) {
	n := New()

	if got := n.Category("News", "Random Channel"); got != "news" {
		t.Errorf("expected explicit attribute to win lower-cased, got %q", got)
	}
	if got := n.Category("FR: FILMS", "ESPN Live"); got != "fr: films" {
		t.Errorf("explicit attribute should bypass keyword rules, got %q", got)
	}
}

func TestCategoryKeywordInference(t *testing.T) {
	n := New()

	tests := []struct {
		name     string
		expected string
	}{
		{"ESPN Live", "sports"},
		{"Sky Sports Main Event", "sports"},
		{"CNN International", "news"},
		{"Cinema One", "movies"},
		{"MTV Hits", "music"},
		{"Cartoon Network", "kids"},
		{"Discovery Channel", "documentary"},
		{"Comedy Central", "comedy"},
		{"Gospel TV", "religion"},
		{"QVC", "shopping"},
		{"Weather Nation", "weather"},
		{"Some Local Channel", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.Category("", tt.name)
			if result != tt.expected {
				t.Errorf("Category(\"\", %q) = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

func TestCategoryRuleOrder(t *testing.T) {
	n := New()

	// "news" rules precede "sports": a name matching both resolves to news
	if got := n.Category("", "Sports News"); got != "news" {
		t.Errorf("expected first-match-wins to yield news, got %q", got)
	}
}
