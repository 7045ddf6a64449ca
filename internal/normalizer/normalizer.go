package normalizer

import (
	"path"
	"regexp"
	"strings"

	"github.com/lcastelli/streampulse/internal/models"
)

// CategoryRule pairs a pattern with the category tag it assigns. Rules are
// evaluated in order; the first match wins.
type CategoryRule struct {
	Tag     string
	Pattern *regexp.Regexp
}

// Normalizer canonicalizes channel metadata: country codes and categories
type Normalizer struct {
	categoryRules []CategoryRule
	filenameCode  *regexp.Regexp
	prefixCode    *regexp.Regexp
	countryNames  map[string]string
	validAlpha2   *regexp.Regexp
}

// New creates a Normalizer with precompiled rule tables
func New() *Normalizer {
	return &Normalizer{
		categoryRules: compileCategoryRules(),
		// streams/us.m3u -> "us"
		filenameCode: regexp.MustCompile(`(?i)(?:^|/)([a-z]{2})\.[^/.]+$`),
		// uk_sports.m3u, de-news.m3u, fr.extra.m3u -> "uk", "de", "fr"
		prefixCode:   regexp.MustCompile(`(?i)(?:^|/)([a-z]{2})[._-]`),
		countryNames: countryNameTable(),
		validAlpha2:  regexp.MustCompile(`(?i)^[a-z]{2}$`),
	}
}

// Country resolves the channel country code. An explicit attribute wins;
// otherwise a 2-letter code is inferred from the playlist origin path. The
// result is an upper-cased alpha-2 code or the "unknown" sentinel.
func (n *Normalizer) Country(explicit, originPath string) string {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" && n.validAlpha2.MatchString(explicit) {
		return strings.ToUpper(explicit)
	}

	if originPath == "" {
		return models.CountryUnknown
	}

	if m := n.filenameCode.FindStringSubmatch(originPath); len(m) > 1 {
		return strings.ToUpper(m[1])
	}
	if m := n.prefixCode.FindStringSubmatch(path.Base(originPath)); len(m) > 1 {
		return strings.ToUpper(m[1])
	}

	// Multi-word country names embedded in the filename, e.g.
	// playlists/united_kingdom.m3u
	base := strings.ToLower(path.Base(originPath))
	base = strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(base)
	for name, code := range n.countryNames {
		if strings.Contains(base, name) {
			return code
		}
	}

	return models.CountryUnknown
}

// Category resolves the channel category. An explicit group attribute wins
// (lower-cased); otherwise the display name is run through the keyword rules.
func (n *Normalizer) Category(explicit, displayName string) string {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		return strings.ToLower(explicit)
	}

	for _, rule := range n.categoryRules {
		if rule.Pattern.MatchString(displayName) {
			return rule.Tag
		}
	}

	return models.CategoryGeneral
}

// compileCategoryRules returns the ordered keyword rules for category
// inference. Keeping the table explicit makes new categories a data change,
// not a control-flow change.
func compileCategoryRules() []CategoryRule {
	rules := []struct {
		tag     string
		pattern string
	}{
		{"news", `news|cnn|bbc world|noticias|nachrichten`},
		{"sports", `sports?|espn|football|soccer|basketball|racing|golf|tennis`},
		{"movies", `movies?|cinema|film`},
		{"music", `music|mtv|hits|radio`},
		{"kids", `kids|cartoons?|junior|baby|toons?`},
		{"documentary", `documentar(?:y|ies)|discovery|nat ?geo|history|wild`},
		{"comedy", `comedy`},
		{"religion", `religion|church|gospel|islam|christian|catholic`},
		{"shopping", `shop|qvc`},
		{"weather", `weather`},
	}

	compiled := make([]CategoryRule, 0, len(rules))
	for _, r := range rules {
		compiled = append(compiled, CategoryRule{
			Tag:     r.tag,
			Pattern: regexp.MustCompile(`(?i)\b(?:` + r.pattern + `)\b`),
		})
	}
	return compiled
}

// countryNameTable maps multi-word country names (separator-normalized) to
// alpha-2 codes for origin paths that spell the country out.
func countryNameTable() map[string]string {
	return map[string]string{
		"united_states":  "US",
		"united_kingdom": "GB",
		"south_korea":    "KR",
		"south_africa":   "ZA",
		"new_zealand":    "NZ",
		"saudi_arabia":   "SA",
		"costa_rica":     "CR",
		"hong_kong":      "HK",
		"czech_republic": "CZ",
	}
}
