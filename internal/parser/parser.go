package parser

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/models"
	"github.com/lcastelli/streampulse/internal/normalizer"
)

// channelIDPrefix tags playlist-derived identities. The id is the prefix plus
// the first channelIDHexLen hex chars of sha256 over the trimmed URL, so the
// same URL always yields the same id.
const (
	channelIDPrefix = "ch_"
	channelIDHexLen = 12
)

// entry holds the metadata collected for one playlist entry before its URL
// line is seen
type entry struct {
	TvgID      string
	TvgName    string
	TvgLogo    string
	TvgCountry string
	GroupTitle string
	Name       string
}

// ParseStats tracks parsing statistics for one Parse call
type ParseStats struct {
	TotalLines       int
	ParsedEntries    int
	MalformedEntries int
	Duration         time.Duration
	ErrorsByType     map[string]int
}

// Parser turns raw playlist text into channel records. It performs no I/O;
// the output is a pure function of the inputs.
type Parser struct {
	logger     *logger.Logger
	normalizer *normalizer.Normalizer
	stats      ParseStats

	tvgID      *regexp.Regexp
	tvgName    *regexp.Regexp
	tvgLogo    *regexp.Regexp
	tvgCountry *regexp.Regexp
	groupTitle *regexp.Regexp
}

// New creates a new parser instance
func New() *Parser {
	return NewWithLogger(logger.AppLogger())
}

// NewWithLogger creates a new parser instance with a custom logger
func NewWithLogger(log *logger.Logger) *Parser {
	return &Parser{
		logger:     log,
		normalizer: normalizer.New(),
		tvgID:      regexp.MustCompile(`tvg-id="([^"]*)"`),
		tvgName:    regexp.MustCompile(`tvg-name="([^"]*)"`),
		tvgLogo:    regexp.MustCompile(`tvg-logo="([^"]*)"`),
		tvgCountry: regexp.MustCompile(`tvg-country="([^"]*)"`),
		groupTitle: regexp.MustCompile(`group-title="([^"]*)"`),
	}
}

// Parse scans playlist text and returns one Channel per valid entry pair.
// Malformed entries are dropped, never surfaced as errors; empty or
// non-playlist input yields an empty slice.
func (p *Parser) Parse(content, sourceID, originPath string) []models.Channel {
	startTime := time.Now()
	p.stats = ParseStats{ErrorsByType: make(map[string]int)}

	var channels []models.Channel
	var current *entry

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		p.stats.TotalLines++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#EXTINF") {
			if current != nil {
				// Metadata line with no URL before the next one
				p.stats.MalformedEntries++
				p.stats.ErrorsByType["missing_url"]++
			}
			current = p.parseExtinf(line)
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		// URL line
		if current == nil {
			p.stats.MalformedEntries++
			p.stats.ErrorsByType["orphan_url"]++
			continue
		}

		if current.Name == "" {
			p.stats.MalformedEntries++
			p.stats.ErrorsByType["missing_name"]++
			current = nil
			continue
		}

		channels = append(channels, p.buildChannel(current, line, sourceID, originPath))
		p.stats.ParsedEntries++
		current = nil
	}

	if current != nil {
		p.stats.MalformedEntries++
		p.stats.ErrorsByType["missing_url"]++
	}

	p.stats.Duration = time.Since(startTime)

	p.logger.WithFields(map[string]interface{}{
		"source":           sourceID,
		"total_lines":      p.stats.TotalLines,
		"parsed":           p.stats.ParsedEntries,
		"malformed":        p.stats.MalformedEntries,
		"duration_seconds": p.stats.Duration.Seconds(),
	}).Info("playlist parsing complete")

	return channels
}

// parseExtinf extracts metadata attributes from an EXTINF line
func (p *Parser) parseExtinf(line string) *entry {
	e := &entry{}

	if m := p.tvgID.FindStringSubmatch(line); len(m) > 1 {
		e.TvgID = m[1]
	}
	if m := p.tvgName.FindStringSubmatch(line); len(m) > 1 {
		e.TvgName = m[1]
	}
	if m := p.tvgLogo.FindStringSubmatch(line); len(m) > 1 {
		e.TvgLogo = m[1]
	}
	if m := p.tvgCountry.FindStringSubmatch(line); len(m) > 1 {
		e.TvgCountry = m[1]
	}
	if m := p.groupTitle.FindStringSubmatch(line); len(m) > 1 {
		e.GroupTitle = m[1]
	}

	// Visible name is the text after the final comma
	if idx := strings.LastIndex(line, ","); idx != -1 {
		e.Name = strings.TrimSpace(line[idx+1:])
	}

	return e
}

// buildChannel assembles the channel record for a completed entry pair
func (p *Parser) buildChannel(e *entry, url, sourceID, originPath string) models.Channel {
	return models.Channel{
		ID:           ChannelID(url),
		Name:         e.Name,
		URL:          strings.TrimSpace(url),
		Country:      p.normalizer.Country(e.TvgCountry, originPath),
		Category:     p.normalizer.Category(e.GroupTitle, e.Name),
		Logo:         e.TvgLogo,
		TvgID:        e.TvgID,
		TvgName:      e.TvgName,
		QualityScore: 0,
		Status:       models.StatusUntested,
		Source:       sourceID,
	}
}

// ChannelID derives the stable channel identity from a stream URL
func ChannelID(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return channelIDPrefix + hex.EncodeToString(sum[:])[:channelIDHexLen]
}

// GetStats returns the statistics from the most recent Parse call
func (p *Parser) GetStats() ParseStats {
	return p.stats
}
