package manifest

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Defaults returned when a manifest carries no usable bitrate or resolution
// attributes. These are assumptions, not measurements: callers that need to
// distinguish "no data" from "assumed" must compare against these constants.
const (
	DefaultBitrateKbps = 1500
	DefaultResolution  = "1280x720"
)

// StreamInfo is the bitrate/resolution hint extracted from a manifest body
type StreamInfo struct {
	BitrateKbps int
	Resolution  string
}

// resolutionRule pairs a pattern with the canonical WxH it maps to. An empty
// Canonical means the match itself carries the WxH value.
type resolutionRule struct {
	Pattern   *regexp.Regexp
	Canonical string
}

// Inspector parses variant-stream manifests for quality hints
type Inspector struct {
	bandwidth       *regexp.Regexp
	streamInfRes    *regexp.Regexp
	resolutionRules []resolutionRule
	assumedBitrate  map[string]int
}

// New creates an inspector with precompiled patterns
func New() *Inspector {
	shorthand := map[string]string{
		"360":  "640x360",
		"480":  "854x480",
		"576":  "720x576",
		"720":  "1280x720",
		"1080": "1920x1080",
		"1440": "2560x1440",
		"2160": "3840x2160",
	}

	// Segment names separate tokens with underscores, which defeat \b, so
	// the rules bound matches on non-digit neighbors instead
	rules := []resolutionRule{
		// Explicit WxH anywhere in free text
		{Pattern: regexp.MustCompile(`(?:^|[^0-9])(\d{3,4}x\d{3,4})(?:[^0-9]|$)`)},
	}
	for _, height := range []string{"2160", "1440", "1080", "720", "576", "480", "360"} {
		rules = append(rules, resolutionRule{
			Pattern:   regexp.MustCompile(`(?i)(?:^|[^0-9])` + height + `p(?:[^0-9a-z]|$)`),
			Canonical: shorthand[height],
		})
	}

	return &Inspector{
		bandwidth:       regexp.MustCompile(`BANDWIDTH=(\d+)`),
		streamInfRes:    regexp.MustCompile(`RESOLUTION=(\d{3,4}x\d{3,4})`),
		resolutionRules: rules,
		// Monotonic with resolution; used when a manifest names a
		// resolution but no bandwidth
		assumedBitrate: map[string]int{
			"640x360":   800,
			"854x480":   1200,
			"720x576":   1500,
			"1280x720":  2800,
			"1920x1080": 5000,
			"2560x1440": 8000,
			"3840x2160": 14000,
		},
	}
}

// Inspect scans a manifest body line by line and returns the best
// bitrate/resolution hint it can find, falling back to the documented
// defaults rather than "unknown"
func (i *Inspector) Inspect(body string) StreamInfo {
	bitrate := 0
	resolution := ""

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#EXT-X-STREAM-INF") {
			if m := i.bandwidth.FindStringSubmatch(line); len(m) > 1 {
				if bps, err := strconv.Atoi(m[1]); err == nil && bps/1000 > bitrate {
					bitrate = bps / 1000
				}
			}
			if m := i.streamInfRes.FindStringSubmatch(line); len(m) > 1 {
				resolution = maxResolution(resolution, m[1])
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		// Plain entry line: recover a resolution hint from free text
		if hint := i.resolutionHint(line); hint != "" {
			resolution = maxResolution(resolution, hint)
		}
	}

	if bitrate == 0 && resolution != "" {
		if assumed, ok := i.assumedBitrate[resolution]; ok {
			bitrate = assumed
		}
	}
	if bitrate == 0 {
		bitrate = DefaultBitrateKbps
	}
	if resolution == "" {
		resolution = DefaultResolution
	}

	return StreamInfo{BitrateKbps: bitrate, Resolution: resolution}
}

// resolutionHint applies the ordered resolution rules to one line
func (i *Inspector) resolutionHint(line string) string {
	for _, rule := range i.resolutionRules {
		m := rule.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if rule.Canonical != "" {
			return rule.Canonical
		}
		return m[1]
	}
	return ""
}

// maxResolution returns whichever WxH string has the greater vertical height
func maxResolution(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if VerticalHeight(b) > VerticalHeight(a) {
		return b
	}
	return a
}

// VerticalHeight extracts the vertical component of a WxH string; 0 when the
// string is not parseable
func VerticalHeight(resolution string) int {
	parts := strings.SplitN(resolution, "x", 2)
	if len(parts) != 2 {
		return 0
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return height
}
