package prober

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/manifest"
	"github.com/lcastelli/streampulse/internal/models"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultRegion           = "default"
	defaultMaxManifestBytes = 256 * 1024

	userAgent = "StreamPulse/1.0"
)

// Config holds prober configuration. Client and Now are injectable so tests
// can run against fake servers and clocks.
type Config struct {
	Client           *http.Client
	Timeout          time.Duration
	Region           string
	MaxManifestBytes int64
	Logger           *logger.Logger
	Now              func() time.Time
}

// Prober performs bounded-time liveness and quality checks against a single
// channel URL. It never returns an error: every outcome, including panics,
// becomes a well-formed StreamTestResult so one bad channel can never abort
// a batch.
type Prober struct {
	client           *http.Client
	inspector        *manifest.Inspector
	logger           *logger.Logger
	now              func() time.Time
	timeout          time.Duration
	region           string
	maxManifestBytes int64
}

// New creates a prober
func New(cfg Config) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.MaxManifestBytes <= 0 {
		cfg.MaxManifestBytes = defaultMaxManifestBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.AppLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Prober{
		client:           cfg.Client,
		inspector:        manifest.New(),
		logger:           cfg.Logger,
		now:              cfg.Now,
		timeout:          cfg.Timeout,
		region:           cfg.Region,
		maxManifestBytes: cfg.MaxManifestBytes,
	}
}

// Probe runs the full check sequence for one channel: existence check, then
// manifest inspection for playlist-style URLs.
func (p *Prober) Probe(ctx context.Context, channel models.Channel) (result models.StreamTestResult) {
	start := p.now()

	result = models.StreamTestResult{
		ChannelID:  channel.ID,
		Status:     models.TestFailure,
		Resolution: models.ResolutionUnknown,
		TestedAt:   start.UTC(),
		Region:     p.region,
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(map[string]interface{}{
				"channel": channel.ID,
				"panic":   r,
			}).Warn("probe panicked, recording failure")
			result.Status = models.TestFailure
			result.BitrateKbps = 0
			result.Resolution = models.ResolutionUnknown
		}
		result.ResponseTimeMs = p.now().Sub(start).Milliseconds()
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if !p.exists(ctx, channel.URL) {
		return result
	}

	if !isManifestURL(channel.URL) {
		// Deeper inspection is only possible for playlist-style streams
		result.Status = models.TestSuccess
		return result
	}

	body, ok := p.fetchManifest(ctx, channel.URL)
	if !ok {
		return result
	}

	info := p.inspector.Inspect(body)
	result.Status = models.TestSuccess
	result.BitrateKbps = info.BitrateKbps
	result.Resolution = info.Resolution
	return result
}

// exists issues the lightweight HEAD existence check
func (p *Prober) exists(ctx context.Context, streamURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streamURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// fetchManifest GETs the manifest body within the remaining timeout budget
func (p *Prober) fetchManifest(ctx context.Context, streamURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxManifestBytes))
	if err != nil {
		return "", false
	}

	return string(body), true
}

// isManifestURL reports whether the URL looks like a segmented-stream
// manifest by its path extension
func isManifestURL(streamURL string) bool {
	u, err := url.Parse(streamURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u8", ".m3u":
		return true
	}
	return false
}
