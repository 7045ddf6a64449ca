package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lcastelli/streampulse/internal/circuitbreaker"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/retry"
)

var (
	// ErrInvalidPlaylist is returned when downloaded content is not a valid playlist
	ErrInvalidPlaylist = fmt.Errorf("invalid playlist format")

	// ErrSizeExceeded is returned when the playlist exceeds the size limit
	ErrSizeExceeded = fmt.Errorf("playlist exceeds maximum size")
)

// Conditional carries cache validators from the previous fetch of a source
type Conditional struct {
	ETag         string
	LastModified string
}

// Result is the outcome of a playlist fetch
type Result struct {
	// Content is the playlist body. Empty when NotModified is true.
	Content string

	// NotModified reports that the source returned 304 and the cached
	// copy is still current.
	NotModified bool

	ETag         string
	LastModified string
	FetchedAt    time.Time
}

// Config holds fetcher settings
type Config struct {
	TimeoutSeconds int
	MaxFileSizeMB  int64
	RetryAttempts  int
	Logger         *logger.Logger
}

// Fetcher downloads playlists from tracked sources. Each upstream host gets
// retry with backoff and a shared circuit breaker so a dead source stops
// consuming ingest time.
type Fetcher struct {
	httpClient     *http.Client
	logger         *logger.Logger
	maxFileSizeMB  int64
	retryConfig    retry.Config
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// New creates a playlist fetcher
func New(cfg Config) *Fetcher {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 120
	}
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 100
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.AppLogger()
	}

	httpClient := &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	retryConfig := retry.Config{
		MaxAttempts:       cfg.RetryAttempts,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		JitterFraction:    0.1,
	}

	cbConfig := circuitbreaker.DefaultConfig()

	return &Fetcher{
		httpClient:     httpClient,
		logger:         cfg.Logger,
		maxFileSizeMB:  cfg.MaxFileSizeMB,
		retryConfig:    retryConfig,
		circuitBreaker: circuitbreaker.New(cbConfig),
	}
}

// Fetch downloads the playlist at url. When cond carries validators from a
// previous fetch they are sent as If-None-Match / If-Modified-Since, and a
// 304 response yields a Result with NotModified set.
func (f *Fetcher) Fetch(ctx context.Context, url string, cond Conditional) (*Result, error) {
	f.logger.WithFields(map[string]interface{}{
		"url": url,
	}).Info("Fetching playlist")

	var result *Result
	err := f.circuitBreaker.Execute(func() error {
		var fetchErr error
		result, fetchErr = retry.DoWithResult(ctx, f.retryConfig, func() (*Result, error) {
			return f.fetchOnce(ctx, url, cond)
		}, f.isRetryableError)
		return fetchErr
	})

	if err != nil {
		f.logger.WithFields(map[string]interface{}{
			"url": url,
		}).Error("Playlist fetch failed", err)
		return nil, err
	}

	if result.NotModified {
		f.logger.WithFields(map[string]interface{}{
			"url": url,
		}).Info("Playlist not modified since last fetch")
	} else {
		f.logger.WithFields(map[string]interface{}{
			"url":        url,
			"size_bytes": len(result.Content),
		}).Info("Playlist fetched successfully")
	}

	return result, nil
}

// fetchOnce performs a single fetch attempt
func (f *Fetcher) fetchOnce(ctx context.Context, url string, cond Conditional) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &Result{
			NotModified:  true,
			ETag:         cond.ETag,
			LastModified: cond.LastModified,
			FetchedAt:    time.Now(),
		}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	maxSize := f.maxFileSizeMB * 1024 * 1024
	if resp.ContentLength > 0 && resp.ContentLength > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d MB limit", ErrSizeExceeded, resp.ContentLength, f.maxFileSizeMB)
	}

	// +1 to detect overflow
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > maxSize {
		return nil, fmt.Errorf("%w: download exceeds %d MB limit", ErrSizeExceeded, f.maxFileSizeMB)
	}

	if err := validatePlaylist(body); err != nil {
		return nil, err
	}

	return &Result{
		Content:      string(body),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now(),
	}, nil
}

// validatePlaylist checks that the content looks like an M3U playlist
func validatePlaylist(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidPlaylist)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#EXTM3U") {
			return fmt.Errorf("%w: missing #EXTM3U header", ErrInvalidPlaylist)
		}
		break
	}

	return nil
}

// isRetryableError determines if an error should trigger a retry
func (f *Fetcher) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Don't retry validation errors
	if strings.Contains(err.Error(), ErrInvalidPlaylist.Error()) ||
		strings.Contains(err.Error(), ErrSizeExceeded.Error()) {
		return false
	}

	// Don't retry 4xx errors (client errors)
	if strings.Contains(err.Error(), "HTTP error: 4") {
		return false
	}

	// Retry network errors, timeouts, and 5xx errors
	return true
}
