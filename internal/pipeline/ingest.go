package pipeline

import (
	"context"
	"net/url"
	"time"

	"github.com/lcastelli/streampulse/internal/config"
	apperrors "github.com/lcastelli/streampulse/internal/errors"
	"github.com/lcastelli/streampulse/internal/fetcher"
	"github.com/lcastelli/streampulse/internal/filter"
	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/metrics"
	"github.com/lcastelli/streampulse/internal/models"
	"github.com/lcastelli/streampulse/internal/parser"
	"github.com/lcastelli/streampulse/internal/reconciler"
	"github.com/lcastelli/streampulse/internal/store"
)

// IngestOptions controls one ingestion run
type IngestOptions struct {
	// DryRun computes the full reconciliation without writing anything
	DryRun bool
}

// IngestReport summarizes one ingestion run
type IngestReport struct {
	Source      string
	NotModified bool
	Parsed      int
	Filtered    int
	Added       int
	Updated     int
	Removed     int
	DryRun      bool
}

// Ingestor drives the playlist ingestion pipeline: fetch, parse, filter,
// reconcile, persist.
type Ingestor struct {
	store      *store.Store
	fetcher    *fetcher.Fetcher
	parser     *parser.Parser
	filters    *filter.Manager
	reconciler *reconciler.Reconciler
	logger     *logger.Logger
}

// NewIngestor creates an ingestor with the given dependencies
func NewIngestor(st *store.Store, f *fetcher.Fetcher, filters *filter.Manager, log *logger.Logger) *Ingestor {
	if log == nil {
		log = logger.AppLogger()
	}
	if filters == nil {
		filters = filter.NewManager()
	}

	return &Ingestor{
		store:      st,
		fetcher:    f,
		parser:     parser.NewWithLogger(log),
		filters:    filters,
		reconciler: reconciler.NewWithClock(log, time.Now),
		logger:     log,
	}
}

// IngestSource fetches one tracked source and ingests its playlist. Cache
// validators from the previous fetch are replayed so an unchanged playlist
// costs one conditional request and no reconciliation.
func (i *Ingestor) IngestSource(ctx context.Context, src config.SourceConfig, opts IngestOptions) (*IngestReport, error) {
	ctx = logger.ContextWithSource(ctx, src.Name)

	cond := fetcher.Conditional{}
	tracked, err := i.store.GetTrackedSource(src.Name)
	if err == nil {
		cond.ETag = tracked.ETag
		cond.LastModified = tracked.LastModified
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	result, err := i.fetcher.Fetch(ctx, src.URL, cond)
	if err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		return nil, apperrors.ExternalServiceError(src.Name, "playlist fetch failed", err)
	}

	if result.NotModified {
		metrics.IngestRuns.WithLabelValues("not_modified").Inc()
		if !opts.DryRun {
			if err := i.trackSource(src, result); err != nil {
				return nil, err
			}
		}
		return &IngestReport{Source: src.Name, NotModified: true, DryRun: opts.DryRun}, nil
	}

	report, err := i.IngestContent(ctx, src.Name, originPath(src.URL), result.Content, opts)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		if err := i.trackSource(src, result); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// IngestContent runs the pipeline over already-fetched playlist text
func (i *Ingestor) IngestContent(ctx context.Context, sourceName, origin, content string, opts IngestOptions) (*IngestReport, error) {
	parsed := i.parser.Parse(content, sourceName, origin)
	for errType, count := range i.parser.GetStats().ErrorsByType {
		metrics.ParseErrors.WithLabelValues(errType).Add(float64(count))
	}

	kept := i.filters.Apply(parsed)

	existing, err := i.store.ChannelsBySource(sourceName)
	if err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	rec := i.reconciler.Reconcile(sourceName, kept, existing)
	for _, decision := range rec.Decisions {
		metrics.ChannelsReconciled.WithLabelValues(string(decision.Action)).Inc()
	}

	report := &IngestReport{
		Source:   sourceName,
		Parsed:   len(parsed),
		Filtered: len(parsed) - len(kept),
		Added:    rec.Added,
		Updated:  rec.Updated,
		Removed:  rec.Removed,
		DryRun:   opts.DryRun,
	}

	if opts.DryRun {
		i.logger.WithFields(map[string]interface{}{
			"source":  sourceName,
			"added":   rec.Added,
			"updated": rec.Updated,
			"removed": rec.Removed,
		}).Info("dry run complete, no changes written")
		metrics.IngestRuns.WithLabelValues("dry_run").Inc()
		return report, nil
	}

	if err := i.store.UpsertChannels(rec.ToUpsert); err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := i.store.RecordSourceUpdate(&rec.Audit); err != nil {
		metrics.IngestRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	i.syncCatalogGauge()
	metrics.IngestRuns.WithLabelValues("success").Inc()

	return report, nil
}

// trackSource refreshes the tracked source record with the latest fetch state
func (i *Ingestor) trackSource(src config.SourceConfig, result *fetcher.Result) error {
	fetchedAt := result.FetchedAt
	return i.store.UpsertTrackedSource(&models.TrackedSource{
		Name:         src.Name,
		URL:          src.URL,
		OriginPath:   originPath(src.URL),
		Enabled:      src.Enabled,
		ETag:         result.ETag,
		LastModified: result.LastModified,
		LastFetched:  &fetchedAt,
	})
}

// syncCatalogGauge refreshes the catalog size gauge from the store
func (i *Ingestor) syncCatalogGauge() {
	stats, err := i.store.Stats()
	if err != nil {
		i.logger.Warn("failed to refresh catalog stats gauge")
		return
	}
	for status, count := range stats.ByStatus {
		metrics.CatalogChannels.WithLabelValues(status).Set(float64(count))
	}
}

// originPath extracts the path component used for country inference
func originPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Path
}
