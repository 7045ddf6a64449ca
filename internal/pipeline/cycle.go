package pipeline

import (
	"context"

	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/metrics"
	"github.com/lcastelli/streampulse/internal/models"
	"github.com/lcastelli/streampulse/internal/prober"
	"github.com/lcastelli/streampulse/internal/scorer"
	"github.com/lcastelli/streampulse/internal/store"
)

// CycleReport summarizes one test cycle
type CycleReport struct {
	Probed    int
	Succeeded int
	Failed    int
}

// TestCycle probes stored channels, appends results to their history,
// recomputes quality metrics, and folds the outcome back into the catalog.
type TestCycle struct {
	store  *store.Store
	batch  *prober.BatchProber
	scorer *scorer.Scorer
	logger *logger.Logger
}

// NewTestCycle creates a test cycle runner
func NewTestCycle(st *store.Store, batch *prober.BatchProber, log *logger.Logger) *TestCycle {
	if log == nil {
		log = logger.AppLogger()
	}

	return &TestCycle{
		store:  st,
		batch:  batch,
		scorer: scorer.New(),
		logger: log,
	}
}

// Run probes up to limit channels (0 for all, empty source for the whole
// catalog) and persists results, metrics, and channel status updates as each
// probe completes. A probe failure marks the channel inactive; a later
// success brings it back.
func (c *TestCycle) Run(ctx context.Context, source string, limit int) (*CycleReport, error) {
	channels, err := c.store.ProbeCandidates(source, limit)
	if err != nil {
		return nil, err
	}

	if len(channels) == 0 {
		c.logger.Info("no channels to probe")
		return &CycleReport{}, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"channels":    len(channels),
		"concurrency": c.batch.Concurrency(),
	}).Info("starting test cycle")

	report := &CycleReport{}
	for result := range c.batch.ProbeBatch(ctx, channels) {
		report.Probed++

		metrics.ProbesTotal.WithLabelValues(string(result.Status)).Inc()
		metrics.ProbeDuration.Observe(float64(result.ResponseTimeMs) / 1000)

		if err := c.applyResult(result); err != nil {
			c.logger.WithFields(map[string]interface{}{
				"channel": result.ChannelID,
			}).Error("failed to apply probe result", err)
			continue
		}

		if result.Status == models.TestSuccess {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	c.syncCatalogGauge()

	c.logger.WithFields(map[string]interface{}{
		"probed":    report.Probed,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("test cycle complete")

	return report, nil
}

// applyResult persists one probe outcome: append to history, recompute the
// metrics snapshot over the full history, update the channel row.
func (c *TestCycle) applyResult(result models.StreamTestResult) error {
	if err := c.store.AppendTestResult(&result); err != nil {
		return err
	}

	history, err := c.store.ResultsForChannel(result.ChannelID, 0)
	if err != nil {
		return err
	}

	snapshot := c.scorer.Score(result.ChannelID, history)
	if err := c.store.SaveMetrics(&snapshot); err != nil {
		return err
	}

	status := models.StatusActive
	if result.Status != models.TestSuccess {
		status = models.StatusInactive
	}

	return c.store.UpdateChannelAfterProbe(result.ChannelID, status, snapshot.OverallScore, result.TestedAt)
}

// syncCatalogGauge refreshes the catalog size gauge from the store
func (c *TestCycle) syncCatalogGauge() {
	stats, err := c.store.Stats()
	if err != nil {
		c.logger.Warn("failed to refresh catalog stats gauge")
		return
	}
	for status, count := range stats.ByStatus {
		metrics.CatalogChannels.WithLabelValues(status).Set(float64(count))
	}
}
