package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/lcastelli/streampulse/internal/errors"
	"github.com/lcastelli/streampulse/internal/models"
)

// Store wraps all persistence operations for the channel catalog
type Store struct {
	db *gorm.DB
}

// New creates a store backed by the given database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ChannelFilter narrows channel listings
type ChannelFilter struct {
	Source   string
	Country  string
	Category string
	Status   models.ChannelStatus
	MinScore int
	Limit    int
	Offset   int
}

// UpsertChannels inserts or updates the given channels in one batch.
// Incoming values win on conflict.
func (s *Store) UpsertChannels(channels []models.Channel) error {
	if len(channels) == 0 {
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "url", "country", "category", "logo",
			"tvg_id", "tvg_name", "status", "source", "updated_at",
		}),
	}).CreateInBatches(channels, 500).Error
	if err != nil {
		return apperrors.DatabaseError("failed to upsert channels", err)
	}

	return nil
}

// GetChannel loads a single channel by ID
func (s *Store) GetChannel(id string) (*models.Channel, error) {
	var channel models.Channel
	if err := s.db.First(&channel, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFoundError("channel", id)
		}
		return nil, apperrors.DatabaseError("failed to load channel", err)
	}
	return &channel, nil
}

// ListChannels returns channels matching the filter
func (s *Store) ListChannels(filter ChannelFilter) ([]models.Channel, int64, error) {
	query := s.db.Model(&models.Channel{})

	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinScore > 0 {
		query = query.Where("quality_score >= ?", filter.MinScore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.DatabaseError("failed to count channels", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var channels []models.Channel
	if err := query.Order("quality_score DESC, id").Find(&channels).Error; err != nil {
		return nil, 0, apperrors.DatabaseError("failed to list channels", err)
	}

	return channels, total, nil
}

// ChannelsBySource returns all channels that were ingested from the given source
func (s *Store) ChannelsBySource(source string) ([]models.Channel, error) {
	var channels []models.Channel
	if err := s.db.Where("source = ?", source).Find(&channels).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to load channels for source", err)
	}
	return channels, nil
}

// ProbeCandidates returns channels eligible for a test cycle, least recently
// tested first. Inactive channels are retested so they can recover. An empty
// source selects the whole catalog.
func (s *Store) ProbeCandidates(source string, limit int) ([]models.Channel, error) {
	query := s.db.Order("last_tested NULLS FIRST, id")
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var channels []models.Channel
	if err := query.Find(&channels).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to load probe candidates", err)
	}
	return channels, nil
}

// UpdateChannelAfterProbe applies a probe outcome to the channel row
func (s *Store) UpdateChannelAfterProbe(channelID string, status models.ChannelStatus, score int, testedAt time.Time) error {
	err := s.db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		Updates(map[string]interface{}{
			"status":        status,
			"quality_score": score,
			"last_tested":   testedAt,
		}).Error
	if err != nil {
		return apperrors.DatabaseError("failed to update channel after probe", err)
	}
	return nil
}

// AppendTestResult stores a new probe result in the channel's history
func (s *Store) AppendTestResult(result *models.StreamTestResult) error {
	if err := s.db.Create(result).Error; err != nil {
		return apperrors.DatabaseError("failed to append test result", err)
	}
	return nil
}

// ResultsForChannel returns the most recent probe results for a channel,
// newest first
func (s *Store) ResultsForChannel(channelID string, limit int) ([]models.StreamTestResult, error) {
	query := s.db.Where("channel_id = ?", channelID).Order("tested_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []models.StreamTestResult
	if err := query.Find(&results).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to load test results", err)
	}
	return results, nil
}

// SaveMetrics stores the computed quality metrics for a channel, replacing
// any previous snapshot
func (s *Store) SaveMetrics(metrics *models.QualityMetrics) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		UpdateAll: true,
	}).Create(metrics).Error
	if err != nil {
		return apperrors.DatabaseError("failed to save quality metrics", err)
	}
	return nil
}

// GetMetrics loads the quality metrics snapshot for a channel
func (s *Store) GetMetrics(channelID string) (*models.QualityMetrics, error) {
	var metrics models.QualityMetrics
	if err := s.db.First(&metrics, "channel_id = ?", channelID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFoundError("quality metrics", channelID)
		}
		return nil, apperrors.DatabaseError("failed to load quality metrics", err)
	}
	return &metrics, nil
}

// RecordSourceUpdate appends an ingestion audit record
func (s *Store) RecordSourceUpdate(update *models.SourceUpdate) error {
	if err := s.db.Create(update).Error; err != nil {
		return apperrors.DatabaseError("failed to record source update", err)
	}
	return nil
}

// ListSourceUpdates returns recent ingestion audit records, newest first
func (s *Store) ListSourceUpdates(source string, limit int) ([]models.SourceUpdate, error) {
	query := s.db.Order("timestamp DESC, id DESC")
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var updates []models.SourceUpdate
	if err := query.Find(&updates).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to list source updates", err)
	}
	return updates, nil
}

// UpsertTrackedSource inserts or refreshes a tracked source record
func (s *Store) UpsertTrackedSource(source *models.TrackedSource) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(source).Error
	if err != nil {
		return apperrors.DatabaseError("failed to upsert tracked source", err)
	}
	return nil
}

// GetTrackedSource loads a tracked source by name
func (s *Store) GetTrackedSource(name string) (*models.TrackedSource, error) {
	var source models.TrackedSource
	if err := s.db.First(&source, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFoundError("tracked source", name)
		}
		return nil, apperrors.DatabaseError("failed to load tracked source", err)
	}
	return &source, nil
}

// CatalogStats summarizes the current channel catalog
type CatalogStats struct {
	TotalChannels    int64            `json:"total_channels"`
	ByStatus         map[string]int64 `json:"by_status"`
	ByCategory       map[string]int64 `json:"by_category"`
	AverageScore     float64          `json:"average_score"`
	SourcesTracked   int64            `json:"sources_tracked"`
	ResultsRecorded  int64            `json:"results_recorded"`
	MetricsSnapshots int64            `json:"metrics_snapshots"`
}

// Stats computes catalog-wide summary statistics
func (s *Store) Stats() (*CatalogStats, error) {
	stats := &CatalogStats{
		ByStatus:   make(map[string]int64),
		ByCategory: make(map[string]int64),
	}

	if err := s.db.Model(&models.Channel{}).Count(&stats.TotalChannels).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to count channels", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var statusBuckets []bucket
	if err := s.db.Model(&models.Channel{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&statusBuckets).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to count channels by status", err)
	}
	for _, b := range statusBuckets {
		stats.ByStatus[b.Key] = b.Count
	}

	var categoryBuckets []bucket
	if err := s.db.Model(&models.Channel{}).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Scan(&categoryBuckets).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to count channels by category", err)
	}
	for _, b := range categoryBuckets {
		stats.ByCategory[b.Key] = b.Count
	}

	if stats.TotalChannels > 0 {
		if err := s.db.Model(&models.Channel{}).
			Select("COALESCE(AVG(quality_score), 0)").
			Scan(&stats.AverageScore).Error; err != nil {
			return nil, apperrors.DatabaseError("failed to average quality scores", err)
		}
	}

	if err := s.db.Model(&models.TrackedSource{}).Count(&stats.SourcesTracked).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to count tracked sources", err)
	}
	if err := s.db.Model(&models.StreamTestResult{}).Count(&stats.ResultsRecorded).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to count test results", err)
	}
	if err := s.db.Model(&models.QualityMetrics{}).Count(&stats.MetricsSnapshots).Error; err != nil {
		return nil, apperrors.DatabaseError("failed to count metrics snapshots", err)
	}

	return stats, nil
}
