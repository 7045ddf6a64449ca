package testing

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lcastelli/streampulse/internal/models"
)

// TestDB creates an in-memory SQLite database for testing
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Channel{},
		&models.StreamTestResult{},
		&models.QualityMetrics{},
		&models.TrackedSource{},
		&models.SourceUpdate{},
	); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// CleanupDB removes all records from test database tables
func CleanupDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	db.Exec("DELETE FROM stream_test_results")
	db.Exec("DELETE FROM quality_metrics")
	db.Exec("DELETE FROM source_updates")
	db.Exec("DELETE FROM tracked_sources")
	db.Exec("DELETE FROM channels")
}

// CreateChannel creates a test channel
func CreateChannel(db *gorm.DB, overrides ...func(*models.Channel)) *models.Channel {
	channel := &models.Channel{
		ID:       fmt.Sprintf("ch_%012d", time.Now().UnixNano()%1e12),
		Name:     "Test Channel",
		URL:      "http://example.com/stream.m3u8",
		Country:  "US",
		Category: "news",
		Status:   models.StatusUntested,
		Source:   "test-source",
	}

	for _, override := range overrides {
		override(channel)
	}

	db.Create(channel)
	return channel
}

// CreateTestResult creates a test stream probe result
func CreateTestResult(db *gorm.DB, channelID string, overrides ...func(*models.StreamTestResult)) *models.StreamTestResult {
	result := &models.StreamTestResult{
		ChannelID:      channelID,
		Status:         models.TestSuccess,
		ResponseTimeMs: 120,
		BitrateKbps:    4000,
		Resolution:     "1920x1080",
		TestedAt:       time.Now(),
		Region:         "us-east",
	}

	for _, override := range overrides {
		override(result)
	}

	db.Create(result)
	return result
}

// AssertCount verifies the count of records in a table
func AssertCount(t *testing.T, db *gorm.DB, model interface{}, expected int64, message string) {
	t.Helper()
	var count int64
	db.Model(model).Count(&count)
	if count != expected {
		t.Fatalf("%s: expected count %d, got %d", message, expected, count)
	}
}

// WithID sets the channel ID
func WithID(id string) func(*models.Channel) {
	return func(ch *models.Channel) {
		ch.ID = id
	}
}

// WithName sets the channel name
func WithName(name string) func(*models.Channel) {
	return func(ch *models.Channel) {
		ch.Name = name
	}
}

// WithURL sets the channel URL
func WithURL(url string) func(*models.Channel) {
	return func(ch *models.Channel) {
		ch.URL = url
	}
}

// WithSource sets the channel source
func WithSource(source string) func(*models.Channel) {
	return func(ch *models.Channel) {
		ch.Source = source
	}
}

// WithStatus sets the channel status
func WithStatus(status models.ChannelStatus) func(*models.Channel) {
	return func(ch *models.Channel) {
		ch.Status = status
	}
}

// WithCategory sets the channel category
func WithCategory(category string) func(*models.Channel) {
	return func(ch *models.Channel) {
		ch.Category = category
	}
}

// WithFailure marks a test result as failed
func WithFailure() func(*models.StreamTestResult) {
	return func(r *models.StreamTestResult) {
		r.Status = models.TestFailure
		r.BitrateKbps = 0
		r.Resolution = models.ResolutionUnknown
	}
}

// WithRegion sets the test result region
func WithRegion(region string) func(*models.StreamTestResult) {
	return func(r *models.StreamTestResult) {
		r.Region = region
	}
}

// WithTestedAt sets the test result timestamp
func WithTestedAt(ts time.Time) func(*models.StreamTestResult) {
	return func(r *models.StreamTestResult) {
		r.TestedAt = ts
	}
}
