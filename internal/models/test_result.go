package models

import "time"

// TestStatus represents the outcome of a single stream probe
type TestStatus string

const (
	TestSuccess TestStatus = "success"
	TestFailure TestStatus = "failure"
)

// ResolutionUnknown is recorded when a probe could not determine a resolution.
const ResolutionUnknown = "unknown"

// StreamTestResult is one probe outcome for a channel. Results are
// append-only; history per channel is ordered by TestedAt.
type StreamTestResult struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ChannelID      string     `gorm:"type:varchar(32);not null;index:idx_test_results_channel" json:"channel_id"`
	Status         TestStatus `gorm:"type:varchar(20);not null" json:"status"`
	ResponseTimeMs int64      `gorm:"not null" json:"response_time_ms"`
	BitrateKbps    int        `gorm:"not null;default:0" json:"bitrate_kbps"`
	Resolution     string     `gorm:"type:varchar(20);not null;default:unknown" json:"resolution"`
	TestedAt       time.Time  `gorm:"not null;index:idx_test_results_tested_at" json:"tested_at"`
	Region         string     `gorm:"type:varchar(64);not null" json:"region"`
}

// TableName specifies the table name for StreamTestResult
func (StreamTestResult) TableName() string {
	return "stream_test_results"
}

// QualityMetrics is the derived quality aggregate for one channel. Exactly
// one row per channel, overwritten on each recalculation.
type QualityMetrics struct {
	ChannelID            string    `gorm:"type:varchar(32);primaryKey" json:"channel_id"`
	UptimePercentage     float64   `gorm:"not null;default:0" json:"uptime_percentage"`
	StabilityScore       int       `gorm:"not null;default:0" json:"stability_score"`
	VideoQualityScore    int       `gorm:"not null;default:0" json:"video_quality_score"`
	GeoAvailabilityScore int       `gorm:"not null;default:0" json:"geo_availability_score"`
	OverallScore         int       `gorm:"not null;default:0" json:"overall_score"`
	CalculatedAt         time.Time `gorm:"not null" json:"calculated_at"`
}

// TableName specifies the table name for QualityMetrics
func (QualityMetrics) TableName() string {
	return "quality_metrics"
}
