package api

import (
	"time"

	"github.com/lcastelli/streampulse/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PaginatedResponse wraps paginated results with metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
	TotalPages int         `json:"total_pages"`
}

// ChannelResponse represents one channel in API responses
type ChannelResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	URL          string               `json:"url"`
	Country      string               `json:"country"`
	Category     string               `json:"category"`
	Logo         string               `json:"logo,omitempty"`
	QualityScore int                  `json:"quality_score"`
	Status       models.ChannelStatus `json:"status"`
	LastTested   *time.Time           `json:"last_tested,omitempty"`
	Source       string               `json:"source"`
}

// TestResultResponse represents one probe result
type TestResultResponse struct {
	Status         models.TestStatus `json:"status"`
	ResponseTimeMs int64             `json:"response_time_ms"`
	BitrateKbps    int               `json:"bitrate_kbps"`
	Resolution     string            `json:"resolution"`
	Region         string            `json:"region"`
	TestedAt       time.Time         `json:"tested_at"`
}

// MetricsResponse represents a channel's quality metrics snapshot
type MetricsResponse struct {
	ChannelID            string    `json:"channel_id"`
	UptimePercentage     float64   `json:"uptime_percentage"`
	StabilityScore       int       `json:"stability_score"`
	VideoQualityScore    int       `json:"video_quality_score"`
	GeoAvailabilityScore int       `json:"geo_availability_score"`
	OverallScore         int       `json:"overall_score"`
	CalculatedAt         time.Time `json:"calculated_at"`
}

// SourceUpdateResponse represents one ingestion audit record
type SourceUpdateResponse struct {
	Source          string    `json:"source"`
	Timestamp       time.Time `json:"timestamp"`
	Message         string    `json:"message"`
	ChannelsAdded   int       `json:"channels_added"`
	ChannelsUpdated int       `json:"channels_updated"`
	ChannelsRemoved int       `json:"channels_removed"`
}

func toChannelResponse(ch models.Channel) ChannelResponse {
	return ChannelResponse{
		ID:           ch.ID,
		Name:         ch.Name,
		URL:          ch.URL,
		Country:      ch.Country,
		Category:     ch.Category,
		Logo:         ch.Logo,
		QualityScore: ch.QualityScore,
		Status:       ch.Status,
		LastTested:   ch.LastTested,
		Source:       ch.Source,
	}
}

func toTestResultResponse(r models.StreamTestResult) TestResultResponse {
	return TestResultResponse{
		Status:         r.Status,
		ResponseTimeMs: r.ResponseTimeMs,
		BitrateKbps:    r.BitrateKbps,
		Resolution:     r.Resolution,
		Region:         r.Region,
		TestedAt:       r.TestedAt,
	}
}

func toMetricsResponse(m models.QualityMetrics) MetricsResponse {
	return MetricsResponse{
		ChannelID:            m.ChannelID,
		UptimePercentage:     m.UptimePercentage,
		StabilityScore:       m.StabilityScore,
		VideoQualityScore:    m.VideoQualityScore,
		GeoAvailabilityScore: m.GeoAvailabilityScore,
		OverallScore:         m.OverallScore,
		CalculatedAt:         m.CalculatedAt,
	}
}

func toSourceUpdateResponse(u models.SourceUpdate) SourceUpdateResponse {
	return SourceUpdateResponse{
		Source:          u.Source,
		Timestamp:       u.Timestamp,
		Message:         u.Message,
		ChannelsAdded:   u.ChannelsAdded,
		ChannelsUpdated: u.ChannelsUpdated,
		ChannelsRemoved: u.ChannelsRemoved,
	}
}
