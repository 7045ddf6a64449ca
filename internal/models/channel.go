package models

import "time"

// ChannelStatus represents the liveness state of a channel
type ChannelStatus string

const (
	StatusActive   ChannelStatus = "active"
	StatusInactive ChannelStatus = "inactive"
	StatusUntested ChannelStatus = "untested"
)

// CountryUnknown is the sentinel used when no country could be determined.
// Real country values are upper-cased ISO-3166 alpha-2 codes.
const CountryUnknown = "unknown"

// CategoryGeneral is the fallback category when no rule matches.
const CategoryGeneral = "general"

// Channel represents a single IPTV channel parsed from a playlist.
// The ID is derived from the stream URL and is stable across re-ingestions;
// channels are never hard-deleted, only marked inactive.
type Channel struct {
	ID           string        `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name         string        `gorm:"type:varchar(255);not null;index:idx_channels_name" json:"name"`
	URL          string        `gorm:"type:text;not null" json:"url"`
	Country      string        `gorm:"type:varchar(16);not null;index:idx_channels_country" json:"country"`
	Category     string        `gorm:"type:varchar(64);not null;index:idx_channels_category" json:"category"`
	Logo         string        `gorm:"type:text" json:"logo,omitempty"`
	TvgID        string        `gorm:"type:varchar(255)" json:"tvg_id,omitempty"`
	TvgName      string        `gorm:"type:varchar(255)" json:"tvg_name,omitempty"`
	QualityScore int           `gorm:"not null;default:0" json:"quality_score"`
	Status       ChannelStatus `gorm:"type:varchar(20);not null;default:untested;index:idx_channels_status" json:"status"`
	LastTested   *time.Time    `json:"last_tested,omitempty"`
	Source       string        `gorm:"type:varchar(255);not null;index:idx_channels_source" json:"source"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for Channel
func (Channel) TableName() string {
	return "channels"
}
