package models

import "time"

// TrackedSource identifies an upstream playlist origin. The revision fields
// hold the validators from the last successful fetch so re-fetches can be
// conditional.
type TrackedSource struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	URL          string     `gorm:"type:text;not null" json:"url"`
	OriginPath   string     `gorm:"type:text" json:"origin_path,omitempty"`
	Enabled      bool       `gorm:"not null;default:true" json:"enabled"`
	ETag         string     `gorm:"type:varchar(255)" json:"etag,omitempty"`
	LastModified string     `gorm:"type:varchar(255)" json:"last_modified,omitempty"`
	LastFetched  *time.Time `json:"last_fetched,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for TrackedSource
func (TrackedSource) TableName() string {
	return "tracked_sources"
}

// SourceUpdate is the audit record emitted by one reconciliation pass.
// Append-only, never mutated.
type SourceUpdate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Source          string    `gorm:"type:varchar(255);not null;index:idx_source_updates_source" json:"source"`
	Timestamp       time.Time `gorm:"not null" json:"timestamp"`
	Message         string    `gorm:"type:text;not null" json:"message"`
	ChannelsAdded   int       `gorm:"not null;default:0" json:"channels_added"`
	ChannelsUpdated int       `gorm:"not null;default:0" json:"channels_updated"`
	ChannelsRemoved int       `gorm:"not null;default:0" json:"channels_removed"`
}

// TableName specifies the table name for SourceUpdate
func (SourceUpdate) TableName() string {
	return "source_updates"
}
