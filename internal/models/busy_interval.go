package models

import "time"

// ExternalBusyInterval mirrors a third-party calendar's busy periods.
// Rows are replaced wholesale on each sync cycle for a rolling window;
// this service never performs the sync itself.
type ExternalBusyInterval struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	CoachID uint `gorm:"index:idx_busy_coach_range" json:"coach_id"`

	StartTime time.Time `gorm:"index:idx_busy_coach_range" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	SourceID   string    `gorm:"size:255" json:"source_id"`
	Source     string    `gorm:"size:50;default:'GOOGLE_CALENDAR'" json:"source"`
	LastSynced time.Time `gorm:"autoUpdateTime" json:"last_synced"`
}
