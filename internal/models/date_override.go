package models

import "time"

// DateOverride supersedes the recurring rules for a single date.
// Available with empty times means the whole default working day;
// unavailable blocks the date regardless of recurring rules.
type DateOverride struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	CoachID uint `gorm:"uniqueIndex:idx_override_coach_date" json:"coach_id"`

	// "2006-01-02" in the coach's zone.
	Date string `gorm:"size:10;uniqueIndex:idx_override_coach_date" json:"date"`

	Available bool   `gorm:"default:true" json:"available"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
