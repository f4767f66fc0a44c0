package models

import "time"

// RecurringRule is one weekly availability window for a coach,
// e.g. every Monday 09:00-12:00. A coach may keep several disjoint
// windows on the same weekday.
type RecurringRule struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	CoachID uint `gorm:"index:idx_rules_coach_weekday" json:"coach_id"`

	// 0 = Monday ... 6 = Sunday
	DayOfWeek int `gorm:"index:idx_rules_coach_weekday" json:"day_of_week"`

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Available bool   `gorm:"default:true" json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
