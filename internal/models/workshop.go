package models

import "time"

// Workshop is a fixed-capacity group event. Capacity is enforced by
// counting active bookings under a row lock, never by cascading
// foreign keys.
type Workshop struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	CoachID uint `gorm:"index" json:"coach_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Capacity   int   `gorm:"not null" json:"capacity"`
	PriceCents int64 `json:"price_cents"`
	Active     bool  `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
