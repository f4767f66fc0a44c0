package models

import "time"

type Offering struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	SessionLengthMin int   `gorm:"default:60" json:"session_length_min"`
	TotalSessions    int   `gorm:"default:1" json:"total_sessions"`
	PriceCents       int64 `json:"price_cents"`
	Active           bool  `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
