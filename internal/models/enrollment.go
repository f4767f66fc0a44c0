package models

import "time"

// Enrollment is a client's purchased session-credit grant against an
// offering. RemainingSessions is decremented exactly once per
// successful 1:1 booking, inside the booking transaction, and
// incremented back on an early cancellation.
type Enrollment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID   uint     `gorm:"index" json:"client_id"`
	OfferingID uint     `json:"offering_id"`
	Offering   Offering `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"offering"`

	// The coach chosen at checkout. Nil means the enrollment is open
	// to the coach pool.
	CoachID *uint `json:"coach_id"`

	TotalSessions     int `json:"total_sessions"`
	RemainingSessions int `json:"remaining_sessions"`

	ExpirationDate *time.Time `json:"expiration_date"`
	Active         bool       `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Enrollment) IsExpired(now time.Time) bool {
	return e.ExpirationDate != nil && now.After(*e.ExpirationDate)
}
