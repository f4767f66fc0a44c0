package models

import "time"

// CoverageRequest lets the assigned coach ask another coach to cover a
// booking. Accepting transfers the booking's coach atomically with the
// status change.
type CoverageRequest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RequestingCoachID uint  `gorm:"index" json:"requesting_coach_id"`
	AcceptingCoachID  *uint `json:"accepting_coach_id"`

	BookingID uint    `gorm:"index" json:"booking_id"`
	Booking   Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"booking"`

	Status string `gorm:"size:20;default:'PENDING'" json:"status"`
	Note   string `gorm:"size:500" json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
