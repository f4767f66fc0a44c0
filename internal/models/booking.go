package models

import "time"

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	CoachID uint         `gorm:"index" json:"coach_id"`
	Coach   CoachProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"coach"`

	ClientID   *uint  `json:"client_id"`
	GuestName  string `gorm:"size:255" json:"guest_name"`
	GuestEmail string `gorm:"size:100" json:"guest_email"`

	EnrollmentID *uint `json:"enrollment_id"`
	OfferingID   *uint `json:"offering_id"`
	WorkshopID   *uint `gorm:"index" json:"workshop_id"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'BOOKED'" json:"status"`

	// True when the delivering coach differs from the enrollment's
	// primary coach.
	IsCoverage bool `gorm:"default:false" json:"is_coverage"`

	StripeSessionID string `gorm:"size:255" json:"-"`
	AmountPaidCents int64  `json:"amount_paid_cents"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
