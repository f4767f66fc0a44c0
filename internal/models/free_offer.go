package models

import "time"

// FreeSessionOffer is a coach-approved one-off taster session with a
// redemption deadline. Booking one consumes the offer; an early
// cancellation re-approves it instead of restoring a numeric credit.
type FreeSessionOffer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID   uint  `gorm:"index" json:"client_id"`
	CoachID    uint  `json:"coach_id"`
	OfferingID *uint `json:"offering_id"`

	Status string `gorm:"size:10;default:'PENDING'" json:"status"`

	RedemptionDeadline *time.Time `json:"redemption_deadline"`
	BookingID          *uint      `json:"booking_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *FreeSessionOffer) IsExpired(now time.Time) bool {
	return o.RedemptionDeadline != nil && now.After(*o.RedemptionDeadline)
}
