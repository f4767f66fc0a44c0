package dto

import (
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/models"
)

type BookingListDTO struct {
	ID         uint      `json:"id"`
	Reference  string    `json:"reference"`
	CoachID    uint      `json:"coach_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	WorkshopID *uint     `json:"workshop_id,omitempty"`
	IsCoverage bool      `json:"is_coverage"`
}

func FromBooking(b *models.Booking) BookingListDTO {
	return BookingListDTO{
		ID:         b.ID,
		Reference:  b.Reference,
		CoachID:    b.CoachID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     b.Status,
		WorkshopID: b.WorkshopID,
		IsCoverage: b.IsCoverage,
	}
}
