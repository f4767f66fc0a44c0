package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

// ===============================
// Constructors
// ===============================

// NewOneOnOne builds a 1:1 booking with the end instant derived from
// the session length. No hidden mutation: callers persist the result
// explicitly.
func NewOneOnOne(
	coachID uint,
	clientID *uint,
	enrollmentID *uint,
	offeringID *uint,
	start time.Time,
	length time.Duration,
) *models.Booking {
	return &models.Booking{
		Reference:    uuid.NewString(),
		CoachID:      coachID,
		ClientID:     clientID,
		EnrollmentID: enrollmentID,
		OfferingID:   offeringID,
		StartTime:    start,
		EndTime:      start.Add(length),
		Status:       string(StatusBooked),
	}
}

// NewWorkshopSeat builds a booking against a fixed-capacity event.
// Priced workshops start as a payment hold.
func NewWorkshopSeat(
	ws *models.Workshop,
	clientID *uint,
	guestName string,
	guestEmail string,
) *models.Booking {
	status := StatusBooked
	if ws.PriceCents > 0 {
		status = StatusPendingPayment
	}

	return &models.Booking{
		Reference:  uuid.NewString(),
		CoachID:    ws.CoachID,
		ClientID:   clientID,
		GuestName:  guestName,
		GuestEmail: guestEmail,
		WorkshopID: &ws.ID,
		StartTime:  ws.StartTime,
		EndTime:    ws.EndTime,
		Status:     string(status),
	}
}

// ===============================
// Domain Actions
// ===============================

// Cancel transitions the booking and reports whether the cancellation
// happened before the cutoff, i.e. whether the consumed credit should
// be restored. At exactly start-cutoff the credit is forfeited.
func Cancel(b *models.Booking, now time.Time, cutoff time.Duration) (bool, error) {
	if err := CanCancel(Status(b.Status)); err != nil {
		return false, err
	}

	refundable := now.Before(b.StartTime.Add(-cutoff))

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return refundable, nil
}

// Reschedule moves the booking to a new start, preserving its
// duration. Inside the cutoff window the operation is rejected
// outright rather than forfeiting the credit.
func Reschedule(b *models.Booking, newStart time.Time, now time.Time, cutoff time.Duration) error {
	if err := CanReschedule(Status(b.Status)); err != nil {
		return err
	}

	if !now.Before(b.StartTime.Add(-cutoff)) {
		return httperr.ErrPolicy("late_reschedule")
	}

	duration := b.EndTime.Sub(b.StartTime)
	b.StartTime = newStart
	b.EndTime = newStart.Add(duration)
	b.Status = string(StatusRescheduled)
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := CanComplete(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	return nil
}

// ConfirmPayment promotes a payment hold to a confirmed booking.
func ConfirmPayment(b *models.Booking, amountCents int64) error {
	if err := CanConfirm(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusBooked)
	b.AmountPaidCents = amountCents
	return nil
}
