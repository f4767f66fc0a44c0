package booking

import "github.com/Danger0101/coaching-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusBooked         Status = "BOOKED"
	StatusRescheduled    Status = "RESCHEDULED"
	StatusCancelled      Status = "CANCELED"
	StatusCompleted      Status = "COMPLETED"
)

// OccupiedStatuses are the statuses that block a coach's time for
// availability purposes.
func OccupiedStatuses() []string {
	return []string{
		string(StatusBooked),
		string(StatusPendingPayment),
		string(StatusRescheduled),
		string(StatusCompleted),
	}
}

// HeldStatuses count against a workshop's capacity: confirmed seats
// plus unexpired payment holds.
func HeldStatuses() []string {
	return []string{
		string(StatusBooked),
		string(StatusPendingPayment),
	}
}

// ===============================
// Transitions
// ===============================

// CanCancel: BOOKED, RESCHEDULED and PENDING_PAYMENT may be canceled;
// CANCELED and COMPLETED are terminal.
func CanCancel(current Status) error {
	switch current {
	case StatusBooked, StatusRescheduled, StatusPendingPayment:
		return nil
	}
	return httperr.ErrValidation("invalid_state")
}

// CanReschedule: only active, paid-for bookings move.
func CanReschedule(current Status) error {
	switch current {
	case StatusBooked, StatusRescheduled:
		return nil
	}
	return httperr.ErrValidation("invalid_state")
}

func CanComplete(current Status) error {
	switch current {
	case StatusBooked, StatusRescheduled:
		return nil
	}
	return httperr.ErrValidation("invalid_state")
}

// CanConfirm: a payment hold becomes a confirmed booking.
func CanConfirm(current Status) error {
	if current == StatusPendingPayment {
		return nil
	}
	return httperr.ErrValidation("invalid_state")
}
