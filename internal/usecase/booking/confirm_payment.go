package booking

import (
	"context"
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/audit"
	"github.com/Danger0101/coaching-scheduler/internal/cache"
	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/models"
	"github.com/Danger0101/coaching-scheduler/internal/notify"
)

// ======================================================
// USE CASE
// ======================================================

// ConfirmPayment settles a PENDING_PAYMENT hold after checkout
// completes. The row lock serializes against the expiry sweep, so a
// hold is either confirmed here or reclaimed there, never both.
type ConfirmPayment struct {
	repo     domain.Repository
	calendar *cache.Calendar
	notifier *notify.Dispatcher
	audit    *audit.Dispatcher
	now      func() time.Time
}

func NewConfirmPayment(
	repo domain.Repository,
	calendar *cache.Calendar,
	notifier *notify.Dispatcher,
	auditDisp *audit.Dispatcher,
) *ConfirmPayment {
	return &ConfirmPayment{
		repo:     repo,
		calendar: calendar,
		notifier: notifier,
		audit:    auditDisp,
		now:      time.Now,
	}
}

type ConfirmPaymentInput struct {
	BookingID uint

	// Session id reported by the payment provider. When set it must
	// match the one stored at checkout creation.
	StripeSessionID string
	AmountPaidCents int64
}

func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	in ConfirmPaymentInput,
) (*models.Booking, error) {

	var booking *models.Booking

	err := uc.repo.Transaction(ctx, func(r domain.Repository) error {
		b, err := r.GetBookingForUpdate(ctx, in.BookingID)
		if err != nil {
			return httperr.ErrValidation("booking_not_found")
		}

		if in.StripeSessionID != "" &&
			b.StripeSessionID != "" &&
			b.StripeSessionID != in.StripeSessionID {
			return httperr.ErrValidation("session_mismatch")
		}

		if err := domain.ConfirmPayment(b, in.AmountPaidCents); err != nil {
			return err
		}

		if err := r.UpdateBooking(ctx, b); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.calendar != nil {
		_ = uc.calendar.Bump(ctx, booking.CoachID)
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:       notify.EventBookingCreated,
			BookingID:  booking.ID,
			CoachID:    booking.CoachID,
			ClientID:   booking.ClientID,
			GuestEmail: booking.GuestEmail,
		})
	}
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			CoachID:  &booking.CoachID,
			UserID:   booking.ClientID,
			Action:   "payment_confirmed",
			Entity:   "booking",
			EntityID: &booking.ID,
		})
	}

	return booking, nil
}
