package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Danger0101/coaching-scheduler/internal/audit"
	"github.com/Danger0101/coaching-scheduler/internal/cache"
	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/logger"
	"github.com/Danger0101/coaching-scheduler/internal/models"
	"github.com/Danger0101/coaching-scheduler/internal/notify"
)

// ======================================================
// USE CASE
// ======================================================

// CancelBooking applies the cutoff gate: before start-24h the consumed
// credit (or taster offer) is restored; at or after the cutoff it is
// forfeited. The operation itself always succeeds on an active
// booking.
type CancelBooking struct {
	repo     domain.Repository
	calendar *cache.Calendar
	notifier *notify.Dispatcher
	audit    *audit.Dispatcher
	policy   Policy
	now      func() time.Time
}

func NewCancelBooking(
	repo domain.Repository,
	calendar *cache.Calendar,
	notifier *notify.Dispatcher,
	auditDisp *audit.Dispatcher,
	policy Policy,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		calendar: calendar,
		notifier: notifier,
		audit:    auditDisp,
		policy:   policy,
		now:      time.Now,
	}
}

type CancelBookingResult struct {
	Booking  *models.Booking
	Refunded bool
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	bookingID uint,
	actorClientID *uint,
) (*CancelBookingResult, error) {

	now := uc.now()
	var cancelled *models.Booking
	var refunded bool

	err := uc.repo.Transaction(ctx, func(r domain.Repository) error {

		b, err := r.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return httperr.ErrValidation("booking_not_found")
		}
		if actorClientID != nil && (b.ClientID == nil || *b.ClientID != *actorClientID) {
			return httperr.ErrValidation("booking_not_found")
		}

		refunded, err = domain.Cancel(b, now, uc.policy.CancelCutoff)
		if err != nil {
			return err
		}

		// Restore the credit only for qualifying cancellations, in
		// the same transaction as the status change.
		if refunded && b.EnrollmentID != nil {
			e, err := r.GetEnrollmentForUpdate(ctx, *b.EnrollmentID)
			if err != nil {
				return err
			}
			e.RemainingSessions++
			if err := r.UpdateEnrollment(ctx, e); err != nil {
				return err
			}
		}

		if refunded {
			offer, err := r.GetFreeOfferByBookingForUpdate(ctx, b.ID)
			if err != nil {
				return err
			}
			if offer != nil {
				domain.RestoreOffer(offer)
				if err := r.UpdateFreeOffer(ctx, offer); err != nil {
					return err
				}
			}
		}

		if err := r.UpdateBooking(ctx, b); err != nil {
			return err
		}

		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.calendar != nil {
		if err := uc.calendar.Bump(ctx, cancelled.CoachID); err != nil {
			logger.Get().Warn("calendar version bump failed",
				zap.Uint("coach_id", cancelled.CoachID), zap.Error(err))
		}
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:      notify.EventBookingCancelled,
			BookingID: cancelled.ID,
			CoachID:   cancelled.CoachID,
			ClientID:  cancelled.ClientID,
		})
	}
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			CoachID:  &cancelled.CoachID,
			UserID:   cancelled.ClientID,
			Action:   "booking_cancelled",
			Entity:   "booking",
			EntityID: &cancelled.ID,
			Metadata: map[string]any{"refunded": refunded},
		})
	}

	return &CancelBookingResult{Booking: cancelled, Refunded: refunded}, nil
}
