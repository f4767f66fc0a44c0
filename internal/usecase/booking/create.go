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
	"github.com/Danger0101/coaching-scheduler/internal/payments"
	"github.com/Danger0101/coaching-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	CoachID  uint
	ClientID *uint

	GuestName  string
	GuestEmail string

	Start time.Time

	// Entitlement: exactly one of these for 1:1 sessions.
	EnrollmentID *uint
	FreeOfferID  *uint

	// Fixed-capacity event. When set, the workshop's own times apply.
	WorkshopID *uint
}

type CreateBookingResult struct {
	Booking     *models.Booking
	CheckoutURL string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	calendar *cache.Calendar
	checkout payments.CheckoutProvider
	notifier *notify.Dispatcher
	audit    *audit.Dispatcher
	policy   Policy
	now      func() time.Time
}

func NewCreateBooking(
	repo domain.Repository,
	calendar *cache.Calendar,
	checkout payments.CheckoutProvider,
	notifier *notify.Dispatcher,
	auditDisp *audit.Dispatcher,
	policy Policy,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		calendar: calendar,
		checkout: checkout,
		notifier: notifier,
		audit:    auditDisp,
		policy:   policy,
		now:      time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingResult, error) {

	if in.WorkshopID != nil {
		return uc.createWorkshopSeat(ctx, in)
	}
	return uc.createOneOnOne(ctx, in)
}

// --------------------------------------------------
// 1:1 sessions
// --------------------------------------------------

func (uc *CreateBooking) createOneOnOne(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingResult, error) {

	// Validation happens before any lock is taken.
	now := uc.now()
	if !in.Start.After(now) {
		return nil, httperr.ErrValidation("past_date")
	}
	if in.Start.After(now.Add(uc.policy.BookingWindow)) {
		return nil, httperr.ErrValidation("out_of_window")
	}
	if in.ClientID == nil {
		return nil, httperr.ErrValidation("client_required")
	}
	if in.EnrollmentID == nil && in.FreeOfferID == nil {
		return nil, httperr.ErrValidation("entitlement_required")
	}

	var created *models.Booking

	err := uc.repo.Transaction(ctx, func(r domain.Repository) error {

		coachID := in.CoachID
		length := 60 * time.Minute

		var enrollment *models.Enrollment
		var offer *models.FreeSessionOffer

		// 1. Lock the entitlement and infer the coach.
		switch {
		case in.EnrollmentID != nil:
			e, err := r.GetEnrollmentForUpdate(ctx, *in.EnrollmentID)
			if err != nil || e.ClientID != *in.ClientID {
				return httperr.ErrValidation("enrollment_not_found")
			}
			if e.RemainingSessions <= 0 {
				return httperr.ErrValidation("no_credit")
			}
			if e.IsExpired(now) {
				return httperr.ErrValidation("enrollment_expired")
			}

			offering, err := r.GetOffering(ctx, e.OfferingID)
			if err != nil {
				return httperr.ErrValidation("offering_not_found")
			}
			length = time.Duration(offering.SessionLengthMin) * time.Minute

			if coachID == 0 && e.CoachID != nil {
				coachID = *e.CoachID
			}
			enrollment = e

		case in.FreeOfferID != nil:
			o, err := r.GetFreeOfferForUpdate(ctx, *in.FreeOfferID)
			if err != nil || o.ClientID != *in.ClientID {
				return httperr.ErrValidation("offer_not_found")
			}
			if coachID == 0 {
				coachID = o.CoachID
			}
			if coachID != o.CoachID {
				return httperr.ErrValidation("coach_mismatch")
			}
			if o.OfferingID != nil {
				if offering, err := r.GetOffering(ctx, *o.OfferingID); err == nil {
					length = time.Duration(offering.SessionLengthMin) * time.Minute
				}
			}
			offer = o
		}

		if coachID == 0 {
			return httperr.ErrValidation("coach_required")
		}

		coach, err := r.GetCoach(ctx, coachID)
		if err != nil {
			return httperr.ErrValidation("coach_not_found")
		}
		loc := timezone.Location(coach.Timezone)

		// 2. Re-run the availability check inside the lock scope.
		// The projected calendar the client saw is advisory only.
		day := dayStart(in.Start, loc)
		starts, err := bookableStarts(
			ctx, r,
			coachID, loc,
			day, day,
			length,
			uc.policy.SlotStep,
			uc.policy.Workday,
			true,
			0,
		)
		if err != nil {
			return err
		}
		if !containsInstant(starts, in.Start) {
			return httperr.ErrConflict("slot_taken")
		}

		// 3. Lock any concurrent writer out of the interval.
		end := in.Start.Add(length)
		conflicts, err := r.LockConflictingBookings(ctx, coachID, in.Start, end, 0)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return httperr.ErrConflict("slot_taken")
		}

		// 4. Insert. The partial unique index on (coach, start) is
		// the backstop for races the conflict query cannot see.
		b := domain.NewOneOnOne(
			coachID,
			in.ClientID,
			in.EnrollmentID,
			offeringRef(enrollment, offer),
			in.Start,
			length,
		)
		if err := r.CreateBooking(ctx, b); err != nil {
			if httperr.IsExclusionConflict(err) {
				return httperr.ErrConflict("slot_taken")
			}
			return err
		}

		// 5. Consume the credit in the same transaction.
		if enrollment != nil {
			enrollment.RemainingSessions--
			if err := r.UpdateEnrollment(ctx, enrollment); err != nil {
				return err
			}
		}
		if offer != nil {
			if err := domain.RedeemOffer(offer, b, now); err != nil {
				return err
			}
			if err := r.UpdateFreeOffer(ctx, offer); err != nil {
				return err
			}
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, created, notify.EventBookingCreated, "booking_created")
	return &CreateBookingResult{Booking: created}, nil
}

// --------------------------------------------------
// Fixed-capacity workshops
// --------------------------------------------------

func (uc *CreateBooking) createWorkshopSeat(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingResult, error) {

	if in.ClientID == nil && in.GuestEmail == "" {
		return nil, httperr.ErrValidation("client_or_guest_required")
	}

	now := uc.now()
	var created *models.Booking
	var workshop *models.Workshop

	err := uc.repo.Transaction(ctx, func(r domain.Repository) error {

		// Lock the workshop row: it is the limiting resource.
		ws, err := r.GetWorkshopForUpdate(ctx, *in.WorkshopID)
		if err != nil {
			return httperr.ErrValidation("workshop_not_found")
		}
		if !ws.Active {
			return httperr.ErrValidation("workshop_not_found")
		}
		if !ws.StartTime.After(now) {
			return httperr.ErrValidation("past_date")
		}

		held, err := r.CountWorkshopBookings(ctx, ws.ID, domain.HeldStatuses())
		if err != nil {
			return err
		}
		if held >= int64(ws.Capacity) {
			return httperr.ErrConflict("capacity_full")
		}

		b := domain.NewWorkshopSeat(ws, in.ClientID, in.GuestName, in.GuestEmail)
		if err := r.CreateBooking(ctx, b); err != nil {
			return err
		}

		created = b
		workshop = ws
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CreateBookingResult{Booking: created}

	// A priced seat is only a hold until payment completes. The
	// checkout session is created after commit; a failure here leaves
	// the hold for the sweep to reclaim.
	if created.Status == string(domain.StatusPendingPayment) && uc.checkout != nil {
		sessionID, url, err := uc.checkout.CreateCheckout(
			created,
			"Workshop: "+workshop.Name,
			workshop.PriceCents,
			in.GuestEmail,
		)
		if err != nil {
			logger.Get().Warn("checkout session failed",
				zap.Uint("booking_id", created.ID), zap.Error(err))
		} else {
			created.StripeSessionID = sessionID
			result.CheckoutURL = url
			if err := uc.repo.UpdateBooking(ctx, created); err != nil {
				logger.Get().Warn("failed to store checkout session id",
					zap.Uint("booking_id", created.ID), zap.Error(err))
			}
		}
	}

	uc.afterCommit(ctx, created, notify.EventBookingCreated, "booking_created")
	return result, nil
}

// --------------------------------------------------
// Post-commit effects
// --------------------------------------------------

// afterCommit applies the explicit side-effect sequence: cache
// invalidation, notification, audit. All best-effort; the booking is
// already durable.
func (uc *CreateBooking) afterCommit(
	ctx context.Context,
	b *models.Booking,
	eventType string,
	action string,
) {
	if uc.calendar != nil {
		if err := uc.calendar.Bump(ctx, b.CoachID); err != nil {
			logger.Get().Warn("calendar version bump failed",
				zap.Uint("coach_id", b.CoachID), zap.Error(err))
		}
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:       eventType,
			BookingID:  b.ID,
			CoachID:    b.CoachID,
			ClientID:   b.ClientID,
			GuestEmail: b.GuestEmail,
		})
	}
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			CoachID:  &b.CoachID,
			UserID:   b.ClientID,
			Action:   action,
			Entity:   "booking",
			EntityID: &b.ID,
		})
	}
}

func offeringRef(e *models.Enrollment, o *models.FreeSessionOffer) *uint {
	if e != nil {
		id := e.OfferingID
		return &id
	}
	if o != nil {
		return o.OfferingID
	}
	return nil
}
