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
	"github.com/Danger0101/coaching-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type RescheduleBookingInput struct {
	BookingID uint
	ClientID  *uint // nil when staff-initiated
	NewStart  time.Time

	// Optional coach change, permitted only for pool enrollments.
	NewCoachID *uint
}

// ======================================================
// USE CASE
// ======================================================

type RescheduleBooking struct {
	repo     domain.Repository
	calendar *cache.Calendar
	notifier *notify.Dispatcher
	audit    *audit.Dispatcher
	policy   Policy
	now      func() time.Time
}

func NewRescheduleBooking(
	repo domain.Repository,
	calendar *cache.Calendar,
	notifier *notify.Dispatcher,
	auditDisp *audit.Dispatcher,
	policy Policy,
) *RescheduleBooking {
	return &RescheduleBooking{
		repo:     repo,
		calendar: calendar,
		notifier: notifier,
		audit:    auditDisp,
		policy:   policy,
		now:      time.Now,
	}
}

func (uc *RescheduleBooking) Execute(
	ctx context.Context,
	in RescheduleBookingInput,
) (*models.Booking, error) {

	now := uc.now()
	if !in.NewStart.After(now) {
		return nil, httperr.ErrValidation("past_date")
	}
	if in.NewStart.After(now.Add(uc.policy.BookingWindow)) {
		return nil, httperr.ErrValidation("out_of_window")
	}

	var moved *models.Booking
	var previousCoach uint

	err := uc.repo.Transaction(ctx, func(r domain.Repository) error {

		b, err := r.GetBookingForUpdate(ctx, in.BookingID)
		if err != nil {
			return httperr.ErrValidation("booking_not_found")
		}
		if in.ClientID != nil && (b.ClientID == nil || *b.ClientID != *in.ClientID) {
			return httperr.ErrValidation("booking_not_found")
		}
		if b.WorkshopID != nil {
			return httperr.ErrValidation("invalid_state")
		}
		previousCoach = b.CoachID

		targetCoach := b.CoachID
		if in.NewCoachID != nil && *in.NewCoachID != b.CoachID {
			if err := uc.validateCoachChange(ctx, r, b, *in.NewCoachID); err != nil {
				return err
			}
			targetCoach = *in.NewCoachID
		}

		// Cutoff and state machine first: a policy rejection should
		// not depend on what the calendar looks like.
		length := b.EndTime.Sub(b.StartTime)
		if err := domain.Reschedule(b, in.NewStart, now, uc.policy.RescheduleCutoff); err != nil {
			return err
		}
		b.CoachID = targetCoach

		// Same locked protocol as create, excluding the booking being
		// moved from its own occupancy check.
		coach, err := r.GetCoach(ctx, targetCoach)
		if err != nil {
			return httperr.ErrValidation("coach_not_found")
		}
		loc := timezone.Location(coach.Timezone)

		day := dayStart(in.NewStart, loc)
		starts, err := bookableStarts(
			ctx, r,
			targetCoach, loc,
			day, day,
			length,
			uc.policy.SlotStep,
			uc.policy.Workday,
			true,
			b.ID,
		)
		if err != nil {
			return err
		}
		if !containsInstant(starts, in.NewStart) {
			return httperr.ErrConflict("slot_taken")
		}

		conflicts, err := r.LockConflictingBookings(
			ctx, targetCoach, b.StartTime, b.EndTime, b.ID,
		)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return httperr.ErrConflict("slot_taken")
		}

		if err := r.UpdateBooking(ctx, b); err != nil {
			if httperr.IsExclusionConflict(err) {
				return httperr.ErrConflict("slot_taken")
			}
			return err
		}

		moved = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, previousCoach)
	if moved.CoachID != previousCoach {
		uc.invalidate(ctx, moved.CoachID)
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:      notify.EventBookingRescheduled,
			BookingID: moved.ID,
			CoachID:   moved.CoachID,
			ClientID:  moved.ClientID,
		})
	}
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			CoachID:  &moved.CoachID,
			UserID:   moved.ClientID,
			Action:   "booking_rescheduled",
			Entity:   "booking",
			EntityID: &moved.ID,
		})
	}

	return moved, nil
}

// validateCoachChange allows switching coach only when the enrollment
// is open to the pool (no pinned primary coach).
func (uc *RescheduleBooking) validateCoachChange(
	ctx context.Context,
	r domain.Repository,
	b *models.Booking,
	newCoachID uint,
) error {

	if b.EnrollmentID == nil {
		return httperr.ErrValidation("coach_change_not_allowed")
	}

	e, err := r.GetEnrollmentForUpdate(ctx, *b.EnrollmentID)
	if err != nil {
		return httperr.ErrValidation("enrollment_not_found")
	}
	if e.CoachID != nil {
		return httperr.ErrValidation("coach_change_not_allowed")
	}

	if _, err := r.GetCoach(ctx, newCoachID); err != nil {
		return httperr.ErrValidation("coach_not_found")
	}
	return nil
}

func (uc *RescheduleBooking) invalidate(ctx context.Context, coachID uint) {
	if uc.calendar == nil {
		return
	}
	if err := uc.calendar.Bump(ctx, coachID); err != nil {
		logger.Get().Warn("calendar version bump failed",
			zap.Uint("coach_id", coachID), zap.Error(err))
	}
}
