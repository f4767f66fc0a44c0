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
// REQUEST COVERAGE
// ======================================================

type RequestCoverage struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRequestCoverage(repo domain.Repository, auditDisp *audit.Dispatcher) *RequestCoverage {
	return &RequestCoverage{repo: repo, audit: auditDisp}
}

func (uc *RequestCoverage) Execute(
	ctx context.Context,
	bookingID uint,
	requestingCoachID uint,
	note string,
) (*models.CoverageRequest, error) {

	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.ErrValidation("booking_not_found")
	}
	if b.CoachID != requestingCoachID {
		return nil, httperr.ErrValidation("not_assigned_coach")
	}
	if err := domain.CanReschedule(domain.Status(b.Status)); err != nil {
		return nil, httperr.ErrValidation("invalid_state")
	}

	req := &models.CoverageRequest{
		RequestingCoachID: requestingCoachID,
		BookingID:         bookingID,
		Status:            domain.CoveragePending,
		Note:              note,
	}
	if err := uc.repo.CreateCoverageRequest(ctx, req); err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			CoachID:  &requestingCoachID,
			Action:   "coverage_requested",
			Entity:   "coverage_request",
			EntityID: &req.ID,
		})
	}
	return req, nil
}

// ======================================================
// ACCEPT COVERAGE
// ======================================================

// AcceptCoverage reassigns the booking's coach atomically with the
// request resolution, so two coaches racing to accept can never both
// win: the PENDING row lock serializes them and the loser sees
// already_resolved.
type AcceptCoverage struct {
	repo     domain.Repository
	calendar *cache.Calendar
	notifier *notify.Dispatcher
	audit    *audit.Dispatcher
	now      func() time.Time
}

func NewAcceptCoverage(
	repo domain.Repository,
	calendar *cache.Calendar,
	notifier *notify.Dispatcher,
	auditDisp *audit.Dispatcher,
) *AcceptCoverage {
	return &AcceptCoverage{
		repo:     repo,
		calendar: calendar,
		notifier: notifier,
		audit:    auditDisp,
		now:      time.Now,
	}
}

func (uc *AcceptCoverage) Execute(
	ctx context.Context,
	requestID uint,
	acceptingCoachID uint,
) (*models.Booking, error) {

	var transferred *models.Booking
	var previousCoach uint

	err := uc.repo.Transaction(ctx, func(r domain.Repository) error {

		req, err := r.GetCoverageRequestForUpdate(ctx, requestID)
		if err != nil {
			return httperr.ErrConflict("already_resolved")
		}

		b, err := r.GetBookingForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}
		previousCoach = b.CoachID

		// The accepting coach must actually be free: calendar busy
		// intervals and their own bookings both count.
		busy, err := r.CountBusyConflicts(ctx, acceptingCoachID, b.StartTime, b.EndTime)
		if err != nil {
			return err
		}
		if busy > 0 {
			return httperr.ErrConflict("conflict")
		}

		conflicts, err := r.LockConflictingBookings(
			ctx, acceptingCoachID, b.StartTime, b.EndTime, b.ID,
		)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return httperr.ErrConflict("conflict")
		}

		if err := domain.AcceptCoverage(req, b, acceptingCoachID); err != nil {
			return err
		}

		if err := r.UpdateBooking(ctx, b); err != nil {
			if httperr.IsExclusionConflict(err) {
				return httperr.ErrConflict("conflict")
			}
			return err
		}
		if err := r.UpdateCoverageRequest(ctx, req); err != nil {
			return err
		}
		if err := r.DeclineSiblingCoverageRequests(ctx, b.ID, req.ID); err != nil {
			return err
		}

		transferred = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, coachID := range []uint{previousCoach, acceptingCoachID} {
		if uc.calendar == nil {
			break
		}
		if err := uc.calendar.Bump(ctx, coachID); err != nil {
			logger.Get().Warn("calendar version bump failed",
				zap.Uint("coach_id", coachID), zap.Error(err))
		}
	}
	if uc.notifier != nil {
		uc.notifier.Dispatch(notify.Event{
			Type:      notify.EventCoverageAccepted,
			BookingID: transferred.ID,
			CoachID:   transferred.CoachID,
			ClientID:  transferred.ClientID,
		})
	}
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			CoachID:  &acceptingCoachID,
			Action:   "coverage_accepted",
			Entity:   "booking",
			EntityID: &transferred.ID,
		})
	}

	return transferred, nil
}
