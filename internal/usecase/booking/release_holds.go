package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Danger0101/coaching-scheduler/internal/cache"
	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/logger"
	"github.com/Danger0101/coaching-scheduler/internal/notify"
)

// ======================================================
// USE CASE
// ======================================================

// ReleaseExpiredHolds reclaims PENDING_PAYMENT bookings older than the
// hold window. Rows are locked with SKIP LOCKED so the sweep never
// races a late-arriving payment confirmation: whoever locks first
// settles the row.
type ReleaseExpiredHolds struct {
	repo     domain.Repository
	calendar *cache.Calendar
	notifier *notify.Dispatcher
	policy   Policy
	now      func() time.Time
}

func NewReleaseExpiredHolds(
	repo domain.Repository,
	calendar *cache.Calendar,
	notifier *notify.Dispatcher,
	policy Policy,
) *ReleaseExpiredHolds {
	return &ReleaseExpiredHolds{
		repo:     repo,
		calendar: calendar,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

func (uc *ReleaseExpiredHolds) Execute(ctx context.Context) (int, error) {

	now := uc.now()
	threshold := now.Add(-uc.policy.HoldWindow)

	released := 0
	coaches := map[uint]struct{}{}

	err := uc.repo.Transaction(ctx, func(r domain.Repository) error {
		holds, err := r.ListExpiredHolds(ctx, threshold)
		if err != nil {
			return err
		}

		for i := range holds {
			b := &holds[i]
			b.Status = string(domain.StatusCancelled)
			b.CancelledAt = &now
			if err := r.UpdateBooking(ctx, b); err != nil {
				return err
			}
			coaches[b.CoachID] = struct{}{}
			released++

			if uc.notifier != nil {
				uc.notifier.Dispatch(notify.Event{
					Type:       notify.EventHoldReleased,
					BookingID:  b.ID,
					CoachID:    b.CoachID,
					ClientID:   b.ClientID,
					GuestEmail: b.GuestEmail,
				})
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for coachID := range coaches {
		if uc.calendar == nil {
			break
		}
		if err := uc.calendar.Bump(ctx, coachID); err != nil {
			logger.Get().Warn("calendar version bump failed",
				zap.Uint("coach_id", coachID), zap.Error(err))
		}
	}

	if released > 0 {
		logger.Get().Info("released expired payment holds",
			zap.Int("count", released))
	}
	return released, nil
}
