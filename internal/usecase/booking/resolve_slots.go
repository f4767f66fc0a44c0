package booking

import (
	"context"
	"time"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type ResolveSlotsInput struct {
	CoachID          uint
	FromDate         string // "2006-01-02" in the coach's zone
	ToDate           string
	SessionLengthMin int

	// False for event types whose exclusivity is capacity-checked
	// instead of slot-blocked.
	SkipInternalBookings bool
}

// ======================================================
// USE CASE
// ======================================================

// ResolveSlots is the read-only calendar query. Results are advisory:
// create re-validates under lock.
type ResolveSlots struct {
	repo   domain.Repository
	policy Policy
	now    func() time.Time
}

func NewResolveSlots(repo domain.Repository, policy Policy) *ResolveSlots {
	return &ResolveSlots{
		repo:   repo,
		policy: policy,
		now:    time.Now,
	}
}

func (uc *ResolveSlots) Execute(
	ctx context.Context,
	in ResolveSlotsInput,
) ([]time.Time, error) {

	if in.SessionLengthMin <= 0 {
		return nil, httperr.ErrValidation("invalid_session_length")
	}

	coach, err := uc.repo.GetCoach(ctx, in.CoachID)
	if err != nil {
		return nil, httperr.ErrValidation("coach_not_found")
	}
	loc := timezone.Location(coach.Timezone)

	fromDay, err := time.ParseInLocation("2006-01-02", in.FromDate, loc)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date")
	}
	toDay, err := time.ParseInLocation("2006-01-02", in.ToDate, loc)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date")
	}
	if toDay.Before(fromDay) {
		return nil, httperr.ErrValidation("invalid_date_range")
	}

	starts, err := bookableStarts(
		ctx, uc.repo,
		in.CoachID, loc,
		fromDay, toDay,
		time.Duration(in.SessionLengthMin)*time.Minute,
		uc.policy.SlotStep,
		uc.policy.Workday,
		!in.SkipInternalBookings,
		0,
	)
	if err != nil {
		return nil, err
	}

	// Past candidates are dropped here, at the caller boundary, so
	// the generator stays pure.
	now := uc.now()
	future := starts[:0]
	for _, s := range starts {
		if s.After(now) {
			future = append(future, s)
		}
	}
	return future, nil
}
