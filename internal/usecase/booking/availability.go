package booking

import (
	"context"
	"sort"
	"time"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/domain/schedule"
)

// openIntervals resolves the availability sources date by date over
// [fromDay, toDay] (days in the coach's zone) and concatenates the raw
// open intervals. Precedence is applied per-date, never globally.
func openIntervals(
	ctx context.Context,
	r domain.Repository,
	coachID uint,
	loc *time.Location,
	fromDay time.Time,
	toDay time.Time,
	workday schedule.Workday,
) ([]schedule.TimeRange, error) {

	fromKey := schedule.DateKey(fromDay)
	toKey := schedule.DateKey(toDay)

	vacations, err := r.ListVacations(ctx, coachID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	overrides, err := r.ListOverrides(ctx, coachID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	rules, err := r.ListRecurringRules(ctx, coachID)
	if err != nil {
		return nil, err
	}

	var open []schedule.TimeRange
	for day := fromDay; !day.After(toDay); day = day.AddDate(0, 0, 1) {
		key := schedule.DateKey(day)
		src := schedule.DaySources{
			OnVacation: schedule.VacationCovers(vacations, key),
			Override:   schedule.OverrideFor(overrides, key),
			Rules:      rules,
		}
		open = append(open, schedule.ResolveDay(day, loc, src, workday)...)
	}
	return open, nil
}

// occupiedIntervals merges external busy intervals with active
// bookings into the unified occupied set. The bookings term can be
// skipped for event types whose exclusivity is enforced by capacity
// instead.
func occupiedIntervals(
	ctx context.Context,
	r domain.Repository,
	coachID uint,
	start time.Time,
	end time.Time,
	includeBookings bool,
	excludeBookingID uint,
) ([]schedule.TimeRange, error) {

	busy, err := r.ListBusyIntervals(ctx, coachID, start, end)
	if err != nil {
		return nil, err
	}

	occupied := make([]schedule.TimeRange, 0, len(busy))
	for _, b := range busy {
		occupied = append(occupied, schedule.TimeRange{Start: b.StartTime, End: b.EndTime})
	}

	if includeBookings {
		bookings, err := r.ListOccupiedBookings(ctx, coachID, start, end, excludeBookingID)
		if err != nil {
			return nil, err
		}
		for _, b := range bookings {
			occupied = append(occupied, schedule.TimeRange{Start: b.StartTime, End: b.EndTime})
		}
	}

	return occupied, nil
}

// bookableStarts runs the full pipeline (resolver -> aggregator ->
// generator) for the day range and returns ascending start instants.
// Past filtering stays with the caller.
func bookableStarts(
	ctx context.Context,
	r domain.Repository,
	coachID uint,
	loc *time.Location,
	fromDay time.Time,
	toDay time.Time,
	length time.Duration,
	step time.Duration,
	workday schedule.Workday,
	includeBookings bool,
	excludeBookingID uint,
) ([]time.Time, error) {

	open, err := openIntervals(ctx, r, coachID, loc, fromDay, toDay, workday)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}

	rangeStart := dayStart(fromDay, loc)
	rangeEnd := dayStart(toDay, loc).AddDate(0, 0, 1)

	occupied, err := occupiedIntervals(
		ctx, r, coachID,
		rangeStart, rangeEnd,
		includeBookings, excludeBookingID,
	)
	if err != nil {
		return nil, err
	}

	starts := schedule.Slots(open, occupied, length, step)
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts, nil
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

func containsInstant(starts []time.Time, want time.Time) bool {
	for _, s := range starts {
		if s.Equal(want) {
			return true
		}
	}
	return false
}
