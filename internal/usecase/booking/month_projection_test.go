package booking

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/cache"
	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key string, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := strconv.ParseInt(s.data[key], 10, 64)
	n++
	s.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (s *memStore) SetNX(_ context.Context, key string, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func newMonthUC(f *fakeRepo, cal *cache.Calendar) *MonthProjection {
	uc := NewMonthProjection(f, cal, testPolicy())
	uc.now = fixedNow
	return uc
}

func findDay(t *testing.T, view *MonthView, date string) DayView {
	t.Helper()
	for _, week := range view.Weeks {
		for _, d := range week {
			if d.Date == date {
				return d
			}
		}
	}
	t.Fatalf("day %s not in grid", date)
	return DayView{}
}

func TestMonthProjectionGridShape(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	uc := newMonthUC(f, nil)

	view, err := uc.Execute(context.Background(), MonthProjectionInput{
		CoachID: 1, Year: 2026, Month: 3,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// March 2026 starts on a Sunday and ends on a Tuesday: the
	// Monday-start grid runs Feb 23 through Apr 5, six full weeks.
	if len(view.Weeks) != 6 {
		t.Fatalf("weeks = %d, want 6", len(view.Weeks))
	}
	for i, week := range view.Weeks {
		if len(week) != 7 {
			t.Fatalf("week %d has %d days", i, len(week))
		}
	}
	if got := view.Weeks[0][0].Date; got != "2026-02-23" {
		t.Fatalf("grid start = %s, want 2026-02-23", got)
	}
	if got := view.Weeks[5][6].Date; got != "2026-04-05" {
		t.Fatalf("grid end = %s, want 2026-04-05", got)
	}

	leading := findDay(t, view, "2026-02-23")
	if leading.IsCurrentMonth {
		t.Fatal("leading filler day marked current month")
	}
	first := findDay(t, view, "2026-03-01")
	if !first.IsCurrentMonth || first.Day != 1 {
		t.Fatalf("first of month: %+v", first)
	}
}

func TestMonthProjectionDayFlags(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	uc := newMonthUC(f, nil)

	view, err := uc.Execute(context.Background(), MonthProjectionInput{
		CoachID: 1, Year: 2026, Month: 3,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	today := findDay(t, view, "2026-03-02")
	if !today.IsToday || today.IsPast {
		t.Fatalf("today flags: %+v", today)
	}
	if !today.HasAvailable {
		t.Fatal("working Monday with open slots not marked available")
	}

	yesterday := findDay(t, view, "2026-03-01")
	if !yesterday.IsPast || yesterday.IsToday {
		t.Fatalf("yesterday flags: %+v", yesterday)
	}
	if yesterday.IsFullyBooked {
		t.Fatal("past day marked fully booked")
	}

	// Weekends have no recurring rules: future, current month, no
	// availability.
	saturday := findDay(t, view, "2026-03-07")
	if len(saturday.Slots) != 0 {
		t.Fatalf("saturday slots = %d", len(saturday.Slots))
	}
	if !saturday.IsFullyBooked {
		t.Fatal("empty future day not marked fully booked")
	}

	tuesday := findDay(t, view, "2026-03-03")
	if len(tuesday.Slots) != 29 {
		t.Fatalf("tuesday slots = %d, want 29", len(tuesday.Slots))
	}
	if got := tuesday.Slots[0].DisplayTime; got != "09:00 AM" {
		t.Fatalf("first display = %q", got)
	}
}

func TestMonthProjectionCacheHitAndBump(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	cal := cache.NewCalendar(newMemStore(), 10*time.Minute)
	uc := newMonthUC(f, cal)

	in := MonthProjectionInput{CoachID: 1, Year: 2026, Month: 3}
	ctx := context.Background()

	first, err := uc.Execute(ctx, in)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	if !findDay(t, first, "2026-03-10").HasAvailable {
		t.Fatal("fixture day not available before the vacation")
	}

	// A repo change without a version bump must not be visible yet.
	f.vacations = append(f.vacations, models.VacationBlock{
		CoachID: 1, StartDate: "2026-03-10", EndDate: "2026-03-10",
	})
	stale, err := uc.Execute(ctx, in)
	if err != nil {
		t.Fatalf("cached render: %v", err)
	}
	if !findDay(t, stale, "2026-03-10").HasAvailable {
		t.Fatal("expected a cache hit serving the memoized grid")
	}

	if err := cal.Bump(ctx, 1); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	fresh, err := uc.Execute(ctx, in)
	if err != nil {
		t.Fatalf("render after bump: %v", err)
	}
	day := findDay(t, fresh, "2026-03-10")
	if day.HasAvailable || len(day.Slots) != 0 {
		t.Fatalf("vacation day still available after bump: %+v", day)
	}
}

func TestMonthProjectionWorkshopStatuses(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)

	mk := func(id uint, day int) {
		f.workshops[id] = &models.Workshop{
			ID: id, CoachID: 1, Name: "Clinic",
			StartTime: time.Date(2026, 3, day, 18, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 3, day, 20, 0, 0, 0, time.UTC),
			Capacity:  2, PriceCents: 2000, Active: true,
		}
	}
	mk(1, 10) // will be FULL
	mk(2, 11) // will be PENDING_FULL
	mk(3, 12) // open

	wid := func(v uint) *uint { return &v }
	f.bookings[1] = &models.Booking{ID: 1, CoachID: 1, WorkshopID: wid(1), Status: string(domain.StatusBooked)}
	f.bookings[2] = &models.Booking{ID: 2, CoachID: 1, WorkshopID: wid(1), Status: string(domain.StatusBooked)}
	f.bookings[3] = &models.Booking{ID: 3, CoachID: 1, WorkshopID: wid(2), Status: string(domain.StatusBooked)}
	f.bookings[4] = &models.Booking{ID: 4, CoachID: 1, WorkshopID: wid(2), Status: string(domain.StatusPendingPayment)}
	f.nextBookingID = 4

	uc := newMonthUC(f, nil)
	view, err := uc.Execute(context.Background(), MonthProjectionInput{
		CoachID: 1, Year: 2026, Month: 3,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	full := findDay(t, view, "2026-03-10").Workshops
	if len(full) != 1 || full[0].Status != WorkshopFull || full[0].SpotsLeft != 0 {
		t.Fatalf("full workshop: %+v", full)
	}

	pending := findDay(t, view, "2026-03-11").Workshops
	if len(pending) != 1 || pending[0].Status != WorkshopPendingFull {
		t.Fatalf("pending-full workshop: %+v", pending)
	}
	if pending[0].SpotsLeft != 1 {
		t.Fatalf("pending-full spots = %d, want 1 (hold does not consume)", pending[0].SpotsLeft)
	}

	open := findDay(t, view, "2026-03-12").Workshops
	if len(open) != 1 || open[0].Status != WorkshopAvailable || open[0].SpotsLeft != 2 {
		t.Fatalf("open workshop: %+v", open)
	}
}

func TestMonthProjectionValidation(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	uc := newMonthUC(f, nil)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, MonthProjectionInput{CoachID: 1, Year: 2026, Month: 13}); !httperr.IsBusiness(err, "invalid_month") {
		t.Fatalf("err = %v, want invalid_month", err)
	}
	if _, err := uc.Execute(ctx, MonthProjectionInput{CoachID: 1, Year: 2026, Month: 3, Timezone: "Mars/Olympus"}); !httperr.IsBusiness(err, "invalid_timezone") {
		t.Fatalf("err = %v, want invalid_timezone", err)
	}
	if _, err := uc.Execute(ctx, MonthProjectionInput{CoachID: 9, Year: 2026, Month: 3}); !httperr.IsBusiness(err, "coach_not_found") {
		t.Fatalf("err = %v, want coach_not_found", err)
	}
}
