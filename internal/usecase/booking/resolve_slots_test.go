package booking

import (
	"context"
	"testing"
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

func newResolveUC(f *fakeRepo) *ResolveSlots {
	uc := NewResolveSlots(f, testPolicy())
	uc.now = fixedNow
	return uc
}

func TestResolveSlotsRecurringDay(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	uc := newResolveUC(f)

	// Tuesday, fully in the future.
	starts, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID:          1,
		FromDate:         "2026-03-03",
		ToDate:           "2026-03-03",
		SessionLengthMin: 60,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// 09:00 through 16:00 at a 15-minute step.
	if len(starts) != 29 {
		t.Fatalf("len = %d, want 29", len(starts))
	}
	first := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 3, 16, 0, 0, 0, time.UTC)
	if !starts[0].Equal(first) || !starts[len(starts)-1].Equal(last) {
		t.Fatalf("range = %v..%v", starts[0], starts[len(starts)-1])
	}
}

func TestResolveSlotsDropsPastStarts(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	uc := newResolveUC(f)

	// fixedNow is Monday 08:00, before the working day opens, so the
	// whole day survives. Shift now to mid-day and re-resolve.
	starts, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-02", ToDate: "2026-03-02",
		SessionLengthMin: 60,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(starts) != 29 {
		t.Fatalf("len = %d, want 29", len(starts))
	}

	uc.now = func() time.Time {
		return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	}
	starts, err = uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-02", ToDate: "2026-03-02",
		SessionLengthMin: 60,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, s := range starts {
		if !s.After(uc.now()) {
			t.Fatalf("past start leaked: %v", s)
		}
	}
	if len(starts) != 16 {
		t.Fatalf("len = %d, want 16 (12:15 through 16:00)", len(starts))
	}
}

func TestResolveSlotsVacationWins(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	f.vacations = append(f.vacations, models.VacationBlock{
		CoachID: 1, StartDate: "2026-03-03", EndDate: "2026-03-04",
	})
	// An available override inside the vacation must be ignored.
	f.overrides = append(f.overrides, models.DateOverride{
		CoachID: 1, Date: "2026-03-03", Available: true,
		StartTime: "10:00", EndTime: "12:00",
	})
	uc := newResolveUC(f)

	starts, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-03", ToDate: "2026-03-04",
		SessionLengthMin: 60,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("len = %d, want 0 during vacation", len(starts))
	}
}

func TestResolveSlotsOverrideReplacesRules(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	f.overrides = append(f.overrides, models.DateOverride{
		CoachID: 1, Date: "2026-03-03", Available: true,
		StartTime: "10:00", EndTime: "12:00",
	})
	uc := newResolveUC(f)

	starts, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-03", ToDate: "2026-03-03",
		SessionLengthMin: 60,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// 10:00 through 11:00, nothing from the 09:00-17:00 rule.
	if len(starts) != 5 {
		t.Fatalf("len = %d, want 5", len(starts))
	}
	if got := starts[0]; !got.Equal(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("first = %v", got)
	}
}

func TestResolveSlotsBusyIntervalBlocks(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	f.busy = append(f.busy, models.ExternalBusyInterval{
		CoachID:   1,
		StartTime: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 3, 16, 0, 0, 0, time.UTC),
	})
	uc := newResolveUC(f)

	starts, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-03", ToDate: "2026-03-03",
		SessionLengthMin: 60,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(starts) != 1 || !starts[0].Equal(time.Date(2026, 3, 3, 16, 0, 0, 0, time.UTC)) {
		t.Fatalf("starts = %v, want only 16:00", starts)
	}
}

func TestResolveSlotsSkipInternalBookings(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	// Tuesday 10:00-11:00 is held by an existing booking.
	b := seedBooking(f, 1, 1, 10, 26*time.Hour)
	if got := b.StartTime; !got.Equal(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("fixture start = %v", got)
	}
	uc := newResolveUC(f)

	blocked, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-03", ToDate: "2026-03-03",
		SessionLengthMin: 60,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, s := range blocked {
		if s.Equal(b.StartTime) {
			t.Fatalf("occupied start leaked: %v", s)
		}
	}

	open, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-03", ToDate: "2026-03-03",
		SessionLengthMin:     60,
		SkipInternalBookings: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(open) <= len(blocked) {
		t.Fatalf("skip-internal = %d slots, blocked = %d", len(open), len(blocked))
	}
}

func TestResolveSlotsInputValidation(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	uc := newResolveUC(f)

	if _, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-03", ToDate: "2026-03-03",
	}); !httperr.IsBusiness(err, "invalid_session_length") {
		t.Fatalf("err = %v, want invalid_session_length", err)
	}

	if _, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "03/03/2026", ToDate: "2026-03-03",
		SessionLengthMin: 60,
	}); !httperr.IsBusiness(err, "invalid_date") {
		t.Fatalf("err = %v, want invalid_date", err)
	}

	if _, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 1, FromDate: "2026-03-04", ToDate: "2026-03-03",
		SessionLengthMin: 60,
	}); !httperr.IsBusiness(err, "invalid_date_range") {
		t.Fatalf("err = %v, want invalid_date_range", err)
	}

	if _, err := uc.Execute(context.Background(), ResolveSlotsInput{
		CoachID: 99, FromDate: "2026-03-03", ToDate: "2026-03-03",
		SessionLengthMin: 60,
	}); !httperr.IsBusiness(err, "coach_not_found") {
		t.Fatalf("err = %v, want coach_not_found", err)
	}
}
