package booking

import (
	"context"
	"testing"
	"time"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
)

func newRescheduleUC(f *fakeRepo) *RescheduleBooking {
	uc := NewRescheduleBooking(f, nil, nil, nil, testPolicy())
	uc.now = fixedNow
	return uc
}

func TestRescheduleMovesBooking(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	seedBooking(f, 1, 1, 10, 48*time.Hour)

	uc := newRescheduleUC(f)
	newStart := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)

	moved, err := uc.Execute(context.Background(), RescheduleBookingInput{
		BookingID: 1,
		ClientID:  uintPtr(10),
		NewStart:  newStart,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !moved.StartTime.Equal(newStart) {
		t.Fatalf("start = %v, want %v", moved.StartTime, newStart)
	}
	if got := moved.EndTime.Sub(moved.StartTime); got != 60*time.Minute {
		t.Fatalf("duration = %v, want 60m", got)
	}
	if moved.Status != string(domain.StatusRescheduled) {
		t.Fatalf("status = %s, want RESCHEDULED", moved.Status)
	}
}

func TestRescheduleLateRejected(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	seedBooking(f, 1, 1, 10, 10*time.Hour)

	uc := newRescheduleUC(f)
	_, err := uc.Execute(context.Background(), RescheduleBookingInput{
		BookingID: 1,
		ClientID:  uintPtr(10),
		NewStart:  time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC),
	})
	if !httperr.IsBusiness(err, "late_reschedule") {
		t.Fatalf("err = %v, want late_reschedule", err)
	}
	if kind, ok := httperr.KindOf(err); !ok || kind != httperr.KindPolicy {
		t.Fatalf("kind = %v, want policy", kind)
	}
	if f.bookings[1].Status != string(domain.StatusBooked) {
		t.Fatal("booking mutated by a rejected reschedule")
	}
}

func TestRescheduleTargetSlotTaken(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	seedBooking(f, 1, 1, 10, 48*time.Hour)
	other := seedBooking(f, 2, 1, 11, 78*time.Hour) // Thursday 14:00

	uc := newRescheduleUC(f)
	_, err := uc.Execute(context.Background(), RescheduleBookingInput{
		BookingID: 1,
		ClientID:  uintPtr(10),
		NewStart:  other.StartTime,
	})
	if !httperr.IsBusiness(err, "slot_taken") {
		t.Fatalf("err = %v, want slot_taken", err)
	}
}

func TestRescheduleWorkshopSeatRejected(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	b := seedBooking(f, 1, 1, 10, 48*time.Hour)
	wid := uint(7)
	b.WorkshopID = &wid

	uc := newRescheduleUC(f)
	_, err := uc.Execute(context.Background(), RescheduleBookingInput{
		BookingID: 1,
		ClientID:  uintPtr(10),
		NewStart:  time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC),
	})
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("err = %v, want invalid_state", err)
	}
}

func TestRescheduleCoachChangePinnedEnrollmentRejected(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	seedCoach(f, 2)
	e := seedEnrollment(f, 1, 10, 1, 3)
	b := seedBooking(f, 1, 1, 10, 48*time.Hour)
	eid := e.ID
	b.EnrollmentID = &eid

	uc := newRescheduleUC(f)
	_, err := uc.Execute(context.Background(), RescheduleBookingInput{
		BookingID:  1,
		ClientID:   uintPtr(10),
		NewStart:   time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC),
		NewCoachID: uintPtr(2),
	})
	if !httperr.IsBusiness(err, "coach_change_not_allowed") {
		t.Fatalf("err = %v, want coach_change_not_allowed", err)
	}
}

func TestRescheduleCoachChangePoolEnrollment(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	seedCoach(f, 2)
	e := seedEnrollment(f, 1, 10, 1, 3)
	e.CoachID = nil // open to the coach pool
	b := seedBooking(f, 1, 1, 10, 48*time.Hour)
	eid := e.ID
	b.EnrollmentID = &eid

	uc := newRescheduleUC(f)
	newStart := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)

	moved, err := uc.Execute(context.Background(), RescheduleBookingInput{
		BookingID:  1,
		ClientID:   uintPtr(10),
		NewStart:   newStart,
		NewCoachID: uintPtr(2),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if moved.CoachID != 2 {
		t.Fatalf("coach = %d, want 2", moved.CoachID)
	}
	if !moved.StartTime.Equal(newStart) {
		t.Fatalf("start = %v, want %v", moved.StartTime, newStart)
	}
}

func TestReschedulePastTargetRejected(t *testing.T) {
	f := newFakeRepo()
	seedCoach(f, 1)
	seedBooking(f, 1, 1, 10, 48*time.Hour)

	uc := newRescheduleUC(f)
	_, err := uc.Execute(context.Background(), RescheduleBookingInput{
		BookingID: 1,
		ClientID:  uintPtr(10),
		NewStart:  fixedNow().Add(-time.Hour),
	})
	if !httperr.IsBusiness(err, "past_date") {
		t.Fatalf("err = %v, want past_date", err)
	}
}
