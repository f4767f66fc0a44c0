package booking

import (
	"context"
	"testing"
	"time"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

func seedHold(f *fakeRepo, id, coachID uint, age time.Duration) *models.Booking {
	b := &models.Booking{
		ID:        id,
		CoachID:   coachID,
		StartTime: fixedNow().Add(48 * time.Hour),
		EndTime:   fixedNow().Add(50 * time.Hour),
		Status:    string(domain.StatusPendingPayment),
		CreatedAt: fixedNow().Add(-age),
	}
	f.bookings[id] = b
	if id >= f.nextBookingID {
		f.nextBookingID = id
	}
	return b
}

func TestReleaseExpiredHolds(t *testing.T) {
	f := newFakeRepo()
	seedHold(f, 1, 1, 30*time.Minute) // expired
	seedHold(f, 2, 1, 40*time.Minute) // expired
	seedHold(f, 3, 1, 5*time.Minute)  // still within the hold window
	confirmed := seedBooking(f, 4, 1, 10, 48*time.Hour)

	uc := NewReleaseExpiredHolds(f, nil, nil, testPolicy())
	uc.now = fixedNow

	released, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if released != 2 {
		t.Fatalf("released = %d, want 2", released)
	}

	for _, id := range []uint{1, 2} {
		b := f.bookings[id]
		if b.Status != string(domain.StatusCancelled) {
			t.Fatalf("hold %d status = %s, want CANCELED", id, b.Status)
		}
		if b.CancelledAt == nil {
			t.Fatalf("hold %d missing CancelledAt", id)
		}
	}
	if f.bookings[3].Status != string(domain.StatusPendingPayment) {
		t.Fatalf("fresh hold reclaimed: %s", f.bookings[3].Status)
	}
	if confirmed.Status != string(domain.StatusBooked) {
		t.Fatalf("confirmed booking touched: %s", confirmed.Status)
	}
}

func TestReleaseExpiredHoldsNothingToDo(t *testing.T) {
	f := newFakeRepo()
	seedHold(f, 1, 1, 5*time.Minute)

	uc := NewReleaseExpiredHolds(f, nil, nil, testPolicy())
	uc.now = fixedNow

	released, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if released != 0 {
		t.Fatalf("released = %d, want 0", released)
	}
}
