package booking

import (
	"context"
	"testing"
	"time"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
)

func newConfirmUC(f *fakeRepo) *ConfirmPayment {
	uc := NewConfirmPayment(f, nil, nil, nil)
	uc.now = fixedNow
	return uc
}

func TestConfirmPaymentPromotesHold(t *testing.T) {
	f := newFakeRepo()
	hold := seedHold(f, 1, 1, 5*time.Minute)
	hold.StripeSessionID = "cs_test_123"

	uc := newConfirmUC(f)
	b, err := uc.Execute(context.Background(), ConfirmPaymentInput{
		BookingID:       1,
		StripeSessionID: "cs_test_123",
		AmountPaidCents: 4500,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if b.Status != string(domain.StatusBooked) {
		t.Fatalf("status = %s, want BOOKED", b.Status)
	}
	if b.AmountPaidCents != 4500 {
		t.Fatalf("amount = %d, want 4500", b.AmountPaidCents)
	}
}

func TestConfirmPaymentSessionMismatch(t *testing.T) {
	f := newFakeRepo()
	hold := seedHold(f, 1, 1, 5*time.Minute)
	hold.StripeSessionID = "cs_test_123"

	uc := newConfirmUC(f)
	_, err := uc.Execute(context.Background(), ConfirmPaymentInput{
		BookingID:       1,
		StripeSessionID: "cs_other",
		AmountPaidCents: 4500,
	})
	if !httperr.IsBusiness(err, "session_mismatch") {
		t.Fatalf("err = %v, want session_mismatch", err)
	}
	if f.bookings[1].Status != string(domain.StatusPendingPayment) {
		t.Fatal("hold mutated by a rejected confirmation")
	}
}

func TestConfirmPaymentNonHoldRejected(t *testing.T) {
	f := newFakeRepo()
	seedBooking(f, 1, 1, 10, 48*time.Hour)

	uc := newConfirmUC(f)
	_, err := uc.Execute(context.Background(), ConfirmPaymentInput{
		BookingID: 1,
	})
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("err = %v, want invalid_state", err)
	}
}

func TestConfirmPaymentUnknownBooking(t *testing.T) {
	f := newFakeRepo()
	uc := newConfirmUC(f)

	_, err := uc.Execute(context.Background(), ConfirmPaymentInput{BookingID: 42})
	if !httperr.IsBusiness(err, "booking_not_found") {
		t.Fatalf("err = %v, want booking_not_found", err)
	}
}
