package booking

import (
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

// ===============================
// Coverage Requests
// ===============================

const (
	CoveragePending  = "PENDING"
	CoverageAccepted = "ACCEPTED"
	CoverageDeclined = "DECLINED"
)

// AcceptCoverage transfers the booking to the accepting coach and
// resolves the request. Conflict checks and persistence belong to the
// service; this only applies the state change.
func AcceptCoverage(req *models.CoverageRequest, b *models.Booking, acceptingCoachID uint) error {
	if req.Status != CoveragePending {
		return httperr.ErrConflict("already_resolved")
	}
	if req.RequestingCoachID == acceptingCoachID {
		return httperr.ErrValidation("own_request")
	}

	req.Status = CoverageAccepted
	req.AcceptingCoachID = &acceptingCoachID

	b.CoachID = acceptingCoachID
	b.IsCoverage = true
	return nil
}

// ===============================
// Free Session Offers
// ===============================

const (
	OfferPending  = "PENDING"
	OfferApproved = "APPROVED"
	OfferDeclined = "DECLINED"
	OfferUsed     = "USED"
)

// RedeemOffer consumes an approved, unexpired taster offer.
func RedeemOffer(o *models.FreeSessionOffer, b *models.Booking, now time.Time) error {
	if o.Status != OfferApproved {
		return httperr.ErrValidation("offer_not_approved")
	}
	if o.IsExpired(now) {
		return httperr.ErrValidation("offer_expired")
	}

	o.Status = OfferUsed
	o.BookingID = &b.ID
	return nil
}

// RestoreOffer re-approves a used offer after an early cancellation.
func RestoreOffer(o *models.FreeSessionOffer) {
	o.Status = OfferApproved
	o.BookingID = nil
}
