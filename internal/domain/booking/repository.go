package booking

import (
	"context"
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/models"
)

type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction. ForUpdate reads and writes inside fn share its
	// locks; any error rolls everything back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	// -------- Coaches / offerings --------
	GetCoach(
		ctx context.Context,
		id uint,
	) (*models.CoachProfile, error)

	GetOffering(
		ctx context.Context,
		id uint,
	) (*models.Offering, error)

	// -------- Availability sources --------
	ListVacations(
		ctx context.Context,
		coachID uint,
		fromKey string,
		toKey string,
	) ([]models.VacationBlock, error)

	ListOverrides(
		ctx context.Context,
		coachID uint,
		fromKey string,
		toKey string,
	) ([]models.DateOverride, error)

	ListRecurringRules(
		ctx context.Context,
		coachID uint,
	) ([]models.RecurringRule, error)

	// -------- External busy intervals --------
	ListBusyIntervals(
		ctx context.Context,
		coachID uint,
		start time.Time,
		end time.Time,
	) ([]models.ExternalBusyInterval, error)

	ReplaceBusyIntervals(
		ctx context.Context,
		coachID uint,
		windowStart time.Time,
		windowEnd time.Time,
		rows []models.ExternalBusyInterval,
	) error

	CountBusyConflicts(
		ctx context.Context,
		coachID uint,
		start time.Time,
		end time.Time,
	) (int64, error)

	// -------- Bookings --------
	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	GetBookingForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	ListOccupiedBookings(
		ctx context.Context,
		coachID uint,
		start time.Time,
		end time.Time,
		excludeID uint,
	) ([]models.Booking, error)

	LockConflictingBookings(
		ctx context.Context,
		coachID uint,
		start time.Time,
		end time.Time,
		excludeID uint,
	) (int64, error)

	ListExpiredHolds(
		ctx context.Context,
		before time.Time,
	) ([]models.Booking, error)

	// -------- Workshops --------
	GetWorkshop(
		ctx context.Context,
		id uint,
	) (*models.Workshop, error)

	GetWorkshopForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Workshop, error)

	ListWorkshops(
		ctx context.Context,
		coachID uint,
		start time.Time,
		end time.Time,
	) ([]models.Workshop, error)

	CountWorkshopBookings(
		ctx context.Context,
		workshopID uint,
		statuses []string,
	) (int64, error)

	// -------- Credits --------
	GetEnrollmentForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Enrollment, error)

	UpdateEnrollment(
		ctx context.Context,
		e *models.Enrollment,
	) error

	GetFreeOfferForUpdate(
		ctx context.Context,
		id uint,
	) (*models.FreeSessionOffer, error)

	// GetFreeOfferByBookingForUpdate returns (nil, nil) when the
	// booking did not redeem an offer.
	GetFreeOfferByBookingForUpdate(
		ctx context.Context,
		bookingID uint,
	) (*models.FreeSessionOffer, error)

	UpdateFreeOffer(
		ctx context.Context,
		o *models.FreeSessionOffer,
	) error

	// -------- Coverage --------
	CreateCoverageRequest(
		ctx context.Context,
		req *models.CoverageRequest,
	) error

	GetCoverageRequestForUpdate(
		ctx context.Context,
		id uint,
	) (*models.CoverageRequest, error)

	UpdateCoverageRequest(
		ctx context.Context,
		req *models.CoverageRequest,
	) error

	DeclineSiblingCoverageRequests(
		ctx context.Context,
		bookingID uint,
		exceptID uint,
	) error
}
