package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

const (
	txMaxAttempts = 3
	txBackoff     = 50 * time.Millisecond
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

// Transaction retries transient failures (deadlock, serialization,
// lock timeout) a bounded number of times with backoff before
// surfacing service_unavailable.
func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {

	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&BookingGormRepository{db: tx})
		})

		if err == nil || !httperr.IsRetryableTx(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txBackoff):
		}
	}

	return httperr.ErrUnavailable("service_unavailable")
}

// --------------------------------------------------
// Coaches / offerings
// --------------------------------------------------

func (r *BookingGormRepository) GetCoach(
	ctx context.Context,
	id uint,
) (*models.CoachProfile, error) {

	var coach models.CoachProfile
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&coach, id).Error; err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *BookingGormRepository) GetOffering(
	ctx context.Context,
	id uint,
) (*models.Offering, error) {

	var offering models.Offering
	if err := r.db.WithContext(ctx).First(&offering, id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

// --------------------------------------------------
// Availability sources
// --------------------------------------------------

func (r *BookingGormRepository) ListVacations(
	ctx context.Context,
	coachID uint,
	fromKey string,
	toKey string,
) ([]models.VacationBlock, error) {

	var rows []models.VacationBlock
	if err := r.db.WithContext(ctx).
		Where(
			"coach_id = ? AND start_date <= ? AND end_date >= ?",
			coachID, toKey, fromKey,
		).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingGormRepository) ListOverrides(
	ctx context.Context,
	coachID uint,
	fromKey string,
	toKey string,
) ([]models.DateOverride, error) {

	var rows []models.DateOverride
	if err := r.db.WithContext(ctx).
		Where(
			"coach_id = ? AND date >= ? AND date <= ?",
			coachID, fromKey, toKey,
		).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingGormRepository) ListRecurringRules(
	ctx context.Context,
	coachID uint,
) ([]models.RecurringRule, error) {

	var rows []models.RecurringRule
	if err := r.db.WithContext(ctx).
		Where("coach_id = ?", coachID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// External busy intervals
// --------------------------------------------------

func (r *BookingGormRepository) ListBusyIntervals(
	ctx context.Context,
	coachID uint,
	start time.Time,
	end time.Time,
) ([]models.ExternalBusyInterval, error) {

	var rows []models.ExternalBusyInterval
	if err := r.db.WithContext(ctx).
		Where(
			"coach_id = ? AND start_time < ? AND end_time > ?",
			coachID, end, start,
		).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceBusyIntervals swaps the synced window wholesale, as one
// transaction, so readers never observe a half-applied sync.
func (r *BookingGormRepository) ReplaceBusyIntervals(
	ctx context.Context,
	coachID uint,
	windowStart time.Time,
	windowEnd time.Time,
	rows []models.ExternalBusyInterval,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(
				"coach_id = ? AND start_time < ? AND end_time > ?",
				coachID, windowEnd, windowStart,
			).
			Delete(&models.ExternalBusyInterval{}).Error; err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *BookingGormRepository) CountBusyConflicts(
	ctx context.Context,
	coachID uint,
	start time.Time,
	end time.Time,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ExternalBusyInterval{}).
		Where(
			"coach_id = ? AND start_time < ? AND end_time > ?",
			coachID, end, start,
		).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// --------------------------------------------------
// Bookings
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForUpdate(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingGormRepository) ListOccupiedBookings(
	ctx context.Context,
	coachID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).
		Select("id", "start_time", "end_time", "status", "workshop_id").
		Where(
			"coach_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			coachID, domain.OccupiedStatuses(), end, start,
		).
		Order("start_time ASC")

	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []models.Booking
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LockConflictingBookings takes FOR UPDATE locks on every active
// booking overlapping [start, end) and returns how many there are.
func (r *BookingGormRepository) LockConflictingBookings(
	ctx context.Context,
	coachID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) (int64, error) {

	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"coach_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			coachID, domain.OccupiedStatuses(), end, start,
		)

	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []models.Booking
	if err := q.Find(&rows).Error; err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// ListExpiredHolds returns stale PENDING_PAYMENT rows, skipping rows
// another worker (or a late payment confirmation) already holds.
func (r *BookingGormRepository) ListExpiredHolds(
	ctx context.Context,
	before time.Time,
) ([]models.Booking, error) {

	var rows []models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where(
			"status = ? AND created_at < ?",
			string(domain.StatusPendingPayment), before,
		).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Workshops
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkshop(
	ctx context.Context,
	id uint,
) (*models.Workshop, error) {

	var ws models.Workshop
	if err := r.db.WithContext(ctx).First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *BookingGormRepository) GetWorkshopForUpdate(
	ctx context.Context,
	id uint,
) (*models.Workshop, error) {

	var ws models.Workshop
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *BookingGormRepository) ListWorkshops(
	ctx context.Context,
	coachID uint,
	start time.Time,
	end time.Time,
) ([]models.Workshop, error) {

	var rows []models.Workshop
	if err := r.db.WithContext(ctx).
		Where(
			"coach_id = ? AND active = true AND start_time >= ? AND start_time < ?",
			coachID, start, end,
		).
		Order("start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingGormRepository) CountWorkshopBookings(
	ctx context.Context,
	workshopID uint,
	statuses []string,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("workshop_id = ? AND status IN ?", workshopID, statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// --------------------------------------------------
// Credits
// --------------------------------------------------

func (r *BookingGormRepository) GetEnrollmentForUpdate(
	ctx context.Context,
	id uint,
) (*models.Enrollment, error) {

	var e models.Enrollment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BookingGormRepository) UpdateEnrollment(
	ctx context.Context,
	e *models.Enrollment,
) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *BookingGormRepository) GetFreeOfferForUpdate(
	ctx context.Context,
	id uint,
) (*models.FreeSessionOffer, error) {

	var o models.FreeSessionOffer
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *BookingGormRepository) GetFreeOfferByBookingForUpdate(
	ctx context.Context,
	bookingID uint,
) (*models.FreeSessionOffer, error) {

	var o models.FreeSessionOffer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *BookingGormRepository) UpdateFreeOffer(
	ctx context.Context,
	o *models.FreeSessionOffer,
) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// --------------------------------------------------
// Coverage
// --------------------------------------------------

func (r *BookingGormRepository) CreateCoverageRequest(
	ctx context.Context,
	req *models.CoverageRequest,
) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *BookingGormRepository) GetCoverageRequestForUpdate(
	ctx context.Context,
	id uint,
) (*models.CoverageRequest, error) {

	var req models.CoverageRequest
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *BookingGormRepository) UpdateCoverageRequest(
	ctx context.Context,
	req *models.CoverageRequest,
) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *BookingGormRepository) DeclineSiblingCoverageRequests(
	ctx context.Context,
	bookingID uint,
	exceptID uint,
) error {
	return r.db.WithContext(ctx).
		Model(&models.CoverageRequest{}).
		Where(
			"booking_id = ? AND id <> ? AND status = ?",
			bookingID, exceptID, domain.CoveragePending,
		).
		Update("status", domain.CoverageDeclined).Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
