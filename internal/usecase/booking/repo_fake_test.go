package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

var errNotFound = errors.New("record not found")

// fakeRepo is the in-memory Repository used by usecase tests.
// Transaction serializes on a mutex, which models the row-lock
// serialization the gorm implementation gets from FOR UPDATE: two
// concurrent Execute calls never interleave their read-check-write
// sequences. Individual methods do not lock; outside a transaction the
// fake is only used single-threaded.
type fakeRepo struct {
	mu sync.Mutex

	coaches     map[uint]*models.CoachProfile
	offerings   map[uint]*models.Offering
	vacations   []models.VacationBlock
	overrides   []models.DateOverride
	rules       []models.RecurringRule
	busy        []models.ExternalBusyInterval
	bookings    map[uint]*models.Booking
	workshops   map[uint]*models.Workshop
	enrollments map[uint]*models.Enrollment
	offers      map[uint]*models.FreeSessionOffer
	coverage    map[uint]*models.CoverageRequest

	nextBookingID  uint
	nextCoverageID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		coaches:     map[uint]*models.CoachProfile{},
		offerings:   map[uint]*models.Offering{},
		bookings:    map[uint]*models.Booking{},
		workshops:   map[uint]*models.Workshop{},
		enrollments: map[uint]*models.Enrollment{},
		offers:      map[uint]*models.FreeSessionOffer{},
		coverage:    map[uint]*models.CoverageRequest{},
	}
}

func (f *fakeRepo) Transaction(_ context.Context, fn func(domain.Repository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

// -------- Coaches / offerings --------

func (f *fakeRepo) GetCoach(_ context.Context, id uint) (*models.CoachProfile, error) {
	if c, ok := f.coaches[id]; ok {
		return c, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetOffering(_ context.Context, id uint) (*models.Offering, error) {
	if o, ok := f.offerings[id]; ok {
		return o, nil
	}
	return nil, errNotFound
}

// -------- Availability sources --------

func (f *fakeRepo) ListVacations(_ context.Context, coachID uint, fromKey, toKey string) ([]models.VacationBlock, error) {
	var out []models.VacationBlock
	for _, v := range f.vacations {
		if v.CoachID == coachID && v.StartDate <= toKey && v.EndDate >= fromKey {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListOverrides(_ context.Context, coachID uint, fromKey, toKey string) ([]models.DateOverride, error) {
	var out []models.DateOverride
	for _, o := range f.overrides {
		if o.CoachID == coachID && o.Date >= fromKey && o.Date <= toKey {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListRecurringRules(_ context.Context, coachID uint) ([]models.RecurringRule, error) {
	var out []models.RecurringRule
	for _, r := range f.rules {
		if r.CoachID == coachID {
			out = append(out, r)
		}
	}
	return out, nil
}

// -------- External busy intervals --------

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func (f *fakeRepo) ListBusyIntervals(_ context.Context, coachID uint, start, end time.Time) ([]models.ExternalBusyInterval, error) {
	var out []models.ExternalBusyInterval
	for _, b := range f.busy {
		if b.CoachID == coachID && overlaps(b.StartTime, b.EndTime, start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ReplaceBusyIntervals(_ context.Context, coachID uint, windowStart, windowEnd time.Time, rows []models.ExternalBusyInterval) error {
	var kept []models.ExternalBusyInterval
	for _, b := range f.busy {
		if b.CoachID == coachID && overlaps(b.StartTime, b.EndTime, windowStart, windowEnd) {
			continue
		}
		kept = append(kept, b)
	}
	f.busy = append(kept, rows...)
	return nil
}

func (f *fakeRepo) CountBusyConflicts(_ context.Context, coachID uint, start, end time.Time) (int64, error) {
	var count int64
	for _, b := range f.busy {
		if b.CoachID == coachID && overlaps(b.StartTime, b.EndTime, start, end) {
			count++
		}
	}
	return count, nil
}

// -------- Bookings --------

func (f *fakeRepo) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	if b, ok := f.bookings[id]; ok {
		return b, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error) {
	return f.GetBooking(ctx, id)
}

func (f *fakeRepo) CreateBooking(_ context.Context, b *models.Booking) error {
	f.nextBookingID++
	b.ID = f.nextBookingID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeRepo) UpdateBooking(_ context.Context, b *models.Booking) error {
	f.bookings[b.ID] = b
	return nil
}

func statusIn(status string, statuses []string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeRepo) ListOccupiedBookings(_ context.Context, coachID uint, start, end time.Time, excludeID uint) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ID == excludeID || b.CoachID != coachID {
			continue
		}
		if !statusIn(b.Status, domain.OccupiedStatuses()) {
			continue
		}
		if overlaps(b.StartTime, b.EndTime, start, end) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) LockConflictingBookings(ctx context.Context, coachID uint, start, end time.Time, excludeID uint) (int64, error) {
	rows, err := f.ListOccupiedBookings(ctx, coachID, start, end, excludeID)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (f *fakeRepo) ListExpiredHolds(_ context.Context, before time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status == string(domain.StatusPendingPayment) && b.CreatedAt.Before(before) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// -------- Workshops --------

func (f *fakeRepo) GetWorkshop(_ context.Context, id uint) (*models.Workshop, error) {
	if w, ok := f.workshops[id]; ok {
		return w, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetWorkshopForUpdate(ctx context.Context, id uint) (*models.Workshop, error) {
	return f.GetWorkshop(ctx, id)
}

func (f *fakeRepo) ListWorkshops(_ context.Context, coachID uint, start, end time.Time) ([]models.Workshop, error) {
	var out []models.Workshop
	for _, w := range f.workshops {
		if w.CoachID == coachID && w.Active &&
			!w.StartTime.Before(start) && w.StartTime.Before(end) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountWorkshopBookings(_ context.Context, workshopID uint, statuses []string) (int64, error) {
	var count int64
	for _, b := range f.bookings {
		if b.WorkshopID != nil && *b.WorkshopID == workshopID && statusIn(b.Status, statuses) {
			count++
		}
	}
	return count, nil
}

// -------- Credits --------

func (f *fakeRepo) GetEnrollmentForUpdate(_ context.Context, id uint) (*models.Enrollment, error) {
	if e, ok := f.enrollments[id]; ok {
		return e, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) UpdateEnrollment(_ context.Context, e *models.Enrollment) error {
	f.enrollments[e.ID] = e
	return nil
}

func (f *fakeRepo) GetFreeOfferForUpdate(_ context.Context, id uint) (*models.FreeSessionOffer, error) {
	if o, ok := f.offers[id]; ok {
		return o, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetFreeOfferByBookingForUpdate(_ context.Context, bookingID uint) (*models.FreeSessionOffer, error) {
	for _, o := range f.offers {
		if o.BookingID != nil && *o.BookingID == bookingID {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpdateFreeOffer(_ context.Context, o *models.FreeSessionOffer) error {
	f.offers[o.ID] = o
	return nil
}

// -------- Coverage --------

func (f *fakeRepo) CreateCoverageRequest(_ context.Context, req *models.CoverageRequest) error {
	f.nextCoverageID++
	req.ID = f.nextCoverageID
	f.coverage[req.ID] = req
	return nil
}

func (f *fakeRepo) GetCoverageRequestForUpdate(_ context.Context, id uint) (*models.CoverageRequest, error) {
	if req, ok := f.coverage[id]; ok {
		return req, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) UpdateCoverageRequest(_ context.Context, req *models.CoverageRequest) error {
	f.coverage[req.ID] = req
	return nil
}

func (f *fakeRepo) DeclineSiblingCoverageRequests(_ context.Context, bookingID uint, exceptID uint) error {
	for _, req := range f.coverage {
		if req.BookingID == bookingID && req.ID != exceptID && req.Status == domain.CoveragePending {
			req.Status = domain.CoverageDeclined
		}
	}
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// --------------------------------------------------
// Shared fixtures
// --------------------------------------------------

// fixedNow is a deterministic reference instant: Monday 2026-03-02
// 08:00 UTC.
func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
}

// seedCoach registers a UTC coach with a weekday 09:00-17:00 schedule.
func seedCoach(f *fakeRepo, coachID uint) {
	f.coaches[coachID] = &models.CoachProfile{ID: coachID, Timezone: "UTC", Active: true}
	for day := 0; day < 5; day++ {
		f.rules = append(f.rules, models.RecurringRule{
			CoachID: coachID, DayOfWeek: day,
			StartTime: "09:00", EndTime: "17:00", Available: true,
		})
	}
}

// seedEnrollment gives the client credits against a 60min offering.
func seedEnrollment(f *fakeRepo, id, clientID, coachID uint, remaining int) *models.Enrollment {
	f.offerings[1] = &models.Offering{ID: 1, SessionLengthMin: 60, TotalSessions: 10, Active: true}
	cid := coachID
	e := &models.Enrollment{
		ID: id, ClientID: clientID, OfferingID: 1, CoachID: &cid,
		TotalSessions: 10, RemainingSessions: remaining, Active: true,
	}
	f.enrollments[id] = e
	return e
}

func testPolicy() Policy {
	return DefaultPolicy()
}
