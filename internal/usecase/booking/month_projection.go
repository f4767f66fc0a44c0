package booking

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Danger0101/coaching-scheduler/internal/cache"
	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/domain/schedule"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/logger"
	"github.com/Danger0101/coaching-scheduler/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type MonthProjectionInput struct {
	CoachID uint
	Year    int
	Month   int

	// Viewer zone the grid is rendered in. Empty falls back to the
	// coach's zone.
	Timezone string

	// Slot length the viewer is shopping for. Zero falls back to the
	// offering, then to 60 minutes.
	SessionLengthMin int
	OfferingID       uint
}

type SlotView struct {
	Value       string `json:"value"`
	DisplayTime string `json:"display_time"`
}

const (
	WorkshopAvailable   = "AVAILABLE"
	WorkshopPendingFull = "PENDING_FULL"
	WorkshopFull        = "FULL"
)

type WorkshopView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	StartTime   string `json:"start_time"`
	DisplayTime string `json:"display_time"`
	PriceCents  int64  `json:"price_cents"`
	SpotsLeft   int    `json:"spots_left"`
	Status      string `json:"status"`
}

type DayView struct {
	Date           string         `json:"date"`
	Day            int            `json:"day"`
	IsCurrentMonth bool           `json:"is_current_month"`
	IsToday        bool           `json:"is_today"`
	IsPast         bool           `json:"is_past"`
	HasAvailable   bool           `json:"has_available"`
	IsFullyBooked  bool           `json:"is_fully_booked"`
	Slots          []SlotView     `json:"slots"`
	Workshops      []WorkshopView `json:"workshops"`
}

type MonthView struct {
	CoachID  uint        `json:"coach_id"`
	Year     int         `json:"year"`
	Month    int         `json:"month"`
	Timezone string      `json:"timezone"`
	Weeks    [][]DayView `json:"weeks"`
}

// ======================================================
// USE CASE
// ======================================================

// MonthProjection renders the public calendar grid for one coach and
// one month: Monday-start full weeks, bookable 1:1 starts bucketed by
// viewer-local date, plus workshop seat counts. Rendered months are
// memoized under the coach's calendar version; any write that changes
// availability bumps the version, so a hit can never be stale.
type MonthProjection struct {
	repo     domain.Repository
	calendar *cache.Calendar
	policy   Policy
	now      func() time.Time
}

func NewMonthProjection(
	repo domain.Repository,
	calendar *cache.Calendar,
	policy Policy,
) *MonthProjection {
	return &MonthProjection{
		repo:     repo,
		calendar: calendar,
		policy:   policy,
		now:      time.Now,
	}
}

func (uc *MonthProjection) Execute(
	ctx context.Context,
	in MonthProjectionInput,
) (*MonthView, error) {

	if in.Month < 1 || in.Month > 12 {
		return nil, httperr.ErrValidation("invalid_month")
	}

	coach, err := uc.repo.GetCoach(ctx, in.CoachID)
	if err != nil {
		return nil, httperr.ErrValidation("coach_not_found")
	}

	tz := in.Timezone
	if tz == "" {
		tz = coach.Timezone
	}
	if !timezone.IsValid(tz) {
		return nil, httperr.ErrValidation("invalid_timezone")
	}
	viewerLoc := timezone.Location(tz)
	coachLoc := timezone.Location(coach.Timezone)

	length, err := uc.sessionLength(ctx, in)
	if err != nil {
		return nil, err
	}

	// ---------- cache lookup ----------
	var version int64
	var key string
	if uc.calendar != nil {
		version, err = uc.calendar.Version(ctx, in.CoachID)
		if err != nil {
			logger.Get().Warn("calendar version lookup failed",
				zap.Uint("coach_id", in.CoachID), zap.Error(err))
		} else {
			key = cache.MonthKey(in.CoachID, version, in.Year, in.Month, tz, length)
			if raw, ok, err := uc.calendar.GetMonth(ctx, key); err == nil && ok {
				var cached MonthView
				if json.Unmarshal([]byte(raw), &cached) == nil {
					return &cached, nil
				}
			}
		}
	}

	// ---------- grid bounds (viewer-local, Monday-start full weeks) ----------
	firstOfMonth := time.Date(in.Year, time.Month(in.Month), 1, 0, 0, 0, 0, viewerLoc)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	gridStart := firstOfMonth.AddDate(0, 0, -schedule.WeekdayIndex(firstOfMonth))
	gridEnd := lastOfMonth.AddDate(0, 0, 6-schedule.WeekdayIndex(lastOfMonth))

	// Availability is defined per coach-local day. Extend one day each
	// side so zone offsets between viewer and coach never clip the grid.
	fromDay := dayStart(gridStart, coachLoc).AddDate(0, 0, -1)
	toDay := dayStart(gridEnd, coachLoc).AddDate(0, 0, 1)

	slotLen := time.Duration(length) * time.Minute

	starts, err := bookableStarts(
		ctx, uc.repo, in.CoachID,
		coachLoc, fromDay, toDay,
		slotLen, uc.policy.SlotStep,
		uc.policy.Workday,
		true, 0,
	)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	byDate := map[string][]SlotView{}
	for _, s := range starts {
		if !s.After(now) {
			continue
		}
		local := s.In(viewerLoc)
		k := schedule.DateKey(local)
		byDate[k] = append(byDate[k], SlotView{
			Value:       s.UTC().Format(time.RFC3339),
			DisplayTime: local.Format("03:04 PM"),
		})
	}

	workshopsByDate, err := uc.workshopViews(ctx, in.CoachID, gridStart, gridEnd.AddDate(0, 0, 1), viewerLoc, now)
	if err != nil {
		return nil, err
	}

	// ---------- assemble the grid ----------
	todayKey := schedule.DateKey(now.In(viewerLoc))

	view := &MonthView{
		CoachID:  in.CoachID,
		Year:     in.Year,
		Month:    in.Month,
		Timezone: tz,
	}

	var week []DayView
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		k := schedule.DateKey(day)

		d := DayView{
			Date:           k,
			Day:            day.Day(),
			IsCurrentMonth: day.Month() == time.Month(in.Month) && day.Year() == in.Year,
			IsToday:        k == todayKey,
			IsPast:         k < todayKey,
			Slots:          byDate[k],
			Workshops:      workshopsByDate[k],
		}
		if d.Slots == nil {
			d.Slots = []SlotView{}
		}
		if d.Workshops == nil {
			d.Workshops = []WorkshopView{}
		}

		for _, w := range d.Workshops {
			if w.Status == WorkshopAvailable {
				d.HasAvailable = true
			}
		}
		if len(d.Slots) > 0 {
			d.HasAvailable = true
		}
		d.IsFullyBooked = d.IsCurrentMonth && !d.IsPast && !d.HasAvailable

		week = append(week, d)
		if len(week) == 7 {
			view.Weeks = append(view.Weeks, week)
			week = nil
		}
	}

	// ---------- store ----------
	if uc.calendar != nil && key != "" {
		if payload, err := json.Marshal(view); err == nil {
			if err := uc.calendar.PutMonth(ctx, key, string(payload)); err != nil {
				logger.Get().Warn("month projection cache write failed",
					zap.String("key", key), zap.Error(err))
			}
		}
	}

	return view, nil
}

func (uc *MonthProjection) sessionLength(
	ctx context.Context,
	in MonthProjectionInput,
) (int, error) {

	if in.SessionLengthMin > 0 {
		return in.SessionLengthMin, nil
	}
	if in.OfferingID != 0 {
		off, err := uc.repo.GetOffering(ctx, in.OfferingID)
		if err != nil {
			return 0, httperr.ErrValidation("offering_not_found")
		}
		return off.SessionLengthMin, nil
	}
	return 60, nil
}

// workshopViews loads the coach's workshops inside the grid window and
// renders seat counts. Confirmed seats consume spots; unexpired payment
// holds only gate new checkouts.
func (uc *MonthProjection) workshopViews(
	ctx context.Context,
	coachID uint,
	start time.Time,
	end time.Time,
	viewerLoc *time.Location,
	now time.Time,
) (map[string][]WorkshopView, error) {

	workshops, err := uc.repo.ListWorkshops(ctx, coachID, start, end)
	if err != nil {
		return nil, err
	}

	out := map[string][]WorkshopView{}
	for _, ws := range workshops {
		if !ws.Active {
			continue
		}

		booked, err := uc.repo.CountWorkshopBookings(
			ctx, ws.ID, []string{string(domain.StatusBooked)},
		)
		if err != nil {
			return nil, err
		}
		held, err := uc.repo.CountWorkshopBookings(
			ctx, ws.ID, domain.HeldStatuses(),
		)
		if err != nil {
			return nil, err
		}

		spotsLeft := ws.Capacity - int(booked)
		if spotsLeft < 0 {
			spotsLeft = 0
		}

		status := WorkshopAvailable
		switch {
		case int(booked) >= ws.Capacity:
			status = WorkshopFull
		case int(held) >= ws.Capacity:
			status = WorkshopPendingFull
		}
		if !ws.StartTime.After(now) {
			status = WorkshopFull
		}

		local := ws.StartTime.In(viewerLoc)
		k := schedule.DateKey(local)
		out[k] = append(out[k], WorkshopView{
			ID:          ws.ID,
			Name:        ws.Name,
			StartTime:   ws.StartTime.UTC().Format(time.RFC3339),
			DisplayTime: local.Format("03:04 PM"),
			PriceCents:  ws.PriceCents,
			SpotsLeft:   spotsLeft,
			Status:      status,
		})
	}
	return out, nil
}
