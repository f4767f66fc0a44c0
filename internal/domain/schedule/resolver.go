package schedule

import (
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/models"
)

// Workday is the default full-day window used when an override says
// "available" without explicit times.
type Workday struct {
	Start string // "15:04"
	End   string
}

// DaySources carries every availability source relevant to a single
// date. The caller pre-filters vacations to a boolean and hands over
// the override (if any) plus all recurring rules for the coach.
type DaySources struct {
	OnVacation bool
	Override   *models.DateOverride
	Rules      []models.RecurringRule
}

// ResolveDay picks the single effective rule set for one date and
// emits the raw open intervals, absolute in loc.
//
// Precedence, first match wins:
//  1. vacation  -> fully unavailable
//  2. override  -> its window, the default workday, or nothing
//  3. recurring -> every available rule for that weekday
func ResolveDay(date time.Time, loc *time.Location, src DaySources, workday Workday) []TimeRange {
	if src.OnVacation {
		return nil
	}

	if src.Override != nil {
		ov := src.Override
		if !ov.Available {
			return nil
		}
		start, end := ov.StartTime, ov.EndTime
		if start == "" || end == "" {
			start, end = workday.Start, workday.End
		}
		r := rangeOnDate(date, loc, start, end)
		if !r.IsValid() {
			return nil
		}
		return []TimeRange{r}
	}

	weekday := WeekdayIndex(date)
	var open []TimeRange
	for _, rule := range src.Rules {
		if rule.DayOfWeek != weekday || !rule.Available {
			continue
		}
		r := rangeOnDate(date, loc, rule.StartTime, rule.EndTime)
		if r.IsValid() {
			open = append(open, r)
		}
	}
	return open
}

// VacationCovers reports whether any block's inclusive [start, end]
// date range contains the given "2006-01-02" date. ISO date strings
// compare correctly as plain strings.
func VacationCovers(vacations []models.VacationBlock, dateKey string) bool {
	for _, v := range vacations {
		if v.StartDate <= dateKey && dateKey <= v.EndDate {
			return true
		}
	}
	return false
}

// OverrideFor returns the override matching the date, if present.
func OverrideFor(overrides []models.DateOverride, dateKey string) *models.DateOverride {
	for i := range overrides {
		if overrides[i].Date == dateKey {
			return &overrides[i]
		}
	}
	return nil
}

func rangeOnDate(date time.Time, loc *time.Location, startHM, endHM string) TimeRange {
	return TimeRange{
		Start: atTime(date, loc, startHM),
		End:   atTime(date, loc, endHM),
	}
}

func atTime(date time.Time, loc *time.Location, hm string) time.Time {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	)
}
