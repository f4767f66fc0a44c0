package schedule

import "time"

// TimeRange is a half-open [Start, End) interval of absolute instants.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps uses the half-open test: aStart < bEnd AND aEnd > bStart.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

func (r TimeRange) IsValid() bool {
	return r.End.After(r.Start)
}

// OverlapsAny is a pairwise check against the occupied set. No
// coalescing of adjacent intervals is required.
func OverlapsAny(r TimeRange, occupied []TimeRange) bool {
	for _, o := range occupied {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// DateKey renders t as the "2006-01-02" key used by overrides and
// vacation blocks.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekdayIndex maps Go's Sunday-based weekday to the schedule
// convention 0 = Monday ... 6 = Sunday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
