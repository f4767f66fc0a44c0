package handlers

import (
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/models"
	"github.com/Danger0101/coaching-scheduler/internal/timezone"
)

// --------------------------------------------------
// Timezone handling per coach
// --------------------------------------------------

// every schedule-facing input is interpreted in the coach's zone
func locationForCoach(coach *models.CoachProfile) *time.Location {
	if coach == nil {
		return time.UTC
	}
	return timezone.Location(coach.Timezone)
}

func parseDateForCoach(coach *models.CoachProfile, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationForCoach(coach),
	)
}

func parseDateTimeForCoach(
	coach *models.CoachProfile,
	dateStr string,
	timeStr string,
) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02 15:04",
		dateStr+" "+timeStr,
		locationForCoach(coach),
	)
}

// parseInstant accepts an RFC3339 start instant, the wire format the
// projection emits as slot values.
func parseInstant(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
