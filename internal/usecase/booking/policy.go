package booking

import (
	"time"

	"github.com/Danger0101/coaching-scheduler/internal/config"
	"github.com/Danger0101/coaching-scheduler/internal/domain/schedule"
)

// Policy bundles the booking rules every operation applies
// consistently: cancellation forfeits the credit when late, a late
// reschedule is rejected outright.
type Policy struct {
	CancelCutoff     time.Duration
	RescheduleCutoff time.Duration
	BookingWindow    time.Duration
	HoldWindow       time.Duration
	SlotStep         time.Duration
	Workday          schedule.Workday
}

func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		CancelCutoff:     time.Duration(cfg.CancelCutoffHours) * time.Hour,
		RescheduleCutoff: time.Duration(cfg.RescheduleCutoffHours) * time.Hour,
		BookingWindow:    time.Duration(cfg.BookingWindowDays) * 24 * time.Hour,
		HoldWindow:       time.Duration(cfg.HoldWindowMinutes) * time.Minute,
		SlotStep:         time.Duration(cfg.SlotStepMinutes) * time.Minute,
		Workday: schedule.Workday{
			Start: cfg.DefaultDayStart,
			End:   cfg.DefaultDayEnd,
		},
	}
}

func DefaultPolicy() Policy {
	return Policy{
		CancelCutoff:     24 * time.Hour,
		RescheduleCutoff: 24 * time.Hour,
		BookingWindow:    90 * 24 * time.Hour,
		HoldWindow:       15 * time.Minute,
		SlotStep:         15 * time.Minute,
		Workday:          schedule.Workday{Start: "09:00", End: "17:00"},
	}
}
