package notify

import (
	"go.uber.org/zap"

	"github.com/Danger0101/coaching-scheduler/internal/logger"
)

// Event describes a booking lifecycle change the surrounding
// application may react to (email, push, webhooks).
type Event struct {
	Type       string
	BookingID  uint
	CoachID    uint
	ClientID   *uint
	GuestEmail string
}

const (
	EventBookingCreated     = "booking_created"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingRescheduled = "booking_rescheduled"
	EventCoverageAccepted   = "coverage_accepted"
	EventHoldReleased       = "hold_released"
)

// Sender delivers a single event. Delivery is out of scope for the
// engine; the default sink just logs.
type Sender interface {
	Send(ev Event) error
}

type LogSender struct{}

func (LogSender) Send(ev Event) error {
	logger.Get().Info("booking event",
		zap.String("type", ev.Type),
		zap.Uint("booking_id", ev.BookingID),
		zap.Uint("coach_id", ev.CoachID),
	)
	return nil
}

// Dispatcher fans events out on a buffered channel. It must never
// block or roll back the booking transaction: a full queue drops the
// event.
type Dispatcher struct {
	sender Sender
	queue  chan Event
}

func NewDispatcher(sender Sender) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Event, 256),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if err := d.sender.Send(ev); err != nil {
			logger.Get().Warn("notification delivery failed",
				zap.String("type", ev.Type), zap.Error(err))
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		logger.Get().Warn("notify queue full, dropping event",
			zap.String("type", ev.Type))
	}
}
