package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Danger0101/coaching-scheduler/internal/cache"
	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

// BusySyncHandler ingests a coach's external calendar busy periods.
// The sync job replaces the rolling window wholesale on each cycle;
// this service never talks to the external calendar itself.
type BusySyncHandler struct {
	repo     domain.Repository
	calendar *cache.Calendar
}

func NewBusySyncHandler(repo domain.Repository, calendar *cache.Calendar) *BusySyncHandler {
	return &BusySyncHandler{repo: repo, calendar: calendar}
}

// ======================================================
// REQUEST
// ======================================================

type BusyIntervalInput struct {
	Start    string `json:"start" binding:"required"` // RFC3339
	End      string `json:"end" binding:"required"`
	SourceID string `json:"source_id"`
	Source   string `json:"source"`
}

type BusySyncRequest struct {
	WindowStart string              `json:"window_start" binding:"required"`
	WindowEnd   string              `json:"window_end" binding:"required"`
	Intervals   []BusyIntervalInput `json:"intervals"`
}

// PUT /internal/coaches/:id/busy
func (h *BusySyncHandler) Replace(c *gin.Context) {
	coachID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_coach_id", "Invalid coach id.")
		return
	}

	var req BusySyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	windowStart, err := time.Parse(time.RFC3339, req.WindowStart)
	if err != nil {
		httperr.BadRequest(c, "invalid_window", "window_start must be RFC3339.")
		return
	}
	windowEnd, err := time.Parse(time.RFC3339, req.WindowEnd)
	if err != nil {
		httperr.BadRequest(c, "invalid_window", "window_end must be RFC3339.")
		return
	}
	if !windowEnd.After(windowStart) {
		httperr.BadRequest(c, "invalid_window", "window_end must be after window_start.")
		return
	}

	rows := make([]models.ExternalBusyInterval, 0, len(req.Intervals))
	for _, in := range req.Intervals {
		start, err := time.Parse(time.RFC3339, in.Start)
		if err != nil {
			httperr.BadRequest(c, "invalid_interval", "Interval start must be RFC3339.")
			return
		}
		end, err := time.Parse(time.RFC3339, in.End)
		if err != nil || !end.After(start) {
			httperr.BadRequest(c, "invalid_interval", "Interval end must be after start.")
			return
		}

		source := in.Source
		if source == "" {
			source = "GOOGLE_CALENDAR"
		}

		rows = append(rows, models.ExternalBusyInterval{
			CoachID:   uint(coachID),
			StartTime: start,
			EndTime:   end,
			SourceID:  in.SourceID,
			Source:    source,
		})
	}

	if err := h.repo.ReplaceBusyIntervals(
		c.Request.Context(), uint(coachID), windowStart, windowEnd, rows,
	); err != nil {
		httperr.Internal(c, "failed_to_sync_busy", "Could not replace busy intervals.")
		return
	}

	if h.calendar != nil {
		_ = h.calendar.Bump(c.Request.Context(), uint(coachID))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"replaced": len(rows),
	})
}
