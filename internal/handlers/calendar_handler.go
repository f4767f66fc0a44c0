package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/timezone"
	ucBooking "github.com/Danger0101/coaching-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

// CalendarHandler is the public, read-only calendar surface. Responses
// are advisory: booking re-validates every slot under lock.
type CalendarHandler struct {
	resolveSlots    *ucBooking.ResolveSlots
	monthProjection *ucBooking.MonthProjection
}

func NewCalendarHandler(
	resolveSlots *ucBooking.ResolveSlots,
	monthProjection *ucBooking.MonthProjection,
) *CalendarHandler {
	return &CalendarHandler{
		resolveSlots:    resolveSlots,
		monthProjection: monthProjection,
	}
}

// ======================================================
// SLOTS
// ======================================================

// GET /api/public/coaches/:id/slots?from=&to=&length=&tz=
func (h *CalendarHandler) Slots(c *gin.Context) {
	coachID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_coach_id", "Invalid coach id.")
		return
	}

	from := c.Query("from")
	to := c.DefaultQuery("to", from)
	if from == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter 'from' is required.")
		return
	}

	length, _ := strconv.Atoi(c.DefaultQuery("length", "60"))

	tz := c.Query("tz")
	if tz != "" && !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
		return
	}
	loc := timezone.Location(tz)

	starts, err := h.resolveSlots.Execute(c.Request.Context(), ucBooking.ResolveSlotsInput{
		CoachID:          uint(coachID),
		FromDate:         from,
		ToDate:           to,
		SessionLengthMin: length,
	})
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not resolve slots.")
		return
	}

	slots := make([]gin.H, 0, len(starts))
	for _, s := range starts {
		local := s.In(loc)
		slots = append(slots, gin.H{
			"value":        s.UTC().Format(time.RFC3339),
			"display_time": local.Format("03:04 PM"),
			"date":         local.Format("2006-01-02"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"coach_id": coachID,
		"from":     from,
		"to":       to,
		"slots":    slots,
	})
}

// ======================================================
// MONTH PROJECTION
// ======================================================

// GET /api/public/coaches/:id/calendar?year=&month=&tz=&length=&offering_id=
func (h *CalendarHandler) Month(c *gin.Context) {
	coachID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_coach_id", "Invalid coach id.")
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	length, _ := strconv.Atoi(c.DefaultQuery("length", "0"))
	offeringID, _ := strconv.ParseUint(c.DefaultQuery("offering_id", "0"), 10, 64)

	view, err := h.monthProjection.Execute(c.Request.Context(), ucBooking.MonthProjectionInput{
		CoachID:          uint(coachID),
		Year:             year,
		Month:            month,
		Timezone:         c.Query("tz"),
		SessionLengthMin: length,
		OfferingID:       uint(offeringID),
	})
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not build the calendar.")
		return
	}

	c.JSON(http.StatusOK, view)
}
