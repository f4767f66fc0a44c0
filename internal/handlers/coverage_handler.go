package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/httpresp"
	"github.com/Danger0101/coaching-scheduler/internal/middleware"
	"github.com/Danger0101/coaching-scheduler/internal/models"
	ucBooking "github.com/Danger0101/coaching-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type CoverageHandler struct {
	db        *gorm.DB
	requestUC *ucBooking.RequestCoverage
	acceptUC  *ucBooking.AcceptCoverage
}

func NewCoverageHandler(
	db *gorm.DB,
	requestUC *ucBooking.RequestCoverage,
	acceptUC *ucBooking.AcceptCoverage,
) *CoverageHandler {
	return &CoverageHandler{
		db:        db,
		requestUC: requestUC,
		acceptUC:  acceptUC,
	}
}

// ======================================================
// REQUEST
// ======================================================

type CoverageRequestBody struct {
	Note string `json:"note"`
}

// POST /me/coach/bookings/:id/coverage
func (h *CoverageHandler) Request(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	var body CoverageRequestBody
	_ = c.ShouldBindJSON(&body)

	req, err := h.requestUC.Execute(c.Request.Context(), uint(bookingID), coachID, body.Note)
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not request coverage.")
		return
	}

	c.JSON(http.StatusCreated, req)
}

// ======================================================
// ACCEPT
// ======================================================

// PATCH /me/coach/coverage/:id/accept
func (h *CoverageHandler) Accept(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request_id", "Invalid coverage request id.")
		return
	}

	transferred, err := h.acceptUC.Execute(c.Request.Context(), uint(requestID), coachID)
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not accept the coverage request.")
		return
	}

	c.JSON(http.StatusOK, transferred)
}

// ======================================================
// LIST OPEN REQUESTS
// ======================================================

// GET /me/coach/coverage lists pending requests from other coaches.
func (h *CoverageHandler) ListOpen(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	var requests []models.CoverageRequest
	if err := h.db.
		Preload("Booking").
		Where("status = ? AND requesting_coach_id <> ?", domain.CoveragePending, coachID).
		Order("created_at ASC").
		Limit(100).
		Find(&requests).Error; err != nil {

		httperr.Internal(c, "failed_to_list_coverage", "Could not list coverage requests.")
		return
	}

	httpresp.List(c, requests)
}
