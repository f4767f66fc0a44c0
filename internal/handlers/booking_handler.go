package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/Danger0101/coaching-scheduler/internal/domain/booking"
	"github.com/Danger0101/coaching-scheduler/internal/dto"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/httpresp"
	"github.com/Danger0101/coaching-scheduler/internal/middleware"
	"github.com/Danger0101/coaching-scheduler/internal/models"
	ucBooking "github.com/Danger0101/coaching-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db           *gorm.DB
	createUC     *ucBooking.CreateBooking
	rescheduleUC *ucBooking.RescheduleBooking
	cancelUC     *ucBooking.CancelBooking
	confirmUC    *ucBooking.ConfirmPayment
}

func NewBookingHandler(
	db *gorm.DB,
	createUC *ucBooking.CreateBooking,
	rescheduleUC *ucBooking.RescheduleBooking,
	cancelUC *ucBooking.CancelBooking,
	confirmUC *ucBooking.ConfirmPayment,
) *BookingHandler {
	return &BookingHandler{
		db:           db,
		createUC:     createUC,
		rescheduleUC: rescheduleUC,
		cancelUC:     cancelUC,
		confirmUC:    confirmUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	CoachID uint   `json:"coach_id"`
	Start   string `json:"start"` // RFC3339

	EnrollmentID *uint `json:"enrollment_id"`
	FreeOfferID  *uint `json:"free_offer_id"`
}

type WorkshopSeatRequest struct {
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

type RescheduleRequest struct {
	NewStart   string `json:"new_start" binding:"required"` // RFC3339
	NewCoachID *uint  `json:"new_coach_id"`
}

type ConfirmPaymentRequest struct {
	SessionID       string `json:"session_id"`
	AmountPaidCents int64  `json:"amount_paid_cents"`
}

// ======================================================
// CREATE (1:1)
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	start, err := parseInstant(req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Start must be RFC3339.")
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		CoachID:      req.CoachID,
		ClientID:     &clientID,
		Start:        start,
		EnrollmentID: req.EnrollmentID,
		FreeOfferID:  req.FreeOfferID,
	})
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not create the booking.")
		return
	}

	c.JSON(http.StatusCreated, result.Booking)
}

// ======================================================
// CREATE (WORKSHOP SEAT)
// ======================================================

// BookWorkshopSeat accepts authenticated clients and guests alike; a
// guest provides name and e-mail instead of credentials.
func (h *BookingHandler) BookWorkshopSeat(c *gin.Context) {
	workshopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_workshop_id", "Invalid workshop id.")
		return
	}

	var req WorkshopSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	var clientID *uint
	if v, ok := c.Get(middleware.ContextUserID); ok {
		id := v.(uint)
		clientID = &id
	}

	wsID := uint(workshopID)
	result, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		ClientID:   clientID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		WorkshopID: &wsID,
	})
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not reserve the seat.")
		return
	}

	resp := gin.H{"booking": result.Booking}
	if result.CheckoutURL != "" {
		resp["checkout_url"] = result.CheckoutURL
	}
	c.JSON(http.StatusCreated, resp)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *BookingHandler) Reschedule(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	newStart, err := parseInstant(req.NewStart)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "New start must be RFC3339.")
		return
	}

	moved, err := h.rescheduleUC.Execute(c.Request.Context(), ucBooking.RescheduleBookingInput{
		BookingID:  uint(bookingID),
		ClientID:   &clientID,
		NewStart:   newStart,
		NewCoachID: req.NewCoachID,
	})
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not reschedule the booking.")
		return
	}

	c.JSON(http.StatusOK, moved)
}

// ======================================================
// CANCEL
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), uint(bookingID), &clientID)
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not cancel the booking.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":  result.Booking,
		"refunded": result.Refunded,
	})
}

// ======================================================
// CONFIRM PAYMENT
// ======================================================

// ConfirmPayment settles a payment hold after the checkout redirect.
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	confirmed, err := h.confirmUC.Execute(c.Request.Context(), ucBooking.ConfirmPaymentInput{
		BookingID:       uint(bookingID),
		StripeSessionID: req.SessionID,
		AmountPaidCents: req.AmountPaidCents,
	})
	if err != nil {
		httperr.WriteBusiness(c, err, "Could not confirm the payment.")
		return
	}

	c.JSON(http.StatusOK, confirmed)
}

// ======================================================
// LIST (CLIENT)
// ======================================================

func (h *BookingHandler) ListMine(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var bookings []models.Booking
	if err := h.db.
		Where("client_id = ?", clientID).
		Order("start_time DESC").
		Limit(100).
		Find(&bookings).Error; err != nil {

		httperr.Internal(c, "failed_to_list_bookings", "Could not list bookings.")
		return
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.FromBooking(&b))
	}

	httpresp.List(c, out)
}

// ======================================================
// LIST BY DATE (COACH)
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter 'date' is required.")
		return
	}

	var coach models.CoachProfile
	if err := h.db.First(&coach, coachID).Error; err != nil {
		httperr.Internal(c, "coach_not_found", "Coach profile not found.")
		return
	}

	date, err := parseDateForCoach(&coach, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24 * time.Hour)

	var bookings []models.Booking
	h.db.
		Where(
			"coach_id = ? AND start_time >= ? AND start_time < ?",
			coachID, start, end,
		).
		Order("start_time ASC").
		Find(&bookings)

	httpresp.List(c, bookings)
}

// ======================================================
// COMPLETE (COACH)
// ======================================================

func (h *BookingHandler) Complete(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)
	id := c.Param("id")

	var b models.Booking
	if err := h.db.Where("id = ? AND coach_id = ?", id, coachID).First(&b).Error; err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	now := time.Now()
	if err := domain.Complete(&b, now); err != nil {
		httperr.WriteBusiness(c, err, "Booking cannot be completed.")
		return
	}

	if err := h.db.Save(&b).Error; err != nil {
		httperr.Internal(c, "failed_to_complete_booking", "Could not complete the booking.")
		return
	}

	c.JSON(http.StatusOK, b)
}
