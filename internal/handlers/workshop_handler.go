package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Danger0101/coaching-scheduler/internal/cache"
	"github.com/Danger0101/coaching-scheduler/internal/httperr"
	"github.com/Danger0101/coaching-scheduler/internal/httpresp"
	"github.com/Danger0101/coaching-scheduler/internal/middleware"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type WorkshopHandler struct {
	db       *gorm.DB
	calendar *cache.Calendar
}

func NewWorkshopHandler(db *gorm.DB, calendar *cache.Calendar) *WorkshopHandler {
	return &WorkshopHandler{db: db, calendar: calendar}
}

// ======================================================
// CREATE (COACH)
// ======================================================

type CreateWorkshopRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Start       string `json:"start" binding:"required"` // RFC3339
	End         string `json:"end" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
	PriceCents  int64  `json:"price_cents"`
}

func (h *WorkshopHandler) Create(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	var req CreateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Start must be RFC3339.")
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil || !end.After(start) {
		httperr.BadRequest(c, "invalid_end", "End must be after start.")
		return
	}
	if !start.After(time.Now()) {
		httperr.BadRequest(c, "past_date", "Workshop must start in the future.")
		return
	}

	ws := models.Workshop{
		CoachID:     coachID,
		Name:        req.Name,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		Capacity:    req.Capacity,
		PriceCents:  req.PriceCents,
		Active:      true,
	}
	if err := h.db.Create(&ws).Error; err != nil {
		httperr.Internal(c, "failed_to_create_workshop", "Could not create the workshop.")
		return
	}

	if h.calendar != nil {
		_ = h.calendar.Bump(c.Request.Context(), coachID)
	}

	c.JSON(http.StatusCreated, ws)
}

// ======================================================
// DEACTIVATE (COACH)
// ======================================================

func (h *WorkshopHandler) Deactivate(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)
	id := c.Param("id")

	res := h.db.Model(&models.Workshop{}).
		Where("id = ? AND coach_id = ?", id, coachID).
		Update("active", false)
	if res.Error != nil {
		httperr.Internal(c, "failed_to_update_workshop", "Could not update the workshop.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "workshop_not_found", "Workshop not found.")
		return
	}

	if h.calendar != nil {
		_ = h.calendar.Bump(c.Request.Context(), coachID)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// LIST (PUBLIC)
// ======================================================

func (h *WorkshopHandler) ListUpcoming(c *gin.Context) {
	var workshops []models.Workshop
	if err := h.db.
		Where("active = ? AND start_time > ?", true, time.Now()).
		Order("start_time ASC").
		Limit(100).
		Find(&workshops).Error; err != nil {

		httperr.Internal(c, "failed_to_list_workshops", "Could not list workshops.")
		return
	}

	httpresp.List(c, workshops)
}
