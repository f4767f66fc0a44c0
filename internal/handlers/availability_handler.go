package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Danger0101/coaching-scheduler/internal/cache"
	"github.com/Danger0101/coaching-scheduler/internal/middleware"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

// AvailabilityHandler manages a coach's availability sources. Every
// write bumps the coach's calendar version so cached projections are
// invalidated before the response returns.
type AvailabilityHandler struct {
	db       *gorm.DB
	calendar *cache.Calendar
}

func NewAvailabilityHandler(db *gorm.DB, calendar *cache.Calendar) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, calendar: calendar}
}

func (h *AvailabilityHandler) bump(c *gin.Context, coachID uint) {
	if h.calendar != nil {
		_ = h.calendar.Bump(c.Request.Context(), coachID)
	}
}

// ======================================================
// RECURRING RULES
// ======================================================

type RecurringRuleConfig struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Available bool   `json:"available"`
}

type ScheduleUpdateRequest struct {
	Rules []RecurringRuleConfig `json:"rules" binding:"required"`
}

func (h *AvailabilityHandler) GetSchedule(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	var rules []models.RecurringRule
	if err := h.db.
		Where("coach_id = ?", coachID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rules).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_schedule"})
		return
	}

	c.JSON(http.StatusOK, rules)
}

// UpdateSchedule replaces the coach's weekly rule set wholesale.
func (h *AvailabilityHandler) UpdateSchedule(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	var req ScheduleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	for _, r := range req.Rules {
		if !validHHMM(r.StartTime) || !validHHMM(r.EndTime) || r.StartTime >= r.EndTime {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_time_window"})
			return
		}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coach_id = ?", coachID).Delete(&models.RecurringRule{}).Error; err != nil {
			return err
		}

		var toCreate []models.RecurringRule
		for _, r := range req.Rules {
			toCreate = append(toCreate, models.RecurringRule{
				CoachID:   coachID,
				DayOfWeek: r.DayOfWeek,
				StartTime: r.StartTime,
				EndTime:   r.EndTime,
				Available: r.Available,
			})
		}
		if len(toCreate) > 0 {
			return tx.Create(&toCreate).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_schedule"})
		return
	}

	h.bump(c, coachID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// DATE OVERRIDES
// ======================================================

type OverrideRequest struct {
	Date      string `json:"date" binding:"required"`
	Available bool   `json:"available"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *AvailabilityHandler) CreateOverride(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}
	if req.Available && req.StartTime != "" {
		if !validHHMM(req.StartTime) || !validHHMM(req.EndTime) || req.StartTime >= req.EndTime {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_time_window"})
			return
		}
	}

	override := models.DateOverride{
		CoachID:   coachID,
		Date:      req.Date,
		Available: req.Available,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	// One override per coach per date: a repeated date replaces the
	// previous override.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("coach_id = ? AND date = ?", coachID, req.Date).
			Delete(&models.DateOverride{}).Error; err != nil {
			return err
		}
		return tx.Create(&override).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_override"})
		return
	}

	h.bump(c, coachID)
	c.JSON(http.StatusCreated, override)
}

func (h *AvailabilityHandler) DeleteOverride(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)
	id := c.Param("id")

	res := h.db.Where("id = ? AND coach_id = ?", id, coachID).Delete(&models.DateOverride{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_override"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "override_not_found"})
		return
	}

	h.bump(c, coachID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// VACATION BLOCKS
// ======================================================

type VacationRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

func (h *AvailabilityHandler) CreateVacation(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)

	var req VacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}
	if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}
	if req.EndDate < req.StartDate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date_range"})
		return
	}

	vacation := models.VacationBlock{
		CoachID:   coachID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := h.db.Create(&vacation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_vacation"})
		return
	}

	h.bump(c, coachID)
	c.JSON(http.StatusCreated, vacation)
}

func (h *AvailabilityHandler) DeleteVacation(c *gin.Context) {
	coachID := c.MustGet(middleware.ContextCoachID).(uint)
	id := c.Param("id")

	res := h.db.Where("id = ? AND coach_id = ?", id, coachID).Delete(&models.VacationBlock{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_vacation"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "vacation_not_found"})
		return
	}

	h.bump(c, coachID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ======================================================
// HELPERS
// ======================================================

func validHHMM(hm string) bool {
	_, err := time.Parse("15:04", hm)
	return err == nil
}
