package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Danger0101/coaching-scheduler/internal/audit"
	"github.com/Danger0101/coaching-scheduler/internal/cache"
	"github.com/Danger0101/coaching-scheduler/internal/config"
	"github.com/Danger0101/coaching-scheduler/internal/handlers"
	infraRepo "github.com/Danger0101/coaching-scheduler/internal/infra/repository"
	"github.com/Danger0101/coaching-scheduler/internal/middleware"
	"github.com/Danger0101/coaching-scheduler/internal/notify"
	"github.com/Danger0101/coaching-scheduler/internal/payments"
	ucBooking "github.com/Danger0101/coaching-scheduler/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, calendar *cache.Calendar) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	notifier := notify.NewDispatcher(notify.LogSender{})

	var checkout payments.CheckoutProvider
	if cfg.StripeSecretKey != "" {
		checkout = payments.NewStripeCheckout(cfg.StripeSecretKey, cfg.SiteURL)
	}

	policy := ucBooking.PolicyFromConfig(cfg)

	// ======================================================
	// USE CASES — BOOKING ENGINE
	// ======================================================
	resolveSlotsUC := ucBooking.NewResolveSlots(bookingRepo, policy)

	monthProjectionUC := ucBooking.NewMonthProjection(
		bookingRepo,
		calendar,
		policy,
	)

	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		calendar,
		checkout,
		notifier,
		auditDispatcher,
		policy,
	)

	rescheduleBookingUC := ucBooking.NewRescheduleBooking(
		bookingRepo,
		calendar,
		notifier,
		auditDispatcher,
		policy,
	)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		calendar,
		notifier,
		auditDispatcher,
		policy,
	)

	confirmPaymentUC := ucBooking.NewConfirmPayment(
		bookingRepo,
		calendar,
		notifier,
		auditDispatcher,
	)

	requestCoverageUC := ucBooking.NewRequestCoverage(
		bookingRepo,
		auditDispatcher,
	)

	acceptCoverageUC := ucBooking.NewAcceptCoverage(
		bookingRepo,
		calendar,
		notifier,
		auditDispatcher,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	availabilityHandler := handlers.NewAvailabilityHandler(db, calendar)
	calendarHandler := handlers.NewCalendarHandler(resolveSlotsUC, monthProjectionUC)
	workshopHandler := handlers.NewWorkshopHandler(db, calendar)

	bookingHandler := handlers.NewBookingHandler(
		db,
		createBookingUC,
		rescheduleBookingUC,
		cancelBookingUC,
		confirmPaymentUC,
	)

	coverageHandler := handlers.NewCoverageHandler(
		db,
		requestCoverageUC,
		acceptCoverageUC,
	)

	busySyncHandler := handlers.NewBusySyncHandler(bookingRepo, calendar)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/coaches/:id/slots", calendarHandler.Slots)
			publicAPI.GET("/coaches/:id/calendar", calendarHandler.Month)

			publicAPI.GET("/workshops", workshopHandler.ListUpcoming)
			publicAPI.POST("/workshops/:id/bookings", bookingHandler.BookWorkshopSeat)

			publicAPI.POST("/bookings/:id/confirm-payment", bookingHandler.ConfirmPayment)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// BOOKINGS (CLIENT)
			// ------------------------------
			secured.GET("/me/bookings", bookingHandler.ListMine)
			secured.POST("/bookings", bookingHandler.Create)
			secured.POST("/bookings/:id/reschedule", bookingHandler.Reschedule)
			secured.POST("/bookings/:id/cancel", bookingHandler.Cancel)

			// ------------------------------
			// BUSY-SYNC INGESTION
			// ------------------------------
			secured.PUT("/internal/coaches/:id/busy", busySyncHandler.Replace)

			// ------------------------------
			// COACH-ONLY SURFACE
			// ------------------------------
			coach := secured.Group("/me")
			coach.Use(middleware.RequireCoach())
			{
				coach.GET("/schedule", availabilityHandler.GetSchedule)
				coach.PUT("/schedule", availabilityHandler.UpdateSchedule)

				coach.POST("/overrides", availabilityHandler.CreateOverride)
				coach.DELETE("/overrides/:id", availabilityHandler.DeleteOverride)

				coach.POST("/vacations", availabilityHandler.CreateVacation)
				coach.DELETE("/vacations/:id", availabilityHandler.DeleteVacation)

				coach.GET("/coach/bookings", bookingHandler.ListByDate)
				coach.PATCH("/coach/bookings/:id/complete", bookingHandler.Complete)

				coach.POST("/coach/bookings/:id/coverage", coverageHandler.Request)
				coach.GET("/coach/coverage", coverageHandler.ListOpen)
				coach.POST("/coach/coverage/:id/accept", coverageHandler.Accept)

				coach.POST("/coach/workshops", workshopHandler.Create)
				coach.DELETE("/coach/workshops/:id", workshopHandler.Deactivate)

				coach.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
