package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Danger0101/coaching-scheduler/internal/cache"
	"github.com/Danger0101/coaching-scheduler/internal/config"
	dbpkg "github.com/Danger0101/coaching-scheduler/internal/db"
	infraRepo "github.com/Danger0101/coaching-scheduler/internal/infra/repository"
	"github.com/Danger0101/coaching-scheduler/internal/logger"
	"github.com/Danger0101/coaching-scheduler/internal/middleware"
	"github.com/Danger0101/coaching-scheduler/internal/notify"
	"github.com/Danger0101/coaching-scheduler/internal/routes"
	ucBooking "github.com/Danger0101/coaching-scheduler/internal/usecase/booking"
)

const holdSweepInterval = 5 * time.Minute

func main() {

	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.IsProduction())
	defer logger.Get().Sync()

	db := dbpkg.NewDB(cfg)

	store, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	calendar := cache.NewCalendar(store, cfg.CalendarCacheTTL)

	// Background sweep reclaiming stale payment holds.
	sweep := ucBooking.NewReleaseExpiredHolds(
		infraRepo.NewBookingGormRepository(db),
		calendar,
		notify.NewDispatcher(notify.LogSender{}),
		ucBooking.PolicyFromConfig(cfg),
	)
	go runHoldSweep(sweep)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, calendar)

	logger.Get().Info("server starting", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func runHoldSweep(sweep *ucBooking.ReleaseExpiredHolds) {
	ticker := time.NewTicker(holdSweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := sweep.Execute(ctx); err != nil {
			logger.Get().Warn("hold sweep failed", zap.Error(err))
		}
		cancel()
	}
}
