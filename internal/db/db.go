package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Danger0101/coaching-scheduler/internal/config"
	"github.com/Danger0101/coaching-scheduler/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.CoachProfile{},
		&models.Offering{},
		&models.RecurringRule{},
		&models.DateOverride{},
		&models.VacationBlock{},
		&models.ExternalBusyInterval{},
		&models.Enrollment{},
		&models.FreeSessionOffer{},
		&models.Workshop{},
		&models.Booking{},
		&models.CoverageRequest{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Database-level backstop for the double-booking race: at most one
	// active 1:1 booking per coach and start instant. Workshop seats
	// share the coach and start, so they are excluded; their capacity
	// count runs under the workshop row lock instead.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_coach_slot
        ON bookings (coach_id, start_time)
        WHERE status IN ('BOOKED', 'PENDING_PAYMENT', 'RESCHEDULED', 'COMPLETED')
          AND workshop_id IS NULL
    `)

	db.Exec(`
        UPDATE coach_profiles
        SET timezone = 'UTC'
        WHERE timezone IS NULL OR timezone = ''
    `)

	return db
}
