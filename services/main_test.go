package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL, migrates
// the schema and truncates all engine tables. Tests needing a store skip
// when the variable is unset; the transactional paths use Postgres-only SQL
// (FOR UPDATE, advisory locks) so there is no in-memory substitute.
func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping store-backed test")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	err = conn.AutoMigrate(
		&models.Provider{},
		&models.ScheduleRule{},
		&models.BlockedDate{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.StatusHistory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	err = conn.Exec(`TRUNCATE availability_slots, bookings, schedule_rules, blocked_dates, status_histories, providers RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("failed to truncate test tables: %v", err)
	}

	db.DB = conn
}

func createTestProvider(t *testing.T) *models.Provider {
	t.Helper()
	provider := models.Provider{
		Name:               fmt.Sprintf("provider-%d", time.Now().UnixNano()),
		IsOnline:           true,
		LastActivityAt:     time.Now(),
		AutoOfflineMinutes: 30,
	}
	if err := db.DB.Create(&provider).Error; err != nil {
		t.Fatalf("failed to create test provider: %v", err)
	}
	return &provider
}

// nextWeekday returns the next occurrence of day at least two days out, at
// midnight UTC, so generated candidates are never filtered as past.
func nextWeekday(day time.Weekday) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 2)
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func setWeekdayRule(t *testing.T, providerID uint, day models.DayOfWeek, start, end string) {
	t.Helper()
	_, err := SetSchedule(providerID, []models.ScheduleRule{
		{DayOfWeek: day, StartTime: start, EndTime: end, IsActive: true},
	})
	if err != nil {
		t.Fatalf("failed to set schedule: %v", err)
	}
}
