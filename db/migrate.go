package db

import (
	"fmt"
	"log"

	"github.com/slotwise/session-booking/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.Provider{},
		&models.ScheduleRule{},
		&models.BlockedDate{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.StatusHistory{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
