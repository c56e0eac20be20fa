package cron

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/slotwise/session-booking/services"
)

// StartCronJobs initializes and starts the scheduler that reaps expired
// holds and flips inactive providers offline. The engine itself owns no
// timers; hold TTLs only take effect because these sweeps run often
// relative to HoldDuration.
func StartCronJobs() *cron.Cron {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()

	_, err := c.AddFunc("@every 1m", releaseExpiredHolds)
	if err != nil {
		log.Fatalf("Failed to add hold reaper job: %v", err)
	}
	_, err = c.AddFunc("@every 5m", autoOfflineInactive)
	if err != nil {
		log.Fatalf("Failed to add auto-offline job: %v", err)
	}

	c.Start()
	log.Println("Cron job scheduler started for hold expiry and presence sweeps")
	return c
}

// releaseExpiredHolds frees holds whose TTL elapsed, returning their slots
// to the pool
func releaseExpiredHolds() {
	released, err := services.ReleaseExpiredHolds()
	if err != nil {
		log.Printf("Error releasing expired holds: %v", err)
		return
	}
	if released > 0 {
		log.Printf("Released %d expired holds", released)
	}
}

// autoOfflineInactive flips providers offline after their configured
// inactivity window
func autoOfflineInactive() {
	flipped, err := services.AutoOfflineInactive()
	if err != nil {
		log.Printf("Error auto-offlining inactive providers: %v", err)
		return
	}
	if flipped > 0 {
		log.Printf("Auto-offlined %d inactive providers", flipped)
	}
}
