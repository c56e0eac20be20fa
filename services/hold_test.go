package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
)

func TestHoldSlotConcurrentExactlyOneWins(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	date := nextWeekday(time.Wednesday)
	start := date.Add(11*time.Hour + 15*time.Minute)
	end := start.Add(time.Hour)

	users := []uint{101, 102}
	results := make([]error, len(users))
	var wg sync.WaitGroup
	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, err := HoldSlot(provider.ID, start, end, userID)
			results[i] = err
		}(i, userID)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrSlotUnavailable):
		default:
			t.Fatalf("unexpected error from concurrent hold: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("got %d successful holds for the same window, want exactly 1", successes)
	}

	var count int64
	db.DB.Model(&models.AvailabilitySlot{}).Where("provider_id = ?", provider.ID).Count(&count)
	if count != 1 {
		t.Fatalf("got %d slot rows, want 1", count)
	}
}

func TestHoldSlotConcurrentOverlappingWindows(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	date := nextWeekday(time.Friday)
	base := date.Add(10 * time.Hour)

	// Overlapping but distinct windows: 10:00-11:00 and 10:30-11:30.
	windows := []struct{ start, end time.Time }{
		{base, base.Add(time.Hour)},
		{base.Add(30 * time.Minute), base.Add(90 * time.Minute)},
	}
	results := make([]error, len(windows))
	var wg sync.WaitGroup
	for i, w := range windows {
		wg.Add(1)
		go func(i int, start, end time.Time) {
			defer wg.Done()
			_, err := HoldSlot(provider.ID, start, end, uint(200+i))
			results[i] = err
		}(i, w.start, w.end)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, ErrSlotUnavailable) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("got %d successful holds for overlapping windows, want exactly 1", successes)
	}
}

func TestReHoldSameUserRefreshesExpiry(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Monday).Add(10 * time.Hour)
	end := start.Add(time.Hour)

	first, err := HoldSlot(provider.ID, start, end, 300)
	if err != nil {
		t.Fatalf("first hold failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	second, err := HoldSlot(provider.ID, start, end, 300)
	if err != nil {
		t.Fatalf("re-hold by the same user errored: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-hold created a new row: %d vs %d", second.ID, first.ID)
	}
	if !second.HoldExpiresAt.After(*first.HoldExpiresAt) {
		t.Errorf("re-hold did not refresh expiry: %v vs %v", second.HoldExpiresAt, first.HoldExpiresAt)
	}

	var count int64
	db.DB.Model(&models.AvailabilitySlot{}).Where("provider_id = ?", provider.ID).Count(&count)
	if count != 1 {
		t.Errorf("got %d slot rows after re-hold, want 1", count)
	}
}

func TestHoldSlotRejectsForeignLiveHold(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Monday).Add(14 * time.Hour)
	end := start.Add(time.Hour)

	if _, err := HoldSlot(provider.ID, start, end, 400); err != nil {
		t.Fatalf("first hold failed: %v", err)
	}
	_, err := HoldSlot(provider.ID, start, end, 401)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("foreign hold attempt: got %v, want ErrSlotUnavailable", err)
	}
}

func TestReleaseHoldOwnership(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Tuesday).Add(9 * time.Hour)
	end := start.Add(30 * time.Minute)

	if _, err := HoldSlot(provider.ID, start, end, 500); err != nil {
		t.Fatalf("hold failed: %v", err)
	}

	released, err := ReleaseHold(provider.ID, start, 999)
	if err != nil {
		t.Fatalf("foreign release errored: %v", err)
	}
	if released {
		t.Fatalf("foreign user released someone else's hold")
	}

	released, err = ReleaseHold(provider.ID, start, 500)
	if err != nil {
		t.Fatalf("owner release errored: %v", err)
	}
	if !released {
		t.Fatalf("owner could not release own hold")
	}

	// Generated rows disappear once neither held nor booked.
	var count int64
	db.DB.Model(&models.AvailabilitySlot{}).Where("provider_id = ?", provider.ID).Count(&count)
	if count != 0 {
		t.Errorf("got %d slot rows after release, want 0", count)
	}

	// Releasing again is a no-op, not an error.
	released, err = ReleaseHold(provider.ID, start, 500)
	if err != nil || released {
		t.Errorf("double release: released=%v err=%v, want false nil", released, err)
	}
}

func TestExpiredHoldsAreReapedAndFreed(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	day := nextWeekday(time.Wednesday)
	setWeekdayRule(t, provider.ID, models.Wednesday, "10:00", "18:00")

	start := day.Add(10 * time.Hour)
	end := start.Add(time.Hour)
	if _, err := HoldSlot(provider.ID, start, end, 600); err != nil {
		t.Fatalf("hold failed: %v", err)
	}

	// Still held: the window must not be listed.
	windows, err := GetAvailableSlots(provider.ID, day, 60)
	if err != nil {
		t.Fatalf("GetAvailableSlots failed: %v", err)
	}
	for _, w := range windows {
		if w.Start.Equal(start) {
			t.Fatalf("live-held window listed as available")
		}
	}

	// Force the TTL past and sweep.
	expired := time.Now().Add(-time.Minute)
	err = db.DB.Model(&models.AvailabilitySlot{}).
		Where("provider_id = ?", provider.ID).
		Update("hold_expires_at", expired).Error
	if err != nil {
		t.Fatalf("failed to age hold: %v", err)
	}

	released, err := ReleaseExpiredHolds()
	if err != nil {
		t.Fatalf("ReleaseExpiredHolds failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("released %d holds, want 1", released)
	}

	windows, err = GetAvailableSlots(provider.ID, day, 60)
	if err != nil {
		t.Fatalf("GetAvailableSlots failed: %v", err)
	}
	found := false
	for _, w := range windows {
		if w.Start.Equal(start) {
			found = true
		}
	}
	if !found {
		t.Fatalf("reaped window did not return to the pool")
	}
}

func TestConfirmSlotBooking(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Thursday).Add(13 * time.Hour)
	end := start.Add(time.Hour)
	if _, err := HoldSlot(provider.ID, start, end, 700); err != nil {
		t.Fatalf("hold failed: %v", err)
	}

	slot, booking, err := ConfirmSlotBooking(provider.ID, start, 700, "pay-123")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !slot.IsBooked || slot.BookingID == nil || *slot.BookingID != booking.ID {
		t.Errorf("slot not linked to booking: %+v", slot)
	}
	if slot.HoldUserID != nil || slot.HoldExpiresAt != nil {
		t.Errorf("hold fields not cleared on confirm: %+v", slot)
	}
	if booking.Status != models.StatusConfirmed {
		t.Errorf("booking status = %s, want confirmed", booking.Status)
	}
	if !booking.BookingTime.Equal(start) || booking.DurationMinutes != 60 {
		t.Errorf("booking window mismatch: %+v", booking)
	}
}

func TestConfirmAfterStolenHold(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Thursday).Add(15 * time.Hour)
	end := start.Add(time.Hour)
	if _, err := HoldSlot(provider.ID, start, end, 800); err != nil {
		t.Fatalf("hold failed: %v", err)
	}

	// Simulate expiry plus re-hold by another user.
	err := db.DB.Model(&models.AvailabilitySlot{}).
		Where("provider_id = ? AND available_from = ?", provider.ID, start).
		Updates(map[string]interface{}{
			"hold_user_id":    801,
			"hold_expires_at": time.Now().Add(HoldDuration),
		}).Error
	if err != nil {
		t.Fatalf("failed to reassign hold: %v", err)
	}

	_, _, err = ConfirmSlotBooking(provider.ID, start, 800, "pay-456")
	if !errors.Is(err, ErrHoldExpiredOrStolen) {
		t.Fatalf("confirm on stolen hold: got %v, want ErrHoldExpiredOrStolen", err)
	}

	var bookings int64
	db.DB.Model(&models.Booking{}).Where("provider_id = ?", provider.ID).Count(&bookings)
	if bookings != 0 {
		t.Errorf("failed confirm left %d booking rows behind", bookings)
	}
}

func TestConfirmedBookingSurvivesReaper(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Friday).Add(16 * time.Hour)
	end := start.Add(time.Hour)
	if _, err := HoldSlot(provider.ID, start, end, 900); err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if _, _, err := ConfirmSlotBooking(provider.ID, start, 900, "pay-789"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if _, err := ReleaseExpiredHolds(); err != nil {
		t.Fatalf("ReleaseExpiredHolds failed: %v", err)
	}

	var slot models.AvailabilitySlot
	err := db.DB.Where("provider_id = ? AND available_from = ?", provider.ID, start).First(&slot).Error
	if err != nil {
		t.Fatalf("booked slot row vanished after sweep: %v", err)
	}
	if !slot.IsBooked {
		t.Fatalf("sweep un-booked a confirmed slot")
	}
}

func TestHoldOverlappingConfirmedBooking(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Saturday).Add(10 * time.Hour)
	end := start.Add(time.Hour)
	if _, err := HoldSlot(provider.ID, start, end, 1000); err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if _, _, err := ConfirmSlotBooking(provider.ID, start, 1000, ""); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// A half-overlapping window must be rejected against the booking.
	_, err := HoldSlot(provider.ID, start.Add(30*time.Minute), end.Add(30*time.Minute), 1001)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("hold over booked window: got %v, want ErrSlotUnavailable", err)
	}
}

func TestHoldSlotInvalidWindow(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t)

	start := nextWeekday(time.Monday).Add(10 * time.Hour)
	if _, err := HoldSlot(provider.ID, start, start, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero-length hold: got %v, want ErrInvalidInput", err)
	}
	if _, err := HoldSlot(9999999, start, start.Add(time.Hour), 1); !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("unknown provider: got %v, want ErrProviderNotFound", err)
	}
}
