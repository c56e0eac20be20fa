package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
)

// ConfirmSlotBooking converts the hold on (providerID, start) into a
// permanent booking. The payment layer must call this exactly once per
// successful payment, passing the payment reference the hold was paid
// under; an empty reference gets a generated one.
//
// The slot transition is a single guarded UPDATE: it only fires while the
// row is unbooked and the hold belongs to userID or is absent. Zero rows
// affected means the hold lapsed and the window was reassigned; the whole
// transaction rolls back and the caller gets ErrHoldExpiredOrStolen.
func ConfirmSlotBooking(providerID uint, start time.Time, userID uint, paymentRef string) (*models.AvailabilitySlot, *models.Booking, error) {
	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}

	var slot models.AvailabilitySlot
	var booking models.Booking
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			SELECT *
			FROM availability_slots
			WHERE provider_id = ? AND available_from = ? AND deleted_at IS NULL
			FOR UPDATE
		`, providerID, start).Scan(&slot).Error
		if err != nil {
			return err
		}
		if slot.ID == 0 || slot.IsBooked {
			return ErrHoldExpiredOrStolen
		}
		if slot.HoldUserID != nil && *slot.HoldUserID != userID {
			return ErrHoldExpiredOrStolen
		}

		booking = models.Booking{
			ProviderID:      providerID,
			CustomerID:      userID,
			PaymentRef:      paymentRef,
			BookingTime:     slot.AvailableFrom,
			DurationMinutes: slot.DurationMinutes,
			Status:          models.StatusConfirmed,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		res := tx.Model(&models.AvailabilitySlot{}).
			Where("id = ? AND is_booked = ? AND (hold_user_id = ? OR hold_user_id IS NULL)", slot.ID, false, userID).
			Updates(map[string]interface{}{
				"is_booked":       true,
				"booking_id":      booking.ID,
				"hold_user_id":    nil,
				"hold_expires_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrHoldExpiredOrStolen
		}

		slot.IsBooked = true
		slot.BookingID = &booking.ID
		slot.HoldUserID = nil
		slot.HoldExpiresAt = nil
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &slot, &booking, nil
}

// ReleaseExpiredHolds frees every hold across all providers whose TTL has
// elapsed, in one set-based statement, and returns the count released. It
// never touches booked rows: confirmation clears hold fields in the same
// transaction that books, so a row is either still holdable or already
// booked, never both.
//
// No timer lives here; cron invokes this on a fixed cadence.
func ReleaseExpiredHolds() (int64, error) {
	var released int64
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AvailabilitySlot{}).
			Where("hold_expires_at <= ? AND is_booked = ?", time.Now(), false).
			Updates(map[string]interface{}{"hold_user_id": nil, "hold_expires_at": nil})
		if res.Error != nil {
			return res.Error
		}
		released = res.RowsAffected

		// Generated rows exist only while held or booked; sweep the husks.
		return tx.Unscoped().
			Where("slot_type = ? AND is_booked = ? AND hold_user_id IS NULL", models.SlotTypeGenerated, false).
			Delete(&models.AvailabilitySlot{}).Error
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// GetProviderBookings lists a provider's still-standing bookings for one
// calendar day, ordered by start time.
func GetProviderBookings(providerID uint, date time.Time) ([]models.Booking, error) {
	if err := requireProvider(db.DB, providerID); err != nil {
		return nil, err
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var bookings []models.Booking
	err := db.DB.
		Where("provider_id = ? AND booking_time >= ? AND booking_time < ?", providerID, dayStart, dayEnd).
		Where("status NOT IN ?", []models.BookingStatus{models.StatusCancelled, models.StatusRefunded}).
		Order("booking_time asc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
