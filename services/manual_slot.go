package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
)

// AddManualSlot persists a provider-entered window. Unlike generated
// candidates, manual slots live as rows from the moment they are added and
// are offered as-is through GetAvailableSlots. The window must not overlap
// any existing booking, live hold, or other slot row.
func AddManualSlot(providerID uint, start, end time.Time) (*models.AvailabilitySlot, error) {
	if !end.After(start) || !start.After(time.Now()) {
		return nil, ErrInvalidInput
	}
	durationMinutes := int(end.Sub(start) / time.Minute)
	if !AllowedDuration(durationMinutes) {
		return nil, ErrInvalidDuration
	}

	var slot models.AvailabilitySlot
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireProvider(tx, providerID); err != nil {
			return err
		}
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(providerID)).Error; err != nil {
			return err
		}
		now := time.Now()

		// Generated rows with a lapsed hold are free again even before the
		// reaper has swept them; only booked, live-held or manual rows
		// block the window.
		var overlapping int64
		err := tx.Model(&models.AvailabilitySlot{}).
			Where("provider_id = ? AND available_from < ? AND available_to > ?", providerID, end, start).
			Where("slot_type = ? OR is_booked = ? OR hold_expires_at > ?", models.SlotTypeManual, true, now).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrSlotUnavailable
		}

		var bookings int64
		err = tx.Raw(`
			SELECT COUNT(*)
			FROM bookings
			WHERE provider_id = ?
			  AND status NOT IN ('cancelled', 'refunded')
			  AND booking_time < ?
			  AND booking_time + (duration_minutes * interval '1 minute') > ?
			  AND deleted_at IS NULL
		`, providerID, end, start).Scan(&bookings).Error
		if err != nil {
			return err
		}
		if bookings > 0 {
			return ErrSlotUnavailable
		}

		// Sweep any expired-hold husk in the window so the insert does not
		// trip the (provider_id, available_from) unique key.
		err = tx.Unscoped().
			Where("provider_id = ? AND available_from < ? AND available_to > ?", providerID, end, start).
			Where("slot_type = ? AND is_booked = ?", models.SlotTypeGenerated, false).
			Where("hold_expires_at IS NULL OR hold_expires_at <= ?", now).
			Delete(&models.AvailabilitySlot{}).Error
		if err != nil {
			return err
		}

		slot = models.AvailabilitySlot{
			ProviderID:      providerID,
			AvailableFrom:   start,
			AvailableTo:     end,
			DurationMinutes: durationMinutes,
			SlotType:        models.SlotTypeManual,
		}
		if err := tx.Create(&slot).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSlotUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// RemoveManualSlot deletes an open manual slot. Held or booked slots cannot
// be removed; the hold must lapse or the booking must be cancelled first.
func RemoveManualSlot(providerID uint, start time.Time) (bool, error) {
	removed := false
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().
			Where("provider_id = ? AND available_from = ? AND slot_type = ? AND is_booked = ?", providerID, start, models.SlotTypeManual, false).
			Where("hold_expires_at IS NULL OR hold_expires_at <= ?", time.Now()).
			Delete(&models.AvailabilitySlot{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
