package services

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
)

// HoldDuration is how long a hold reserves a slot while the user completes
// payment.
const HoldDuration = 10 * time.Minute

// HoldSlot atomically checks the window [start, end) against bookings and
// live holds and reserves it for userID. Check and reserve run in one
// transaction serialized per provider, so of two concurrent calls for
// overlapping windows exactly one succeeds; the other gets
// ErrSlotUnavailable.
//
// Re-holding a window the caller already live-holds refreshes the expiry
// instead of erroring. Holds per user are not capped.
func HoldSlot(providerID uint, start, end time.Time, userID uint) (*models.AvailabilitySlot, error) {
	if !end.After(start) {
		return nil, ErrInvalidInput
	}
	durationMinutes := int(end.Sub(start) / time.Minute)

	var held models.AvailabilitySlot
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireProvider(tx, providerID); err != nil {
			return err
		}
		// Serialize all reservations for this provider. Locking existing
		// rows alone cannot stop two inserts for distinct overlapping
		// windows neither of which has a row yet.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(providerID)).Error; err != nil {
			return err
		}

		var bookings []models.Booking
		err := tx.Raw(`
			SELECT *
			FROM bookings
			WHERE provider_id = ?
			  AND status NOT IN ('cancelled', 'refunded')
			  AND booking_time < ?
			  AND booking_time + (duration_minutes * interval '1 minute') > ?
			  AND deleted_at IS NULL
			FOR UPDATE
		`, providerID, end, start).Scan(&bookings).Error
		if err != nil {
			return err
		}
		if len(bookings) > 0 {
			return ErrSlotUnavailable
		}

		var slots []models.AvailabilitySlot
		err = tx.Raw(`
			SELECT *
			FROM availability_slots
			WHERE provider_id = ?
			  AND available_from < ?
			  AND available_to > ?
			  AND deleted_at IS NULL
			FOR UPDATE
		`, providerID, end, start).Scan(&slots).Error
		if err != nil {
			return err
		}

		now := time.Now()
		expiresAt := now.Add(HoldDuration)

		var existing *models.AvailabilitySlot
		for i := range slots {
			s := &slots[i]
			if s.IsBooked {
				return ErrSlotUnavailable
			}
			if s.AvailableFrom.Equal(start) {
				if s.HoldLive(now) && !s.HeldBy(userID, now) {
					return ErrSlotUnavailable
				}
				if s.SlotType == models.SlotTypeManual && !s.AvailableTo.Equal(end) {
					// Manual slots are offered as-is; a different window
					// at the same start is not bookable.
					return ErrSlotUnavailable
				}
				existing = s
				continue
			}
			// An expired hold no longer blocks the window.
			if s.HoldLive(now) {
				return ErrSlotUnavailable
			}
		}

		if existing != nil {
			updates := map[string]interface{}{
				"hold_user_id":    userID,
				"hold_expires_at": expiresAt,
			}
			if existing.SlotType == models.SlotTypeGenerated {
				updates["available_to"] = end
				updates["duration_minutes"] = durationMinutes
				existing.AvailableTo = end
				existing.DurationMinutes = durationMinutes
			}
			if err := tx.Model(&models.AvailabilitySlot{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
			existing.HoldUserID = &userID
			existing.HoldExpiresAt = &expiresAt
			held = *existing
			return nil
		}

		held = models.AvailabilitySlot{
			ProviderID:      providerID,
			AvailableFrom:   start,
			AvailableTo:     end,
			DurationMinutes: durationMinutes,
			SlotType:        models.SlotTypeGenerated,
			HoldUserID:      &userID,
			HoldExpiresAt:   &expiresAt,
		}
		if err := tx.Create(&held).Error; err != nil {
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
	return &held, nil
}

// ReleaseHold clears the hold on (providerID, start) if userID still owns
// it. Releasing a hold that expired, was reassigned, or never existed is a
// no-op returning false, never an error: the row may legitimately belong to
// someone else by now.
func ReleaseHold(providerID uint, start time.Time, userID uint) (bool, error) {
	released := false
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AvailabilitySlot{}).
			Where("provider_id = ? AND available_from = ? AND is_booked = ?", providerID, start, false).
			Where("hold_user_id = ? AND hold_expires_at > ?", userID, time.Now()).
			Updates(map[string]interface{}{"hold_user_id": nil, "hold_expires_at": nil})
		if res.Error != nil {
			return res.Error
		}
		released = res.RowsAffected > 0
		if !released {
			return nil
		}
		// Generated rows only exist while held or booked.
		return tx.Unscoped().
			Where("provider_id = ? AND available_from = ? AND slot_type = ? AND is_booked = ? AND hold_user_id IS NULL",
				providerID, start, models.SlotTypeGenerated, false).
			Delete(&models.AvailabilitySlot{}).Error
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
