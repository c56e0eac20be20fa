package models

import (
	"time"

	"gorm.io/gorm"
)

type SlotType string

const (
	SlotTypeManual    SlotType = "manual"
	SlotTypeGenerated SlotType = "generated"
)

// AvailabilitySlot is a concrete window [AvailableFrom, AvailableTo) for one
// provider. A row exists only for manual slots and for windows currently
// held or booked; open generated candidates are computed on demand and never
// persisted.
type AvailabilitySlot struct {
	gorm.Model
	ProviderID      uint       `json:"provider_id" gorm:"uniqueIndex:idx_slot_provider_from"`
	AvailableFrom   time.Time  `json:"available_from" gorm:"uniqueIndex:idx_slot_provider_from"`
	AvailableTo     time.Time  `json:"available_to"`
	DurationMinutes int        `json:"duration_minutes"`
	SlotType        SlotType   `json:"slot_type"`
	IsBooked        bool       `json:"is_booked"`
	BookingID       *uint      `json:"booking_id"`
	HoldUserID      *uint      `json:"hold_user_id"`
	HoldExpiresAt   *time.Time `json:"hold_expires_at"`
}

// HoldLive reports whether the slot carries a hold that has not expired.
func (s *AvailabilitySlot) HoldLive(now time.Time) bool {
	return s.HoldUserID != nil && s.HoldExpiresAt != nil && s.HoldExpiresAt.After(now)
}

// HeldBy reports whether userID owns a live hold on the slot. An expired
// hold counts as nobody's.
func (s *AvailabilitySlot) HeldBy(userID uint, now time.Time) bool {
	return s.HoldLive(now) && *s.HoldUserID == userID
}
