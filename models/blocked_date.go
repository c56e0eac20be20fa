package models

import (
	"gorm.io/gorm"
)

// BlockedDate marks a calendar day a provider takes no bookings on.
// Unique per (provider, date); blocking a date never cancels bookings
// already made for it.
type BlockedDate struct {
	gorm.Model
	ProviderID uint   `json:"provider_id" gorm:"uniqueIndex:idx_blocked_provider_date"`
	Date       string `json:"date" gorm:"uniqueIndex:idx_blocked_provider_date"` // Format "2006-01-02"
	Reason     string `json:"reason"`
}
