package models

import (
	"time"
)

type Provider struct {
	ID                 uint               `json:"id" gorm:"primaryKey"`
	Name               string             `json:"name"`
	IsOnline           bool               `json:"is_online"`
	LastActivityAt     time.Time          `json:"last_activity_at"`
	AutoOfflineMinutes int                `json:"auto_offline_minutes" gorm:"default:30"`
	CanInstantBook     bool               `json:"can_instant_book"`
	ScheduleRules      []ScheduleRule     `json:"schedule_rules,omitempty" gorm:"foreignKey:ProviderID"`
	BlockedDates       []BlockedDate      `json:"blocked_dates,omitempty" gorm:"foreignKey:ProviderID"`
	Slots              []AvailabilitySlot `json:"slots,omitempty" gorm:"foreignKey:ProviderID"`
	Bookings           []Booking          `json:"bookings,omitempty" gorm:"foreignKey:ProviderID"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
