package models

import (
	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

type ScheduleRule struct {
	gorm.Model
	ProviderID uint      `json:"provider_id" gorm:"index"`
	Provider   Provider  `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	DayOfWeek  DayOfWeek `json:"day_of_week"`
	StartTime  string    `json:"start_time"` // Format "HH:MM" in 24h
	EndTime    string    `json:"end_time"`   // Format "HH:MM" in 24h
	IsActive   bool      `json:"is_active" gorm:"default:true"`
}
