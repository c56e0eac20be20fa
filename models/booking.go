package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRefunded  BookingStatus = "refunded"
)

type Booking struct {
	gorm.Model
	ProviderID      uint          `json:"provider_id" gorm:"index"`
	Provider        Provider      `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	CustomerID      uint          `json:"customer_id"`
	PaymentRef      string        `json:"payment_ref" gorm:"uniqueIndex"`
	BookingTime     time.Time     `json:"booking_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          BookingStatus `json:"status"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	return nil
}

// Blocks reports whether the booking still occupies its window for
// conflict purposes. Cancelled and refunded bookings free the slot.
func (b *Booking) Blocks() bool {
	return b.Status != StatusCancelled && b.Status != StatusRefunded
}
