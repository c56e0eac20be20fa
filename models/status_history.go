package models

import (
	"gorm.io/gorm"
)

type StatusSource string

const (
	StatusSourceManual StatusSource = "manual"
	StatusSourceAuto   StatusSource = "auto"
)

// StatusHistory is an append-only log of provider online/offline
// transitions. Rows are never updated or deleted.
type StatusHistory struct {
	gorm.Model
	ProviderID uint         `json:"provider_id" gorm:"index"`
	IsOnline   bool         `json:"is_online"`
	ChangedBy  string       `json:"changed_by"`
	Source     StatusSource `json:"source"`
}
