package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;size:100;not null"`
	Password string `gorm:"not null" json:"-"`

	// Per-user Immich collaborator settings. Empty means not configured.
	ImmichServerURL string `gorm:"size:255"`
	ImmichAPIKey    string `gorm:"size:255" json:"-"`
}
