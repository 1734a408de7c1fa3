package models

import (
	"time"

	"gorm.io/gorm"
)

// Trip privacy levels.
const (
	TripPrivacyPrivate = "private"
	TripPrivacyShared  = "shared"
	TripPrivacyPublic  = "public"
)

// Trip is the top-level owned container for a user's travel plan. Deleting a
// trip cascades to its owned children.
type Trip struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"size:2000"`
	Privacy     string `gorm:"size:16;default:private;not null"`

	StartDate *time.Time
	EndDate   *time.Time

	Collaborators []*User      `gorm:"many2many:trip_collaborators;"`
	Tags          []*Tag       `gorm:"many2many:trip_tags;"`
	Companions    []*Companion `gorm:"many2many:trip_companions;"`
}

// ValidPrivacy reports whether p is a known trip privacy level.
func ValidPrivacy(p string) bool {
	switch p {
	case TripPrivacyPrivate, TripPrivacyShared, TripPrivacyPublic:
		return true
	}
	return false
}

// Location is a named place inside one trip, optionally geocoded.
type Location struct {
	gorm.Model
	TripID    uint   `gorm:"not null;index"`
	Name      string `gorm:"size:200;not null"`
	Address   string `gorm:"size:500"`
	Latitude  *float64
	Longitude *float64
}

// HasCoordinates reports whether the location carries a usable lat/lon pair.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// Tag is a user-owned label attachable to trips.
type Tag struct {
	gorm.Model
	UserID uint   `gorm:"not null;uniqueIndex:idx_tag_user_name,priority:1"`
	Name   string `gorm:"size:100;not null;uniqueIndex:idx_tag_user_name,priority:2"`
}

// Companion is a user-maintained travel companion attachable to trips.
type Companion struct {
	gorm.Model
	UserID uint   `gorm:"not null;index"`
	Name   string `gorm:"size:200;not null"`
	Notes  string `gorm:"size:1000"`
}
