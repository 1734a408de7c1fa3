package models

import (
	"time"

	"gorm.io/gorm"
)

// Transportation modes.
const (
	TransportModeDriving = "driving"
	TransportModeCycling = "cycling"
	TransportModeWalking = "walking"
	TransportModeFlight  = "flight"
	TransportModeTrain   = "train"
	TransportModeBus     = "bus"
	TransportModeBoat    = "boat"
	TransportModeOther   = "other"
)

// Route distance sources.
const (
	DistanceSourceAPI       = "api"
	DistanceSourceHaversine = "haversine"
)

// Transportation is a leg between two locations of the same trip. Distance
// fields are filled asynchronously after create/update; their writes are last
// write wins.
type Transportation struct {
	gorm.Model
	TripID uint   `gorm:"not null;index"`
	Mode   string `gorm:"size:16;not null"`
	Name   string `gorm:"size:200"`

	FromLocationID *uint
	ToLocationID   *uint

	DepartAt *time.Time
	ArriveAt *time.Time

	CalculatedDistanceKm  *float64
	CalculatedDurationMin *float64
	DistanceSource        string `gorm:"size:16"`
	RouteGeometry         string `gorm:"type:text"`
}

// ValidTransportMode reports whether m is a known transportation mode.
func ValidTransportMode(m string) bool {
	switch m {
	case TransportModeDriving, TransportModeCycling, TransportModeWalking,
		TransportModeFlight, TransportModeTrain, TransportModeBus,
		TransportModeBoat, TransportModeOther:
		return true
	}
	return false
}

// Activity is a scheduled thing to do on a trip.
type Activity struct {
	gorm.Model
	TripID      uint   `gorm:"not null;index"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"size:2000"`
	LocationID  *uint
	StartAt     *time.Time
	EndAt       *time.Time
	CostCents   *int64
}

// Lodging is a stay at a location of a trip.
type Lodging struct {
	gorm.Model
	TripID     uint   `gorm:"not null;index"`
	Name       string `gorm:"size:200;not null"`
	LocationID *uint
	CheckIn    *time.Time
	CheckOut   *time.Time
	CostCents  *int64
}

// JournalEntry is a dated free-text note on a trip.
type JournalEntry struct {
	gorm.Model
	TripID    uint   `gorm:"not null;index"`
	Title     string `gorm:"size:200;not null"`
	Content   string `gorm:"type:text"`
	EntryDate *time.Time
}
