package models

import (
	"time"

	"gorm.io/gorm"
)

// Photo sources.
const (
	PhotoSourceLocal  = "local"
	PhotoSourceImmich = "immich"
)

// Photo belongs to exactly one trip. Local photos are file-backed through the
// storage provider; immich photos reference an external asset id.
type Photo struct {
	gorm.Model
	TripID     uint   `gorm:"not null;index;uniqueIndex:idx_trip_asset,priority:1"`
	Identifier string `gorm:"uniqueIndex;size:64;not null"`
	Source     string `gorm:"size:16;not null;default:local"`

	// Set only for immich-sourced photos. A given asset may be linked to a
	// trip at most once; NULLs do not collide for local photos.
	ImmichAssetID *string `gorm:"size:128;uniqueIndex:idx_trip_asset,priority:2"`

	OriginalName string `gorm:"size:255"`
	MimeType     string `gorm:"size:100"`
	FileSize     int64
	Width        int
	Height       int
	TakenAt      *time.Time

	// Storage keys for local photos.
	StorageKey   string `gorm:"size:255"`
	ThumbnailKey string `gorm:"size:255"`
}

// PhotoAlbum is a named grouping of photos within one trip. The cover photo,
// when set, must belong to the same trip.
type PhotoAlbum struct {
	gorm.Model
	TripID       uint   `gorm:"not null;index"`
	Name         string `gorm:"size:200;not null"`
	Description  string `gorm:"size:1000"`
	CoverPhotoID *uint
}

// PhotoAlbumAssignment joins a photo to an album. A given (album, photo) pair
// appears at most once.
type PhotoAlbumAssignment struct {
	gorm.Model
	AlbumID uint `gorm:"not null;uniqueIndex:idx_album_photo,priority:1"`
	PhotoID uint `gorm:"not null;uniqueIndex:idx_album_photo,priority:2;index"`

	Photo *Photo `gorm:"foreignKey:PhotoID"`
}
