package photos

import (
	"time"

	"github.com/treklog/treklog/database/models"
)

// View is the API shape of a photo.
type View struct {
	ID            uint       `json:"id"`
	TripID        uint       `json:"trip_id"`
	Identifier    string     `json:"identifier"`
	Source        string     `json:"source"`
	ImmichAssetID *string    `json:"immich_asset_id,omitempty"`
	OriginalName  string     `json:"original_name"`
	MimeType      string     `json:"mime_type"`
	FileSize      int64      `json:"file_size"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	TakenAt       *time.Time `json:"taken_at"`
	HasThumbnail  bool       `json:"has_thumbnail"`
	CreatedAt     int64      `json:"created_at"`
}

// ListView is one page of photos.
type ListView struct {
	Photos  []View `json:"photos"`
	Total   int64  `json:"total"`
	HasMore bool   `json:"has_more"`
}

func toView(photo *models.Photo) View {
	return View{
		ID:            photo.ID,
		TripID:        photo.TripID,
		Identifier:    photo.Identifier,
		Source:        photo.Source,
		ImmichAssetID: photo.ImmichAssetID,
		OriginalName:  photo.OriginalName,
		MimeType:      photo.MimeType,
		FileSize:      photo.FileSize,
		Width:         photo.Width,
		Height:        photo.Height,
		TakenAt:       photo.TakenAt,
		HasThumbnail:  photo.ThumbnailKey != "",
		CreatedAt:     photo.CreatedAt.Unix(),
	}
}
