package albums

import "github.com/treklog/treklog/database/models"

// PhotoView is a photo as exposed inside an album.
type PhotoView struct {
	ID           uint   `json:"id"`
	Identifier   string `json:"identifier"`
	Source       string `json:"source"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	CreatedAt    int64  `json:"created_at"`
}

// AlbumView is the album detail shape: the assignment collection is exposed
// as a "photos" field, with totals computed from the full assignment count.
type AlbumView struct {
	ID           uint        `json:"id"`
	TripID       uint        `json:"trip_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	CoverPhotoID *uint       `json:"cover_photo_id"`
	Photos       []PhotoView `json:"photos"`
	Total        int64       `json:"total"`
	HasMore      bool        `json:"has_more"`
	CreatedAt    int64       `json:"created_at"`
	UpdatedAt    int64       `json:"updated_at"`
}

// AlbumSummaryView is the list shape of an album.
type AlbumSummaryView struct {
	ID           uint   `json:"id"`
	TripID       uint   `json:"trip_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CoverPhotoID *uint  `json:"cover_photo_id"`
	PhotoCount   int64  `json:"photo_count"`
	CreatedAt    int64  `json:"created_at"`
}

// AlbumListView is one page of albums.
type AlbumListView struct {
	Albums  []AlbumSummaryView `json:"albums"`
	Total   int64              `json:"total"`
	HasMore bool               `json:"has_more"`
}

func toPhotoView(photo *models.Photo) PhotoView {
	if photo == nil {
		return PhotoView{}
	}
	return PhotoView{
		ID:           photo.ID,
		Identifier:   photo.Identifier,
		Source:       photo.Source,
		OriginalName: photo.OriginalName,
		MimeType:     photo.MimeType,
		Width:        photo.Width,
		Height:       photo.Height,
		CreatedAt:    photo.CreatedAt.Unix(),
	}
}

func toAlbumView(album *models.PhotoAlbum, assignments []*models.PhotoAlbumAssignment, total int64, hasMore bool) AlbumView {
	photos := make([]PhotoView, len(assignments))
	for i, a := range assignments {
		photos[i] = toPhotoView(a.Photo)
	}
	return AlbumView{
		ID:           album.ID,
		TripID:       album.TripID,
		Name:         album.Name,
		Description:  album.Description,
		CoverPhotoID: album.CoverPhotoID,
		Photos:       photos,
		Total:        total,
		HasMore:      hasMore,
		CreatedAt:    album.CreatedAt.Unix(),
		UpdatedAt:    album.UpdatedAt.Unix(),
	}
}

func toSummaryView(album *models.PhotoAlbum, photoCount int64) AlbumSummaryView {
	return AlbumSummaryView{
		ID:           album.ID,
		TripID:       album.TripID,
		Name:         album.Name,
		Description:  album.Description,
		CoverPhotoID: album.CoverPhotoID,
		PhotoCount:   photoCount,
		CreatedAt:    album.CreatedAt.Unix(),
	}
}
