package albums

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wraps all photo album database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

func (r *Repository) Create(album *models.PhotoAlbum) error {
	return r.db.Create(album).Error
}

func (r *Repository) GetByID(albumID uint) (*models.PhotoAlbum, error) {
	var album models.PhotoAlbum
	err := r.db.First(&album, albumID).Error
	return &album, err
}

func (r *Repository) Update(album *models.PhotoAlbum) error {
	return r.db.Save(album).Error
}

// Delete removes the album and its assignments. Photos themselves are kept.
func (r *Repository) Delete(albumID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("album_id = ?", albumID).
			Delete(&models.PhotoAlbumAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PhotoAlbum{}, albumID).Error
	})
}

// ListByTrip returns one page of a trip's albums with per-album photo counts.
func (r *Repository) ListByTrip(tripID uint, skip, take int) ([]*models.PhotoAlbum, int64, error) {
	var (
		albums []*models.PhotoAlbum
		total  int64
	)
	q := r.db.Model(&models.PhotoAlbum{}).Where("trip_id = ?", tripID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(skip).Limit(take).Find(&albums).Error
	return albums, total, err
}

// CountPhotos returns the total number of assignments in the album.
func (r *Repository) CountPhotos(albumID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PhotoAlbumAssignment{}).
		Where("album_id = ?", albumID).Count(&count).Error
	return count, err
}

// CountPhotosForAlbums returns assignment counts keyed by album id.
func (r *Repository) CountPhotosForAlbums(albumIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(albumIDs))
	if len(albumIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AlbumID uint
		Count   int64
	}
	err := r.db.Model(&models.PhotoAlbumAssignment{}).
		Select("album_id, COUNT(*) as count").
		Where("album_id IN ?", albumIDs).
		Group("album_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AlbumID] = row.Count
	}
	return counts, nil
}

// ListAssignments returns one page of the album's photo assignments ordered
// by creation time, each carrying its photo.
func (r *Repository) ListAssignments(albumID uint, skip, take int) ([]*models.PhotoAlbumAssignment, error) {
	var assignments []*models.PhotoAlbumAssignment
	err := r.db.Preload("Photo").
		Where("album_id = ?", albumID).
		Order("created_at ASC").
		Offset(skip).Limit(take).
		Find(&assignments).Error
	return assignments, err
}

// AssignedPhotoIDs returns the subset of photoIDs already assigned to the
// album.
func (r *Repository) AssignedPhotoIDs(albumID uint, photoIDs []uint) ([]uint, error) {
	if len(photoIDs) == 0 {
		return nil, nil
	}
	var assigned []uint
	err := r.db.Model(&models.PhotoAlbumAssignment{}).
		Where("album_id = ? AND photo_id IN ?", albumID, photoIDs).
		Pluck("photo_id", &assigned).Error
	return assigned, err
}

// CreateAssignments inserts assignment rows, silently skipping duplicates.
func (r *Repository) CreateAssignments(assignments []*models.PhotoAlbumAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignments).Error
}

// DeleteAssignment removes one (album, photo) assignment and reports whether
// a row was actually deleted.
func (r *Repository) DeleteAssignment(albumID, photoID uint) (bool, error) {
	res := r.db.Unscoped().
		Where("album_id = ? AND photo_id = ?", albumID, photoID).
		Delete(&models.PhotoAlbumAssignment{})
	return res.RowsAffected > 0, res.Error
}
