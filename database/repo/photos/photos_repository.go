package photos

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wraps all photo database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

func (r *Repository) Create(photo *models.Photo) error {
	return r.db.Create(photo).Error
}

func (r *Repository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.First(&photo, id).Error
	return &photo, err
}

func (r *Repository) GetByIdentifier(identifier string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.First(&photo, "identifier = ?", identifier).Error
	return &photo, err
}

// ListByTrip returns one page of a trip's photos, newest first.
func (r *Repository) ListByTrip(tripID uint, skip, take int) ([]*models.Photo, int64, error) {
	var (
		out   []*models.Photo
		total int64
	)
	q := r.db.Model(&models.Photo{}).Where("trip_id = ?", tripID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(skip).Limit(take).Find(&out).Error
	return out, total, err
}

// Delete removes the photo row and any album assignments referencing it.
func (r *Repository) Delete(photoID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("photo_id = ?", photoID).
			Delete(&models.PhotoAlbumAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PhotoAlbum{}).
			Where("cover_photo_id = ?", photoID).
			Update("cover_photo_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Photo{}, photoID).Error
	})
}

// CountBelongingToTrip counts how many of the given photo ids exist on the
// trip. Used for all-or-nothing referential checks.
func (r *Repository) CountBelongingToTrip(photoIDs []uint, tripID uint) (int64, error) {
	if len(photoIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.Photo{}).
		Where("id IN ? AND trip_id = ?", photoIDs, tripID).
		Count(&count).Error
	return count, err
}

// LinkedAssetIDs returns the subset of asset ids already linked to the trip.
func (r *Repository) LinkedAssetIDs(tripID uint, assetIDs []string) ([]string, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	var linked []string
	err := r.db.Model(&models.Photo{}).
		Where("trip_id = ? AND immich_asset_id IN ?", tripID, assetIDs).
		Pluck("immich_asset_id", &linked).Error
	return linked, err
}

// CreateBatch inserts a chunk of photos in one statement, skipping rows that
// collide on the per-trip asset uniqueness. Returns the number of rows
// actually inserted.
func (r *Repository) CreateBatch(photos []*models.Photo) (int64, error) {
	if len(photos) == 0 {
		return 0, nil
	}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&photos)
	return res.RowsAffected, res.Error
}

func (r *Repository) UpdateDimensions(photoID uint, width, height int) error {
	return r.db.Model(&models.Photo{}).Where("id = ?", photoID).
		UpdateColumns(map[string]interface{}{"width": width, "height": height}).Error
}

func (r *Repository) UpdateThumbnailKey(photoID uint, key string) error {
	return r.db.Model(&models.Photo{}).Where("id = ?", photoID).
		UpdateColumn("thumbnail_key", key).Error
}
