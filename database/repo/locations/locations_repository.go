package locations

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
)

// Repository wraps all location database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

func (r *Repository) Create(loc *models.Location) error {
	return r.db.Create(loc).Error
}

func (r *Repository) GetByID(id uint) (*models.Location, error) {
	var loc models.Location
	err := r.db.First(&loc, id).Error
	return &loc, err
}

// ListByTrip returns one page of a trip's locations in creation order.
func (r *Repository) ListByTrip(tripID uint, skip, take int) ([]*models.Location, int64, error) {
	var (
		locs  []*models.Location
		total int64
	)
	q := r.db.Model(&models.Location{}).Where("trip_id = ?", tripID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at ASC").Offset(skip).Limit(take).Find(&locs).Error
	return locs, total, err
}

func (r *Repository) Update(loc *models.Location) error {
	return r.db.Save(loc).Error
}

func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&models.Location{}, id).Error
}

// BelongsToTrip reports whether the location exists and belongs to the trip.
func (r *Repository) BelongsToTrip(locationID, tripID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Location{}).
		Where("id = ? AND trip_id = ?", locationID, tripID).
		Count(&count).Error
	return count > 0, err
}
