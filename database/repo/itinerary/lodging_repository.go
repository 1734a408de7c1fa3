package itinerary

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
)

// LodgingRepository wraps all lodging database operations.
type LodgingRepository struct {
	db *gorm.DB
}

func NewLodgingRepository(db *gorm.DB) *LodgingRepository {
	return &LodgingRepository{db: db}
}

func (r *LodgingRepository) WithContext(ctx context.Context) *LodgingRepository {
	return &LodgingRepository{db: r.db.WithContext(ctx)}
}

func (r *LodgingRepository) Create(l *models.Lodging) error {
	return r.db.Create(l).Error
}

func (r *LodgingRepository) GetByID(id uint) (*models.Lodging, error) {
	var l models.Lodging
	err := r.db.First(&l, id).Error
	return &l, err
}

func (r *LodgingRepository) ListByTrip(tripID uint, skip, take int) ([]*models.Lodging, int64, error) {
	var (
		out   []*models.Lodging
		total int64
	)
	q := r.db.Model(&models.Lodging{}).Where("trip_id = ?", tripID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at ASC").Offset(skip).Limit(take).Find(&out).Error
	return out, total, err
}

func (r *LodgingRepository) Update(l *models.Lodging) error {
	return r.db.Save(l).Error
}

func (r *LodgingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Lodging{}, id).Error
}
