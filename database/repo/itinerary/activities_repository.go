package itinerary

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
)

// ActivitiesRepository wraps all activity database operations.
type ActivitiesRepository struct {
	db *gorm.DB
}

func NewActivitiesRepository(db *gorm.DB) *ActivitiesRepository {
	return &ActivitiesRepository{db: db}
}

func (r *ActivitiesRepository) WithContext(ctx context.Context) *ActivitiesRepository {
	return &ActivitiesRepository{db: r.db.WithContext(ctx)}
}

func (r *ActivitiesRepository) Create(a *models.Activity) error {
	return r.db.Create(a).Error
}

func (r *ActivitiesRepository) GetByID(id uint) (*models.Activity, error) {
	var a models.Activity
	err := r.db.First(&a, id).Error
	return &a, err
}

func (r *ActivitiesRepository) ListByTrip(tripID uint, skip, take int) ([]*models.Activity, int64, error) {
	var (
		out   []*models.Activity
		total int64
	)
	q := r.db.Model(&models.Activity{}).Where("trip_id = ?", tripID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at ASC").Offset(skip).Limit(take).Find(&out).Error
	return out, total, err
}

func (r *ActivitiesRepository) Update(a *models.Activity) error {
	return r.db.Save(a).Error
}

func (r *ActivitiesRepository) Delete(id uint) error {
	return r.db.Delete(&models.Activity{}, id).Error
}
