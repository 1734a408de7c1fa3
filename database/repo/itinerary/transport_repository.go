// Package itinerary holds the repositories for trip itinerary entities:
// transportation, activities, lodging and journal entries.
package itinerary

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
)

// TransportRepository wraps all transportation database operations.
type TransportRepository struct {
	db *gorm.DB
}

func NewTransportRepository(db *gorm.DB) *TransportRepository {
	return &TransportRepository{db: db}
}

func (r *TransportRepository) WithContext(ctx context.Context) *TransportRepository {
	return &TransportRepository{db: r.db.WithContext(ctx)}
}

func (r *TransportRepository) Create(t *models.Transportation) error {
	return r.db.Create(t).Error
}

func (r *TransportRepository) GetByID(id uint) (*models.Transportation, error) {
	var t models.Transportation
	err := r.db.First(&t, id).Error
	return &t, err
}

func (r *TransportRepository) ListByTrip(tripID uint, skip, take int) ([]*models.Transportation, int64, error) {
	var (
		out   []*models.Transportation
		total int64
	)
	q := r.db.Model(&models.Transportation{}).Where("trip_id = ?", tripID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at ASC").Offset(skip).Limit(take).Find(&out).Error
	return out, total, err
}

func (r *TransportRepository) Update(t *models.Transportation) error {
	return r.db.Save(t).Error
}

func (r *TransportRepository) Delete(id uint) error {
	return r.db.Delete(&models.Transportation{}, id).Error
}

// UpdateRoute writes the asynchronously computed route fields. Last write
// wins; there is no optimistic concurrency check.
func (r *TransportRepository) UpdateRoute(id uint, distanceKm, durationMin float64, source, geometry string) error {
	return r.db.Model(&models.Transportation{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"calculated_distance_km":  distanceKm,
			"calculated_duration_min": durationMin,
			"distance_source":         source,
			"route_geometry":          geometry,
		}).Error
}
