package itinerary

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
)

// JournalRepository wraps all journal entry database operations.
type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) WithContext(ctx context.Context) *JournalRepository {
	return &JournalRepository{db: r.db.WithContext(ctx)}
}

func (r *JournalRepository) Create(e *models.JournalEntry) error {
	return r.db.Create(e).Error
}

func (r *JournalRepository) GetByID(id uint) (*models.JournalEntry, error) {
	var e models.JournalEntry
	err := r.db.First(&e, id).Error
	return &e, err
}

func (r *JournalRepository) ListByTrip(tripID uint, skip, take int) ([]*models.JournalEntry, int64, error) {
	var (
		out   []*models.JournalEntry
		total int64
	)
	q := r.db.Model(&models.JournalEntry{}).Where("trip_id = ?", tripID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("entry_date ASC, created_at ASC").Offset(skip).Limit(take).Find(&out).Error
	return out, total, err
}

func (r *JournalRepository) Update(e *models.JournalEntry) error {
	return r.db.Save(e).Error
}

func (r *JournalRepository) Delete(id uint) error {
	return r.db.Delete(&models.JournalEntry{}, id).Error
}
