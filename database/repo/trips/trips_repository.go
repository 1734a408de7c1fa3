package trips

import (
	"context"

	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
)

// Repository wraps all trip, collaborator, tag and companion database
// operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}

func (r *Repository) Create(trip *models.Trip) error {
	return r.db.Create(trip).Error
}

func (r *Repository) GetByID(tripID uint) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.First(&trip, tripID).Error
	return &trip, err
}

// GetByIDFull loads a trip with collaborators, tags and companions.
func (r *Repository) GetByIDFull(tripID uint) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.Preload("Collaborators").Preload("Tags").Preload("Companions").
		First(&trip, tripID).Error
	return &trip, err
}

// ListByUser returns one page of the user's own trips, newest first.
func (r *Repository) ListByUser(userID uint, skip, take int) ([]*models.Trip, int64, error) {
	var (
		trips []*models.Trip
		total int64
	)
	q := r.db.Model(&models.Trip{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(skip).Limit(take).Find(&trips).Error
	return trips, total, err
}

func (r *Repository) Update(trip *models.Trip) error {
	return r.db.Save(trip).Error
}

// Delete removes a trip and all its owned children in one transaction.
func (r *Repository) Delete(tripID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var albumIDs []uint
		if err := tx.Model(&models.PhotoAlbum{}).Where("trip_id = ?", tripID).
			Pluck("id", &albumIDs).Error; err != nil {
			return err
		}
		if len(albumIDs) > 0 {
			if err := tx.Unscoped().Where("album_id IN ?", albumIDs).
				Delete(&models.PhotoAlbumAssignment{}).Error; err != nil {
				return err
			}
		}
		children := []interface{}{
			&models.PhotoAlbum{},
			&models.Photo{},
			&models.Transportation{},
			&models.Activity{},
			&models.Lodging{},
			&models.JournalEntry{},
			&models.Location{},
		}
		for _, child := range children {
			if err := tx.Where("trip_id = ?", tripID).Delete(child).Error; err != nil {
				return err
			}
		}
		var trip models.Trip
		trip.ID = tripID
		if err := tx.Model(&trip).Association("Collaborators").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&trip).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&trip).Association("Companions").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Trip{}, tripID).Error
	})
}

// IsCollaborator reports whether the user appears in the trip's collaborator
// list.
func (r *Repository) IsCollaborator(tripID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("trip_collaborators").
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) AddCollaborator(tripID uint, user *models.User) error {
	trip := models.Trip{}
	trip.ID = tripID
	return r.db.Model(&trip).Association("Collaborators").Append(user)
}

func (r *Repository) RemoveCollaborator(tripID uint, user *models.User) error {
	trip := models.Trip{}
	trip.ID = tripID
	return r.db.Model(&trip).Association("Collaborators").Delete(user)
}

func (r *Repository) ReplaceTags(trip *models.Trip, tags []*models.Tag) error {
	return r.db.Model(trip).Association("Tags").Replace(tags)
}

func (r *Repository) ReplaceCompanions(trip *models.Trip, companions []*models.Companion) error {
	return r.db.Model(trip).Association("Companions").Replace(companions)
}

// FindOrCreateTag returns the user's tag with the given name, creating it if
// missing.
func (r *Repository) FindOrCreateTag(userID uint, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where(models.Tag{UserID: userID, Name: name}).FirstOrCreate(&tag).Error
	return &tag, err
}

// FindOrCreateCompanion returns the user's companion with the given name,
// creating it if missing.
func (r *Repository) FindOrCreateCompanion(userID uint, name string) (*models.Companion, error) {
	var companion models.Companion
	err := r.db.Where(models.Companion{UserID: userID, Name: name}).FirstOrCreate(&companion).Error
	return &companion, err
}
