package trips

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/treklog/treklog/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Trip{}, &models.Location{},
		&models.Tag{}, &models.Companion{}, &models.Photo{}, &models.PhotoAlbum{},
		&models.PhotoAlbumAssignment{}, &models.Transportation{}, &models.Activity{},
		&models.Lodging{}, &models.JournalEntry{})
	assert.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{Username: username, Password: "hash"}
	assert.NoError(t, db.Create(user).Error)
	return user
}

func TestRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	user := createUser(t, db, "owner")

	trip := &models.Trip{UserID: user.ID, Name: "Iceland", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, repo.Create(trip))
	assert.NotZero(t, trip.ID)

	got, err := repo.GetByID(trip.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Iceland", got.Name)
}

func TestRepository_ListByUser_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	user := createUser(t, db, "owner")

	for i := 0; i < 5; i++ {
		trip := &models.Trip{UserID: user.ID, Name: fmt.Sprintf("Trip %d", i), Privacy: models.TripPrivacyPrivate}
		assert.NoError(t, repo.Create(trip))
	}

	trips, total, err := repo.ListByUser(user.ID, 0, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, trips, 3)

	trips, total, err = repo.ListByUser(user.ID, 3, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, trips, 2)
}

func TestRepository_ListByUser_ExcludesOthers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")

	assert.NoError(t, repo.Create(&models.Trip{UserID: owner.ID, Name: "Mine", Privacy: models.TripPrivacyPrivate}))
	assert.NoError(t, repo.Create(&models.Trip{UserID: other.ID, Name: "Theirs", Privacy: models.TripPrivacyPublic}))

	trips, total, err := repo.ListByUser(owner.ID, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Mine", trips[0].Name)
}

// Deleting a trip removes every owned child and join rows in one transaction.
func TestRepository_Delete_Cascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	user := createUser(t, db, "owner")
	collab := createUser(t, db, "collab")

	trip := &models.Trip{UserID: user.ID, Name: "Iceland", Privacy: models.TripPrivacyShared}
	assert.NoError(t, repo.Create(trip))
	assert.NoError(t, repo.AddCollaborator(trip.ID, collab))

	loc := &models.Location{TripID: trip.ID, Name: "Reykjavik"}
	assert.NoError(t, db.Create(loc).Error)
	photo := &models.Photo{TripID: trip.ID, Identifier: "p1", Source: models.PhotoSourceLocal}
	assert.NoError(t, db.Create(photo).Error)
	album := &models.PhotoAlbum{TripID: trip.ID, Name: "Highlights"}
	assert.NoError(t, db.Create(album).Error)
	assert.NoError(t, db.Create(&models.PhotoAlbumAssignment{AlbumID: album.ID, PhotoID: photo.ID}).Error)
	assert.NoError(t, db.Create(&models.JournalEntry{TripID: trip.ID, Title: "Day 1"}).Error)

	assert.NoError(t, repo.Delete(trip.ID))

	_, err := repo.GetByID(trip.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	db.Model(&models.Location{}).Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Photo{}).Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.PhotoAlbum{}).Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Table("photo_album_assignments").Where("album_id = ?", album.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Table("trip_collaborators").Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// The collaborator account itself survives.
	var userCount int64
	db.Model(&models.User{}).Where("id = ?", collab.ID).Count(&userCount)
	assert.Equal(t, int64(1), userCount)
}

func TestRepository_Collaborators(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	owner := createUser(t, db, "owner")
	collab := createUser(t, db, "collab")

	trip := &models.Trip{UserID: owner.ID, Name: "Iceland", Privacy: models.TripPrivacyShared}
	assert.NoError(t, repo.Create(trip))

	ok, err := repo.IsCollaborator(trip.ID, collab.ID)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, repo.AddCollaborator(trip.ID, collab))
	ok, err = repo.IsCollaborator(trip.ID, collab.ID)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Adding the same collaborator twice is a no-op.
	assert.NoError(t, repo.AddCollaborator(trip.ID, collab))
	var count int64
	db.Table("trip_collaborators").Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	assert.NoError(t, repo.RemoveCollaborator(trip.ID, collab))
	ok, err = repo.IsCollaborator(trip.ID, collab.ID)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_FindOrCreateTag(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	user := createUser(t, db, "owner")

	tag, err := repo.FindOrCreateTag(user.ID, "hiking")
	assert.NoError(t, err)
	assert.NotZero(t, tag.ID)

	again, err := repo.FindOrCreateTag(user.ID, "hiking")
	assert.NoError(t, err)
	assert.Equal(t, tag.ID, again.ID)

	// Same name under another user is a distinct tag.
	other := createUser(t, db, "other")
	theirs, err := repo.FindOrCreateTag(other.ID, "hiking")
	assert.NoError(t, err)
	assert.NotEqual(t, tag.ID, theirs.ID)
}

func TestRepository_ReplaceTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	user := createUser(t, db, "owner")

	trip := &models.Trip{UserID: user.ID, Name: "Iceland", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, repo.Create(trip))

	hiking, err := repo.FindOrCreateTag(user.ID, "hiking")
	assert.NoError(t, err)
	winter, err := repo.FindOrCreateTag(user.ID, "winter")
	assert.NoError(t, err)

	assert.NoError(t, repo.ReplaceTags(trip, []*models.Tag{hiking}))
	assert.NoError(t, repo.ReplaceTags(trip, []*models.Tag{winter}))

	full, err := repo.GetByIDFull(trip.ID)
	assert.NoError(t, err)
	assert.Len(t, full.Tags, 1)
	assert.Equal(t, "winter", full.Tags[0].Name)
}
