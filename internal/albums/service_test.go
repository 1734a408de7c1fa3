package albums

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/treklog/treklog/database/models"
	albumsrepo "github.com/treklog/treklog/database/repo/albums"
	"github.com/treklog/treklog/database/repo/base"
	photosrepo "github.com/treklog/treklog/database/repo/photos"
	tripsrepo "github.com/treklog/treklog/database/repo/trips"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	owner *models.User
	trip  *models.Trip
}

func setup(t *testing.T) *fixture {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Trip{}, &models.Photo{},
		&models.PhotoAlbum{}, &models.PhotoAlbumAssignment{})
	assert.NoError(t, err)

	owner := &models.User{Username: "owner", Password: "hash"}
	assert.NoError(t, db.Create(owner).Error)
	trip := &models.Trip{UserID: owner.ID, Name: "Japan 2026", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, db.Create(trip).Error)

	guard := access.NewGuard(tripsrepo.NewRepository(db))
	svc := NewService(albumsrepo.NewRepository(db), photosrepo.NewRepository(db), guard)

	return &fixture{db: db, svc: svc, owner: owner, trip: trip}
}

func (f *fixture) createPhoto(t *testing.T, identifier string) *models.Photo {
	photo := &models.Photo{
		TripID:     f.trip.ID,
		Identifier: identifier,
		Source:     models.PhotoSourceLocal,
	}
	assert.NoError(t, f.db.Create(photo).Error)
	return photo
}

func (f *fixture) createAlbum(t *testing.T, name string) *models.PhotoAlbum {
	album, err := f.svc.Create(context.Background(), f.owner.ID, f.trip.ID, name, "")
	assert.NoError(t, err)
	return album
}

// --- AddPhotos ---

func TestService_AddPhotos(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")
	p1 := f.createPhoto(t, "p1")
	p2 := f.createPhoto(t, "p2")

	added, err := f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, []uint{p1.ID, p2.ID})
	assert.NoError(t, err)
	assert.Equal(t, 2, added)

	count, err := f.svc.repo.CountPhotos(album.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// Re-adding an assigned photo is a no-op that still counts as eligible.
func TestService_AddPhotos_Idempotent(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")
	p1 := f.createPhoto(t, "p1")
	p2 := f.createPhoto(t, "p2")

	added, err := f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, []uint{p1.ID})
	assert.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, []uint{p1.ID, p2.ID})
	assert.NoError(t, err)
	assert.Equal(t, 2, added)

	count, err := f.svc.repo.CountPhotos(album.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestService_AddPhotos_DuplicateIDsInRequest(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")
	p1 := f.createPhoto(t, "p1")

	added, err := f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, []uint{p1.ID, p1.ID, p1.ID})
	assert.NoError(t, err)
	assert.Equal(t, 1, added)
}

// One photo from another trip fails the whole call; nothing is assigned.
func TestService_AddPhotos_ForeignPhotoRejectsAll(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")
	p1 := f.createPhoto(t, "p1")

	otherTrip := &models.Trip{UserID: f.owner.ID, Name: "Other", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, f.db.Create(otherTrip).Error)
	foreign := &models.Photo{TripID: otherTrip.ID, Identifier: "foreign", Source: models.PhotoSourceLocal}
	assert.NoError(t, f.db.Create(foreign).Error)

	_, err := f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, []uint{p1.ID, foreign.ID})
	assert.ErrorIs(t, err, ErrPhotoNotInTrip)

	count, err := f.svc.repo.CountPhotos(album.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestService_AddPhotos_EmptyList(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")

	added, err := f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, added)
}

// --- RemovePhoto ---

func TestService_RemovePhoto(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")
	p1 := f.createPhoto(t, "p1")

	_, err := f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, []uint{p1.ID})
	assert.NoError(t, err)

	err = f.svc.RemovePhoto(context.Background(), f.owner.ID, album.ID, p1.ID)
	assert.NoError(t, err)

	count, err := f.svc.repo.CountPhotos(album.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestService_RemovePhoto_NotInAlbum(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")
	p1 := f.createPhoto(t, "p1")

	err := f.svc.RemovePhoto(context.Background(), f.owner.ID, album.ID, p1.ID)
	assert.ErrorIs(t, err, ErrPhotoNotInAlbum)
}

// --- SetCover ---

func TestService_SetCover(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")
	p1 := f.createPhoto(t, "p1")

	err := f.svc.SetCover(context.Background(), f.owner.ID, album.ID, p1.ID)
	assert.NoError(t, err)

	var updated models.PhotoAlbum
	assert.NoError(t, f.db.First(&updated, album.ID).Error)
	assert.NotNil(t, updated.CoverPhotoID)
	assert.Equal(t, p1.ID, *updated.CoverPhotoID)
}

func TestService_SetCover_ForeignPhoto(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")

	otherTrip := &models.Trip{UserID: f.owner.ID, Name: "Other", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, f.db.Create(otherTrip).Error)
	foreign := &models.Photo{TripID: otherTrip.ID, Identifier: "foreign", Source: models.PhotoSourceLocal}
	assert.NoError(t, f.db.Create(foreign).Error)

	err := f.svc.SetCover(context.Background(), f.owner.ID, album.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrPhotoNotInTrip)
}

// --- Get / ListByTrip ---

func TestService_Get_Pagination(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")

	var ids []uint
	for i := 0; i < 5; i++ {
		p := f.createPhoto(t, fmt.Sprintf("p%d", i))
		ids = append(ids, p.ID)
	}
	_, err := f.svc.AddPhotos(context.Background(), f.owner.ID, album.ID, ids)
	assert.NoError(t, err)

	view, err := f.svc.Get(context.Background(), f.owner.ID, album.ID, base.Params{Skip: 0, Take: 3})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), view.Total)
	assert.Len(t, view.Photos, 3)
	assert.True(t, view.HasMore)

	view, err = f.svc.Get(context.Background(), f.owner.ID, album.ID, base.Params{Skip: 3, Take: 3})
	assert.NoError(t, err)
	assert.Len(t, view.Photos, 2)
	assert.False(t, view.HasMore)
}

func TestService_Get_Forbidden(t *testing.T) {
	f := setup(t)
	album := f.createAlbum(t, "Tokyo")

	stranger := &models.User{Username: "stranger", Password: "hash"}
	assert.NoError(t, f.db.Create(stranger).Error)

	_, err := f.svc.Get(context.Background(), stranger.ID, album.ID, base.Params{})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestService_Get_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Get(context.Background(), f.owner.ID, 999, base.Params{})
	assert.ErrorIs(t, err, access.ErrNotFound)
}
