package photos

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/treklog/treklog/database/models"
	photosrepo "github.com/treklog/treklog/database/repo/photos"
	tripsrepo "github.com/treklog/treklog/database/repo/trips"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLinkTest(t *testing.T) (*gorm.DB, *Service, *models.User, *models.Trip) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Trip{}, &models.Photo{})
	assert.NoError(t, err)

	owner := &models.User{Username: "owner", Password: "hash"}
	assert.NoError(t, db.Create(owner).Error)
	trip := &models.Trip{UserID: owner.ID, Name: "Iceland", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, db.Create(trip).Error)

	guard := access.NewGuard(tripsrepo.NewRepository(db))
	svc := NewService(photosrepo.NewRepository(db), guard, nil, nil, 512, false)

	return db, svc, owner, trip
}

func assetInputs(n int) []AssetInput {
	assets := make([]AssetInput, n)
	for i := range assets {
		assets[i] = AssetInput{AssetID: fmt.Sprintf("asset-%03d", i), OriginalName: fmt.Sprintf("IMG_%03d.jpg", i)}
	}
	return assets
}

func TestService_LinkBatch(t *testing.T) {
	db, svc, owner, trip := setupLinkTest(t)

	result, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, assetInputs(3))
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)

	var count int64
	db.Model(&models.Photo{}).Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(3), count)

	var photo models.Photo
	assert.NoError(t, db.Where("trip_id = ? AND immich_asset_id = ?", trip.ID, "asset-000").First(&photo).Error)
	assert.Equal(t, models.PhotoSourceImmich, photo.Source)
	assert.Equal(t, fmt.Sprintf("immich-%d-asset-000", trip.ID), photo.Identifier)
	assert.Equal(t, "IMG_000.jpg", photo.OriginalName)
}

// Re-linking already linked assets succeeds without inserting rows.
func TestService_LinkBatch_AlreadyLinkedCountSuccessful(t *testing.T) {
	db, svc, owner, trip := setupLinkTest(t)

	_, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, assetInputs(2))
	assert.NoError(t, err)

	result, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, assetInputs(3))
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)

	var count int64
	db.Model(&models.Photo{}).Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestService_LinkBatch_DuplicateAssetIDsInRequest(t *testing.T) {
	_, svc, owner, trip := setupLinkTest(t)

	assets := []AssetInput{
		{AssetID: "dup"},
		{AssetID: "dup"},
		{AssetID: "other"},
	}
	result, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, assets)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Successful)
}

func TestService_LinkBatch_SkipsEmptyAssetIDs(t *testing.T) {
	_, svc, owner, trip := setupLinkTest(t)

	assets := []AssetInput{{AssetID: ""}, {AssetID: "real"}}
	result, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, assets)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Successful)
}

func TestService_LinkBatch_EmptyBatch(t *testing.T) {
	_, svc, owner, trip := setupLinkTest(t)

	result, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 0, result.Failed)
}

// Batches larger than one chunk insert every row.
func TestService_LinkBatch_MultipleChunks(t *testing.T) {
	db, svc, owner, trip := setupLinkTest(t)

	result, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, assetInputs(linkChunkSize+25))
	assert.NoError(t, err)
	assert.Equal(t, linkChunkSize+25, result.Total)
	assert.Equal(t, linkChunkSize+25, result.Successful)
	assert.Equal(t, 0, result.Failed)

	var count int64
	db.Model(&models.Photo{}).Where("trip_id = ?", trip.ID).Count(&count)
	assert.Equal(t, int64(linkChunkSize+25), count)
}

// The same asset may be linked to two different trips.
func TestService_LinkBatch_SameAssetDifferentTrips(t *testing.T) {
	db, svc, owner, trip := setupLinkTest(t)

	second := &models.Trip{UserID: owner.ID, Name: "Norway", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, db.Create(second).Error)

	_, err := svc.LinkBatch(context.Background(), owner.ID, trip.ID, assetInputs(1))
	assert.NoError(t, err)

	result, err := svc.LinkBatch(context.Background(), owner.ID, second.ID, assetInputs(1))
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
}

func TestService_LinkBatch_Forbidden(t *testing.T) {
	db, svc, _, trip := setupLinkTest(t)

	stranger := &models.User{Username: "stranger", Password: "hash"}
	assert.NoError(t, db.Create(stranger).Error)

	_, err := svc.LinkBatch(context.Background(), stranger.ID, trip.ID, assetInputs(1))
	assert.ErrorIs(t, err, access.ErrForbidden)
}
