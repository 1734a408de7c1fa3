package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/treklog/treklog/database"
	"github.com/treklog/treklog/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*database.Provider, *models.User) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	provider := database.NewProvider(db, "sqlite")
	assert.NoError(t, provider.AutoMigrate())

	user := &models.User{Username: "owner", Password: "hash"}
	assert.NoError(t, db.Create(user).Error)
	return provider, user
}

// seedTrip creates a trip with one of every child entity.
func seedTrip(t *testing.T, db *gorm.DB, userID uint, name string) *models.Trip {
	trip := &models.Trip{UserID: userID, Name: name, Privacy: models.TripPrivacyShared}
	assert.NoError(t, db.Create(trip).Error)

	tag := &models.Tag{UserID: userID, Name: "hiking"}
	assert.NoError(t, db.Where(tag).FirstOrCreate(tag).Error)
	assert.NoError(t, db.Model(trip).Association("Tags").Append(tag))

	companion := &models.Companion{UserID: userID, Name: "Sam"}
	assert.NoError(t, db.Where(&models.Companion{UserID: userID, Name: "Sam"}).FirstOrCreate(companion).Error)
	assert.NoError(t, db.Model(trip).Association("Companions").Append(companion))

	lat, lon := 64.1466, -21.9426
	from := &models.Location{TripID: trip.ID, Name: "Reykjavik", Latitude: &lat, Longitude: &lon}
	assert.NoError(t, db.Create(from).Error)
	to := &models.Location{TripID: trip.ID, Name: "Vik"}
	assert.NoError(t, db.Create(to).Error)

	photo := &models.Photo{
		TripID:     trip.ID,
		Identifier: fmt.Sprintf("photo-%s", name),
		Source:     models.PhotoSourceLocal,
		StorageKey: "photos/abc.jpg",
	}
	assert.NoError(t, db.Create(photo).Error)

	album := &models.PhotoAlbum{TripID: trip.ID, Name: "Highlights", CoverPhotoID: &photo.ID}
	assert.NoError(t, db.Create(album).Error)
	assert.NoError(t, db.Create(&models.PhotoAlbumAssignment{AlbumID: album.ID, PhotoID: photo.ID}).Error)

	leg := &models.Transportation{
		TripID:         trip.ID,
		Mode:           models.TransportModeDriving,
		FromLocationID: &from.ID,
		ToLocationID:   &to.ID,
	}
	assert.NoError(t, db.Create(leg).Error)

	assert.NoError(t, db.Create(&models.Activity{TripID: trip.ID, Name: "Glacier walk", LocationID: &to.ID}).Error)
	assert.NoError(t, db.Create(&models.Lodging{TripID: trip.ID, Name: "Guesthouse", LocationID: &to.ID}).Error)
	assert.NoError(t, db.Create(&models.JournalEntry{TripID: trip.ID, Title: "Day 1", Content: "Rain."}).Error)

	return trip
}

// --- Export ---

func TestService_Export(t *testing.T) {
	provider, user := setupTestDB(t)
	seedTrip(t, provider.DB(), user.ID, "Iceland")

	archive, err := NewService(provider).Export(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Equal(t, ArchiveVersion, archive.Version)
	assert.Len(t, archive.Trips, 1)

	ta := archive.Trips[0]
	assert.Equal(t, "Iceland", ta.Name)
	assert.Equal(t, []string{"hiking"}, ta.Tags)
	assert.Equal(t, []string{"Sam"}, ta.Companions)
	assert.Len(t, ta.Locations, 2)
	assert.Len(t, ta.Photos, 1)
	assert.Len(t, ta.Albums, 1)
	assert.Len(t, ta.Transportation, 1)
	assert.Len(t, ta.Activities, 1)
	assert.Len(t, ta.Lodging, 1)
	assert.Len(t, ta.Journal, 1)

	// Cross references are positional, not primary keys.
	leg := ta.Transportation[0]
	assert.NotNil(t, leg.FromLocation)
	assert.NotNil(t, leg.ToLocation)
	assert.Equal(t, 0, *leg.FromLocation)
	assert.Equal(t, 1, *leg.ToLocation)

	assert.Equal(t, "photo-Iceland", ta.Albums[0].CoverPhoto)
	assert.Equal(t, []string{"photo-Iceland"}, ta.Albums[0].Photos)
}

func TestService_Export_OtherUsersExcluded(t *testing.T) {
	provider, user := setupTestDB(t)
	other := &models.User{Username: "other", Password: "hash"}
	assert.NoError(t, provider.DB().Create(other).Error)

	seedTrip(t, provider.DB(), user.ID, "Mine")
	seedTrip(t, provider.DB(), other.ID, "Theirs")

	archive, err := NewService(provider).Export(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Len(t, archive.Trips, 1)
	assert.Equal(t, "Mine", archive.Trips[0].Name)
}

// --- Restore ---

func TestService_RestoreRoundTrip(t *testing.T) {
	provider, user := setupTestDB(t)
	seedTrip(t, provider.DB(), user.ID, "Iceland")

	svc := NewService(provider)
	archive, err := svc.Export(context.Background(), user.ID)
	assert.NoError(t, err)

	// Restore into a fresh account.
	target := &models.User{Username: "target", Password: "hash"}
	assert.NoError(t, provider.DB().Create(target).Error)

	result, err := svc.Restore(context.Background(), target.ID, archive, false)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Trips)
	assert.Equal(t, 1, result.Photos)

	// Re-export and compare the graphs.
	restored, err := svc.Export(context.Background(), target.ID)
	assert.NoError(t, err)
	assert.Equal(t, archive.Trips, restored.Trips)
}

func TestService_Restore_ClearExisting(t *testing.T) {
	provider, user := setupTestDB(t)
	seedTrip(t, provider.DB(), user.ID, "Old")

	svc := NewService(provider)
	archive := &Archive{
		Version: ArchiveVersion,
		Trips:   []TripArchive{{Name: "New", Privacy: models.TripPrivacyPrivate}},
	}
	result, err := svc.Restore(context.Background(), user.ID, archive, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Trips)

	var trips []*models.Trip
	assert.NoError(t, provider.DB().Where("user_id = ?", user.ID).Find(&trips).Error)
	assert.Len(t, trips, 1)
	assert.Equal(t, "New", trips[0].Name)

	// Children of the cleared trip are gone too.
	var count int64
	provider.DB().Model(&models.Location{}).Count(&count)
	assert.Equal(t, int64(0), count)
	provider.DB().Model(&models.Photo{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestService_Restore_WithoutClearAppends(t *testing.T) {
	provider, user := setupTestDB(t)
	seedTrip(t, provider.DB(), user.ID, "Old")

	svc := NewService(provider)
	archive := &Archive{
		Version: ArchiveVersion,
		Trips:   []TripArchive{{Name: "New"}},
	}
	_, err := svc.Restore(context.Background(), user.ID, archive, false)
	assert.NoError(t, err)

	var count int64
	provider.DB().Model(&models.Trip{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

// A duplicate identifier mid-restore rolls back the entire import, including
// trips already written.
func TestService_Restore_RollbackOnFailure(t *testing.T) {
	provider, user := setupTestDB(t)

	svc := NewService(provider)
	archive := &Archive{
		Version: ArchiveVersion,
		Trips: []TripArchive{
			{Name: "First", Photos: []PhotoArchive{{Identifier: "dup", Source: models.PhotoSourceLocal}}},
			{Name: "Second", Photos: []PhotoArchive{{Identifier: "dup", Source: models.PhotoSourceLocal}}},
		},
	}
	_, err := svc.Restore(context.Background(), user.ID, archive, false)
	assert.Error(t, err)

	var count int64
	provider.DB().Model(&models.Trip{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	provider.DB().Model(&models.Photo{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

// --- Validation ---

func TestService_Restore_UnsupportedVersion(t *testing.T) {
	provider, user := setupTestDB(t)

	archive := &Archive{Version: ArchiveVersion + 1}
	_, err := NewService(provider).Restore(context.Background(), user.ID, archive, false)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestService_Restore_InvalidArchive(t *testing.T) {
	provider, user := setupTestDB(t)
	svc := NewService(provider)

	badIndex := 5
	tests := []struct {
		name    string
		archive *Archive
	}{
		{"trip without name", &Archive{Version: 1, Trips: []TripArchive{{}}}},
		{"unknown privacy", &Archive{Version: 1, Trips: []TripArchive{{Name: "T", Privacy: "friends"}}}},
		{"unknown transport mode", &Archive{Version: 1, Trips: []TripArchive{{
			Name:           "T",
			Transportation: []TransportArchive{{Mode: "teleport"}},
		}}}},
		{"location index out of range", &Archive{Version: 1, Trips: []TripArchive{{
			Name:       "T",
			Activities: []ActivityArchive{{Name: "A", Location: &badIndex}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Restore(context.Background(), user.ID, tt.archive, false)
			assert.ErrorIs(t, err, ErrInvalidArchive)
		})
	}
}

// --- DecodeArchive ---

func TestDecodeArchive(t *testing.T) {
	raw := map[string]interface{}{}
	doc := []byte(`{
		"version": 1,
		"exported_at": "2026-08-30T12:00:00Z",
		"trips": [{
			"name": "Iceland",
			"privacy": "private",
			"start_date": "2026-06-01T00:00:00Z",
			"locations": [{"name": "Reykjavik", "latitude": 64.1466, "longitude": -21.9426}],
			"journal": [{"title": "Day 1", "content": "Rain."}]
		}]
	}`)
	assert.NoError(t, json.Unmarshal(doc, &raw))

	archive, err := DecodeArchive(raw)
	assert.NoError(t, err)
	assert.Equal(t, 1, archive.Version)
	assert.Len(t, archive.Trips, 1)
	assert.Equal(t, "Iceland", archive.Trips[0].Name)
	assert.NotNil(t, archive.Trips[0].StartDate)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), archive.Trips[0].StartDate.UTC())
	assert.Len(t, archive.Trips[0].Locations, 1)
	assert.Equal(t, "Day 1", archive.Trips[0].Journal[0].Title)
}

func TestDecodeArchive_BadTimestamp(t *testing.T) {
	raw := map[string]interface{}{
		"version":     1,
		"exported_at": "yesterday",
	}
	_, err := DecodeArchive(raw)
	assert.ErrorIs(t, err, ErrInvalidArchive)
}
