package transport

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/itinerary"
	locationsrepo "github.com/treklog/treklog/database/repo/locations"
	tripsrepo "github.com/treklog/treklog/database/repo/trips"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *Service, *models.User, *models.Trip) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Trip{}, &models.Location{}, &models.Transportation{})
	assert.NoError(t, err)

	owner := &models.User{Username: "owner", Password: "hash"}
	assert.NoError(t, db.Create(owner).Error)
	trip := &models.Trip{UserID: owner.ID, Name: "Alps", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, db.Create(trip).Error)

	guard := access.NewGuard(tripsrepo.NewRepository(db))
	// No pool and no routing service; legs are created without route
	// enrichment, which is how it also behaves when OSRM is not configured.
	svc := NewService(itinerary.NewTransportRepository(db), locationsrepo.NewRepository(db), guard, nil, nil)

	return db, svc, owner, trip
}

func createLocation(t *testing.T, db *gorm.DB, tripID uint, name string) *models.Location {
	loc := &models.Location{TripID: tripID, Name: name}
	assert.NoError(t, db.Create(loc).Error)
	return loc
}

func TestService_Create(t *testing.T) {
	db, svc, owner, trip := setup(t)
	from := createLocation(t, db, trip.ID, "Geneva")
	to := createLocation(t, db, trip.ID, "Chamonix")

	leg, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{
		Mode:           models.TransportModeDriving,
		Name:           "Rental car",
		FromLocationID: &from.ID,
		ToLocationID:   &to.ID,
	})
	assert.NoError(t, err)
	assert.NotZero(t, leg.ID)
	assert.Equal(t, models.TransportModeDriving, leg.Mode)
}

func TestService_Create_InvalidMode(t *testing.T) {
	_, svc, owner, trip := setup(t)

	_, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{Mode: "teleport"})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestService_Create_EndpointsOptional(t *testing.T) {
	_, svc, owner, trip := setup(t)

	leg, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{Mode: models.TransportModeFlight, Name: "Outbound"})
	assert.NoError(t, err)
	assert.Nil(t, leg.FromLocationID)
	assert.Nil(t, leg.ToLocationID)
}

func TestService_Create_ForeignLocation(t *testing.T) {
	db, svc, owner, trip := setup(t)

	otherTrip := &models.Trip{UserID: owner.ID, Name: "Other", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, db.Create(otherTrip).Error)
	foreign := createLocation(t, db, otherTrip.ID, "Elsewhere")

	_, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{
		Mode:           models.TransportModeDriving,
		FromLocationID: &foreign.ID,
	})
	assert.ErrorIs(t, err, ErrLocationNotInTrip)
}

// Changing an endpoint or the mode invalidates computed route data.
func TestService_Update_EndpointChangeClearsRoute(t *testing.T) {
	db, svc, owner, trip := setup(t)
	from := createLocation(t, db, trip.ID, "Geneva")
	to := createLocation(t, db, trip.ID, "Chamonix")
	third := createLocation(t, db, trip.ID, "Zermatt")

	leg, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{
		Mode:           models.TransportModeDriving,
		FromLocationID: &from.ID,
		ToLocationID:   &to.ID,
	})
	assert.NoError(t, err)

	// Simulate a completed route calculation.
	distance, duration := 88.0, 75.0
	assert.NoError(t, db.Model(&models.Transportation{}).Where("id = ?", leg.ID).
		UpdateColumns(map[string]interface{}{
			"calculated_distance_km":  distance,
			"calculated_duration_min": duration,
			"distance_source":         "api",
		}).Error)

	updated, err := svc.Update(context.Background(), owner.ID, leg.ID, Input{
		Mode:           models.TransportModeDriving,
		FromLocationID: &from.ID,
		ToLocationID:   &third.ID,
	})
	assert.NoError(t, err)
	assert.Nil(t, updated.CalculatedDistanceKm)
	assert.Nil(t, updated.CalculatedDurationMin)
	assert.Empty(t, updated.DistanceSource)
}

func TestService_Update_UnrelatedChangeKeepsRoute(t *testing.T) {
	db, svc, owner, trip := setup(t)
	from := createLocation(t, db, trip.ID, "Geneva")
	to := createLocation(t, db, trip.ID, "Chamonix")

	leg, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{
		Mode:           models.TransportModeDriving,
		FromLocationID: &from.ID,
		ToLocationID:   &to.ID,
	})
	assert.NoError(t, err)

	distance := 88.0
	assert.NoError(t, db.Model(&models.Transportation{}).Where("id = ?", leg.ID).
		UpdateColumns(map[string]interface{}{
			"calculated_distance_km": distance,
			"distance_source":        "api",
		}).Error)

	updated, err := svc.Update(context.Background(), owner.ID, leg.ID, Input{
		Mode:           models.TransportModeDriving,
		Name:           "Renamed",
		FromLocationID: &from.ID,
		ToLocationID:   &to.ID,
	})
	assert.NoError(t, err)
	assert.NotNil(t, updated.CalculatedDistanceKm)
	assert.Equal(t, distance, *updated.CalculatedDistanceKm)
	assert.Equal(t, "api", updated.DistanceSource)
}

func TestService_Delete(t *testing.T) {
	db, svc, owner, trip := setup(t)

	leg, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{Mode: models.TransportModeTrain})
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(context.Background(), owner.ID, leg.ID))

	var count int64
	db.Model(&models.Transportation{}).Where("id = ?", leg.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestService_Get_NotFound(t *testing.T) {
	_, svc, owner, _ := setup(t)

	_, err := svc.Get(context.Background(), owner.ID, 999)
	assert.ErrorIs(t, err, access.ErrNotFound)
}

func TestUintPtrEqual(t *testing.T) {
	a, b := uint(1), uint(1)
	c := uint(2)
	assert.True(t, uintPtrEqual(nil, nil))
	assert.True(t, uintPtrEqual(&a, &b))
	assert.False(t, uintPtrEqual(&a, &c))
	assert.False(t, uintPtrEqual(&a, nil))
	assert.False(t, uintPtrEqual(nil, &a))
}
