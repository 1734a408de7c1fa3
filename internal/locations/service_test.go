package locations

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/base"
	locationsrepo "github.com/treklog/treklog/database/repo/locations"
	tripsrepo "github.com/treklog/treklog/database/repo/trips"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *models.User, *models.Trip) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Trip{}, &models.Location{}))

	owner := &models.User{Username: "owner", Password: "hash"}
	assert.NoError(t, db.Create(owner).Error)
	trip := &models.Trip{UserID: owner.ID, Name: "Japan", Privacy: models.TripPrivacyPrivate}
	assert.NoError(t, db.Create(trip).Error)

	guard := access.NewGuard(tripsrepo.NewRepository(db))
	return NewService(locationsrepo.NewRepository(db), guard), owner, trip
}

func f64(v float64) *float64 { return &v }

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     *float64
		lon     *float64
		wantErr bool
	}{
		{"both nil", nil, nil, false},
		{"valid pair", f64(35.6762), f64(139.6503), false},
		{"lat without lon", f64(35.6762), nil, true},
		{"lon without lat", nil, f64(139.6503), true},
		{"lat too high", f64(90.1), f64(0), true},
		{"lat too low", f64(-90.1), f64(0), true},
		{"lon too high", f64(0), f64(180.1), true},
		{"lon too low", f64(0), f64(-180.1), true},
		{"boundary values", f64(90), f64(-180), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCoordinates(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	svc, owner, trip := setup(t)

	loc, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{
		Name:      "Tokyo",
		Latitude:  f64(35.6762),
		Longitude: f64(139.6503),
	})
	assert.NoError(t, err)
	assert.NotZero(t, loc.ID)
	assert.True(t, loc.HasCoordinates())
}

func TestService_Create_WithoutCoordinates(t *testing.T) {
	svc, owner, trip := setup(t)

	loc, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{Name: "Somewhere"})
	assert.NoError(t, err)
	assert.False(t, loc.HasCoordinates())
}

func TestService_Create_HalfCoordinatePair(t *testing.T) {
	svc, owner, trip := setup(t)

	_, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{
		Name:     "Tokyo",
		Latitude: f64(35.6762),
	})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestService_Update_ClearsCoordinates(t *testing.T) {
	svc, owner, trip := setup(t)

	loc, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{
		Name:      "Tokyo",
		Latitude:  f64(35.6762),
		Longitude: f64(139.6503),
	})
	assert.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner.ID, loc.ID, Input{Name: "Tokyo"})
	assert.NoError(t, err)
	assert.False(t, updated.HasCoordinates())
}

func TestService_ListByTrip(t *testing.T) {
	svc, owner, trip := setup(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), owner.ID, trip.ID, Input{Name: fmt.Sprintf("Stop %d", i)})
		assert.NoError(t, err)
	}

	items, total, hasMore, err := svc.ListByTrip(context.Background(), owner.ID, trip.ID, base.Params{Take: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)
	assert.True(t, hasMore)
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, owner, _ := setup(t)

	err := svc.Delete(context.Background(), owner.ID, 999)
	assert.ErrorIs(t, err, access.ErrNotFound)
}
