// Package locations implements location management within a trip.
package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/base"
	"github.com/treklog/treklog/database/repo/locations"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/gorm"
)

// ErrInvalidCoordinates is returned when latitude/longitude are out of range
// or only one of the pair is supplied.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Service is the location service.
type Service struct {
	repo  *locations.Repository
	guard *access.Guard
}

func NewService(repo *locations.Repository, guard *access.Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// Input carries location create/update fields.
type Input struct {
	Name      string   `json:"name" binding:"required,max=200"`
	Address   string   `json:"address" binding:"max=500"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func validateCoordinates(lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return ErrInvalidCoordinates
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID, tripID uint, in Input) (*models.Location, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	loc := &models.Location{
		TripID:    tripID,
		Name:      in.Name,
		Address:   in.Address,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if err := s.repo.WithContext(ctx).Create(loc); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return loc, nil
}

// getAuthorized resolves the location and authorizes its trip.
func (s *Service) getAuthorized(ctx context.Context, userID, locationID uint, write bool) (*models.Location, error) {
	loc, err := s.repo.WithContext(ctx).GetByID(locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if write {
		_, err = s.guard.TripForWrite(ctx, userID, loc.TripID)
	} else {
		_, err = s.guard.Trip(ctx, userID, loc.TripID)
	}
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *Service) Get(ctx context.Context, userID, locationID uint) (*models.Location, error) {
	return s.getAuthorized(ctx, userID, locationID, false)
}

// ListByTrip returns one page of a trip's locations.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID uint, page base.Params) ([]*models.Location, int64, bool, error) {
	if _, err := s.guard.Trip(ctx, userID, tripID); err != nil {
		return nil, 0, false, err
	}
	page = page.Normalize(base.DefaultTake)
	items, total, err := s.repo.WithContext(ctx).ListByTrip(tripID, page.Skip, page.Take)
	if err != nil {
		return nil, 0, false, err
	}
	return items, total, base.HasMore(page.Skip, len(items), total), nil
}

func (s *Service) Update(ctx context.Context, userID, locationID uint, in Input) (*models.Location, error) {
	loc, err := s.getAuthorized(ctx, userID, locationID, true)
	if err != nil {
		return nil, err
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	loc.Name = in.Name
	loc.Address = in.Address
	loc.Latitude = in.Latitude
	loc.Longitude = in.Longitude
	if err := s.repo.WithContext(ctx).Update(loc); err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}
	return loc, nil
}

func (s *Service) Delete(ctx context.Context, userID, locationID uint) error {
	if _, err := s.getAuthorized(ctx, userID, locationID, true); err != nil {
		return err
	}
	return s.repo.WithContext(ctx).Delete(locationID)
}
