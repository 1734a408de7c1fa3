// Package lodging implements trip lodging management.
package lodging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/base"
	"github.com/treklog/treklog/database/repo/itinerary"
	"github.com/treklog/treklog/database/repo/locations"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/gorm"
)

// ErrLocationNotInTrip is returned when the referenced location does not
// belong to the lodging's trip.
var ErrLocationNotInTrip = errors.New("location does not belong to the trip")

// Service is the lodging service.
type Service struct {
	repo         *itinerary.LodgingRepository
	locationRepo *locations.Repository
	guard        *access.Guard
}

func NewService(repo *itinerary.LodgingRepository, locationRepo *locations.Repository, guard *access.Guard) *Service {
	return &Service{repo: repo, locationRepo: locationRepo, guard: guard}
}

// Input carries lodging create/update fields.
type Input struct {
	Name       string     `json:"name" binding:"required,max=200"`
	LocationID *uint      `json:"location_id"`
	CheckIn    *time.Time `json:"check_in"`
	CheckOut   *time.Time `json:"check_out"`
	CostCents  *int64     `json:"cost_cents"`
}

func (s *Service) checkLocation(ctx context.Context, tripID uint, locationID *uint) error {
	if locationID == nil {
		return nil
	}
	ok, err := s.locationRepo.WithContext(ctx).BelongsToTrip(*locationID, tripID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocationNotInTrip
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID, tripID uint, in Input) (*models.Lodging, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, tripID, in.LocationID); err != nil {
		return nil, err
	}
	lodging := &models.Lodging{
		TripID:     tripID,
		Name:       in.Name,
		LocationID: in.LocationID,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		CostCents:  in.CostCents,
	}
	if err := s.repo.WithContext(ctx).Create(lodging); err != nil {
		return nil, fmt.Errorf("failed to create lodging: %w", err)
	}
	return lodging, nil
}

func (s *Service) getAuthorized(ctx context.Context, userID, id uint, write bool) (*models.Lodging, error) {
	lodging, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if write {
		_, err = s.guard.TripForWrite(ctx, userID, lodging.TripID)
	} else {
		_, err = s.guard.Trip(ctx, userID, lodging.TripID)
	}
	if err != nil {
		return nil, err
	}
	return lodging, nil
}

func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Lodging, error) {
	return s.getAuthorized(ctx, userID, id, false)
}

// ListByTrip returns one page of a trip's lodging entries.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID uint, page base.Params) ([]*models.Lodging, int64, bool, error) {
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

func (s *Service) Update(ctx context.Context, userID, id uint, in Input) (*models.Lodging, error) {
	lodging, err := s.getAuthorized(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, lodging.TripID, in.LocationID); err != nil {
		return nil, err
	}
	lodging.Name = in.Name
	lodging.LocationID = in.LocationID
	lodging.CheckIn = in.CheckIn
	lodging.CheckOut = in.CheckOut
	lodging.CostCents = in.CostCents
	if err := s.repo.WithContext(ctx).Update(lodging); err != nil {
		return nil, fmt.Errorf("failed to update lodging: %w", err)
	}
	return lodging, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.getAuthorized(ctx, userID, id, true); err != nil {
		return err
	}
	return s.repo.WithContext(ctx).Delete(id)
}
