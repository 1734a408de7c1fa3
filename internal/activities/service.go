// Package activities implements trip activity management.
package activities

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
// belong to the activity's trip.
var ErrLocationNotInTrip = errors.New("location does not belong to the trip")

// Service is the activity service.
type Service struct {
	repo         *itinerary.ActivitiesRepository
	locationRepo *locations.Repository
	guard        *access.Guard
}

func NewService(repo *itinerary.ActivitiesRepository, locationRepo *locations.Repository, guard *access.Guard) *Service {
	return &Service{repo: repo, locationRepo: locationRepo, guard: guard}
}

// Input carries activity create/update fields.
type Input struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	LocationID  *uint      `json:"location_id"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	CostCents   *int64     `json:"cost_cents"`
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

func (s *Service) Create(ctx context.Context, userID, tripID uint, in Input) (*models.Activity, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, tripID, in.LocationID); err != nil {
		return nil, err
	}
	activity := &models.Activity{
		TripID:      tripID,
		Name:        in.Name,
		Description: in.Description,
		LocationID:  in.LocationID,
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
		CostCents:   in.CostCents,
	}
	if err := s.repo.WithContext(ctx).Create(activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	return activity, nil
}

func (s *Service) getAuthorized(ctx context.Context, userID, id uint, write bool) (*models.Activity, error) {
	activity, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if write {
		_, err = s.guard.TripForWrite(ctx, userID, activity.TripID)
	} else {
		_, err = s.guard.Trip(ctx, userID, activity.TripID)
	}
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Activity, error) {
	return s.getAuthorized(ctx, userID, id, false)
}

// ListByTrip returns one page of a trip's activities.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID uint, page base.Params) ([]*models.Activity, int64, bool, error) {
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

func (s *Service) Update(ctx context.Context, userID, id uint, in Input) (*models.Activity, error) {
	activity, err := s.getAuthorized(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, activity.TripID, in.LocationID); err != nil {
		return nil, err
	}
	activity.Name = in.Name
	activity.Description = in.Description
	activity.LocationID = in.LocationID
	activity.StartAt = in.StartAt
	activity.EndAt = in.EndAt
	activity.CostCents = in.CostCents
	if err := s.repo.WithContext(ctx).Update(activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	return activity, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.getAuthorized(ctx, userID, id, true); err != nil {
		return err
	}
	return s.repo.WithContext(ctx).Delete(id)
}
