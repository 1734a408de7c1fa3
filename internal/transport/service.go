// Package transport implements transportation legs and their asynchronous
// route-distance enrichment.
package transport

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
	"github.com/treklog/treklog/internal/routing"
	"github.com/treklog/treklog/internal/worker"
	"gorm.io/gorm"
)

var (
	// ErrInvalidMode is returned for an unknown transportation mode.
	ErrInvalidMode = errors.New("invalid transportation mode")

	// ErrLocationNotInTrip is returned when an endpoint location does not
	// belong to the leg's trip.
	ErrLocationNotInTrip = errors.New("location does not belong to the trip")
)

// Service is the transportation service.
type Service struct {
	repo         *itinerary.TransportRepository
	locationRepo *locations.Repository
	guard        *access.Guard
	routing      *routing.Service
	pool         *worker.Pool
}

func NewService(repo *itinerary.TransportRepository, locationRepo *locations.Repository, guard *access.Guard, routingService *routing.Service, pool *worker.Pool) *Service {
	return &Service{
		repo:         repo,
		locationRepo: locationRepo,
		guard:        guard,
		routing:      routingService,
		pool:         pool,
	}
}

// Input carries transportation create/update fields.
type Input struct {
	Mode           string     `json:"mode" binding:"required"`
	Name           string     `json:"name" binding:"max=200"`
	FromLocationID *uint      `json:"from_location_id"`
	ToLocationID   *uint      `json:"to_location_id"`
	DepartAt       *time.Time `json:"depart_at"`
	ArriveAt       *time.Time `json:"arrive_at"`
}

func (s *Service) validateEndpoints(ctx context.Context, tripID uint, in Input) error {
	if !models.ValidTransportMode(in.Mode) {
		return ErrInvalidMode
	}
	for _, locID := range []*uint{in.FromLocationID, in.ToLocationID} {
		if locID == nil {
			continue
		}
		ok, err := s.locationRepo.WithContext(ctx).BelongsToTrip(*locID, tripID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLocationNotInTrip
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID, tripID uint, in Input) (*models.Transportation, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}
	if err := s.validateEndpoints(ctx, tripID, in); err != nil {
		return nil, err
	}
	t := &models.Transportation{
		TripID:         tripID,
		Mode:           in.Mode,
		Name:           in.Name,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		DepartAt:       in.DepartAt,
		ArriveAt:       in.ArriveAt,
	}
	if err := s.repo.WithContext(ctx).Create(t); err != nil {
		return nil, fmt.Errorf("failed to create transportation: %w", err)
	}
	s.submitRouteTask(t)
	return t, nil
}

// getAuthorized resolves the leg and authorizes its trip.
func (s *Service) getAuthorized(ctx context.Context, userID, id uint, write bool) (*models.Transportation, error) {
	t, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if write {
		_, err = s.guard.TripForWrite(ctx, userID, t.TripID)
	} else {
		_, err = s.guard.Trip(ctx, userID, t.TripID)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Transportation, error) {
	return s.getAuthorized(ctx, userID, id, false)
}

// ListByTrip returns one page of a trip's transportation legs.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID uint, page base.Params) ([]*models.Transportation, int64, bool, error) {
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

func (s *Service) Update(ctx context.Context, userID, id uint, in Input) (*models.Transportation, error) {
	t, err := s.getAuthorized(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.validateEndpoints(ctx, t.TripID, in); err != nil {
		return nil, err
	}

	endpointsChanged := !uintPtrEqual(t.FromLocationID, in.FromLocationID) ||
		!uintPtrEqual(t.ToLocationID, in.ToLocationID) ||
		t.Mode != in.Mode

	t.Mode = in.Mode
	t.Name = in.Name
	t.FromLocationID = in.FromLocationID
	t.ToLocationID = in.ToLocationID
	t.DepartAt = in.DepartAt
	t.ArriveAt = in.ArriveAt
	if endpointsChanged {
		// Stale route data is cleared now; the task refills it.
		t.CalculatedDistanceKm = nil
		t.CalculatedDurationMin = nil
		t.DistanceSource = ""
		t.RouteGeometry = ""
	}
	if err := s.repo.WithContext(ctx).Update(t); err != nil {
		return nil, fmt.Errorf("failed to update transportation: %w", err)
	}
	if endpointsChanged {
		s.submitRouteTask(t)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.getAuthorized(ctx, userID, id, true); err != nil {
		return err
	}
	return s.repo.WithContext(ctx).Delete(id)
}

// submitRouteTask enqueues route calculation when both endpoints are set.
// Whether their coordinates exist is checked inside the task.
func (s *Service) submitRouteTask(t *models.Transportation) {
	if s.pool == nil || s.routing == nil {
		return
	}
	if t.FromLocationID == nil || t.ToLocationID == nil {
		return
	}
	s.pool.Submit(&routeTask{
		transportID:    t.ID,
		mode:           t.Mode,
		fromLocationID: *t.FromLocationID,
		toLocationID:   *t.ToLocationID,
		repo:           s.repo,
		locationRepo:   s.locationRepo,
		routing:        s.routing,
	})
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
