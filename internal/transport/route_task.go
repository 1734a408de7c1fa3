package transport

import (
	"context"
	"log"
	"time"

	"github.com/treklog/treklog/database/repo/itinerary"
	"github.com/treklog/treklog/database/repo/locations"
	"github.com/treklog/treklog/internal/routing"
)

const routeTaskTimeout = 30 * time.Second

// routeTask computes the route for one transportation leg on the worker
// pool. Failures are logged; the leg simply keeps empty distance fields.
type routeTask struct {
	transportID    uint
	mode           string
	fromLocationID uint
	toLocationID   uint
	repo           *itinerary.TransportRepository
	locationRepo   *locations.Repository
	routing        *routing.Service
}

func (t *routeTask) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), routeTaskTimeout)
	defer cancel()

	from, err := t.locationRepo.WithContext(ctx).GetByID(t.fromLocationID)
	if err != nil {
		log.Printf("Route task for leg %d: from location lookup failed: %v", t.transportID, err)
		return
	}
	to, err := t.locationRepo.WithContext(ctx).GetByID(t.toLocationID)
	if err != nil {
		log.Printf("Route task for leg %d: to location lookup failed: %v", t.transportID, err)
		return
	}
	if !from.HasCoordinates() || !to.HasCoordinates() {
		return
	}

	result := t.routing.Calculate(ctx,
		routing.Point{Lat: *from.Latitude, Lon: *from.Longitude},
		routing.Point{Lat: *to.Latitude, Lon: *to.Longitude},
		t.mode)

	err = t.repo.WithContext(ctx).UpdateRoute(t.transportID,
		result.DistanceKm, result.DurationMin, result.Source, result.Geometry)
	if err != nil {
		log.Printf("Route task for leg %d: failed to save route: %v", t.transportID, err)
		return
	}
	log.Printf("Route for leg %d: %.1f km via %s", t.transportID, result.DistanceKm, result.Source)
}
