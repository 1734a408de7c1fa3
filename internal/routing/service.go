package routing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/treklog/treklog/cache"
	"golang.org/x/sync/singleflight"
)

// Distance sources reported in Result.Source.
const (
	SourceAPI       = "api"
	SourceHaversine = "haversine"
)

// Result is one computed route.
type Result struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	Source      string  `json:"source"`
	Geometry    string  `json:"geometry,omitempty"`
}

// router is satisfied by *Client; swapped out in tests.
type router interface {
	Route(ctx context.Context, from, to Point, profile string) (*Result, error)
}

// Service computes route distances with a haversine fallback and caches
// successful API results.
type Service struct {
	client router
	cache  cache.Provider
	ttl    time.Duration
	group  singleflight.Group
}

func NewService(client *Client, cacheProvider cache.Provider, ttl time.Duration) *Service {
	return newService(client, cacheProvider, ttl)
}

func newService(client router, cacheProvider cache.Provider, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{client: client, cache: cacheProvider, ttl: ttl}
}

// Calculate returns a route for the leg. API failures of any kind degrade to
// a great-circle estimate; the caller can distinguish via Result.Source.
// Calculate itself never returns an error for routing failures.
func (s *Service) Calculate(ctx context.Context, from, to Point, profile string) *Result {
	if !SupportsProfile(profile) {
		return s.haversine(from, to, profile)
	}

	key := routeKey(from, to, profile)
	if s.cache != nil {
		var cached Result
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached
		}
	}

	// Coalesce concurrent identical lookups.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.client.Route(ctx, from, to, profile)
	})
	if err != nil {
		log.Printf("Routing API failed for %s, falling back to haversine: %v", key, err)
		return s.haversine(from, to, profile)
	}

	result := v.(*Result)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
			log.Printf("Failed to cache route %s: %v", key, err)
		}
	}
	return result
}

func (s *Service) haversine(from, to Point, profile string) *Result {
	distance := HaversineKm(from.Lat, from.Lon, to.Lat, to.Lon)
	return &Result{
		DistanceKm:  distance,
		DurationMin: distance / estimatedSpeedKmh(profile) * 60,
		Source:      SourceHaversine,
	}
}

// routeKey rounds endpoints to ~11m so nearby lookups share cache entries.
func routeKey(from, to Point, profile string) string {
	return fmt.Sprintf("route:%s:%.4f,%.4f:%.4f,%.4f",
		profile, from.Lat, from.Lon, to.Lat, to.Lon)
}
