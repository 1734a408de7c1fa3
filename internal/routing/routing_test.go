package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	newYork    = Point{Lat: 40.7128, Lon: -74.0060}
	losAngeles = Point{Lat: 34.0522, Lon: -118.2437}
)

// --- HaversineKm ---

func TestHaversineKm(t *testing.T) {
	got := HaversineKm(newYork.Lat, newYork.Lon, losAngeles.Lat, losAngeles.Lon)
	assert.InDelta(t, 3936, got, 10)
}

func TestHaversineKm_SamePoint(t *testing.T) {
	got := HaversineKm(newYork.Lat, newYork.Lon, newYork.Lat, newYork.Lon)
	assert.Equal(t, 0.0, got)
}

func TestHaversineKm_Symmetric(t *testing.T) {
	forward := HaversineKm(newYork.Lat, newYork.Lon, losAngeles.Lat, losAngeles.Lon)
	reverse := HaversineKm(losAngeles.Lat, losAngeles.Lon, newYork.Lat, newYork.Lon)
	assert.InDelta(t, forward, reverse, 0.001)
}

func TestEstimatedSpeedKmh(t *testing.T) {
	assert.Equal(t, 18.0, estimatedSpeedKmh(ProfileCycling))
	assert.Equal(t, 5.0, estimatedSpeedKmh(ProfileWalking))
	assert.Equal(t, 80.0, estimatedSpeedKmh(ProfileDriving))
	assert.Equal(t, 80.0, estimatedSpeedKmh("ferry"))
}

func TestSupportsProfile(t *testing.T) {
	assert.True(t, SupportsProfile(ProfileDriving))
	assert.True(t, SupportsProfile(ProfileCycling))
	assert.True(t, SupportsProfile(ProfileWalking))
	assert.False(t, SupportsProfile("ferry"))
	assert.False(t, SupportsProfile(""))
}

// --- Service.Calculate ---

type stubRouter struct {
	result *Result
	err    error
	calls  int
}

func (s *stubRouter) Route(ctx context.Context, from, to Point, profile string) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestService_Calculate_APISuccess(t *testing.T) {
	stub := &stubRouter{result: &Result{DistanceKm: 4488, DurationMin: 2520, Source: SourceAPI}}
	svc := newService(stub, nil, 0)

	got := svc.Calculate(context.Background(), newYork, losAngeles, ProfileDriving)
	assert.Equal(t, SourceAPI, got.Source)
	assert.Equal(t, 4488.0, got.DistanceKm)
	assert.Equal(t, 1, stub.calls)
}

func TestService_Calculate_FallbackOnAPIError(t *testing.T) {
	stub := &stubRouter{err: errors.New("connection refused")}
	svc := newService(stub, nil, 0)

	got := svc.Calculate(context.Background(), newYork, losAngeles, ProfileDriving)
	assert.Equal(t, SourceHaversine, got.Source)
	assert.InDelta(t, 3936, got.DistanceKm, 10)
	// Duration derives from the default cruise speed.
	assert.InDelta(t, got.DistanceKm/80*60, got.DurationMin, 0.001)
}

// Unsupported profiles never reach the external service.
func TestService_Calculate_UnsupportedProfile(t *testing.T) {
	stub := &stubRouter{result: &Result{Source: SourceAPI}}
	svc := newService(stub, nil, 0)

	got := svc.Calculate(context.Background(), newYork, losAngeles, "ferry")
	assert.Equal(t, SourceHaversine, got.Source)
	assert.Equal(t, 0, stub.calls)
}

func TestService_Calculate_WalkingFallbackDuration(t *testing.T) {
	stub := &stubRouter{err: errors.New("timeout")}
	svc := newService(stub, nil, 0)

	from := Point{Lat: 48.8566, Lon: 2.3522}
	to := Point{Lat: 48.8606, Lon: 2.3376}

	got := svc.Calculate(context.Background(), from, to, ProfileWalking)
	assert.Equal(t, SourceHaversine, got.Source)
	assert.InDelta(t, got.DistanceKm/5*60, got.DurationMin, 0.001)
}

func TestRouteKey_Rounding(t *testing.T) {
	// Endpoints within ~11m share a cache key.
	a := routeKey(Point{Lat: 40.71281, Lon: -74.00601}, losAngeles, ProfileDriving)
	b := routeKey(Point{Lat: 40.71279, Lon: -74.00599}, losAngeles, ProfileDriving)
	assert.Equal(t, a, b)

	c := routeKey(Point{Lat: 40.8, Lon: -74.0060}, losAngeles, ProfileDriving)
	assert.NotEqual(t, a, c)
}
