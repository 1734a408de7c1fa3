package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Routing profiles supported by the external service.
const (
	ProfileDriving = "driving"
	ProfileCycling = "cycling"
	ProfileWalking = "walking"
)

// ErrUnavailable wraps every failure to obtain a route from the external
// service: network errors, bad statuses, empty route sets.
var ErrUnavailable = errors.New("routing service unavailable")

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Client talks to an OSRM-compatible routing server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SupportsProfile reports whether the external service can route the profile.
// Unsupported profiles (flight, train, ...) go straight to haversine.
func SupportsProfile(profile string) bool {
	switch profile {
	case ProfileDriving, ProfileCycling, ProfileWalking:
		return true
	}
	return false
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64         `json:"distance"` // meters
		Duration float64         `json:"duration"` // seconds
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

// Route queries the routing server for one leg. Coordinates are lon,lat per
// the OSRM convention.
func (c *Client) Route(ctx context.Context, from, to Point, profile string) (*Result, error) {
	if !SupportsProfile(profile) {
		return nil, fmt.Errorf("%w: unsupported profile %q", ErrUnavailable, profile)
	}

	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=simplified&geometries=geojson",
		c.baseURL, profile, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return nil, fmt.Errorf("%w: no route (code=%s)", ErrUnavailable, body.Code)
	}

	route := body.Routes[0]
	return &Result{
		DistanceKm:  route.Distance / 1000,
		DurationMin: route.Duration / 60,
		Source:      SourceAPI,
		Geometry:    string(route.Geometry),
	}, nil
}
