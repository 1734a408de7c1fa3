// Package immich consumes an Immich photo server as an opaque asset store.
// The rest of the system only needs asset lookup, thumbnail streaming, search
// and a connectivity probe, and must degrade gracefully when the server is
// unreachable or misconfigured.
package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable wraps every failure to reach the Immich server or an
// unexpected response from it.
var ErrUnavailable = errors.New("immich server unavailable")

// ErrNotConfigured is returned when the user has no Immich integration set
// up.
var ErrNotConfigured = errors.New("immich integration not configured")

// Asset is the subset of Immich asset metadata the application consumes.
type Asset struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	OriginalFileName string     `json:"originalFileName"`
	FileCreatedAt    *time.Time `json:"fileCreatedAt"`
	ExifInfo         *ExifInfo  `json:"exifInfo"`
}

// ExifInfo carries opportunistic metadata enrichment for linked photos.
type ExifInfo struct {
	ExifImageWidth  *int     `json:"exifImageWidth"`
	ExifImageHeight *int     `json:"exifImageHeight"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// Client talks to one user's Immich server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client for the given server. Returns ErrNotConfigured
// when the URL or key is empty.
func NewClient(serverURL, apiKey string, timeout time.Duration) (*Client, error) {
	if serverURL == "" || apiKey == "" {
		return nil, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(serverURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// GetAsset fetches one asset's metadata.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/assets/"+assetID, nil)
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

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &asset, nil
}

// GetAssetThumbnail streams the asset thumbnail. The caller must close the
// returned body.
func (c *Client) GetAssetThumbnail(ctx context.Context, assetID string) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/assets/"+assetID+"/thumbnail", nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

type searchRequest struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

type searchResponse struct {
	Assets struct {
		Items []*Asset `json:"items"`
	} `json:"assets"`
}

// SearchAssets runs a metadata search on the Immich server.
func (c *Client) SearchAssets(ctx context.Context, query string, page, size int) ([]*Asset, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	payload, err := json.Marshal(searchRequest{Query: query, Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/search/smart", bytes.NewReader(payload))
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

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body.Assets.Items, nil
}

// TestConnection probes the server ping endpoint with the given credentials.
func TestConnection(ctx context.Context, serverURL, apiKey string, timeout time.Duration) error {
	client, err := NewClient(serverURL, apiKey, timeout)
	if err != nil {
		return err
	}
	req, err := client.newRequest(ctx, http.MethodGet, "/api/server/ping", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
