package immich

import (
	"context"
	"io"
	"time"

	"github.com/treklog/treklog/database/repo/accounts"
)

// Service resolves per-user Immich clients from stored integration settings.
type Service struct {
	accounts *accounts.Repository
	timeout  time.Duration
}

func NewService(accountsRepo *accounts.Repository, timeout time.Duration) *Service {
	return &Service{accounts: accountsRepo, timeout: timeout}
}

// clientFor builds a client from the user's stored settings. Returns
// ErrNotConfigured when the user never set up the integration.
func (s *Service) clientFor(ctx context.Context, userID uint) (*Client, error) {
	user, err := s.accounts.WithContext(ctx).GetByID(userID)
	if err != nil {
		return nil, err
	}
	return NewClient(user.ImmichServerURL, user.ImmichAPIKey, s.timeout)
}

// Configure validates the credentials against the server before storing them.
func (s *Service) Configure(ctx context.Context, userID uint, serverURL, apiKey string) error {
	if err := TestConnection(ctx, serverURL, apiKey, s.timeout); err != nil {
		return err
	}
	return s.accounts.WithContext(ctx).UpdateImmichSettings(userID, serverURL, apiKey)
}

// Status reports whether the integration is configured and reachable.
type Status struct {
	Configured bool   `json:"configured"`
	ServerURL  string `json:"server_url,omitempty"`
	Reachable  bool   `json:"reachable"`
}

// GetStatus probes the user's Immich server. A failed probe is a status, not
// an error.
func (s *Service) GetStatus(ctx context.Context, userID uint) (*Status, error) {
	user, err := s.accounts.WithContext(ctx).GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.ImmichServerURL == "" || user.ImmichAPIKey == "" {
		return &Status{}, nil
	}
	status := &Status{Configured: true, ServerURL: user.ImmichServerURL}
	if err := TestConnection(ctx, user.ImmichServerURL, user.ImmichAPIKey, s.timeout); err == nil {
		status.Reachable = true
	}
	return status, nil
}

// Search runs an asset search against the user's Immich server.
func (s *Service) Search(ctx context.Context, userID uint, query string, page, size int) ([]*Asset, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.SearchAssets(ctx, query, page, size)
}

// GetAsset fetches one asset's metadata from the user's Immich server.
func (s *Service) GetAsset(ctx context.Context, userID uint, assetID string) (*Asset, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.GetAsset(ctx, assetID)
}

// OpenThumbnail streams an asset thumbnail from the user's Immich server.
func (s *Service) OpenThumbnail(ctx context.Context, userID uint, assetID string) (io.ReadCloser, string, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return client.GetAssetThumbnail(ctx, assetID)
}
