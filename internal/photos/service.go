// Package photos implements photo management: local uploads through the
// storage provider, linking of Immich assets, listing and byte serving.
package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/base"
	"github.com/treklog/treklog/database/repo/photos"
	"github.com/treklog/treklog/internal/access"
	"github.com/treklog/treklog/internal/worker"
	"github.com/treklog/treklog/storage"
	"github.com/treklog/treklog/utils/validator"
	"gorm.io/gorm"
)

// ErrNotAnImage is returned when uploaded content fails image sniffing.
var ErrNotAnImage = errors.New("file is not a supported image type")

// Service is the photo service.
type Service struct {
	repo    *photos.Repository
	guard   *access.Guard
	storage storage.Provider
	pool    *worker.Pool

	thumbnailSize int
	useVips       bool
}

func NewService(repo *photos.Repository, guard *access.Guard, store storage.Provider, pool *worker.Pool, thumbnailSize int, useVips bool) *Service {
	if thumbnailSize <= 0 {
		thumbnailSize = 512
	}
	return &Service{
		repo:          repo,
		guard:         guard,
		storage:       store,
		pool:          pool,
		thumbnailSize: thumbnailSize,
		useVips:       useVips,
	}
}

// Upload stores a local photo: sniff content, write bytes through the
// storage provider, create the row, then enqueue dimension/thumbnail
// extraction. Post-processing failure never fails the upload.
func (s *Service) Upload(ctx context.Context, userID, tripID uint, originalName string, size int64, file io.ReadSeeker) (*View, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}

	ok, err := validator.IsImage(file)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff upload: %w", err)
	}
	if !ok {
		return nil, ErrNotAnImage
	}
	mimeType, err := validator.DetectMimeType(file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect mime type: %w", err)
	}

	identifier := uuid.NewString()
	storageKey := buildStorageKey(identifier, originalName)
	if err := s.storage.SaveWithContext(ctx, storageKey, file); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	photo := &models.Photo{
		TripID:       tripID,
		Identifier:   identifier,
		Source:       models.PhotoSourceLocal,
		OriginalName: originalName,
		MimeType:     mimeType,
		FileSize:     size,
		StorageKey:   storageKey,
	}
	if err := s.repo.WithContext(ctx).Create(photo); err != nil {
		// Best effort cleanup of the orphaned file.
		_ = s.storage.DeleteWithContext(ctx, storageKey)
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	if s.pool != nil {
		s.pool.Submit(&processTask{
			photoID:       photo.ID,
			identifier:    identifier,
			storageKey:    storageKey,
			repo:          s.repo,
			storage:       s.storage,
			thumbnailSize: s.thumbnailSize,
			useVips:       s.useVips,
		})
	}

	view := toView(photo)
	return &view, nil
}

// ListByTrip returns one page of a trip's photos.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID uint, page base.Params) (*ListView, error) {
	if _, err := s.guard.Trip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	page = page.Normalize(base.DefaultPhotoTake)
	items, total, err := s.repo.WithContext(ctx).ListByTrip(tripID, page.Skip, page.Take)
	if err != nil {
		return nil, err
	}
	views := make([]View, len(items))
	for i, p := range items {
		views[i] = toView(p)
	}
	return &ListView{
		Photos:  views,
		Total:   total,
		HasMore: base.HasMore(page.Skip, len(items), total),
	}, nil
}

// GetAuthorized resolves a photo by identifier and authorizes read access to
// its trip. The trip is returned so callers can act on behalf of its owner,
// for example when proxying Immich thumbnails.
func (s *Service) GetAuthorized(ctx context.Context, userID uint, identifier string) (*models.Photo, *models.Trip, error) {
	photo, err := s.repo.WithContext(ctx).GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, access.ErrNotFound
		}
		return nil, nil, err
	}
	trip, err := s.guard.Trip(ctx, userID, photo.TripID)
	if err != nil {
		return nil, nil, err
	}
	return photo, trip, nil
}

// OpenOriginal streams the local photo bytes. Only valid for local photos.
func (s *Service) OpenOriginal(ctx context.Context, photo *models.Photo) (io.ReadCloser, error) {
	if photo.Source != models.PhotoSourceLocal || photo.StorageKey == "" {
		return nil, access.ErrNotFound
	}
	return s.storage.GetWithContext(ctx, photo.StorageKey)
}

// OpenThumbnail streams the photo thumbnail; falls back to the original when
// no thumbnail was generated.
func (s *Service) OpenThumbnail(ctx context.Context, photo *models.Photo) (io.ReadCloser, error) {
	if photo.ThumbnailKey != "" {
		reader, err := s.storage.GetWithContext(ctx, photo.ThumbnailKey)
		if err == nil {
			return reader, nil
		}
	}
	return s.OpenOriginal(ctx, photo)
}

// Delete removes the photo row, its album assignments and its stored bytes.
func (s *Service) Delete(ctx context.Context, userID, photoID uint) error {
	photo, err := s.repo.WithContext(ctx).GetByID(photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.ErrNotFound
		}
		return err
	}
	if _, err := s.guard.TripForWrite(ctx, userID, photo.TripID); err != nil {
		return err
	}
	if err := s.repo.WithContext(ctx).Delete(photoID); err != nil {
		return err
	}

	// Storage cleanup is best effort; the row is already gone.
	if photo.Source == models.PhotoSourceLocal {
		if photo.StorageKey != "" {
			_ = s.storage.DeleteWithContext(ctx, photo.StorageKey)
		}
		if photo.ThumbnailKey != "" {
			_ = s.storage.DeleteWithContext(ctx, photo.ThumbnailKey)
		}
	}
	return nil
}

func buildStorageKey(identifier, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	if ext == "" || len(ext) > 8 {
		ext = ".bin"
	}
	return "photos/" + identifier + ext
}
