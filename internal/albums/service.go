// Package albums implements photo album management: the album/photo
// aggregate, idempotent photo assignment and cover selection.
package albums

import (
	"context"
	"errors"
	"fmt"

	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/albums"
	"github.com/treklog/treklog/database/repo/base"
	"github.com/treklog/treklog/database/repo/photos"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/gorm"
)

var (
	// ErrPhotoNotInTrip means at least one photo id does not belong to the
	// album's trip. The whole operation fails; no partial assignment.
	ErrPhotoNotInTrip = errors.New("photo does not belong to the album's trip")

	// ErrPhotoNotInAlbum means the photo is not assigned to the album.
	ErrPhotoNotInAlbum = errors.New("photo is not in the album")
)

// Service is the photo album service.
type Service struct {
	repo      *albums.Repository
	photoRepo *photos.Repository
	guard     *access.Guard
}

func NewService(repo *albums.Repository, photoRepo *photos.Repository, guard *access.Guard) *Service {
	return &Service{repo: repo, photoRepo: photoRepo, guard: guard}
}

func (s *Service) Create(ctx context.Context, userID, tripID uint, name, description string) (*models.PhotoAlbum, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}
	album := &models.PhotoAlbum{TripID: tripID, Name: name, Description: description}
	if err := s.repo.WithContext(ctx).Create(album); err != nil {
		return nil, fmt.Errorf("failed to create album: %w", err)
	}
	return album, nil
}

// getAuthorized resolves the album and authorizes its trip.
func (s *Service) getAuthorized(ctx context.Context, userID, albumID uint, write bool) (*models.PhotoAlbum, error) {
	album, err := s.repo.WithContext(ctx).GetByID(albumID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if write {
		_, err = s.guard.TripForWrite(ctx, userID, album.TripID)
	} else {
		_, err = s.guard.Trip(ctx, userID, album.TripID)
	}
	if err != nil {
		return nil, err
	}
	return album, nil
}

// Get returns the album with one page of its photos. Total and hasMore are
// computed from the full assignment count, not the page size.
func (s *Service) Get(ctx context.Context, userID, albumID uint, page base.Params) (*AlbumView, error) {
	album, err := s.getAuthorized(ctx, userID, albumID, false)
	if err != nil {
		return nil, err
	}

	page = page.Normalize(base.DefaultPhotoTake)
	total, err := s.repo.WithContext(ctx).CountPhotos(albumID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.WithContext(ctx).ListAssignments(albumID, page.Skip, page.Take)
	if err != nil {
		return nil, err
	}

	view := toAlbumView(album, assignments, total, base.HasMore(page.Skip, len(assignments), total))
	return &view, nil
}

// ListByTrip returns one page of a trip's albums with photo counts.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID uint, page base.Params) (*AlbumListView, error) {
	if _, err := s.guard.Trip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	page = page.Normalize(base.DefaultTake)
	items, total, err := s.repo.WithContext(ctx).ListByTrip(tripID, page.Skip, page.Take)
	if err != nil {
		return nil, err
	}

	albumIDs := make([]uint, len(items))
	for i, a := range items {
		albumIDs[i] = a.ID
	}
	counts, err := s.repo.WithContext(ctx).CountPhotosForAlbums(albumIDs)
	if err != nil {
		return nil, err
	}

	views := make([]AlbumSummaryView, len(items))
	for i, a := range items {
		views[i] = toSummaryView(a, counts[a.ID])
	}
	return &AlbumListView{
		Albums:  views,
		Total:   total,
		HasMore: base.HasMore(page.Skip, len(items), total),
	}, nil
}

func (s *Service) Update(ctx context.Context, userID, albumID uint, name, description *string) (*models.PhotoAlbum, error) {
	album, err := s.getAuthorized(ctx, userID, albumID, true)
	if err != nil {
		return nil, err
	}
	if name != nil {
		album.Name = *name
	}
	if description != nil {
		album.Description = *description
	}
	if err := s.repo.WithContext(ctx).Update(album); err != nil {
		return nil, fmt.Errorf("failed to update album: %w", err)
	}
	return album, nil
}

func (s *Service) Delete(ctx context.Context, userID, albumID uint) error {
	if _, err := s.getAuthorized(ctx, userID, albumID, true); err != nil {
		return err
	}
	return s.repo.WithContext(ctx).Delete(albumID)
}

// AddPhotos assigns photos to the album. Every photo id must belong to the
// album's trip or the whole call fails. Photos already in the album are
// counted as eligible but not inserted twice.
func (s *Service) AddPhotos(ctx context.Context, userID, albumID uint, photoIDs []uint) (int, error) {
	album, err := s.getAuthorized(ctx, userID, albumID, true)
	if err != nil {
		return 0, err
	}
	if len(photoIDs) == 0 {
		return 0, nil
	}

	unique := dedupe(photoIDs)

	// All-or-nothing referential check against the album's trip.
	count, err := s.photoRepo.WithContext(ctx).CountBelongingToTrip(unique, album.TripID)
	if err != nil {
		return 0, err
	}
	if count != int64(len(unique)) {
		return 0, ErrPhotoNotInTrip
	}

	assigned, err := s.repo.WithContext(ctx).AssignedPhotoIDs(albumID, unique)
	if err != nil {
		return 0, err
	}
	assignedSet := make(map[uint]struct{}, len(assigned))
	for _, id := range assigned {
		assignedSet[id] = struct{}{}
	}

	var assignments []*models.PhotoAlbumAssignment
	for _, id := range unique {
		if _, ok := assignedSet[id]; ok {
			continue
		}
		assignments = append(assignments, &models.PhotoAlbumAssignment{AlbumID: albumID, PhotoID: id})
	}
	if err := s.repo.WithContext(ctx).CreateAssignments(assignments); err != nil {
		return 0, fmt.Errorf("failed to assign photos: %w", err)
	}

	// Eligible count includes silently skipped duplicates.
	return len(unique), nil
}

// RemovePhoto removes one photo from the album. Removing a photo that is not
// in the album reports ErrPhotoNotInAlbum and touches nothing else.
func (s *Service) RemovePhoto(ctx context.Context, userID, albumID, photoID uint) error {
	if _, err := s.getAuthorized(ctx, userID, albumID, true); err != nil {
		return err
	}
	removed, err := s.repo.WithContext(ctx).DeleteAssignment(albumID, photoID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrPhotoNotInAlbum
	}
	return nil
}

// SetCover designates a cover photo, which must belong to the album's trip.
func (s *Service) SetCover(ctx context.Context, userID, albumID, photoID uint) error {
	album, err := s.getAuthorized(ctx, userID, albumID, true)
	if err != nil {
		return err
	}
	count, err := s.photoRepo.WithContext(ctx).CountBelongingToTrip([]uint{photoID}, album.TripID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPhotoNotInTrip
	}
	album.CoverPhotoID = &photoID
	return s.repo.WithContext(ctx).Update(album)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
