// Package trips implements trip lifecycle, collaborator management and the
// tag/companion associations.
package trips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/accounts"
	"github.com/treklog/treklog/database/repo/base"
	"github.com/treklog/treklog/database/repo/trips"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/gorm"
)

var (
	ErrInvalidPrivacy      = errors.New("invalid trip privacy level")
	ErrCollaboratorUnknown = errors.New("collaborator user not found")
	ErrCollaboratorIsOwner = errors.New("trip owner cannot be a collaborator")
)

// Service is the trip service.
type Service struct {
	repo         *trips.Repository
	accountsRepo *accounts.Repository
	guard        *access.Guard
}

func NewService(repo *trips.Repository, accountsRepo *accounts.Repository, guard *access.Guard) *Service {
	return &Service{repo: repo, accountsRepo: accountsRepo, guard: guard}
}

// CreateInput carries validated trip fields from the handler.
type CreateInput struct {
	Name        string
	Description string
	Privacy     string
	StartDate   *time.Time
	EndDate     *time.Time
	Tags        []string
	Companions  []string
}

func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*TripView, error) {
	privacy := in.Privacy
	if privacy == "" {
		privacy = models.TripPrivacyPrivate
	}
	if !models.ValidPrivacy(privacy) {
		return nil, ErrInvalidPrivacy
	}

	trip := &models.Trip{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Privacy:     privacy,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := s.repo.WithContext(ctx).Create(trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	if err := s.applyTags(ctx, trip, userID, in.Tags); err != nil {
		return nil, err
	}
	if err := s.applyCompanions(ctx, trip, userID, in.Companions); err != nil {
		return nil, err
	}

	full, err := s.repo.WithContext(ctx).GetByIDFull(trip.ID)
	if err != nil {
		return nil, err
	}
	view := toView(full)
	return &view, nil
}

// Get authorizes read access and returns the trip with its associations.
func (s *Service) Get(ctx context.Context, userID, tripID uint) (*TripView, error) {
	if _, err := s.guard.Trip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	trip, err := s.repo.WithContext(ctx).GetByIDFull(tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	view := toView(trip)
	return &view, nil
}

// List returns one page of the user's own trips.
func (s *Service) List(ctx context.Context, userID uint, page base.Params) (*ListView, error) {
	page = page.Normalize(base.DefaultTake)
	items, total, err := s.repo.WithContext(ctx).ListByUser(userID, page.Skip, page.Take)
	if err != nil {
		return nil, err
	}
	views := make([]TripView, len(items))
	for i, t := range items {
		views[i] = toView(t)
	}
	return &ListView{
		Trips:   views,
		Total:   total,
		HasMore: base.HasMore(page.Skip, len(items), total),
	}, nil
}

// UpdateInput carries optional trip updates; nil means leave unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Privacy     *string
	StartDate   *time.Time
	EndDate     *time.Time
	Tags        []string
	Companions  []string
}

func (s *Service) Update(ctx context.Context, userID, tripID uint, in UpdateInput) (*TripView, error) {
	trip, err := s.guard.TripOwner(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		trip.Name = *in.Name
	}
	if in.Description != nil {
		trip.Description = *in.Description
	}
	if in.Privacy != nil {
		if !models.ValidPrivacy(*in.Privacy) {
			return nil, ErrInvalidPrivacy
		}
		trip.Privacy = *in.Privacy
	}
	if in.StartDate != nil {
		trip.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		trip.EndDate = in.EndDate
	}

	if err := s.repo.WithContext(ctx).Update(trip); err != nil {
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}
	if in.Tags != nil {
		if err := s.applyTags(ctx, trip, userID, in.Tags); err != nil {
			return nil, err
		}
	}
	if in.Companions != nil {
		if err := s.applyCompanions(ctx, trip, userID, in.Companions); err != nil {
			return nil, err
		}
	}

	full, err := s.repo.WithContext(ctx).GetByIDFull(tripID)
	if err != nil {
		return nil, err
	}
	view := toView(full)
	return &view, nil
}

// Delete removes the trip and everything it owns. Owner only.
func (s *Service) Delete(ctx context.Context, userID, tripID uint) error {
	if _, err := s.guard.TripOwner(ctx, userID, tripID); err != nil {
		return err
	}
	return s.repo.WithContext(ctx).Delete(tripID)
}

// AddCollaborator grants the named user access to the trip. Owner only.
func (s *Service) AddCollaborator(ctx context.Context, userID, tripID uint, username string) error {
	trip, err := s.guard.TripOwner(ctx, userID, tripID)
	if err != nil {
		return err
	}
	user, err := s.accountsRepo.WithContext(ctx).GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollaboratorUnknown
		}
		return err
	}
	if user.ID == trip.UserID {
		return ErrCollaboratorIsOwner
	}
	return s.repo.WithContext(ctx).AddCollaborator(tripID, user)
}

// RemoveCollaborator revokes the user's access. Owner only.
func (s *Service) RemoveCollaborator(ctx context.Context, userID, tripID, collaboratorID uint) error {
	if _, err := s.guard.TripOwner(ctx, userID, tripID); err != nil {
		return err
	}
	user, err := s.accountsRepo.WithContext(ctx).GetByID(collaboratorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollaboratorUnknown
		}
		return err
	}
	return s.repo.WithContext(ctx).RemoveCollaborator(tripID, user)
}

func (s *Service) applyTags(ctx context.Context, trip *models.Trip, userID uint, names []string) error {
	if names == nil {
		return nil
	}
	tags := make([]*models.Tag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, err := s.repo.WithContext(ctx).FindOrCreateTag(userID, name)
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return s.repo.WithContext(ctx).ReplaceTags(trip, tags)
}

func (s *Service) applyCompanions(ctx context.Context, trip *models.Trip, userID uint, names []string) error {
	if names == nil {
		return nil
	}
	companions := make([]*models.Companion, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		companion, err := s.repo.WithContext(ctx).FindOrCreateCompanion(userID, name)
		if err != nil {
			return fmt.Errorf("failed to resolve companion %q: %w", name, err)
		}
		companions = append(companions, companion)
	}
	return s.repo.WithContext(ctx).ReplaceCompanions(trip, companions)
}
