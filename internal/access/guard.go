// Package access implements the single ownership/privacy check used by every
// trip-owned entity service.
package access

import (
	"context"
	"errors"

	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/trips"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the trip (or the entity carrying the trip
	// reference) does not resolve at all. Maps to 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the trip exists but the caller lacks the required
	// relationship. Maps to 403.
	ErrForbidden = errors.New("forbidden")
)

// Guard evaluates trip access rules. Every call hits the database; results
// are never cached, so collaborator and privacy changes take effect
// immediately.
type Guard struct {
	repo *trips.Repository
}

func NewGuard(repo *trips.Repository) *Guard {
	return &Guard{repo: repo}
}

// Trip authorizes read access: owner, public trip, or collaborator on a
// shared trip.
func (g *Guard) Trip(ctx context.Context, userID, tripID uint) (*models.Trip, error) {
	trip, err := g.repo.WithContext(ctx).GetByID(tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if trip.UserID == userID {
		return trip, nil
	}
	switch trip.Privacy {
	case models.TripPrivacyPublic:
		return trip, nil
	case models.TripPrivacyShared:
		ok, err := g.repo.WithContext(ctx).IsCollaborator(tripID, userID)
		if err != nil {
			return nil, err
		}
		if ok {
			return trip, nil
		}
	}
	return nil, ErrForbidden
}

// TripForWrite authorizes writes to trip-owned children: the owner always,
// collaborators only on shared trips. Public visibility never grants writes.
func (g *Guard) TripForWrite(ctx context.Context, userID, tripID uint) (*models.Trip, error) {
	trip, err := g.repo.WithContext(ctx).GetByID(tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if trip.UserID == userID {
		return trip, nil
	}
	if trip.Privacy == models.TripPrivacyShared {
		ok, err := g.repo.WithContext(ctx).IsCollaborator(tripID, userID)
		if err != nil {
			return nil, err
		}
		if ok {
			return trip, nil
		}
	}
	return nil, ErrForbidden
}

// TripOwner authorizes trip lifecycle operations (update/delete of the trip
// itself, collaborator management): owner only.
func (g *Guard) TripOwner(ctx context.Context, userID, tripID uint) (*models.Trip, error) {
	trip, err := g.repo.WithContext(ctx).GetByID(tripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if trip.UserID != userID {
		return nil, ErrForbidden
	}
	return trip, nil
}
