// Package journal implements trip journal entries.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/base"
	"github.com/treklog/treklog/database/repo/itinerary"
	"github.com/treklog/treklog/internal/access"
	"gorm.io/gorm"
)

// Service is the journal entry service.
type Service struct {
	repo  *itinerary.JournalRepository
	guard *access.Guard
}

func NewService(repo *itinerary.JournalRepository, guard *access.Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// Input carries journal entry create/update fields.
type Input struct {
	Title     string     `json:"title" binding:"required,max=200"`
	Content   string     `json:"content"`
	EntryDate *time.Time `json:"entry_date"`
}

func (s *Service) Create(ctx context.Context, userID, tripID uint, in Input) (*models.JournalEntry, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}
	entry := &models.JournalEntry{
		TripID:    tripID,
		Title:     in.Title,
		Content:   in.Content,
		EntryDate: in.EntryDate,
	}
	if err := s.repo.WithContext(ctx).Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}
	return entry, nil
}

func (s *Service) getAuthorized(ctx context.Context, userID, id uint, write bool) (*models.JournalEntry, error) {
	entry, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if write {
		_, err = s.guard.TripForWrite(ctx, userID, entry.TripID)
	} else {
		_, err = s.guard.Trip(ctx, userID, entry.TripID)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) Get(ctx context.Context, userID, id uint) (*models.JournalEntry, error) {
	return s.getAuthorized(ctx, userID, id, false)
}

// ListByTrip returns one page of a trip's journal, ordered by entry date.
func (s *Service) ListByTrip(ctx context.Context, userID, tripID uint, page base.Params) ([]*models.JournalEntry, int64, bool, error) {
	if _, err := s.guard.Trip(ctx, userID, tripID); err != nil {
		return nil, 0, false, err
	}
	page = page.Normalize(base.DefaultTake)
	items, total, err := s.repo.WithContext(ctx).ListByTrip(tripID, page.Skip, page.Take)
	if err != nil {
		return nil, 0, false, err
	}
	return items, total, base.HasMore(page.Skip, len(items), total), nil
}

func (s *Service) Update(ctx context.Context, userID, id uint, in Input) (*models.JournalEntry, error) {
	entry, err := s.getAuthorized(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}
	entry.Title = in.Title
	entry.Content = in.Content
	entry.EntryDate = in.EntryDate
	if err := s.repo.WithContext(ctx).Update(entry); err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.getAuthorized(ctx, userID, id, true); err != nil {
		return err
	}
	return s.repo.WithContext(ctx).Delete(id)
}
