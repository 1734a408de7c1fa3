package photos

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/treklog/treklog/database/models"
)

// linkChunkSize bounds how many assets one insert statement carries, so a
// failing chunk only discards its own assets.
const linkChunkSize = 50

// AssetInput describes one Immich asset to link to a trip.
type AssetInput struct {
	AssetID      string     `json:"asset_id" binding:"required"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	TakenAt      *time.Time `json:"taken_at"`
}

// BatchResult is the outcome of a batch link call.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// LinkBatch links Immich assets to a trip. Assets already linked count as
// successful without inserting anything. Remaining assets are inserted in
// chunks so one bad chunk does not sink the whole batch.
func (s *Service) LinkBatch(ctx context.Context, userID, tripID uint, assets []AssetInput) (*BatchResult, error) {
	if _, err := s.guard.TripForWrite(ctx, userID, tripID); err != nil {
		return nil, err
	}

	result := &BatchResult{Total: len(assets)}
	if len(assets) == 0 {
		return result, nil
	}

	unique := dedupeAssets(assets)
	result.Total = len(unique)

	assetIDs := make([]string, len(unique))
	for i, a := range unique {
		assetIDs[i] = a.AssetID
	}
	linked, err := s.repo.WithContext(ctx).LinkedAssetIDs(tripID, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up linked assets: %w", err)
	}
	linkedSet := make(map[string]struct{}, len(linked))
	for _, id := range linked {
		linkedSet[id] = struct{}{}
	}
	// Idempotent re-links count as successful.
	result.Successful += len(linkedSet)

	var pending []AssetInput
	for _, a := range unique {
		if _, ok := linkedSet[a.AssetID]; ok {
			continue
		}
		pending = append(pending, a)
	}

	for start := 0; start < len(pending); start += linkChunkSize {
		end := start + linkChunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		rows := make([]*models.Photo, len(chunk))
		for i, a := range chunk {
			assetID := a.AssetID
			rows[i] = &models.Photo{
				TripID: tripID,
				// Identifiers are globally unique; the same asset may be
				// linked to several trips.
				Identifier:    fmt.Sprintf("immich-%d-%s", tripID, assetID),
				Source:        models.PhotoSourceImmich,
				ImmichAssetID: &assetID,
				OriginalName:  a.OriginalName,
				MimeType:      a.MimeType,
				Width:         a.Width,
				Height:        a.Height,
				TakenAt:       a.TakenAt,
			}
		}

		inserted, err := s.repo.WithContext(ctx).CreateBatch(rows)
		if err != nil {
			result.Failed += len(chunk)
			result.Errors = append(result.Errors,
				fmt.Sprintf("assets %d-%d: %v", start+1, end, err))
			log.Printf("Photo link chunk failed for trip %d: %v", tripID, err)
			continue
		}
		// Conflict-skipped rows were linked concurrently; still successful.
		if int(inserted) < len(chunk) {
			log.Printf("Photo link chunk for trip %d skipped %d concurrent duplicates", tripID, len(chunk)-int(inserted))
		}
		result.Successful += len(chunk)
	}

	return result, nil
}

func dedupeAssets(assets []AssetInput) []AssetInput {
	seen := make(map[string]struct{}, len(assets))
	out := make([]AssetInput, 0, len(assets))
	for _, a := range assets {
		if a.AssetID == "" {
			continue
		}
		if _, ok := seen[a.AssetID]; ok {
			continue
		}
		seen[a.AssetID] = struct{}{}
		out = append(out, a)
	}
	return out
}
