// Package backup implements full export and transactional restore of one
// user's travel data.
package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/treklog/treklog/database"
	"github.com/treklog/treklog/database/models"
	"gorm.io/gorm"
)

// restoreTimeout bounds the single restore transaction.
const restoreTimeout = 300 * time.Second

var (
	// ErrUnsupportedVersion is returned for archives newer than this build.
	ErrUnsupportedVersion = errors.New("unsupported archive version")

	// ErrInvalidArchive is returned when the archive cannot be decoded or
	// fails referential validation.
	ErrInvalidArchive = errors.New("invalid archive")
)

// Service is the backup service. It works on the raw connection rather than
// the per-entity repositories because export and restore are whole-graph
// operations inside one transaction.
type Service struct {
	db *database.Provider
}

func NewService(db *database.Provider) *Service {
	return &Service{db: db}
}

// DecodeArchive decodes a loosely typed JSON document into an Archive.
func DecodeArchive(raw map[string]interface{}) (*Archive, error) {
	var archive Archive
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:     &archive,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	return &archive, nil
}

// Export collects the user's complete travel data into an archive.
func (s *Service) Export(ctx context.Context, userID uint) (*Archive, error) {
	db := s.db.WithContext(ctx)

	var trips []*models.Trip
	err := db.Preload("Tags").Preload("Companions").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	archive := &Archive{
		Version:    ArchiveVersion,
		ExportedAt: time.Now().UTC(),
		Trips:      make([]TripArchive, 0, len(trips)),
	}
	for _, trip := range trips {
		ta, err := s.exportTrip(db, trip)
		if err != nil {
			return nil, err
		}
		archive.Trips = append(archive.Trips, *ta)
	}
	return archive, nil
}

func (s *Service) exportTrip(db *gorm.DB, trip *models.Trip) (*TripArchive, error) {
	ta := &TripArchive{
		Name:        trip.Name,
		Description: trip.Description,
		Privacy:     trip.Privacy,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
	}
	for _, t := range trip.Tags {
		ta.Tags = append(ta.Tags, t.Name)
	}
	for _, c := range trip.Companions {
		ta.Companions = append(ta.Companions, c.Name)
	}

	var locs []*models.Location
	if err := db.Where("trip_id = ?", trip.ID).Order("created_at ASC").Find(&locs).Error; err != nil {
		return nil, err
	}
	// Location indexes in the archive follow this ordering.
	locIndex := make(map[uint]int, len(locs))
	for i, loc := range locs {
		locIndex[loc.ID] = i
		ta.Locations = append(ta.Locations, LocationArchive{
			Name:      loc.Name,
			Address:   loc.Address,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}
	toIndex := func(id *uint) *int {
		if id == nil {
			return nil
		}
		if i, ok := locIndex[*id]; ok {
			return &i
		}
		return nil
	}

	var photos []*models.Photo
	if err := db.Where("trip_id = ?", trip.ID).Order("created_at ASC").Find(&photos).Error; err != nil {
		return nil, err
	}
	photoIdentifier := make(map[uint]string, len(photos))
	for _, p := range photos {
		photoIdentifier[p.ID] = p.Identifier
		ta.Photos = append(ta.Photos, PhotoArchive{
			Identifier:    p.Identifier,
			Source:        p.Source,
			ImmichAssetID: p.ImmichAssetID,
			OriginalName:  p.OriginalName,
			MimeType:      p.MimeType,
			FileSize:      p.FileSize,
			Width:         p.Width,
			Height:        p.Height,
			TakenAt:       p.TakenAt,
			StorageKey:    p.StorageKey,
			ThumbnailKey:  p.ThumbnailKey,
		})
	}

	var albums []*models.PhotoAlbum
	if err := db.Where("trip_id = ?", trip.ID).Order("created_at ASC").Find(&albums).Error; err != nil {
		return nil, err
	}
	for _, album := range albums {
		aa := AlbumArchive{Name: album.Name, Description: album.Description}
		if album.CoverPhotoID != nil {
			aa.CoverPhoto = photoIdentifier[*album.CoverPhotoID]
		}
		var assignments []*models.PhotoAlbumAssignment
		if err := db.Where("album_id = ?", album.ID).Order("created_at ASC").Find(&assignments).Error; err != nil {
			return nil, err
		}
		for _, a := range assignments {
			if identifier, ok := photoIdentifier[a.PhotoID]; ok {
				aa.Photos = append(aa.Photos, identifier)
			}
		}
		ta.Albums = append(ta.Albums, aa)
	}

	var legs []*models.Transportation
	if err := db.Where("trip_id = ?", trip.ID).Order("created_at ASC").Find(&legs).Error; err != nil {
		return nil, err
	}
	for _, leg := range legs {
		ta.Transportation = append(ta.Transportation, TransportArchive{
			Mode:                  leg.Mode,
			Name:                  leg.Name,
			FromLocation:          toIndex(leg.FromLocationID),
			ToLocation:            toIndex(leg.ToLocationID),
			DepartAt:              leg.DepartAt,
			ArriveAt:              leg.ArriveAt,
			CalculatedDistanceKm:  leg.CalculatedDistanceKm,
			CalculatedDurationMin: leg.CalculatedDurationMin,
			DistanceSource:        leg.DistanceSource,
			RouteGeometry:         leg.RouteGeometry,
		})
	}

	var activities []*models.Activity
	if err := db.Where("trip_id = ?", trip.ID).Order("created_at ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	for _, a := range activities {
		ta.Activities = append(ta.Activities, ActivityArchive{
			Name:        a.Name,
			Description: a.Description,
			Location:    toIndex(a.LocationID),
			StartAt:     a.StartAt,
			EndAt:       a.EndAt,
			CostCents:   a.CostCents,
		})
	}

	var stays []*models.Lodging
	if err := db.Where("trip_id = ?", trip.ID).Order("created_at ASC").Find(&stays).Error; err != nil {
		return nil, err
	}
	for _, l := range stays {
		ta.Lodging = append(ta.Lodging, LodgingArchive{
			Name:      l.Name,
			Location:  toIndex(l.LocationID),
			CheckIn:   l.CheckIn,
			CheckOut:  l.CheckOut,
			CostCents: l.CostCents,
		})
	}

	var entries []*models.JournalEntry
	if err := db.Where("trip_id = ?", trip.ID).Order("entry_date ASC, created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	for _, e := range entries {
		ta.Journal = append(ta.Journal, JournalArchive{
			Title:     e.Title,
			Content:   e.Content,
			EntryDate: e.EntryDate,
		})
	}

	return ta, nil
}

// RestoreResult summarizes a completed restore.
type RestoreResult struct {
	Trips  int `json:"trips"`
	Photos int `json:"photos"`
}

// Restore imports an archive into the user's account. The whole import runs
// in one transaction: any failure rolls everything back, including the
// clear-existing deletion.
func (s *Service) Restore(ctx context.Context, userID uint, archive *Archive, clearExisting bool) (*RestoreResult, error) {
	if archive.Version > ArchiveVersion {
		return nil, ErrUnsupportedVersion
	}
	if err := validateArchive(archive); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, restoreTimeout)
	defer cancel()

	result := &RestoreResult{}
	err := s.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if clearExisting {
			if err := deleteUserTrips(tx, userID); err != nil {
				return fmt.Errorf("failed to clear existing data: %w", err)
			}
		}
		for i := range archive.Trips {
			photos, err := restoreTrip(tx, userID, &archive.Trips[i])
			if err != nil {
				return fmt.Errorf("failed to restore trip %q: %w", archive.Trips[i].Name, err)
			}
			result.Trips++
			result.Photos += photos
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateArchive(archive *Archive) error {
	for _, ta := range archive.Trips {
		if ta.Name == "" {
			return fmt.Errorf("%w: trip without a name", ErrInvalidArchive)
		}
		if ta.Privacy != "" && !models.ValidPrivacy(ta.Privacy) {
			return fmt.Errorf("%w: unknown privacy %q", ErrInvalidArchive, ta.Privacy)
		}
		locs := len(ta.Locations)
		checkIndex := func(idx *int) error {
			if idx != nil && (*idx < 0 || *idx >= locs) {
				return fmt.Errorf("%w: location index %d out of range", ErrInvalidArchive, *idx)
			}
			return nil
		}
		for _, leg := range ta.Transportation {
			if !models.ValidTransportMode(leg.Mode) {
				return fmt.Errorf("%w: unknown transport mode %q", ErrInvalidArchive, leg.Mode)
			}
			if err := checkIndex(leg.FromLocation); err != nil {
				return err
			}
			if err := checkIndex(leg.ToLocation); err != nil {
				return err
			}
		}
		for _, a := range ta.Activities {
			if err := checkIndex(a.Location); err != nil {
				return err
			}
		}
		for _, l := range ta.Lodging {
			if err := checkIndex(l.Location); err != nil {
				return err
			}
		}
	}
	return nil
}

// deleteUserTrips removes every trip the user owns with all children. Runs
// inside the restore transaction.
func deleteUserTrips(tx *gorm.DB, userID uint) error {
	var tripIDs []uint
	if err := tx.Model(&models.Trip{}).Where("user_id = ?", userID).
		Pluck("id", &tripIDs).Error; err != nil {
		return err
	}
	if len(tripIDs) == 0 {
		return nil
	}

	var albumIDs []uint
	if err := tx.Model(&models.PhotoAlbum{}).Where("trip_id IN ?", tripIDs).
		Pluck("id", &albumIDs).Error; err != nil {
		return err
	}
	if len(albumIDs) > 0 {
		if err := tx.Unscoped().Where("album_id IN ?", albumIDs).
			Delete(&models.PhotoAlbumAssignment{}).Error; err != nil {
			return err
		}
	}
	children := []interface{}{
		&models.PhotoAlbum{},
		&models.Photo{},
		&models.Transportation{},
		&models.Activity{},
		&models.Lodging{},
		&models.JournalEntry{},
		&models.Location{},
	}
	for _, child := range children {
		if err := tx.Where("trip_id IN ?", tripIDs).Delete(child).Error; err != nil {
			return err
		}
	}
	for _, tripID := range tripIDs {
		trip := models.Trip{}
		trip.ID = tripID
		for _, assoc := range []string{"Collaborators", "Tags", "Companions"} {
			if err := tx.Model(&trip).Association(assoc).Clear(); err != nil {
				return err
			}
		}
	}
	return tx.Delete(&models.Trip{}, tripIDs).Error
}

func restoreTrip(tx *gorm.DB, userID uint, ta *TripArchive) (int, error) {
	privacy := ta.Privacy
	if privacy == "" {
		privacy = models.TripPrivacyPrivate
	}
	trip := &models.Trip{
		UserID:      userID,
		Name:        ta.Name,
		Description: ta.Description,
		Privacy:     privacy,
		StartDate:   ta.StartDate,
		EndDate:     ta.EndDate,
	}
	if err := tx.Create(trip).Error; err != nil {
		return 0, err
	}

	for _, name := range ta.Tags {
		var tag models.Tag
		if err := tx.Where(models.Tag{UserID: userID, Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return 0, err
		}
		if err := tx.Model(trip).Association("Tags").Append(&tag); err != nil {
			return 0, err
		}
	}
	for _, name := range ta.Companions {
		var companion models.Companion
		if err := tx.Where(models.Companion{UserID: userID, Name: name}).FirstOrCreate(&companion).Error; err != nil {
			return 0, err
		}
		if err := tx.Model(trip).Association("Companions").Append(&companion); err != nil {
			return 0, err
		}
	}

	locIDs := make([]uint, len(ta.Locations))
	for i, la := range ta.Locations {
		loc := &models.Location{
			TripID:    trip.ID,
			Name:      la.Name,
			Address:   la.Address,
			Latitude:  la.Latitude,
			Longitude: la.Longitude,
		}
		if err := tx.Create(loc).Error; err != nil {
			return 0, err
		}
		locIDs[i] = loc.ID
	}
	fromIndex := func(idx *int) *uint {
		if idx == nil {
			return nil
		}
		id := locIDs[*idx]
		return &id
	}

	photoIDs := make(map[string]uint, len(ta.Photos))
	for _, pa := range ta.Photos {
		photo := &models.Photo{
			TripID:        trip.ID,
			Identifier:    pa.Identifier,
			Source:        pa.Source,
			ImmichAssetID: pa.ImmichAssetID,
			OriginalName:  pa.OriginalName,
			MimeType:      pa.MimeType,
			FileSize:      pa.FileSize,
			Width:         pa.Width,
			Height:        pa.Height,
			TakenAt:       pa.TakenAt,
			StorageKey:    pa.StorageKey,
			ThumbnailKey:  pa.ThumbnailKey,
		}
		if err := tx.Create(photo).Error; err != nil {
			return 0, err
		}
		photoIDs[pa.Identifier] = photo.ID
	}

	for _, aa := range ta.Albums {
		album := &models.PhotoAlbum{
			TripID:      trip.ID,
			Name:        aa.Name,
			Description: aa.Description,
		}
		if coverID, ok := photoIDs[aa.CoverPhoto]; ok && aa.CoverPhoto != "" {
			album.CoverPhotoID = &coverID
		}
		if err := tx.Create(album).Error; err != nil {
			return 0, err
		}
		for _, identifier := range aa.Photos {
			photoID, ok := photoIDs[identifier]
			if !ok {
				continue
			}
			assignment := &models.PhotoAlbumAssignment{AlbumID: album.ID, PhotoID: photoID}
			if err := tx.Create(assignment).Error; err != nil {
				return 0, err
			}
		}
	}

	for _, la := range ta.Transportation {
		leg := &models.Transportation{
			TripID:                trip.ID,
			Mode:                  la.Mode,
			Name:                  la.Name,
			FromLocationID:        fromIndex(la.FromLocation),
			ToLocationID:          fromIndex(la.ToLocation),
			DepartAt:              la.DepartAt,
			ArriveAt:              la.ArriveAt,
			CalculatedDistanceKm:  la.CalculatedDistanceKm,
			CalculatedDurationMin: la.CalculatedDurationMin,
			DistanceSource:        la.DistanceSource,
			RouteGeometry:         la.RouteGeometry,
		}
		if err := tx.Create(leg).Error; err != nil {
			return 0, err
		}
	}
	for _, aa := range ta.Activities {
		activity := &models.Activity{
			TripID:      trip.ID,
			Name:        aa.Name,
			Description: aa.Description,
			LocationID:  fromIndex(aa.Location),
			StartAt:     aa.StartAt,
			EndAt:       aa.EndAt,
			CostCents:   aa.CostCents,
		}
		if err := tx.Create(activity).Error; err != nil {
			return 0, err
		}
	}
	for _, la := range ta.Lodging {
		stay := &models.Lodging{
			TripID:     trip.ID,
			Name:       la.Name,
			LocationID: fromIndex(la.Location),
			CheckIn:    la.CheckIn,
			CheckOut:   la.CheckOut,
			CostCents:  la.CostCents,
		}
		if err := tx.Create(stay).Error; err != nil {
			return 0, err
		}
	}
	for _, ja := range ta.Journal {
		entry := &models.JournalEntry{
			TripID:    trip.ID,
			Title:     ja.Title,
			Content:   ja.Content,
			EntryDate: ja.EntryDate,
		}
		if err := tx.Create(entry).Error; err != nil {
			return 0, err
		}
	}

	return len(ta.Photos), nil
}
