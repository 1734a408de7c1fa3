package backup

import "time"

// ArchiveVersion is the current archive format version.
const ArchiveVersion = 1

// Archive is the full export of one user's travel data. Cross references are
// expressed positionally (location indexes) or by identifier (photos) so an
// archive can be restored into a database with different primary keys.
type Archive struct {
	Version    int           `json:"version" mapstructure:"version"`
	ExportedAt time.Time     `json:"exported_at" mapstructure:"exported_at"`
	Trips      []TripArchive `json:"trips" mapstructure:"trips"`
}

type TripArchive struct {
	Name        string     `json:"name" mapstructure:"name"`
	Description string     `json:"description" mapstructure:"description"`
	Privacy     string     `json:"privacy" mapstructure:"privacy"`
	StartDate   *time.Time `json:"start_date" mapstructure:"start_date"`
	EndDate     *time.Time `json:"end_date" mapstructure:"end_date"`
	Tags        []string   `json:"tags" mapstructure:"tags"`
	Companions  []string   `json:"companions" mapstructure:"companions"`

	Locations      []LocationArchive  `json:"locations" mapstructure:"locations"`
	Photos         []PhotoArchive     `json:"photos" mapstructure:"photos"`
	Albums         []AlbumArchive     `json:"albums" mapstructure:"albums"`
	Transportation []TransportArchive `json:"transportation" mapstructure:"transportation"`
	Activities     []ActivityArchive  `json:"activities" mapstructure:"activities"`
	Lodging        []LodgingArchive   `json:"lodging" mapstructure:"lodging"`
	Journal        []JournalArchive   `json:"journal" mapstructure:"journal"`
}

type LocationArchive struct {
	Name      string   `json:"name" mapstructure:"name"`
	Address   string   `json:"address" mapstructure:"address"`
	Latitude  *float64 `json:"latitude" mapstructure:"latitude"`
	Longitude *float64 `json:"longitude" mapstructure:"longitude"`
}

type PhotoArchive struct {
	Identifier    string     `json:"identifier" mapstructure:"identifier"`
	Source        string     `json:"source" mapstructure:"source"`
	ImmichAssetID *string    `json:"immich_asset_id" mapstructure:"immich_asset_id"`
	OriginalName  string     `json:"original_name" mapstructure:"original_name"`
	MimeType      string     `json:"mime_type" mapstructure:"mime_type"`
	FileSize      int64      `json:"file_size" mapstructure:"file_size"`
	Width         int        `json:"width" mapstructure:"width"`
	Height        int        `json:"height" mapstructure:"height"`
	TakenAt       *time.Time `json:"taken_at" mapstructure:"taken_at"`
	StorageKey    string     `json:"storage_key" mapstructure:"storage_key"`
	ThumbnailKey  string     `json:"thumbnail_key" mapstructure:"thumbnail_key"`
}

type AlbumArchive struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	// Cover and membership reference photos by identifier.
	CoverPhoto string   `json:"cover_photo,omitempty" mapstructure:"cover_photo"`
	Photos     []string `json:"photos" mapstructure:"photos"`
}

type TransportArchive struct {
	Mode string `json:"mode" mapstructure:"mode"`
	Name string `json:"name" mapstructure:"name"`
	// Endpoints are indexes into the trip's locations array; nil when unset.
	FromLocation *int `json:"from_location" mapstructure:"from_location"`
	ToLocation   *int `json:"to_location" mapstructure:"to_location"`

	DepartAt *time.Time `json:"depart_at" mapstructure:"depart_at"`
	ArriveAt *time.Time `json:"arrive_at" mapstructure:"arrive_at"`

	CalculatedDistanceKm  *float64 `json:"calculated_distance_km" mapstructure:"calculated_distance_km"`
	CalculatedDurationMin *float64 `json:"calculated_duration_min" mapstructure:"calculated_duration_min"`
	DistanceSource        string   `json:"distance_source" mapstructure:"distance_source"`
	RouteGeometry         string   `json:"route_geometry" mapstructure:"route_geometry"`
}

type ActivityArchive struct {
	Name        string     `json:"name" mapstructure:"name"`
	Description string     `json:"description" mapstructure:"description"`
	Location    *int       `json:"location" mapstructure:"location"`
	StartAt     *time.Time `json:"start_at" mapstructure:"start_at"`
	EndAt       *time.Time `json:"end_at" mapstructure:"end_at"`
	CostCents   *int64     `json:"cost_cents" mapstructure:"cost_cents"`
}

type LodgingArchive struct {
	Name      string     `json:"name" mapstructure:"name"`
	Location  *int       `json:"location" mapstructure:"location"`
	CheckIn   *time.Time `json:"check_in" mapstructure:"check_in"`
	CheckOut  *time.Time `json:"check_out" mapstructure:"check_out"`
	CostCents *int64     `json:"cost_cents" mapstructure:"cost_cents"`
}

type JournalArchive struct {
	Title     string     `json:"title" mapstructure:"title"`
	Content   string     `json:"content" mapstructure:"content"`
	EntryDate *time.Time `json:"entry_date" mapstructure:"entry_date"`
}
