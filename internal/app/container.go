// Package app wires the application together: configuration, database,
// cache, storage, worker pool and every domain service.
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/treklog/treklog/cache"
	"github.com/treklog/treklog/config"
	"github.com/treklog/treklog/database"
	"github.com/treklog/treklog/database/repo/accounts"
	"github.com/treklog/treklog/database/repo/albums"
	"github.com/treklog/treklog/database/repo/itinerary"
	"github.com/treklog/treklog/database/repo/locations"
	"github.com/treklog/treklog/database/repo/photos"
	"github.com/treklog/treklog/database/repo/trips"
	"github.com/treklog/treklog/internal/access"
	svcActivities "github.com/treklog/treklog/internal/activities"
	svcAlbums "github.com/treklog/treklog/internal/albums"
	"github.com/treklog/treklog/internal/auth"
	svcBackup "github.com/treklog/treklog/internal/backup"
	svcImmich "github.com/treklog/treklog/internal/immich"
	svcJournal "github.com/treklog/treklog/internal/journal"
	svcLocations "github.com/treklog/treklog/internal/locations"
	svcLodging "github.com/treklog/treklog/internal/lodging"
	svcPhotos "github.com/treklog/treklog/internal/photos"
	"github.com/treklog/treklog/internal/routing"
	svcTransport "github.com/treklog/treklog/internal/transport"
	svcTrips "github.com/treklog/treklog/internal/trips"
	"github.com/treklog/treklog/internal/worker"
	"github.com/treklog/treklog/storage"
)

// Container holds every initialized dependency of the application.
type Container struct {
	Config  *config.Config
	DB      *database.Provider
	Cache   cache.Provider
	Storage storage.Provider
	Pool    *worker.Pool

	JWTService   *auth.JWTService
	LoginService *auth.LoginService

	AccountsRepo *accounts.Repository

	Trips      *svcTrips.Service
	Locations  *svcLocations.Service
	Photos     *svcPhotos.Service
	Albums     *svcAlbums.Service
	Transport  *svcTransport.Service
	Activities *svcActivities.Service
	Lodging    *svcLodging.Service
	Journal    *svcJournal.Service
	Immich     *svcImmich.Service
	Backup     *svcBackup.Service
}

// New builds the full dependency graph.
func New(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	cacheProvider, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.Cache = cacheProvider
	log.Printf("Cache provider: %s", cacheProvider.Name())

	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store
	log.Printf("Storage provider: %s", store.Name())

	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	c.JWTService = jwtService

	c.Pool = worker.NewPool(cfg.WorkerCount, 1000)

	// Repositories
	gormDB := db.DB()
	accountsRepo := accounts.NewRepository(gormDB)
	tripsRepo := trips.NewRepository(gormDB)
	locationsRepo := locations.NewRepository(gormDB)
	photosRepo := photos.NewRepository(gormDB)
	albumsRepo := albums.NewRepository(gormDB)
	transportRepo := itinerary.NewTransportRepository(gormDB)
	activitiesRepo := itinerary.NewActivitiesRepository(gormDB)
	lodgingRepo := itinerary.NewLodgingRepository(gormDB)
	journalRepo := itinerary.NewJournalRepository(gormDB)
	c.AccountsRepo = accountsRepo

	guard := access.NewGuard(tripsRepo)

	routingClient := routing.NewClient(cfg.RoutingBaseURL, cfg.RoutingTimeout)
	routingService := routing.NewService(routingClient, cacheProvider,
		time.Duration(cfg.CacheRouteTTL)*time.Second)

	// Services
	c.LoginService = auth.NewLoginService(accountsRepo, jwtService)
	c.Trips = svcTrips.NewService(tripsRepo, accountsRepo, guard)
	c.Locations = svcLocations.NewService(locationsRepo, guard)
	c.Photos = svcPhotos.NewService(photosRepo, guard, store, c.Pool,
		cfg.ThumbnailSize, cfg.EnableVips)
	c.Albums = svcAlbums.NewService(albumsRepo, photosRepo, guard)
	c.Transport = svcTransport.NewService(transportRepo, locationsRepo, guard,
		routingService, c.Pool)
	c.Activities = svcActivities.NewService(activitiesRepo, locationsRepo, guard)
	c.Lodging = svcLodging.NewService(lodgingRepo, locationsRepo, guard)
	c.Journal = svcJournal.NewService(journalRepo, guard)
	c.Immich = svcImmich.NewService(accountsRepo, cfg.ImmichTimeout)
	c.Backup = svcBackup.NewService(db)

	return c, nil
}

// Start brings up background workers.
func (c *Container) Start() {
	c.Pool.Start()
}

// Close shuts everything down in reverse dependency order.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Stop()
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
