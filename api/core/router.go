package core

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	handlerAccounts "github.com/treklog/treklog/api/handler/accounts"
	handlerAlbums "github.com/treklog/treklog/api/handler/albums"
	handlerBackup "github.com/treklog/treklog/api/handler/backup"
	handlerIntegration "github.com/treklog/treklog/api/handler/integration"
	handlerItinerary "github.com/treklog/treklog/api/handler/itinerary"
	handlerLocations "github.com/treklog/treklog/api/handler/locations"
	handlerPhotos "github.com/treklog/treklog/api/handler/photos"
	handlerTrips "github.com/treklog/treklog/api/handler/trips"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/config"
	"github.com/treklog/treklog/internal/app"
)

// setupRouter builds the gin engine with all middleware and routes. The
// returned cleanup stops the rate limiter janitors.
func setupRouter(container *app.Container) (*gin.Engine, func()) {
	cfg := container.Config

	if config.CommitHash != "n/a" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if config.CommitHash == "n/a" {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.SetTrustedProxies(nil)
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20
	router.Use(middleware.RequestID())

	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	mediaRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitMediaRPS, cfg.RateLimitMediaBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
		mediaRateLimiter.StopCleanup()
	}

	registerBasicRoutes(router, container)
	registerAPIRoutes(router, container, authRateLimiter, apiRateLimiter, mediaRateLimiter)

	return router, cleanup
}

func registerBasicRoutes(router *gin.Engine, container *app.Container) {
	healthHandler := NewHealthHandler(container.DB, container.Storage)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func registerAPIRoutes(router *gin.Engine, container *app.Container, authRL, apiRL, mediaRL *middleware.IPRateLimiter) {
	accountHandler := handlerAccounts.NewHandler(container.LoginService)
	tripHandler := handlerTrips.NewHandler(container.Trips)
	locationHandler := handlerLocations.NewHandler(container.Locations)
	photoHandler := handlerPhotos.NewHandler(container.Photos, container.Immich, container.Config.UploadMaxSizeMB)
	albumHandler := handlerAlbums.NewHandler(container.Albums)
	transportHandler := handlerItinerary.NewTransportHandler(container.Transport)
	activityHandler := handlerItinerary.NewActivitiesHandler(container.Activities)
	lodgingHandler := handlerItinerary.NewLodgingHandler(container.Lodging)
	journalHandler := handlerItinerary.NewJournalHandler(container.Journal)
	integrationHandler := handlerIntegration.NewHandler(container.Immich)
	backupHandler := handlerBackup.NewHandler(container.Backup)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	})

	authGroup := apiGroup.Group("/auth")
	authGroup.Use(authRL.Middleware())
	{
		authGroup.POST("/register", accountHandler.Register)
		authGroup.POST("/login", accountHandler.Login)
		authGroup.POST("/refresh", accountHandler.Refresh)
	}

	v1 := apiGroup.Group("/v1")
	v1.Use(apiRL.Middleware())
	v1.Use(middleware.RequireAuth(container.JWTService))
	{
		v1.GET("/me", accountHandler.Me)

		tripsGroup := v1.Group("/trips")
		{
			tripsGroup.GET("", tripHandler.List)
			tripsGroup.POST("", tripHandler.Create)
			tripsGroup.GET("/:tripId", tripHandler.Get)
			tripsGroup.PUT("/:tripId", tripHandler.Update)
			tripsGroup.DELETE("/:tripId", tripHandler.Delete)

			tripsGroup.POST("/:tripId/collaborators", tripHandler.AddCollaborator)
			tripsGroup.DELETE("/:tripId/collaborators/:userId", tripHandler.RemoveCollaborator)

			tripsGroup.GET("/:tripId/locations", locationHandler.ListByTrip)
			tripsGroup.POST("/:tripId/locations", locationHandler.Create)

			tripsGroup.GET("/:tripId/photos", photoHandler.ListByTrip)
			tripsGroup.POST("/:tripId/photos/upload", photoHandler.Upload)
			tripsGroup.POST("/:tripId/photos/link", photoHandler.LinkBatch)

			tripsGroup.GET("/:tripId/albums", albumHandler.ListByTrip)
			tripsGroup.POST("/:tripId/albums", albumHandler.Create)

			tripsGroup.GET("/:tripId/transportation", transportHandler.ListByTrip)
			tripsGroup.POST("/:tripId/transportation", transportHandler.Create)

			tripsGroup.GET("/:tripId/activities", activityHandler.ListByTrip)
			tripsGroup.POST("/:tripId/activities", activityHandler.Create)

			tripsGroup.GET("/:tripId/lodging", lodgingHandler.ListByTrip)
			tripsGroup.POST("/:tripId/lodging", lodgingHandler.Create)

			tripsGroup.GET("/:tripId/journal", journalHandler.ListByTrip)
			tripsGroup.POST("/:tripId/journal", journalHandler.Create)
		}

		locationsGroup := v1.Group("/locations")
		{
			locationsGroup.GET("/:id", locationHandler.Get)
			locationsGroup.PUT("/:id", locationHandler.Update)
			locationsGroup.DELETE("/:id", locationHandler.Delete)
		}

		photosGroup := v1.Group("/photos")
		{
			photosGroup.DELETE("/:id", photoHandler.Delete)
		}

		albumsGroup := v1.Group("/albums")
		{
			albumsGroup.GET("/:id", albumHandler.Get)
			albumsGroup.PUT("/:id", albumHandler.Update)
			albumsGroup.DELETE("/:id", albumHandler.Delete)
			albumsGroup.POST("/:id/photos", albumHandler.AddPhotos)
			albumsGroup.DELETE("/:id/photos/:photoId", albumHandler.RemovePhoto)
			albumsGroup.PUT("/:id/cover", albumHandler.SetCover)
		}

		transportationGroup := v1.Group("/transportation")
		{
			transportationGroup.GET("/:id", transportHandler.Get)
			transportationGroup.PUT("/:id", transportHandler.Update)
			transportationGroup.DELETE("/:id", transportHandler.Delete)
		}

		activitiesGroup := v1.Group("/activities")
		{
			activitiesGroup.GET("/:id", activityHandler.Get)
			activitiesGroup.PUT("/:id", activityHandler.Update)
			activitiesGroup.DELETE("/:id", activityHandler.Delete)
		}

		lodgingGroup := v1.Group("/lodging")
		{
			lodgingGroup.GET("/:id", lodgingHandler.Get)
			lodgingGroup.PUT("/:id", lodgingHandler.Update)
			lodgingGroup.DELETE("/:id", lodgingHandler.Delete)
		}

		journalGroup := v1.Group("/journal")
		{
			journalGroup.GET("/:id", journalHandler.Get)
			journalGroup.PUT("/:id", journalHandler.Update)
			journalGroup.DELETE("/:id", journalHandler.Delete)
		}

		immichGroup := v1.Group("/integrations/immich")
		{
			immichGroup.PUT("", integrationHandler.Configure)
			immichGroup.GET("", integrationHandler.Status)
			immichGroup.GET("/search", integrationHandler.Search)
			immichGroup.GET("/assets/:assetId", integrationHandler.GetAsset)
			immichGroup.GET("/assets/:assetId/thumbnail", integrationHandler.GetAssetThumbnail)
		}

		backupGroup := v1.Group("/backup")
		{
			backupGroup.GET("/export", backupHandler.Export)
			backupGroup.POST("/restore", backupHandler.Restore)
		}
	}

	// Byte serving gets its own limiter tuned for burst image loads.
	mediaGroup := apiGroup.Group("/media")
	mediaGroup.Use(mediaRL.Middleware())
	mediaGroup.Use(middleware.RequireAuth(container.JWTService))
	{
		mediaGroup.GET("/photos/:identifier", photoHandler.GetPhoto)
		mediaGroup.GET("/thumbnails/:identifier", photoHandler.GetThumbnail)
	}
}
