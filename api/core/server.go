package core

import (
	"net/http"

	"github.com/treklog/treklog/internal/app"
)

// StartServer builds the HTTP server around the wired container. The
// returned cleanup must run on shutdown.
func StartServer(container *app.Container) (*http.Server, func()) {
	cfg := container.Config
	router, cleanup := setupRouter(container)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
	return srv, cleanup
}
