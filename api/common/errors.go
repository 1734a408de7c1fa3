package common

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/internal/access"
	"github.com/treklog/treklog/internal/immich"
	"github.com/treklog/treklog/internal/routing"
)

// RespondServiceError maps service-layer errors onto HTTP statuses. Handlers
// translate their own validation sentinels to 400 before calling this.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrNotFound):
		RespondError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, access.ErrForbidden):
		RespondError(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, immich.ErrNotConfigured):
		RespondError(c, http.StatusBadRequest, "Immich integration is not configured")
	case errors.Is(err, immich.ErrUnavailable):
		RespondError(c, http.StatusBadGateway, "Immich server unavailable")
	case errors.Is(err, routing.ErrUnavailable):
		RespondError(c, http.StatusBadGateway, "Routing service unavailable")
	default:
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// ParseID parses a numeric path parameter; responds 400 and returns false on
// garbage input.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}
