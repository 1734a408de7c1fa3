// Package locations exposes location endpoints nested under trips.
package locations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/locations"
)

type Handler struct {
	svc *locations.Service
}

func NewHandler(svc *locations.Service) *Handler {
	return &Handler{svc: svc}
}

// Create adds a location to a trip.
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req locations.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := h.svc.Create(c.Request.Context(), userID, tripID, req)
	if err != nil {
		if errors.Is(err, locations.ErrInvalidCoordinates) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, loc)
}

// ListByTrip returns one page of a trip's locations.
func (h *Handler) ListByTrip(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	items, total, hasMore, err := h.svc.ListByTrip(c.Request.Context(), userID, tripID, common.PageParams(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{
		"locations": items,
		"total":     total,
		"has_more":  hasMore,
	})
}

// Get returns one location.
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	locationID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	loc, err := h.svc.Get(c.Request.Context(), userID, locationID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, loc)
}

// Update replaces a location's fields.
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	locationID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req locations.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := h.svc.Update(c.Request.Context(), userID, locationID, req)
	if err != nil {
		if errors.Is(err, locations.ErrInvalidCoordinates) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, loc)
}

// Delete removes a location.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	locationID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, locationID); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Location deleted successfully", nil)
}
