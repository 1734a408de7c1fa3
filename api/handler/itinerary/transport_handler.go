// Package itinerary exposes the trip itinerary endpoints: transportation,
// activities, lodging and journal entries.
package itinerary

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/transport"
)

type TransportHandler struct {
	svc *transport.Service
}

func NewTransportHandler(svc *transport.Service) *TransportHandler {
	return &TransportHandler{svc: svc}
}

func respondTransportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, transport.ErrInvalidMode),
		errors.Is(err, transport.ErrLocationNotInTrip):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	default:
		common.RespondServiceError(c, err)
	}
}

// Create adds a transportation leg; route distance is computed in the
// background when both endpoints carry coordinates.
func (h *TransportHandler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req transport.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	leg, err := h.svc.Create(c.Request.Context(), userID, tripID, req)
	if err != nil {
		respondTransportError(c, err)
		return
	}
	common.RespondSuccess(c, leg)
}

// ListByTrip returns one page of a trip's transportation legs.
func (h *TransportHandler) ListByTrip(c *gin.Context) {
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
		"transportation": items,
		"total":          total,
		"has_more":       hasMore,
	})
}

// Get returns one transportation leg.
func (h *TransportHandler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	leg, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, leg)
}

// Update replaces a leg's fields and recomputes the route when endpoints
// change.
func (h *TransportHandler) Update(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req transport.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	leg, err := h.svc.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondTransportError(c, err)
		return
	}
	common.RespondSuccess(c, leg)
}

// Delete removes a transportation leg.
func (h *TransportHandler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Transportation deleted successfully", nil)
}
