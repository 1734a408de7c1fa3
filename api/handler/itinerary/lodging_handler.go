package itinerary

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/lodging"
)

type LodgingHandler struct {
	svc *lodging.Service
}

func NewLodgingHandler(svc *lodging.Service) *LodgingHandler {
	return &LodgingHandler{svc: svc}
}

func (h *LodgingHandler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req lodging.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	stay, err := h.svc.Create(c.Request.Context(), userID, tripID, req)
	if err != nil {
		if errors.Is(err, lodging.ErrLocationNotInTrip) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, stay)
}

func (h *LodgingHandler) ListByTrip(c *gin.Context) {
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
		"lodging":  items,
		"total":    total,
		"has_more": hasMore,
	})
}

func (h *LodgingHandler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	stay, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, stay)
}

func (h *LodgingHandler) Update(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req lodging.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	stay, err := h.svc.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		if errors.Is(err, lodging.ErrLocationNotInTrip) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, stay)
}

func (h *LodgingHandler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Lodging deleted successfully", nil)
}
