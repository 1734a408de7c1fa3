package itinerary

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/activities"
)

type ActivitiesHandler struct {
	svc *activities.Service
}

func NewActivitiesHandler(svc *activities.Service) *ActivitiesHandler {
	return &ActivitiesHandler{svc: svc}
}

func (h *ActivitiesHandler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req activities.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	activity, err := h.svc.Create(c.Request.Context(), userID, tripID, req)
	if err != nil {
		if errors.Is(err, activities.ErrLocationNotInTrip) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, activity)
}

func (h *ActivitiesHandler) ListByTrip(c *gin.Context) {
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
		"activities": items,
		"total":      total,
		"has_more":   hasMore,
	})
}

func (h *ActivitiesHandler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	activity, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, activity)
}

func (h *ActivitiesHandler) Update(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req activities.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	activity, err := h.svc.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		if errors.Is(err, activities.ErrLocationNotInTrip) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, activity)
}

func (h *ActivitiesHandler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Activity deleted successfully", nil)
}
