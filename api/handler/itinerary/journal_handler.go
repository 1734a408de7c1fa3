package itinerary

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/journal"
)

type JournalHandler struct {
	svc *journal.Service
}

func NewJournalHandler(svc *journal.Service) *JournalHandler {
	return &JournalHandler{svc: svc}
}

func (h *JournalHandler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req journal.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.Create(c.Request.Context(), userID, tripID, req)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, entry)
}

func (h *JournalHandler) ListByTrip(c *gin.Context) {
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
		"entries":  items,
		"total":    total,
		"has_more": hasMore,
	})
}

func (h *JournalHandler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	entry, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, entry)
}

func (h *JournalHandler) Update(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req journal.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, entry)
}

func (h *JournalHandler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Journal entry deleted successfully", nil)
}
