// Package trips exposes trip lifecycle and collaborator endpoints.
package trips

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/trips"
)

type Handler struct {
	svc *trips.Service
}

func NewHandler(svc *trips.Service) *Handler {
	return &Handler{svc: svc}
}

type createTripRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	Privacy     string     `json:"privacy"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Tags        []string   `json:"tags"`
	Companions  []string   `json:"companions"`
}

// Create creates a trip owned by the caller.
// @Summary      Create trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        body  body      createTripRequest  true  "Trip"
// @Success      200   {object}  common.Response
// @Security     BearerAuth
// @Router       /trips [post]
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.svc.Create(c.Request.Context(), userID, trips.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     req.Privacy,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        req.Tags,
		Companions:  req.Companions,
	})
	if err != nil {
		if errors.Is(err, trips.ErrInvalidPrivacy) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

// List returns one page of the caller's trips.
func (h *Handler) List(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	view, err := h.svc.List(c.Request.Context(), userID, common.PageParams(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

// Get returns one trip with its associations.
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	view, err := h.svc.Get(c.Request.Context(), userID, tripID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

type updateTripRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Privacy     *string    `json:"privacy"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Tags        []string   `json:"tags"`
	Companions  []string   `json:"companions"`
}

// Update applies partial changes to a trip. Owner only.
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req updateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.svc.Update(c.Request.Context(), userID, tripID, trips.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     req.Privacy,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        req.Tags,
		Companions:  req.Companions,
	})
	if err != nil {
		if errors.Is(err, trips.ErrInvalidPrivacy) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

// Delete removes a trip and everything it owns. Owner only.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, tripID); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Trip deleted successfully", nil)
}

type addCollaboratorRequest struct {
	Username string `json:"username" binding:"required"`
}

// AddCollaborator grants another user access to the trip. Owner only.
func (h *Handler) AddCollaborator(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req addCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.svc.AddCollaborator(c.Request.Context(), userID, tripID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrCollaboratorUnknown):
			common.RespondError(c, http.StatusBadRequest, "No such user")
		case errors.Is(err, trips.ErrCollaboratorIsOwner):
			common.RespondError(c, http.StatusBadRequest, "Owner is always a member of the trip")
		default:
			common.RespondServiceError(c, err)
		}
		return
	}
	common.RespondSuccessMessage(c, "Collaborator added", nil)
}

// RemoveCollaborator revokes a user's access to the trip. Owner only.
func (h *Handler) RemoveCollaborator(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	collaboratorID, ok := common.ParseID(c, "userId")
	if !ok {
		return
	}

	err := h.svc.RemoveCollaborator(c.Request.Context(), userID, tripID, collaboratorID)
	if err != nil {
		if errors.Is(err, trips.ErrCollaboratorUnknown) {
			common.RespondError(c, http.StatusBadRequest, "No such user")
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Collaborator removed", nil)
}
