// Package albums exposes photo album endpoints.
package albums

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/albums"
)

type Handler struct {
	svc *albums.Service
}

func NewHandler(svc *albums.Service) *Handler {
	return &Handler{svc: svc}
}

type createAlbumRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// Create creates an album in a trip.
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.svc.Create(c.Request.Context(), userID, tripID, req.Name, req.Description)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, album)
}

// ListByTrip returns one page of a trip's albums with photo counts.
func (h *Handler) ListByTrip(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	view, err := h.svc.ListByTrip(c.Request.Context(), userID, tripID, common.PageParams(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

// Get returns an album with one page of its photos.
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Get(c.Request.Context(), userID, albumID, common.PageParams(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

type updateAlbumRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// Update renames or re-describes an album.
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req updateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	album, err := h.svc.Update(c.Request.Context(), userID, albumID, req.Name, req.Description)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, album)
}

// Delete removes an album; the photos stay on the trip.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, albumID); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Album deleted successfully", nil)
}

type addPhotosRequest struct {
	PhotoIDs []uint `json:"photo_ids" binding:"required,min=1"`
}

// AddPhotos assigns photos to an album. All photos must belong to the
// album's trip; duplicates are skipped silently.
func (h *Handler) AddPhotos(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req addPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	added, err := h.svc.AddPhotos(c.Request.Context(), userID, albumID, req.PhotoIDs)
	if err != nil {
		if errors.Is(err, albums.ErrPhotoNotInTrip) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"added": added})
}

// RemovePhoto removes one photo from an album.
func (h *Handler) RemovePhoto(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	photoID, ok := common.ParseID(c, "photoId")
	if !ok {
		return
	}

	err := h.svc.RemovePhoto(c.Request.Context(), userID, albumID, photoID)
	if err != nil {
		if errors.Is(err, albums.ErrPhotoNotInAlbum) {
			common.RespondError(c, http.StatusNotFound, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Photo removed from album", nil)
}

type setCoverRequest struct {
	PhotoID uint `json:"photo_id" binding:"required"`
}

// SetCover designates an album cover photo.
func (h *Handler) SetCover(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	albumID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req setCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.svc.SetCover(c.Request.Context(), userID, albumID, req.PhotoID)
	if err != nil {
		if errors.Is(err, albums.ErrPhotoNotInTrip) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Album cover updated", nil)
}
