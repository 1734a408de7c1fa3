// Package photos exposes photo upload, linking, listing and byte serving.
package photos

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/internal/immich"
	"github.com/treklog/treklog/internal/photos"
)

type Handler struct {
	svc           *photos.Service
	immichSvc     *immich.Service
	maxUploadSize int64
}

func NewHandler(svc *photos.Service, immichSvc *immich.Service, maxUploadSizeMB int) *Handler {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 50
	}
	return &Handler{
		svc:           svc,
		immichSvc:     immichSvc,
		maxUploadSize: int64(maxUploadSizeMB) << 20,
	}
}

// Upload accepts one multipart photo for a trip.
// @Summary      Upload photo
// @Tags         photos
// @Accept       multipart/form-data
// @Produce      json
// @Param        tripId  path      int   true  "Trip ID"
// @Param        file    formData  file  true  "Photo file"
// @Success      200     {object}  common.Response
// @Failure      413     {object}  common.Response  "File too large"
// @Security     BearerAuth
// @Router       /trips/{tripId}/photos/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "No file in request")
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		common.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d MB upload limit", h.maxUploadSize>>20))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	view, err := h.svc.Upload(c.Request.Context(), userID, tripID,
		fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		if errors.Is(err, photos.ErrNotAnImage) {
			common.RespondError(c, http.StatusBadRequest, "File is not a supported image type")
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, view)
}

// ListByTrip returns one page of a trip's photos.
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

type linkBatchRequest struct {
	Assets []photos.AssetInput `json:"assets" binding:"required,min=1,dive"`
}

// LinkBatch links a batch of Immich assets to a trip.
// @Summary      Link Immich assets
// @Tags         photos
// @Accept       json
// @Produce      json
// @Param        tripId  path      int               true  "Trip ID"
// @Param        body    body      linkBatchRequest  true  "Assets"
// @Success      200     {object}  common.Response
// @Security     BearerAuth
// @Router       /trips/{tripId}/photos/link [post]
func (h *Handler) LinkBatch(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	tripID, ok := common.ParseID(c, "tripId")
	if !ok {
		return
	}
	var req linkBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.LinkBatch(c.Request.Context(), userID, tripID, req.Assets)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// Delete removes one photo.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	photoID, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, photoID); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Photo deleted successfully", nil)
}

// GetPhoto streams the photo bytes. Immich-sourced photos are proxied from
// the trip owner's Immich server.
func (h *Handler) GetPhoto(c *gin.Context) {
	h.serve(c, false)
}

// GetThumbnail streams the photo thumbnail, falling back to the original for
// local photos without one.
func (h *Handler) GetThumbnail(c *gin.Context) {
	h.serve(c, true)
}

func (h *Handler) serve(c *gin.Context, thumbnail bool) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	identifier := c.Param("identifier")

	photo, trip, err := h.svc.GetAuthorized(c.Request.Context(), userID, identifier)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	if photo.Source == models.PhotoSourceImmich {
		h.proxyImmich(c, trip.UserID, photo)
		return
	}

	var reader io.ReadCloser
	if thumbnail {
		reader, err = h.svc.OpenThumbnail(c.Request.Context(), photo)
	} else {
		reader, err = h.svc.OpenOriginal(c.Request.Context(), photo)
	}
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := photo.MimeType
	if thumbnail && photo.ThumbnailKey != "" {
		contentType = "image/jpeg"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Printf("Failed to stream photo %s: %v", identifier, err)
	}
}

// proxyImmich streams the asset thumbnail from the trip owner's Immich
// server. Immich is the system of record for these bytes; original download
// also goes through the thumbnail endpoint.
func (h *Handler) proxyImmich(c *gin.Context, ownerID uint, photo *models.Photo) {
	if photo.ImmichAssetID == nil {
		common.RespondError(c, http.StatusNotFound, "Resource not found")
		return
	}
	reader, contentType, err := h.immichSvc.OpenThumbnail(c.Request.Context(), ownerID, *photo.ImmichAssetID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Printf("Failed to proxy asset %s: %v", *photo.ImmichAssetID, err)
	}
}
