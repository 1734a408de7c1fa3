// Package integration exposes the per-user Immich integration endpoints.
package integration

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/immich"
)

type Handler struct {
	svc *immich.Service
}

func NewHandler(svc *immich.Service) *Handler {
	return &Handler{svc: svc}
}

type configureRequest struct {
	ServerURL string `json:"server_url" binding:"required,url"`
	APIKey    string `json:"api_key" binding:"required"`
}

// Configure validates and stores the caller's Immich credentials.
// @Summary      Configure Immich integration
// @Tags         immich
// @Accept       json
// @Produce      json
// @Param        body  body      configureRequest  true  "Credentials"
// @Success      200   {object}  common.Response
// @Failure      502   {object}  common.Response  "Immich server unreachable"
// @Security     BearerAuth
// @Router       /integrations/immich [put]
func (h *Handler) Configure(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	var req configureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Configure(c.Request.Context(), userID, req.ServerURL, req.APIKey); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Immich integration configured", nil)
}

// Status reports whether the integration is configured and reachable.
func (h *Handler) Status(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	status, err := h.svc.GetStatus(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, status)
}

// Search proxies an asset search to the caller's Immich server.
func (h *Handler) Search(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	query := c.Query("q")
	if query == "" {
		common.RespondError(c, http.StatusBadRequest, "Missing query parameter q")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	assets, err := h.svc.Search(c.Request.Context(), userID, query, page, size)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{"assets": assets})
}

// GetAsset fetches one asset's metadata from the caller's Immich server.
func (h *Handler) GetAsset(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	assetID := c.Param("assetId")

	asset, err := h.svc.GetAsset(c.Request.Context(), userID, assetID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, asset)
}

// GetAssetThumbnail proxies an asset thumbnail from the caller's Immich
// server.
func (h *Handler) GetAssetThumbnail(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	assetID := c.Param("assetId")

	reader, contentType, err := h.svc.OpenThumbnail(c.Request.Context(), userID, assetID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Printf("Failed to proxy asset thumbnail %s: %v", assetID, err)
	}
}
