// Package backup exposes archive export and restore endpoints.
package backup

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/backup"
)

type Handler struct {
	svc *backup.Service
}

func NewHandler(svc *backup.Service) *Handler {
	return &Handler{svc: svc}
}

// Export returns the caller's complete travel data as a JSON archive.
// @Summary      Export backup archive
// @Tags         backup
// @Produce      json
// @Success      200  {object}  backup.Archive
// @Security     BearerAuth
// @Router       /backup/export [get]
func (h *Handler) Export(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	archive, err := h.svc.Export(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="treklog-backup.json"`)
	c.JSON(http.StatusOK, archive)
}

type restoreRequest struct {
	ClearExisting bool                   `json:"clear_existing"`
	Archive       map[string]interface{} `json:"archive" binding:"required"`
}

// Restore imports an archive. The whole import is one transaction; a failure
// restores the pre-import state, including when clear_existing is set.
// @Summary      Restore backup archive
// @Tags         backup
// @Accept       json
// @Produce      json
// @Param        body  body      restoreRequest  true  "Archive"
// @Success      200   {object}  common.Response
// @Failure      400   {object}  common.Response  "Invalid archive"
// @Security     BearerAuth
// @Router       /backup/restore [post]
func (h *Handler) Restore(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	archive, err := backup.DecodeArchive(req.Archive)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Restore(c.Request.Context(), userID, archive, req.ClearExisting)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidArchive) || errors.Is(err, backup.ErrUnsupportedVersion) {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Backup restored", result)
}
