// Package accounts exposes registration, login and token refresh.
package accounts

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/api/common"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/internal/auth"
	"github.com/treklog/treklog/utils"
)

type Handler struct {
	loginService *auth.LoginService
}

func NewHandler(loginService *auth.LoginService) *Handler {
	return &Handler{loginService: loginService}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// Register creates a new account.
// @Summary      Register account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials"
// @Success      200   {object}  common.Response
// @Failure      409   {object}  common.Response  "Username taken"
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.loginService.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			common.RespondError(c, http.StatusConflict, "Username is already taken")
			return
		}
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a token pair.
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  common.Response
// @Failure      401   {object}  common.Response  "Invalid credentials"
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, tokens, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("Failed login attempt for user %s", utils.SanitizeLogUsername(req.Username))
			common.RespondError(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh issues a new token pair from a refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.loginService.Refresh(req.RefreshToken)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	common.RespondSuccess(c, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Me returns the authenticated caller's identity.
func (h *Handler) Me(c *gin.Context) {
	common.RespondSuccess(c, gin.H{
		"id":       c.GetUint(middleware.ContextUserIDKey),
		"username": c.GetString(middleware.ContextUsernameKey),
	})
}
