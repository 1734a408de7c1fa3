package accounts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/treklog/treklog/api/middleware"
	"github.com/treklog/treklog/database/models"
	accountsrepo "github.com/treklog/treklog/database/repo/accounts"
	"github.com/treklog/treklog/internal/auth"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}))

	jwtService, err := auth.NewJWTService("test-secret-key-at-least-32-characters-long", time.Hour, 24*time.Hour)
	assert.NoError(t, err)
	loginService := auth.NewLoginService(accountsrepo.NewRepository(db), jwtService)
	handler := NewHandler(loginService)

	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/refresh", handler.Refresh)
	router.GET("/api/auth/me", middleware.RequireAuth(jwtService), handler.Me)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/auth/register", gin.H{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotZero(t, resp.Data.ID)
	assert.Equal(t, "alice", resp.Data.Username)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/auth/register", gin.H{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/auth/register", gin.H{"username": "alice", "password": "different456"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_Validation(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing password", gin.H{"username": "alice"}},
		{"short username", gin.H{"username": "ab", "password": "password123"}},
		{"short password", gin.H{"username": "alice", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/auth/register", gin.H{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/auth/login", gin.H{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.AccessToken)
	assert.NotEmpty(t, resp.Data.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	router := setupRouter(t)

	postJSON(router, "/api/auth/register", gin.H{"username": "alice", "password": "password123"})

	w := postJSON(router, "/api/auth/login", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh(t *testing.T) {
	router := setupRouter(t)

	postJSON(router, "/api/auth/register", gin.H{"username": "alice", "password": "password123"})
	w := postJSON(router, "/api/auth/login", gin.H{"username": "alice", "password": "password123"})

	var login struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = postJSON(router, "/api/auth/refresh", gin.H{"refresh_token": login.Data.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)

	// An access token cannot be used to refresh.
	w = postJSON(router, "/api/auth/refresh", gin.H{"refresh_token": login.Data.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	router := setupRouter(t)

	postJSON(router, "/api/auth/register", gin.H{"username": "alice", "password": "password123"})
	w := postJSON(router, "/api/auth/login", gin.H{"username": "alice", "password": "password123"})

	var login struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Data.Username)
}

func TestMe_NoToken(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_MalformedHeader(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
