package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongKind    = errors.New("wrong token kind")
)

// Token kinds embedded in claims.
const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// JWTService issues and parses access/refresh token pairs.
type JWTService struct {
	secret           []byte
	expiresIn        time.Duration
	refreshExpiresIn time.Duration
}

func NewJWTService(secret string, expiresIn, refreshExpiresIn time.Duration) (*JWTService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(secret))
	}
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	if refreshExpiresIn <= 0 {
		refreshExpiresIn = 7 * 24 * time.Hour
	}
	return &JWTService{
		secret:           []byte(secret),
		expiresIn:        expiresIn,
		refreshExpiresIn: refreshExpiresIn,
	}, nil
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Issue creates a new token pair for the user.
func (s *JWTService) Issue(userID uint, username string) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.expiresIn)
	refreshExpiry := now.Add(s.refreshExpiresIn)

	access, err := s.sign(userID, username, tokenKindAccess, now, accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, username, tokenKindRefresh, now, refreshExpiry)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refresh,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

func (s *JWTService) sign(userID uint, username, kind string, issuedAt, expiry time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"kind":     kind,
		"iat":      issuedAt.Unix(),
		"exp":      expiry.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Identity is the authenticated principal extracted from a token.
type Identity struct {
	UserID   uint
	Username string
}

// ParseAccess validates an access token and extracts the identity.
func (s *JWTService) ParseAccess(tokenString string) (*Identity, error) {
	return s.parse(tokenString, tokenKindAccess)
}

// ParseRefresh validates a refresh token and extracts the identity.
func (s *JWTService) ParseRefresh(tokenString string) (*Identity, error) {
	return s.parse(tokenString, tokenKindRefresh)
}

func (s *JWTService) parse(tokenString, wantKind string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if kind, _ := claims["kind"].(string); kind != wantKind {
		return nil, ErrWrongKind
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: uint(userID), Username: username}, nil
}
