package auth

import (
	"errors"
	"fmt"

	"github.com/treklog/treklog/database/models"
	"github.com/treklog/treklog/database/repo/accounts"
	"github.com/treklog/treklog/utils/crypto"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// LoginService handles registration, login and token refresh.
type LoginService struct {
	accountsRepo *accounts.Repository
	jwtService   *JWTService
}

func NewLoginService(accountsRepo *accounts.Repository, jwtService *JWTService) *LoginService {
	return &LoginService{accountsRepo: accountsRepo, jwtService: jwtService}
}

// Register creates a new user with a hashed password.
func (s *LoginService) Register(username, password string) (*models.User, error) {
	exists, err := s.accountsRepo.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := crypto.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, Password: hash}
	if err := s.accountsRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a token pair.
func (s *LoginService) Login(username, password string) (*models.User, *TokenPair, error) {
	user, err := s.accountsRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := crypto.CompareHashAndPassword(user.Password, password)
	if err != nil {
		return nil, nil, fmt.Errorf("password comparison failed: %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.jwtService.Issue(user.ID, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *LoginService) Refresh(refreshToken string) (*TokenPair, error) {
	identity, err := s.jwtService.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	// The user may have been deleted since the token was issued.
	user, err := s.accountsRepo.GetByID(identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.jwtService.Issue(user.ID, user.Username)
}
