package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/repository"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// AuthService handles login and user account management.
type AuthService struct {
	userRepo *repository.UserRepository
}

// NewAuthService constructs a new AuthService.
func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login verifies credentials and returns a signed JWT plus the user record.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Str("username", username).Msg("Failed to get user by username")
		}
		return "", nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("username", username).Msg("Account is inactive")
		return "", nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, utils.ErrInvalidCredentials
	}

	satkerID := 0
	if user.SatkerID != nil {
		satkerID = *user.SatkerID
	}
	token, err := utils.GenerateJWT(user.ID, user.Username, user.Role, satkerID)
	if err != nil {
		return "", nil, err
	}

	log.Info().Str("username", username).Msg("Login successful")
	return token, user, nil
}

// CreateUser hashes the password and stores a new account.
func (s *AuthService) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	user.IsActive = true
	return s.userRepo.Create(ctx, user)
}

// UpdateUser updates an account; a non-empty password replaces the hash.
func (s *AuthService) UpdateUser(ctx context.Context, user *models.User, password string) error {
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hashed)
	} else {
		user.PasswordHash = ""
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrUserNotFound
		}
		return err
	}
	return nil
}
