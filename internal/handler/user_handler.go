package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/middleware"
	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/repository"
	"github.com/sigapbencana/rambu_api/internal/service"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// UserHandler serves login and account management for the console.
type UserHandler struct {
	auth     *service.AuthService
	userRepo *repository.UserRepository
	limiter  *middleware.LoginRateLimiter
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, userRepo *repository.UserRepository, limiter *middleware.LoginRateLimiter) *UserHandler {
	return &UserHandler{auth: auth, userRepo: userRepo, limiter: limiter}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a bearer token.
// POST /v1/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	ip := c.ClientIP()
	if !h.limiter.Allow(ip) {
		utils.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts, try again later")
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrAccountInactive):
			utils.Error(c, http.StatusForbidden, "ACCOUNT_INACTIVE", "Account is inactive")
		case errors.Is(err, utils.ErrInvalidCredentials):
			utils.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		default:
			log.Error().Err(err).Msg("Login failed")
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		}
		return
	}

	h.limiter.Reset(ip)
	utils.Success(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout acknowledges a client-side token discard. Tokens are stateless, so
// there is nothing to revoke server-side.
// POST /v1/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	utils.Success(c, http.StatusOK, "Logout successful", nil)
}

// Me returns the account behind the current token.
// GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		utils.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved user", user)
}

// List returns all accounts.
// GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved users", users)
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     int    `json:"role"`
	SatkerID *int   `json:"satker_id"`
	IsActive *bool  `json:"isActive"`
}

// Create stores a new account.
// POST /v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	user := &models.User{
		Username: req.Username,
		Name:     req.Name,
		Role:     req.Role,
		SatkerID: req.SatkerID,
	}
	if err := h.auth.CreateUser(c.Request.Context(), user, req.Password); err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to create user")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}
	utils.Success(c, http.StatusCreated, "User created", user)
}

// Update overwrites an account. Password is only changed when provided.
// PATCH /v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "User id must be numeric")
		return
	}

	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	user := &models.User{
		ID:       id,
		Name:     req.Name,
		Role:     req.Role,
		SatkerID: req.SatkerID,
		IsActive: isActive,
	}
	if err := h.auth.UpdateUser(c.Request.Context(), user, req.Password); err != nil {
		if errors.Is(err, utils.ErrUserNotFound) {
			utils.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		log.Error().Err(err).Int("id", id).Msg("Failed to update user")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user")
		return
	}
	utils.Success(c, http.StatusOK, "User updated", gin.H{"id": id})
}

// Delete removes an account.
// DELETE /v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "User id must be numeric")
		return
	}

	if err := h.userRepo.Delete(c.Request.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			utils.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		log.Error().Err(err).Int("id", id).Msg("Failed to delete user")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user")
		return
	}
	utils.Success(c, http.StatusOK, "User deleted", gin.H{"id": id})
}
