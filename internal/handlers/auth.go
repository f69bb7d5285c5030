package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/middleware"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users      repository.UserRepository
	accessLogs repository.AccessLogRepository
	jwt        *config.JWTConfig
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(repos *Repos, cfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{users: repos.Users, accessLogs: repos.AccessLogs, jwt: cfg}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with username, email, and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	// Check if user already exists
	exists, err := h.users.ExistsByEmailOrUsername(r.Context(), req.Email, req.Username, uuid.Nil)
	if err != nil {
		writeRepoError(w, "Register", err)
		return
	}
	if exists {
		utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email or username already registered")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	now := time.Now()
	user := models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		DisplayName:  req.DisplayName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.users.Create(r.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email or username already registered")
			return
		}
		writeRepoError(w, "Register", err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.IsSuperuser, h.jwt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.AuthResponse{User: toUserResponse(user), Token: token})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			writeRepoError(w, "Login", err)
			return
		}
		h.recordAccess(r, nil, req.Email, models.AccessLoginFailed)
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	// Google-only accounts have no password hash and can never match
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.recordAccess(r, &user.ID, user.Email, models.AccessLoginFailed)
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}
	if !user.IsActive {
		h.recordAccess(r, &user.ID, user.Email, models.AccessLoginFailed)
		utils.WriteErrorResponse(w, http.StatusForbidden, "Account disabled", "This account has been deactivated")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.IsSuperuser, h.jwt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", err.Error())
		return
	}
	h.recordAccess(r, &user.ID, user.Email, models.AccessLogin)

	utils.WriteJSONResponse(w, http.StatusOK, dto.AuthResponse{User: toUserResponse(*user), Token: token})
}

// Logout records the sign-out. Tokens are stateless; the client discards it.
// @Summary Logout user
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.recordAccess(r, &userID, utils.GetEmailFromContext(r.Context()), models.AccessLogout)
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

// GetProfile returns the current user's profile
// @Summary Get user profile
// @Description Get the current authenticated user's profile information
// @Tags authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse "User profile retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeRepoError(w, "GetProfile", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toUserResponse(*user))
}

// recordAccess writes an access log row. Failures are logged, never surfaced.
func (h *AuthHandler) recordAccess(r *http.Request, userID *uuid.UUID, email, action string) {
	entry := &models.AccessLog{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IPAddress: utils.ClientIP(r),
		Timestamp: time.Now(),
	}
	// The request context may be canceled once the response is written.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()
	if err := h.accessLogs.Create(ctx, entry); err != nil {
		logger.LogError("handlers", "recordAccess", "failed to write access log", map[string]any{"action": action}, err)
	}
}
