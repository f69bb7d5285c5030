package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// AdminHandler is the superuser back office: accounts and sign-in history
type AdminHandler struct {
	users      repository.UserRepository
	accessLogs repository.AccessLogRepository
}

func NewAdminHandler(repos *Repos) *AdminHandler {
	return &AdminHandler{users: repos.Users, accessLogs: repos.AccessLogs}
}

// ListUsers handles GET /api/admin/users
// @Summary List accounts (superuser only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.UserListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := utils.Pagination(r)
	users, total, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		writeRepoError(w, "ListUsers", err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.UserListResponse{
		Users:      out,
		Pagination: dto.Pagination{Total: total, Limit: limit, Offset: offset},
	})
}

// CreateUser handles POST /api/admin/users
// @Summary Create an account (superuser only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AdminCreateUserRequest true "New account"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := h.users.ExistsByEmailOrUsername(r.Context(), email, username, uuid.Nil)
	if err != nil {
		writeRepoError(w, "CreateUser", err)
		return
	}
	if exists {
		utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email or username is already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}
	now := time.Now()
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  clearable(nil, req.DisplayName),
		IsSuperuser:  req.IsSuperuser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.users.Create(r.Context(), &user); err != nil {
		writeRepoError(w, "CreateUser", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toUserResponse(user))
}

// UpdateUser handles PUT /api/admin/users/{userID}
// @Summary Edit an account (superuser only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param payload body dto.AdminUpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/admin/users/{userID} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	var req dto.AdminUpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeRepoError(w, "UpdateUser", err)
		return
	}

	if self, _ := utils.GetUserIDFromContext(r.Context()); self == user.ID {
		if (req.IsActive != nil && !*req.IsActive) || (req.IsSuperuser != nil && !*req.IsSuperuser) {
			utils.WriteValidationError(w, map[string]string{"user": "you cannot disable or demote your own account"})
			return
		}
	}

	email, username := user.Email, user.Username
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	if email != user.Email || username != user.Username {
		exists, err := h.users.ExistsByEmailOrUsername(r.Context(), email, username, user.ID)
		if err != nil {
			writeRepoError(w, "UpdateUser", err)
			return
		}
		if exists {
			utils.WriteErrorResponse(w, http.StatusConflict, "User already exists", "Email or username is already taken")
			return
		}
	}

	user.Email = email
	user.Username = username
	user.DisplayName = clearable(user.DisplayName, req.DisplayName)
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()
	if err := h.users.Update(r.Context(), user); err != nil {
		writeRepoError(w, "UpdateUser", err)
		return
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
			return
		}
		if err := h.users.UpdatePassword(r.Context(), user.ID, string(hash)); err != nil {
			writeRepoError(w, "UpdateUser", err)
			return
		}
	}
	utils.WriteJSONResponse(w, http.StatusOK, toUserResponse(*user))
}

// DeleteUser handles DELETE /api/admin/users/{userID}
// @Summary Delete an account and everything it owns (superuser only)
// @Tags admin
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/admin/users/{userID} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	if self, _ := utils.GetUserIDFromContext(r.Context()); self == userID {
		utils.WriteValidationError(w, map[string]string{"user": "you cannot delete your own account"})
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeRepoError(w, "DeleteUser", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AccessLogs handles GET /api/admin/access-logs
// @Summary Sign-in history, newest first (superuser only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.AccessLogListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/admin/access-logs [get]
func (h *AdminHandler) AccessLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := utils.Pagination(r)
	logs, total, err := h.accessLogs.List(r.Context(), limit, offset)
	if err != nil {
		writeRepoError(w, "AccessLogs", err)
		return
	}
	out := make([]dto.AccessLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toAccessLogResponse(l))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.AccessLogListResponse{
		Logs:       out,
		Pagination: dto.Pagination{Total: total, Limit: limit, Offset: offset},
	})
}
