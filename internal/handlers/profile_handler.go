package handlers

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

type ProfileHandler struct {
	users repository.UserRepository
}

func NewProfileHandler(repos *Repos) *ProfileHandler {
	return &ProfileHandler{users: repos.Users}
}

// Update godoc
// @Summary      Update own profile
// @Description  Only provided fields are changed; "" clears display_name and avatar_url
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.ProfileUpdateRequest  true  "Profile payload"
// @Success      200      {object}  dto.UserResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /api/auth/profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.ProfileUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Username == nil && req.DisplayName == nil && req.AvatarURL == nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Bad Request", "no fields to update")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeRepoError(w, "Update", err)
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			taken, err := h.users.ExistsByEmailOrUsername(r.Context(), "", username, user.ID)
			if err != nil {
				writeRepoError(w, "Update", err)
				return
			}
			if taken {
				utils.WriteErrorResponse(w, http.StatusConflict, "Conflict", "username already taken")
				return
			}
		}
		user.Username = username
	}
	user.DisplayName = clearable(user.DisplayName, req.DisplayName)
	user.AvatarURL = clearable(user.AvatarURL, req.AvatarURL)
	user.UpdatedAt = time.Now()

	if err := h.users.Update(r.Context(), user); err != nil {
		writeRepoError(w, "Update", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toUserResponse(*user))
}

// ChangePassword godoc
// @Summary      Change own password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.ChangePasswordRequest  true  "Current and new password"
// @Success      200      {object}  dto.MessageResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Router       /api/auth/password [put]
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeRepoError(w, "ChangePassword", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}
	if err := h.users.UpdatePassword(r.Context(), userID, string(hash)); err != nil {
		writeRepoError(w, "ChangePassword", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

// clearable applies an optional update: nil keeps current, "" clears.
func clearable(current, update *string) *string {
	if update == nil {
		return current
	}
	v := strings.TrimSpace(*update)
	if v == "" {
		return nil
	}
	return &v
}
