package handlers

import (
	"errors"
	"net/http"
	"time"

	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// CollaboratorsHandler shares trips with other users
type CollaboratorsHandler struct {
	guard         tripGuard
	users         repository.UserRepository
	collaborators repository.CollaboratorRepository
}

func NewCollaboratorsHandler(repos *Repos) *CollaboratorsHandler {
	return &CollaboratorsHandler{guard: newTripGuard(repos), users: repos.Users, collaborators: repos.Collaborators}
}

// List handles GET /api/trips/{tripID}/collaborators
// @Summary List collaborators of a trip
// @Tags collaborators
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {array} dto.CollaboratorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/collaborators [get]
func (h *CollaboratorsHandler) List(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	if _, _, ok := h.guard.authorize(w, r, tripID, accessRead); !ok {
		return
	}
	list, err := h.collaborators.ListByTrip(r.Context(), tripID)
	if err != nil {
		writeRepoError(w, "ListCollaborators", err)
		return
	}
	out := make([]dto.CollaboratorResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCollaboratorResponse(c))
	}
	utils.WriteJSONResponse(w, http.StatusOK, out)
}

// Add handles POST /api/trips/{tripID}/collaborators.
// Adding an existing collaborator changes their role.
// @Summary Share a trip with a registered user (owner only)
// @Tags collaborators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param payload body dto.CollaboratorRequest true "User e-mail and role"
// @Success 201 {object} dto.CollaboratorResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/collaborators [post]
func (h *CollaboratorsHandler) Add(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessOwner)
	if !ok {
		return
	}

	var req dto.CollaboratorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "No account found with this email")
			return
		}
		writeRepoError(w, "AddCollaborator", err)
		return
	}
	if user.ID == trip.UserID {
		utils.WriteValidationError(w, map[string]string{"email": "the owner cannot be a collaborator"})
		return
	}

	c := models.Collaborator{
		TripID:    trip.ID,
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      req.Role,
		CreatedAt: time.Now(),
	}
	if err := h.collaborators.Add(r.Context(), &c); err != nil {
		writeRepoError(w, "AddCollaborator", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toCollaboratorResponse(c))
}

// Remove handles DELETE /api/trips/{tripID}/collaborators/{userID}
// @Summary Revoke a collaborator (owner only)
// @Tags collaborators
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param userID path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/collaborators/{userID} [delete]
func (h *CollaboratorsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	if _, _, ok := h.guard.authorize(w, r, tripID, accessOwner); !ok {
		return
	}
	if err := h.collaborators.Remove(r.Context(), tripID, userID); err != nil {
		writeRepoError(w, "RemoveCollaborator", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
