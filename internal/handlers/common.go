package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

var errForbidden = errors.New("forbidden")

// Repos bundles the repositories the handlers depend on.
type Repos struct {
	Tx            repository.Transactor
	Users         repository.UserRepository
	Trips         repository.TripRepository
	Collaborators repository.CollaboratorRepository
	Items         repository.ItemRepository
	Expenses      repository.ExpenseRepository
	Checklists    repository.ChecklistRepository
	Attachments   repository.AttachmentRepository
	Photos        repository.PhotoRepository
	Settings      repository.SettingsRepository
	AccessLogs    repository.AccessLogRepository
	Verifications repository.VerificationRepository
}

type access int

const (
	accessRead access = iota
	accessWrite
	accessOwner
)

// roleAllows reports whether a role on a trip grants need.
func roleAllows(role string, need access) bool {
	switch role {
	case models.RoleOwner:
		return true
	case models.RoleEditor:
		return need <= accessWrite
	case models.RoleViewer:
		return need == accessRead
	}
	return false
}

type tripGuard struct {
	trips         repository.TripRepository
	collaborators repository.CollaboratorRepository
}

func newTripGuard(repos *Repos) tripGuard {
	return tripGuard{trips: repos.Trips, collaborators: repos.Collaborators}
}

// role returns the caller's role on trip, ErrNotFound when they have none.
func (g tripGuard) role(ctx context.Context, trip *models.Trip, userID uuid.UUID) (string, error) {
	if trip.UserID == userID {
		return models.RoleOwner, nil
	}
	c, err := g.collaborators.Get(ctx, trip.ID, userID)
	if err != nil {
		return "", err
	}
	return c.Role, nil
}

// check loads the trip and verifies need. Trips the user cannot see at all
// are reported as ErrNotFound; visible trips lacking the permission as errForbidden.
func (g tripGuard) check(ctx context.Context, tripID, userID uuid.UUID, need access) (*models.Trip, string, error) {
	trip, err := g.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, "", err
	}
	role, err := g.role(ctx, trip, userID)
	if err != nil {
		return nil, "", err
	}
	if !roleAllows(role, need) {
		return trip, role, errForbidden
	}
	return trip, role, nil
}

// authorize runs check for the authenticated caller and writes the error
// response itself when access is refused.
func (g tripGuard) authorize(w http.ResponseWriter, r *http.Request, tripID uuid.UUID, need access) (*models.Trip, string, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return nil, "", false
	}
	trip, role, err := g.check(r.Context(), tripID, userID, need)
	if err != nil {
		writeRepoError(w, "authorize", err)
		return nil, "", false
	}
	return trip, role, true
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
		return uuid.Nil, false
	}
	return userID, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid ID", name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into dst and runs the struct
// validator. It writes the 400 itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := utils.DecodeJSONRequest(w, r, dst); err != nil {
		return false
	}
	if fields := utils.ValidateStruct(dst); fields != nil {
		utils.WriteValidationError(w, fields)
		return false
	}
	return true
}

// writeRepoError maps repository and access errors to HTTP responses.
func writeRepoError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "The requested resource does not exist")
	case errors.Is(err, errForbidden):
		utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "You do not have permission for this action")
	case errors.Is(err, repository.ErrConflict):
		utils.WriteErrorResponse(w, http.StatusConflict, "Conflict", "The resource already exists")
	default:
		logger.LogError("handlers", op, "repository call failed", nil, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
