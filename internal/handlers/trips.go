package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/storage"
	"TRIPPLANNER_BACK-END/internal/timeline"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// TripsHandler manages trip-related endpoints
type TripsHandler struct {
	guard         tripGuard
	trips         repository.TripRepository
	items         repository.ItemRepository
	expenses      repository.ExpenseRepository
	collaborators repository.CollaboratorRepository
	attachments   repository.AttachmentRepository
	photos        repository.PhotoRepository
	store         storage.Store
	conv          *currency.Converter
	loc           *time.Location
}

// NewTripsHandler creates a new TripsHandler
func NewTripsHandler(repos *Repos, store storage.Store, conv *currency.Converter, loc *time.Location) *TripsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TripsHandler{
		guard:         newTripGuard(repos),
		trips:         repos.Trips,
		items:         repos.Items,
		expenses:      repos.Expenses,
		collaborators: repos.Collaborators,
		attachments:   repos.Attachments,
		photos:        repos.Photos,
		store:         store,
		conv:          conv,
		loc:           loc,
	}
}

// parseOptionalDate parses a nullable date; nil and "" both mean no date.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func validPeriod(start, end *time.Time) bool {
	return start == nil || end == nil || !end.Before(*start)
}

// CreateTrip handles POST /api/trips
// @Summary Create a new trip
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTripRequest true "Trip payload"
// @Success 201 {object} dto.TripResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [post]
func (h *TripsHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTripRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	startAt, err := parseOptionalDate(req.StartDate)
	if err != nil {
		utils.WriteValidationError(w, map[string]string{"start_date": "must be YYYY-MM-DD or RFC3339"})
		return
	}
	endAt, err := parseOptionalDate(req.EndDate)
	if err != nil {
		utils.WriteValidationError(w, map[string]string{"end_date": "must be YYYY-MM-DD or RFC3339"})
		return
	}
	if !validPeriod(startAt, endAt) {
		utils.WriteValidationError(w, map[string]string{"end_date": "cannot be before start_date"})
		return
	}
	if req.Status == "" {
		req.Status = models.TripPlanning
	}

	now := time.Now()
	trip := models.Trip{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		StartDate: startAt,
		EndDate:   endAt,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.trips.Create(r.Context(), &trip); err != nil {
		writeRepoError(w, "CreateTrip", err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, toTripResponse(trip, models.RoleOwner))
}

// ListTrips handles GET /api/trips with filters and pagination
// @Summary List trips owned by or shared with the caller
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param status query string false "PLANNING|CONFIRMED|COMPLETED|CANCELED"
// @Param limit query int false "items per page"
// @Param offset query int false "offset"
// @Success 200 {object} dto.TripListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips [get]
func (h *TripsHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !containsString(models.TripStatuses, status) {
		utils.WriteValidationError(w, map[string]string{"status": "must be one of " + strings.Join(models.TripStatuses, ", ")})
		return
	}
	limit, offset := utils.Pagination(r)

	trips, total, err := h.trips.ListForUser(r.Context(), userID, status, limit, offset)
	if err != nil {
		writeRepoError(w, "ListTrips", err)
		return
	}

	items := make([]dto.TripResponse, 0, len(trips))
	for _, t := range trips {
		items = append(items, toTripResponse(t.Trip, t.Role))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.TripListResponse{
		Trips:      items,
		Pagination: dto.Pagination{Total: total, Limit: limit, Offset: offset},
	})
}

// TripDetail handles GET /api/trips/{tripID}
// @Summary Get trip detail with its days, collaborators and expense totals
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {object} dto.TripDetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/trips/{tripID} [get]
func (h *TripsHandler) TripDetail(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, role, ok := h.guard.authorize(w, r, tripID, accessRead)
	if !ok {
		return
	}

	items, err := h.items.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "TripDetail", err)
		return
	}
	collaborators, err := h.collaborators.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "TripDetail", err)
		return
	}
	expenses, err := h.expenses.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "TripDetail", err)
		return
	}

	days := []dto.TimelineDay{}
	for _, d := range timeline.Group(items, h.loc) {
		days = append(days, dto.TimelineDay{Date: d.Date, Items: toItemResponses(d.Items, h.loc)})
	}
	collabs := make([]dto.CollaboratorResponse, 0, len(collaborators))
	for _, c := range collaborators {
		collabs = append(collabs, toCollaboratorResponse(c))
	}

	summary := summarizeTrip(r.Context(), h.conv, *trip, expenses, time.Now().In(h.loc))
	utils.WriteJSONResponse(w, http.StatusOK, dto.TripDetailResponse{
		Trip:          toTripResponse(*trip, role),
		Days:          days,
		Collaborators: collabs,
		Totals:        toTotals(summary),
		Permissions: dto.TripPermissions{
			CanEdit:                roleAllows(role, accessOwner),
			CanDelete:              roleAllows(role, accessOwner),
			CanWriteContent:        roleAllows(role, accessWrite),
			CanManageCollaborators: roleAllows(role, accessOwner),
		},
	})
}

// UpdateTrip handles PUT /api/trips/{tripID}
// @Summary Update a trip (owner only)
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param payload body dto.UpdateTripRequest true "Fields to update"
// @Success 200 {object} dto.TripResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID} [put]
func (h *TripsHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, role, ok := h.guard.authorize(w, r, tripID, accessOwner)
	if !ok {
		return
	}

	var req dto.UpdateTripRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			utils.WriteValidationError(w, map[string]string{"title": "is required"})
			return
		}
		trip.Title = title
	}
	if req.StartDate != nil {
		d, err := parseOptionalDate(req.StartDate)
		if err != nil {
			utils.WriteValidationError(w, map[string]string{"start_date": "must be YYYY-MM-DD or RFC3339"})
			return
		}
		trip.StartDate = d
	}
	if req.EndDate != nil {
		d, err := parseOptionalDate(req.EndDate)
		if err != nil {
			utils.WriteValidationError(w, map[string]string{"end_date": "must be YYYY-MM-DD or RFC3339"})
			return
		}
		trip.EndDate = d
	}
	if !validPeriod(trip.StartDate, trip.EndDate) {
		utils.WriteValidationError(w, map[string]string{"end_date": "cannot be before start_date"})
		return
	}
	if req.Status != nil {
		trip.Status = *req.Status
	}
	trip.UpdatedAt = time.Now()

	if err := h.trips.Update(r.Context(), trip); err != nil {
		writeRepoError(w, "UpdateTrip", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toTripResponse(*trip, role))
}

// DeleteTrip handles DELETE /api/trips/{tripID}
// @Summary Delete a trip (owner only)
// @Tags trips
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID} [delete]
func (h *TripsHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessOwner)
	if !ok {
		return
	}

	// collect stored files before the rows cascade away
	keys, err := h.fileKeys(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "DeleteTrip", err)
		return
	}
	if err := h.trips.Delete(r.Context(), trip.ID); err != nil {
		writeRepoError(w, "DeleteTrip", err)
		return
	}
	removeObjects(r.Context(), h.store, keys)

	w.WriteHeader(http.StatusNoContent)
}

func (h *TripsHandler) fileKeys(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	var keys []string
	photos, err := h.photos.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, p := range photos {
		keys = append(keys, p.FileKey)
	}
	items, err := h.items.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		atts, err := h.attachments.ListByItem(ctx, it.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range atts {
			keys = append(keys, a.FileKey)
		}
	}
	return keys, nil
}

// removeObjects deletes stored files best effort; rows are already gone.
func removeObjects(ctx context.Context, store storage.Store, keys []string) {
	if store == nil {
		return
	}
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.LogError("handlers", "removeObjects", "failed to delete stored file", map[string]any{"key": key}, err)
		}
	}
}

// Timeline handles GET /api/trips/{tripID}/timeline
// @Summary Items of one day of the trip
// @Description Without date the earliest day with items is selected
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} dto.TimelineResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/timeline [get]
func (h *TripsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	requested := strings.TrimSpace(r.URL.Query().Get("date"))
	if requested != "" {
		d, err := timeline.ParseDate(requested)
		if err != nil {
			utils.WriteValidationError(w, map[string]string{"date": "must be YYYY-MM-DD"})
			return
		}
		requested = d
	}

	trip, _, ok := h.guard.authorize(w, r, tripID, accessRead)
	if !ok {
		return
	}
	items, err := h.items.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "Timeline", err)
		return
	}

	resp := dto.TimelineResponse{Dates: timeline.Dates(items, h.loc), Items: []dto.ItemResponse{}}
	if day, selected := timeline.Select(items, requested, h.loc); selected {
		resp.SelectedDate = &day.Date
		resp.Items = toItemResponses(day.Items, h.loc)
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// CalendarEvents handles GET /api/trips/{tripID}/calendar-events
// @Summary Items shaped for a calendar widget
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {array} timeline.CalendarEvent
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/calendar-events [get]
func (h *TripsHandler) CalendarEvents(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessRead)
	if !ok {
		return
	}
	items, err := h.items.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "CalendarEvents", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, timeline.CalendarEvents(trip.ID, items, h.loc))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
