package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/enrichment"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/storage"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// ItemEnricher fills geocoding and weather fields of one item.
type ItemEnricher interface {
	EnrichItem(ctx context.Context, it *models.TripItem) enrichment.Result
}

// ItemsHandler manages itinerary items and their linked expense
type ItemsHandler struct {
	guard       tripGuard
	items       repository.ItemRepository
	expenses    repository.ExpenseRepository
	attachments repository.AttachmentRepository
	store       storage.Store
	enricher    ItemEnricher
	conv        *currency.Converter
	loc         *time.Location
}

func NewItemsHandler(repos *Repos, store storage.Store, enricher ItemEnricher, conv *currency.Converter, loc *time.Location) *ItemsHandler {
	return &ItemsHandler{
		guard:       newTripGuard(repos),
		items:       repos.Items,
		expenses:    repos.Expenses,
		attachments: repos.Attachments,
		store:       store,
		enricher:    enricher,
		conv:        conv,
		loc:         loc,
	}
}

// authorizeItem loads the {itemID} path item and checks access to its trip.
func authorizeItem(w http.ResponseWriter, r *http.Request, guard tripGuard, items repository.ItemRepository, need access) (*models.TripItem, *models.Trip, bool) {
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return nil, nil, false
	}
	item, err := items.GetByID(r.Context(), itemID)
	if err != nil {
		writeRepoError(w, "authorizeItem", err)
		return nil, nil, false
	}
	trip, _, ok := guard.authorize(w, r, item.TripID, need)
	if !ok {
		return nil, nil, false
	}
	return item, trip, true
}

// applyItemRequest copies req onto it. Changing the address or the start
// date drops the cached coordinates and forecast so enrichment runs again.
func applyItemRequest(it *models.TripItem, req dto.ItemRequest, loc *time.Location) map[string]string {
	fields := map[string]string{}

	start, err := utils.ParseDateTime(req.StartDatetime, loc)
	if err != nil {
		fields["start_datetime"] = "must be RFC3339 or YYYY-MM-DDTHH:MM"
	}
	var end *time.Time
	if req.EndDatetime != nil && strings.TrimSpace(*req.EndDatetime) != "" {
		t, err := utils.ParseDateTime(*req.EndDatetime, loc)
		if err != nil {
			fields["end_datetime"] = "must be RFC3339 or YYYY-MM-DDTHH:MM"
		} else {
			end = &t
		}
	}
	if end != nil && len(fields) == 0 && end.Before(start) {
		fields["end_datetime"] = "cannot be before start_datetime"
	}
	if (req.LocationLat == nil) != (req.LocationLng == nil) {
		fields["location_lat"] = "location_lat and location_lng must be given together"
	}
	if req.LocationLat != nil && req.LocationLng != nil {
		if req.LocationLat.Abs().GreaterThan(decimal.NewFromInt(90)) {
			fields["location_lat"] = "must be between -90 and 90"
		}
		if req.LocationLng.Abs().GreaterThan(decimal.NewFromInt(180)) {
			fields["location_lng"] = "must be between -180 and 180"
		}
	}
	if len(fields) > 0 {
		return fields
	}

	var address *string
	if req.LocationAddress != nil {
		if a := strings.TrimSpace(*req.LocationAddress); a != "" {
			address = &a
		}
	}
	addressChanged := deref(address) != it.Address()
	startChanged := !start.Equal(it.StartDatetime)

	it.ItemType = req.ItemType
	it.Name = strings.TrimSpace(req.Name)
	it.StartDatetime = start
	it.EndDatetime = end
	it.LocationAddress = address
	it.Notes = req.Notes
	it.ReminderHours = req.ReminderHours

	switch {
	case req.LocationLat != nil:
		it.LocationLat = decimal.NewNullDecimal(req.LocationLat.Round(6))
		it.LocationLng = decimal.NewNullDecimal(req.LocationLng.Round(6))
	case addressChanged:
		it.LocationLat = decimal.NullDecimal{}
		it.LocationLng = decimal.NullDecimal{}
	}
	if addressChanged || startChanged {
		it.WeatherTemp, it.WeatherCondition, it.WeatherIcon = nil, nil, nil
	}
	return nil
}

// Create handles POST /api/trips/{tripID}/items
// @Summary Add an itinerary item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param payload body dto.ItemRequest true "Item payload"
// @Success 201 {object} dto.ItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/items [post]
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessWrite)
	if !ok {
		return
	}

	var req dto.ItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now()
	item := models.TripItem{ID: uuid.New(), TripID: trip.ID, CreatedAt: now, UpdatedAt: now}
	if fields := applyItemRequest(&item, req, h.loc); fields != nil {
		utils.WriteValidationError(w, fields)
		return
	}
	if err := h.items.Create(r.Context(), &item); err != nil {
		writeRepoError(w, "CreateItem", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, toItemResponse(item, h.loc))
}

// Get handles GET /api/items/{itemID}
// @Summary Get one itinerary item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Success 200 {object} dto.ItemResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/items/{itemID} [get]
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, _, ok := authorizeItem(w, r, h.guard, h.items, accessRead)
	if !ok {
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toItemResponse(*item, h.loc))
}

// Update handles PUT /api/items/{itemID}
// @Summary Replace an itinerary item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Param payload body dto.ItemRequest true "Item payload"
// @Success 200 {object} dto.ItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/items/{itemID} [put]
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, _, ok := authorizeItem(w, r, h.guard, h.items, accessWrite)
	if !ok {
		return
	}

	var req dto.ItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if fields := applyItemRequest(item, req, h.loc); fields != nil {
		utils.WriteValidationError(w, fields)
		return
	}
	item.UpdatedAt = time.Now()

	if err := h.items.Update(r.Context(), item); err != nil {
		writeRepoError(w, "UpdateItem", err)
		return
	}
	// the repository resets reminder_sent when the schedule moves
	saved, err := h.items.GetByID(r.Context(), item.ID)
	if err != nil {
		writeRepoError(w, "UpdateItem", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toItemResponse(*saved, h.loc))
}

// Delete handles DELETE /api/items/{itemID}
// @Summary Delete an itinerary item; its expense is kept and unlinked
// @Tags items
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/items/{itemID} [delete]
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, _, ok := authorizeItem(w, r, h.guard, h.items, accessWrite)
	if !ok {
		return
	}

	atts, err := h.attachments.ListByItem(r.Context(), item.ID)
	if err != nil {
		writeRepoError(w, "DeleteItem", err)
		return
	}
	if err := h.items.Delete(r.Context(), item.ID); err != nil {
		writeRepoError(w, "DeleteItem", err)
		return
	}
	keys := make([]string, 0, len(atts))
	for _, a := range atts {
		keys = append(keys, a.FileKey)
	}
	removeObjects(r.Context(), h.store, keys)

	w.WriteHeader(http.StatusNoContent)
}

// Enrich handles POST /api/items/{itemID}/enrich
// @Summary Fill missing coordinates and forecast of an item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Success 200 {object} dto.EnrichResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/items/{itemID}/enrich [post]
func (h *ItemsHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	item, _, ok := authorizeItem(w, r, h.guard, h.items, accessWrite)
	if !ok {
		return
	}
	res := h.enricher.EnrichItem(r.Context(), item)
	utils.WriteJSONResponse(w, http.StatusOK, dto.EnrichResponse{
		Item:     toItemResponse(*item, h.loc),
		Geocoded: res.Geocoded,
		Weather:  res.Weather,
	})
}

// EnrichTrip handles POST /api/trips/{tripID}/enrich
// @Summary Fill missing coordinates and forecasts of every item of a trip
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {object} dto.TripEnrichResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/enrich [post]
func (h *ItemsHandler) EnrichTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessWrite)
	if !ok {
		return
	}
	items, err := h.items.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "EnrichTrip", err)
		return
	}

	resp := dto.TripEnrichResponse{Items: len(items)}
	for i := range items {
		res := h.enricher.EnrichItem(r.Context(), &items[i])
		if res.Geocoded {
			resp.Geocoded++
		}
		if res.Weather {
			resp.Weather++
		}
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// GetExpense handles GET /api/items/{itemID}/expense
// @Summary The expense linked to an item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/items/{itemID}/expense [get]
func (h *ItemsHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	item, trip, ok := authorizeItem(w, r, h.guard, h.items, accessRead)
	if !ok {
		return
	}
	e, err := h.expenses.GetByItem(r.Context(), item.ID)
	if err != nil {
		writeRepoError(w, "GetItemExpense", err)
		return
	}
	rate := h.conv.Rate(r.Context(), currency.Normalize(e.Currency))
	utils.WriteJSONResponse(w, http.StatusOK, toExpenseResponse(*e, trip.Title, rate))
}

// PutExpense handles PUT /api/items/{itemID}/expense, creating the linked
// expense on first use.
// @Summary Create or replace the expense linked to an item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Param payload body dto.ExpenseRequest true "Expense payload; item_id is ignored"
// @Success 200 {object} dto.ExpenseResponse
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/items/{itemID}/expense [put]
func (h *ItemsHandler) PutExpense(w http.ResponseWriter, r *http.Request) {
	item, trip, ok := authorizeItem(w, r, h.guard, h.items, accessWrite)
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.ItemID = nil

	status := http.StatusOK
	e, err := h.expenses.GetByItem(r.Context(), item.ID)
	switch {
	case err == nil:
	case isNotFound(err):
		now := time.Now()
		e = &models.Expense{ID: uuid.New(), TripID: trip.ID, CreatedAt: now}
		status = http.StatusCreated
	default:
		writeRepoError(w, "PutItemExpense", err)
		return
	}

	if fields := applyExpenseRequest(e, req); fields != nil {
		utils.WriteValidationError(w, fields)
		return
	}
	e.ItemID = &item.ID
	e.UpdatedAt = time.Now()

	if status == http.StatusCreated {
		err = h.expenses.Create(r.Context(), e)
	} else {
		err = h.expenses.Update(r.Context(), e)
	}
	if err != nil {
		writeRepoError(w, "PutItemExpense", err)
		return
	}
	rate := h.conv.Rate(r.Context(), currency.Normalize(e.Currency))
	utils.WriteJSONResponse(w, status, toExpenseResponse(*e, trip.Title, rate))
}
