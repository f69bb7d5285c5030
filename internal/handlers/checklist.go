package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// ChecklistHandler manages the packing list of a trip
type ChecklistHandler struct {
	guard      tripGuard
	checklists repository.ChecklistRepository
}

func NewChecklistHandler(repos *Repos) *ChecklistHandler {
	return &ChecklistHandler{guard: newTripGuard(repos), checklists: repos.Checklists}
}

func (h *ChecklistHandler) respond(w http.ResponseWriter, r *http.Request, status int, cl *models.Checklist) {
	items, err := h.checklists.ListItems(r.Context(), cl.ID)
	if err != nil {
		writeRepoError(w, "ListChecklistItems", err)
		return
	}
	utils.WriteJSONResponse(w, status, toChecklistResponse(*cl, items))
}

// Get handles GET /api/trips/{tripID}/checklist
// @Summary Packing list grouped by category
// @Tags checklist
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {object} dto.ChecklistResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/checklist [get]
func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	if _, _, ok := h.guard.authorize(w, r, tripID, accessRead); !ok {
		return
	}
	cl, err := h.checklists.GetOrCreate(r.Context(), tripID)
	if err != nil {
		writeRepoError(w, "GetChecklist", err)
		return
	}
	h.respond(w, r, http.StatusOK, cl)
}

// AddItems handles POST /api/trips/{tripID}/checklist/items
// @Summary Append lines to the packing list
// @Tags checklist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param payload body dto.ChecklistItemsRequest true "Lines to add"
// @Success 201 {object} dto.ChecklistResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/checklist/items [post]
func (h *ChecklistHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	if _, _, ok := h.guard.authorize(w, r, tripID, accessWrite); !ok {
		return
	}

	var req dto.ChecklistItemsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lines := make([]models.ChecklistItem, 0, len(req.Items))
	for i, in := range req.Items {
		item := strings.TrimSpace(in.Item)
		if item == "" {
			utils.WriteValidationError(w, map[string]string{"items": "line " + strconv.Itoa(i+1) + " is empty"})
			return
		}
		lines = append(lines, models.ChecklistItem{Category: strings.TrimSpace(in.Category), Item: item})
	}

	cl, err := h.checklists.GetOrCreate(r.Context(), tripID)
	if err != nil {
		writeRepoError(w, "AddChecklistItems", err)
		return
	}
	if _, err := h.checklists.AddItems(r.Context(), cl.ID, lines); err != nil {
		writeRepoError(w, "AddChecklistItems", err)
		return
	}
	h.respond(w, r, http.StatusCreated, cl)
}

// authorizeLine loads the {checklistItemID} path line and checks write access to its trip.
func (h *ChecklistHandler) authorizeLine(w http.ResponseWriter, r *http.Request) (*models.ChecklistItem, bool) {
	id, ok := pathUUID(w, r, "checklistItemID")
	if !ok {
		return nil, false
	}
	it, tripID, err := h.checklists.GetItem(r.Context(), id)
	if err != nil {
		writeRepoError(w, "GetChecklistItem", err)
		return nil, false
	}
	if _, _, ok := h.guard.authorize(w, r, tripID, accessWrite); !ok {
		return nil, false
	}
	return it, true
}

func toChecklistItemResponse(it models.ChecklistItem) dto.ChecklistItemResponse {
	return dto.ChecklistItemResponse{ID: it.ID.String(), Category: it.Category, Item: it.Item, IsChecked: it.IsChecked}
}

// UpdateItem handles PUT /api/checklist-items/{checklistItemID}
// @Summary Edit one line
// @Tags checklist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checklistItemID path string true "Checklist item ID"
// @Param payload body dto.ChecklistItemUpdateRequest true "Fields to change"
// @Success 200 {object} dto.ChecklistItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/checklist-items/{checklistItemID} [put]
func (h *ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.authorizeLine(w, r)
	if !ok {
		return
	}
	var req dto.ChecklistItemUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Category != nil {
		it.Category = strings.TrimSpace(*req.Category)
		if it.Category == "" {
			it.Category = models.DefaultChecklistCategory
		}
	}
	if req.Item != nil {
		item := strings.TrimSpace(*req.Item)
		if item == "" {
			utils.WriteValidationError(w, map[string]string{"item": "is required"})
			return
		}
		it.Item = item
	}
	if req.IsChecked != nil {
		it.IsChecked = *req.IsChecked
	}
	if err := h.checklists.UpdateItem(r.Context(), it); err != nil {
		writeRepoError(w, "UpdateChecklistItem", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toChecklistItemResponse(*it))
}

// ToggleItem handles POST /api/checklist-items/{checklistItemID}/toggle
// @Summary Flip the checked flag of a line
// @Tags checklist
// @Produce json
// @Security BearerAuth
// @Param checklistItemID path string true "Checklist item ID"
// @Success 200 {object} dto.ChecklistItemResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/checklist-items/{checklistItemID}/toggle [post]
func (h *ChecklistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.authorizeLine(w, r)
	if !ok {
		return
	}
	it.IsChecked = !it.IsChecked
	if err := h.checklists.UpdateItem(r.Context(), it); err != nil {
		writeRepoError(w, "ToggleChecklistItem", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toChecklistItemResponse(*it))
}

// DeleteItem handles DELETE /api/checklist-items/{checklistItemID}
// @Summary Remove a line
// @Tags checklist
// @Security BearerAuth
// @Param checklistItemID path string true "Checklist item ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/checklist-items/{checklistItemID} [delete]
func (h *ChecklistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.authorizeLine(w, r)
	if !ok {
		return
	}
	if err := h.checklists.DeleteItem(r.Context(), it.ID); err != nil {
		writeRepoError(w, "DeleteChecklistItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
