package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/ai"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// Suggester is the LLM surface the handlers use.
type Suggester interface {
	SuggestChecklist(ctx context.Context, trip models.Trip) (map[string][]string, error)
	SuggestItinerary(ctx context.Context, trip models.Trip, interests string) ([]ai.SuggestedEvent, error)
	DestinationInsights(ctx context.Context, destination string) (ai.Insights, error)
}

// AIHandler turns model suggestions into checklist lines and itinerary items
type AIHandler struct {
	guard      tripGuard
	tx         repository.Transactor
	items      repository.ItemRepository
	checklists repository.ChecklistRepository
	suggester  Suggester
	loc        *time.Location
}

func NewAIHandler(repos *Repos, suggester Suggester, loc *time.Location) *AIHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AIHandler{
		guard:      newTripGuard(repos),
		tx:         repos.Tx,
		items:      repos.Items,
		checklists: repos.Checklists,
		suggester:  suggester,
		loc:        loc,
	}
}

func writeAIError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ai.ErrNotConfigured) {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "AI not configured", "No active OPENAI_API key is configured")
		return
	}
	logger.LogError("handlers", op, "llm request failed", nil, err)
	utils.WriteErrorResponse(w, http.StatusBadGateway, "AI request failed", "The AI provider did not return a usable answer")
}

// Checklist handles POST /api/trips/{tripID}/ai/checklist
// @Summary Append a generated packing list to the trip checklist
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 201 {object} dto.AIChecklistResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/ai/checklist [post]
func (h *AIHandler) Checklist(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessWrite)
	if !ok {
		return
	}

	groups, err := h.suggester.SuggestChecklist(r.Context(), *trip)
	if err != nil {
		writeAIError(w, "AIChecklist", err)
		return
	}
	lines := []models.ChecklistItem{}
	for _, category := range ai.SortedCategories(groups) {
		for _, item := range groups[category] {
			if item = truncateRunes(item, 200); item != "" {
				lines = append(lines, models.ChecklistItem{Category: truncateRunes(category, 100), Item: item})
			}
		}
	}

	cl, err := h.checklists.GetOrCreate(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "AIChecklist", err)
		return
	}
	if len(lines) > 0 {
		if _, err := h.checklists.AddItems(r.Context(), cl.ID, lines); err != nil {
			writeRepoError(w, "AIChecklist", err)
			return
		}
	}
	all, err := h.checklists.ListItems(r.Context(), cl.ID)
	if err != nil {
		writeRepoError(w, "AIChecklist", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, dto.AIChecklistResponse{
		Added:     len(lines),
		Checklist: toChecklistResponse(*cl, all),
	})
}

// Itinerary handles POST /api/trips/{tripID}/ai/itinerary
// @Summary Create itinerary items from a generated plan
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param payload body dto.ItineraryRequest false "Traveller interests"
// @Success 201 {object} dto.AIItineraryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/ai/itinerary [post]
func (h *AIHandler) Itinerary(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessWrite)
	if !ok {
		return
	}

	var req dto.ItineraryRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}
	if trip.StartDate == nil {
		utils.WriteValidationError(w, map[string]string{"start_date": "the trip needs a start date to plan an itinerary"})
		return
	}

	events, err := h.suggester.SuggestItinerary(r.Context(), *trip, req.Interests)
	if err != nil {
		writeAIError(w, "AIItinerary", err)
		return
	}

	now := time.Now()
	created := make([]models.TripItem, 0, len(events))
	for _, ev := range events {
		created = append(created, itineraryItem(*trip, ev, h.loc, now))
	}
	err = h.tx.WithinTransaction(r.Context(), func(ctx context.Context) error {
		for i := range created {
			if err := h.items.Create(ctx, &created[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeRepoError(w, "AIItinerary", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, dto.AIItineraryResponse{Created: toItemResponses(created, h.loc)})
}

// itineraryItem places day N of ev at start_date + N-1, at ev.Time in loc.
func itineraryItem(trip models.Trip, ev ai.SuggestedEvent, loc *time.Location, now time.Time) models.TripItem {
	clock, err := time.Parse("15:04", ev.Time)
	if err != nil {
		clock = time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	}
	day := trip.StartDate.AddDate(0, 0, ev.Day-1)
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)

	it := models.TripItem{
		ID:            uuid.New(),
		TripID:        trip.ID,
		ItemType:      ev.Category,
		Name:          truncateRunes(ev.Name, 200),
		StartDatetime: start,
		Notes:         strings.TrimSpace(ev.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if addr := truncateRunes(ev.Location, 255); addr != "" {
		it.LocationAddress = &addr
	}
	return it
}

// Insights handles GET /api/trips/{tripID}/ai/insights
// @Summary Practical tips about the trip destination
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param destination query string false "Destination, defaults to the trip title"
// @Success 200 {object} dto.InsightsResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/ai/insights [get]
func (h *AIHandler) Insights(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessRead)
	if !ok {
		return
	}
	dest := strings.TrimSpace(r.URL.Query().Get("destination"))
	if dest == "" {
		dest = trip.Title
	}

	tips, err := h.suggester.DestinationInsights(r.Context(), dest)
	if err != nil {
		writeAIError(w, "AIInsights", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.InsightsResponse{
		Destination: dest,
		CurrencyTip: string(tips.CurrencyTip),
		Plug:        string(tips.Plug),
		Phrases:     string(tips.Phrases),
		Safety:      string(tips.Safety),
		Curiosity:   string(tips.Curiosity),
	})
}
