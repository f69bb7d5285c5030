package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/calendar"
	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/export"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/timeline"
	"TRIPPLANNER_BACK-END/internal/utils"
)

const maxImportBytes = 2 << 20

// ExportsHandler renders trips as iCalendar, PDF and spreadsheet files
type ExportsHandler struct {
	guard      tripGuard
	tx         repository.Transactor
	items      repository.ItemRepository
	expenses   repository.ExpenseRepository
	checklists repository.ChecklistRepository
	conv       *currency.Converter
	loc        *time.Location
}

func NewExportsHandler(repos *Repos, conv *currency.Converter, loc *time.Location) *ExportsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportsHandler{
		guard:      newTripGuard(repos),
		tx:         repos.Tx,
		items:      repos.Items,
		expenses:   repos.Expenses,
		checklists: repos.Checklists,
		conv:       conv,
		loc:        loc,
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileName builds an ASCII download name from the trip title.
func fileName(trip models.Trip, suffix string) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(trip.Title, "-"), "-")
	if base == "" {
		base = "trip"
	}
	return base + suffix
}

func writeFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *ExportsHandler) tripItems(w http.ResponseWriter, r *http.Request) (*models.Trip, []models.TripItem, bool) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return nil, nil, false
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessRead)
	if !ok {
		return nil, nil, false
	}
	items, err := h.items.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "ListItems", err)
		return nil, nil, false
	}
	return trip, items, true
}

// CalendarICS handles GET /api/trips/{tripID}/calendar.ics
// @Summary Export the itinerary as iCalendar
// @Tags exports
// @Produce text/calendar
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/calendar.ics [get]
func (h *ExportsHandler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	trip, items, ok := h.tripItems(w, r)
	if !ok {
		return
	}
	writeFile(w, "text/calendar; charset=utf-8", fileName(*trip, ".ics"), calendar.Export(*trip, items, time.Now()))
}

// ImportCalendar handles POST /api/trips/{tripID}/calendar/import
// @Summary Create ACTIVITY items from the events of an .ics file
// @Tags exports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param file formData file true "iCalendar file"
// @Success 201 {object} dto.CalendarImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/calendar/import [post]
func (h *ExportsHandler) ImportCalendar(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessWrite)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large", "Calendar files are limited to 2 MiB")
			return
		}
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid form", "Expected a multipart/form-data body")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		utils.WriteValidationError(w, map[string]string{"file": "is required"})
		return
	}
	defer file.Close()

	events, err := calendar.Import(file)
	if err != nil {
		utils.WriteValidationError(w, map[string]string{"file": "is not a valid iCalendar file"})
		return
	}

	now := time.Now()
	created := make([]models.TripItem, 0, len(events))
	for _, ev := range events {
		it := models.TripItem{
			ID:            uuid.New(),
			TripID:        trip.ID,
			ItemType:      models.ItemActivity,
			Name:          truncateRunes(ev.Name, 200),
			StartDatetime: ev.Start,
			Notes:         ev.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if it.Name == "" {
			it.Name = "Evento importado"
		}
		if ev.End != nil && !ev.End.Before(ev.Start) {
			end := *ev.End
			it.EndDatetime = &end
		}
		if loc := strings.TrimSpace(ev.Location); loc != "" {
			loc = truncateRunes(loc, 255)
			it.LocationAddress = &loc
		}
		created = append(created, it)
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
		writeRepoError(w, "ImportCalendar", err)
		return
	}

	logger.L().Infof("calendar import: trip=%s items=%d", trip.ID, len(created))
	utils.WriteJSONResponse(w, http.StatusCreated, dto.CalendarImportResponse{
		Imported: len(created),
		Items:    toItemResponses(created, h.loc),
	})
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ItineraryPDF handles GET /api/trips/{tripID}/itinerary.pdf
// @Summary Printable itinerary
// @Tags exports
// @Produce application/pdf
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/itinerary.pdf [get]
func (h *ExportsHandler) ItineraryPDF(w http.ResponseWriter, r *http.Request) {
	trip, items, ok := h.tripItems(w, r)
	if !ok {
		return
	}
	body, err := export.ItineraryPDF(*trip, timeline.Group(items, h.loc), h.loc)
	if err != nil {
		logger.LogError("handlers", "ItineraryPDF", "failed to render pdf", map[string]any{"trip_id": trip.ID}, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Export failed", "Could not render the itinerary")
		return
	}
	writeFile(w, "application/pdf", fileName(*trip, "-itinerary.pdf"), body)
}

// ChecklistPDF handles GET /api/trips/{tripID}/checklist.pdf
// @Summary Printable packing list
// @Tags exports
// @Produce application/pdf
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/checklist.pdf [get]
func (h *ExportsHandler) ChecklistPDF(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessRead)
	if !ok {
		return
	}
	cl, err := h.checklists.GetOrCreate(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "ChecklistPDF", err)
		return
	}
	lines, err := h.checklists.ListItems(r.Context(), cl.ID)
	if err != nil {
		writeRepoError(w, "ChecklistPDF", err)
		return
	}
	body, err := export.ChecklistPDF(*trip, lines)
	if err != nil {
		logger.LogError("handlers", "ChecklistPDF", "failed to render pdf", map[string]any{"trip_id": trip.ID}, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Export failed", "Could not render the checklist")
		return
	}
	writeFile(w, "application/pdf", fileName(*trip, "-checklist.pdf"), body)
}

// ExpensesXLSX handles GET /api/trips/{tripID}/expenses.xlsx
// @Summary Expense spreadsheet with BRL conversion
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/expenses.xlsx [get]
func (h *ExportsHandler) ExpensesXLSX(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessRead)
	if !ok {
		return
	}
	expenses, err := h.expenses.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "ExpensesXLSX", err)
		return
	}
	summary := summarizeTrip(r.Context(), h.conv, *trip, expenses, time.Now().In(h.loc))
	body, err := export.ExpensesXLSX(summary)
	if err != nil {
		logger.LogError("handlers", "ExpensesXLSX", "failed to render spreadsheet", map[string]any{"trip_id": trip.ID}, err)
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Export failed", "Could not render the spreadsheet")
		return
	}
	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileName(*trip, "-expenses.xlsx"), body)
}
