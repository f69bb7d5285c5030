package handlers

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/dto"
	"TRIPPLANNER_BACK-END/internal/finance"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

const dashboardListSize = 5

// numeric(10,2) upper bound
var maxAmount = decimal.RequireFromString("99999999.99")

// ExpensesHandler manages expenses, the dashboard and its charts
type ExpensesHandler struct {
	guard    tripGuard
	trips    repository.TripRepository
	items    repository.ItemRepository
	expenses repository.ExpenseRepository
	conv     *currency.Converter
	now      func() time.Time
}

func NewExpensesHandler(repos *Repos, conv *currency.Converter, loc *time.Location) *ExpensesHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpensesHandler{
		guard:    newTripGuard(repos),
		trips:    repos.Trips,
		items:    repos.Items,
		expenses: repos.Expenses,
		conv:     conv,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

// summarizeTrip aggregates one trip's expenses with a fresh rate cache.
// now must already be in the configured location.
func summarizeTrip(ctx context.Context, conv *currency.Converter, trip models.Trip, expenses []models.Expense, now time.Time) finance.Summary {
	lines := make([]finance.Line, 0, len(expenses))
	for _, e := range expenses {
		lines = append(lines, finance.LineFromExpense(e, trip.Title))
	}
	return finance.Summarize(ctx, lines, currency.NewRateCache(conv), now)
}

// applyExpenseRequest copies req onto e, except ItemID which callers check.
func applyExpenseRequest(e *models.Expense, req dto.ExpenseRequest) map[string]string {
	fields := map[string]string{}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	amount := decimal.Zero
	if req.Amount != nil {
		amount = req.Amount.Round(2)
	}
	if req.Amount == nil {
		fields["amount"] = "is required"
	} else if amount.IsNegative() {
		fields["amount"] = "must be greater than or equal to 0"
	} else if amount.GreaterThan(maxAmount) {
		fields["amount"] = "must be at most " + maxAmount.String()
	}
	if strings.TrimSpace(req.Category) == "" {
		fields["category"] = "is required"
	}
	if len(fields) > 0 {
		return fields
	}

	e.Description = strings.TrimSpace(req.Description)
	e.Amount = amount
	e.Currency = string(currency.Normalize(req.Currency))
	e.Category = strings.TrimSpace(req.Category)
	e.Date = date
	e.IsPaid = req.IsPaid
	return nil
}

// linkItem resolves req.ItemID, which must be an item of tripID.
func (h *ExpensesHandler) linkItem(ctx context.Context, tripID uuid.UUID, raw *string) (*uuid.UUID, map[string]string, error) {
	if raw == nil || *raw == "" {
		return nil, nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, map[string]string{"item_id": "must be a UUID"}, nil
	}
	item, err := h.items.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, map[string]string{"item_id": "does not belong to this trip"}, nil
		}
		return nil, nil, err
	}
	if item.TripID != tripID {
		return nil, map[string]string{"item_id": "does not belong to this trip"}, nil
	}
	return &item.ID, nil, nil
}

// authorizeExpense loads the {expenseID} path expense and checks access to its trip.
func (h *ExpensesHandler) authorizeExpense(w http.ResponseWriter, r *http.Request, need access) (*models.Expense, *models.Trip, bool) {
	id, ok := pathUUID(w, r, "expenseID")
	if !ok {
		return nil, nil, false
	}
	e, err := h.expenses.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, "authorizeExpense", err)
		return nil, nil, false
	}
	trip, _, ok := h.guard.authorize(w, r, e.TripID, need)
	if !ok {
		return nil, nil, false
	}
	return e, trip, true
}

// List handles GET /api/trips/{tripID}/expenses
// @Summary Expenses of a trip with BRL totals
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Success 200 {object} dto.ExpenseListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/expenses [get]
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
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
		writeRepoError(w, "ListExpenses", err)
		return
	}

	summary := summarizeTrip(r.Context(), h.conv, *trip, expenses, h.now())
	byID := make(map[uuid.UUID]models.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}
	out := make([]dto.ExpenseResponse, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		out = append(out, toExpenseResponse(byID[row.ExpenseID], trip.Title, row.Rate))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ExpenseListResponse{Expenses: out, Totals: toTotals(summary)})
}

// Create handles POST /api/trips/{tripID}/expenses
// @Summary Record an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID"
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/trips/{tripID}/expenses [post]
func (h *ExpensesHandler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, _, ok := h.guard.authorize(w, r, tripID, accessWrite)
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now()
	e := models.Expense{ID: uuid.New(), TripID: trip.ID, CreatedAt: now, UpdatedAt: now}
	if fields := applyExpenseRequest(&e, req); fields != nil {
		utils.WriteValidationError(w, fields)
		return
	}
	itemID, fields, err := h.linkItem(r.Context(), trip.ID, req.ItemID)
	if err != nil {
		writeRepoError(w, "CreateExpense", err)
		return
	}
	if fields != nil {
		utils.WriteValidationError(w, fields)
		return
	}
	e.ItemID = itemID

	if err := h.expenses.Create(r.Context(), &e); err != nil {
		writeRepoError(w, "CreateExpense", err)
		return
	}
	rate := h.conv.Rate(r.Context(), currency.Normalize(e.Currency))
	utils.WriteJSONResponse(w, http.StatusCreated, toExpenseResponse(e, trip.Title, rate))
}

// Update handles PUT /api/expenses/{expenseID}
// @Summary Replace an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param expenseID path string true "Expense ID"
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/expenses/{expenseID} [put]
func (h *ExpensesHandler) Update(w http.ResponseWriter, r *http.Request) {
	e, trip, ok := h.authorizeExpense(w, r, accessWrite)
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if fields := applyExpenseRequest(e, req); fields != nil {
		utils.WriteValidationError(w, fields)
		return
	}
	itemID, fields, err := h.linkItem(r.Context(), trip.ID, req.ItemID)
	if err != nil {
		writeRepoError(w, "UpdateExpense", err)
		return
	}
	if fields != nil {
		utils.WriteValidationError(w, fields)
		return
	}
	e.ItemID = itemID
	e.UpdatedAt = time.Now()

	if err := h.expenses.Update(r.Context(), e); err != nil {
		writeRepoError(w, "UpdateExpense", err)
		return
	}
	rate := h.conv.Rate(r.Context(), currency.Normalize(e.Currency))
	utils.WriteJSONResponse(w, http.StatusOK, toExpenseResponse(*e, trip.Title, rate))
}

// Delete handles DELETE /api/expenses/{expenseID}
// @Summary Delete an expense
// @Tags expenses
// @Security BearerAuth
// @Param expenseID path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/expenses/{expenseID} [delete]
func (h *ExpensesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.authorizeExpense(w, r, accessWrite)
	if !ok {
		return
	}
	if err := h.expenses.Delete(r.Context(), e.ID); err != nil {
		writeRepoError(w, "DeleteExpense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TogglePaid handles POST /api/expenses/{expenseID}/toggle-paid
// @Summary Flip the paid flag and return the trip's new totals
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param expenseID path string true "Expense ID"
// @Success 200 {object} dto.TogglePaidResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/expenses/{expenseID}/toggle-paid [post]
func (h *ExpensesHandler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	e, trip, ok := h.authorizeExpense(w, r, accessWrite)
	if !ok {
		return
	}
	e.IsPaid = !e.IsPaid
	if err := h.expenses.SetPaid(r.Context(), e.ID, e.IsPaid); err != nil {
		writeRepoError(w, "TogglePaid", err)
		return
	}

	expenses, err := h.expenses.ListByTrip(r.Context(), trip.ID)
	if err != nil {
		writeRepoError(w, "TogglePaid", err)
		return
	}
	cache := currency.NewRateCache(h.conv)
	lines := make([]finance.Line, 0, len(expenses))
	for _, x := range expenses {
		lines = append(lines, finance.LineFromExpense(x, trip.Title))
	}
	summary := finance.Summarize(r.Context(), lines, cache, h.now())

	utils.WriteJSONResponse(w, http.StatusOK, dto.TogglePaidResponse{
		Expense: toExpenseResponse(*e, trip.Title, cache.Rate(r.Context(), currency.Normalize(e.Currency))),
		Totals:  toTotals(summary),
	})
}

// ownerSummary aggregates every expense of the caller's own trips.
func (h *ExpensesHandler) ownerSummary(ctx context.Context, userID uuid.UUID) (finance.Summary, map[uuid.UUID]repository.TitledExpense, error) {
	titled, err := h.expenses.ListByOwner(ctx, userID)
	if err != nil {
		return finance.Summary{}, nil, err
	}
	lines := make([]finance.Line, 0, len(titled))
	byID := make(map[uuid.UUID]repository.TitledExpense, len(titled))
	for _, te := range titled {
		lines = append(lines, finance.LineFromExpense(te.Expense, te.TripTitle))
		byID[te.Expense.ID] = te
	}
	return finance.Summarize(ctx, lines, currency.NewRateCache(h.conv), h.now()), byID, nil
}

// Dashboard handles GET /api/dashboard
// @Summary Financial overview of every trip the caller owns
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/dashboard [get]
func (h *ExpensesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, byID, err := h.ownerSummary(r.Context(), userID)
	if err != nil {
		writeRepoError(w, "Dashboard", err)
		return
	}
	owned, err := h.trips.ListOwned(r.Context(), userID)
	if err != nil {
		writeRepoError(w, "Dashboard", err)
		return
	}

	totals := toTotals(summary)
	resp := dto.DashboardResponse{
		Currency:       totals.Currency,
		Total:          totals.Total,
		YearTotal:      summary.YearTotal.StringFixed(2),
		Paid:           totals.Paid,
		Unpaid:         totals.Unpaid,
		ByCategory:     totals.ByCategory,
		ByTrip:         []dto.TripTotalResponse{},
		UpcomingTrips:  []dto.TripResponse{},
		RecentExpenses: []dto.ExpenseResponse{},
	}

	byTrip := make([]finance.TripTotal, 0, len(summary.ByTrip))
	for _, tt := range summary.ByTrip {
		byTrip = append(byTrip, tt)
	}
	sort.Slice(byTrip, func(i, j int) bool {
		if c := byTrip[i].Total.Cmp(byTrip[j].Total); c != 0 {
			return c > 0
		}
		return byTrip[i].Title < byTrip[j].Title
	})
	for _, tt := range byTrip {
		resp.ByTrip = append(resp.ByTrip, dto.TripTotalResponse{TripID: tt.TripID.String(), Title: tt.Title, Total: tt.Total.StringFixed(2)})
	}

	for _, t := range upcomingTrips(owned, h.now(), dashboardListSize) {
		resp.UpcomingTrips = append(resp.UpcomingTrips, toTripResponse(t, models.RoleOwner))
	}

	// newest first
	for i := len(summary.Rows) - 1; i >= 0 && len(resp.RecentExpenses) < dashboardListSize; i-- {
		row := summary.Rows[i]
		te := byID[row.ExpenseID]
		resp.RecentExpenses = append(resp.RecentExpenses, toExpenseResponse(te.Expense, te.TripTitle, row.Rate))
	}

	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// upcomingTrips returns up to n trips starting today or later, soonest first.
func upcomingTrips(trips []models.Trip, now time.Time, n int) []models.Trip {
	today := utils.FormatDate(now)
	out := []models.Trip{}
	for _, t := range trips {
		if t.StartDate != nil && utils.FormatDate(*t.StartDate) >= today && t.Status != models.TripCanceled {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(*out[j].StartDate) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ChartData handles GET /api/dashboard/chart-data
// @Summary Category and trip series for the dashboard charts
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ChartDataResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/dashboard/chart-data [get]
func (h *ExpensesHandler) ChartData(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, _, err := h.ownerSummary(r.Context(), userID)
	if err != nil {
		writeRepoError(w, "ChartData", err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ChartDataResponse{
		Currency:   string(currency.BaseCurrency),
		Categories: toChartSeries(summary.CategoryChart()),
		Trips:      toChartSeries(summary.TripChart()),
	})
}

// PlaceCurrency handles GET /api/places/currency
// @Summary Guess the local currency of a place name or address
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param q query string true "Country, city or address"
// @Success 200 {object} dto.PlaceCurrencyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/places/currency [get]
func (h *ExpensesHandler) PlaceCurrency(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		utils.WriteValidationError(w, map[string]string{"q": "is required"})
		return
	}
	resp := dto.PlaceCurrencyResponse{Query: q}
	if code, ok := currency.CurrencyForPlace(q); ok {
		c := string(code)
		resp.Found = true
		resp.Currency = &c
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}
