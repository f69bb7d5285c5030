package dto

import "github.com/shopspring/decimal"

// ExpenseRequest creates or replaces an expense
type ExpenseRequest struct {
	Description string           `json:"description" validate:"max=255"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Currency    string           `json:"currency" validate:"required,currency"`
	Category    string           `json:"category" validate:"required,max=100"`
	Date        string           `json:"date" validate:"required"`
	IsPaid      bool             `json:"is_paid"`
	ItemID      *string          `json:"item_id" validate:"omitempty,uuid"`
}

// ExpenseResponse is an expense with its BRL conversion
type ExpenseResponse struct {
	ID              string  `json:"id"`
	TripID          string  `json:"trip_id"`
	TripTitle       string  `json:"trip_title,omitempty"`
	ItemID          *string `json:"item_id"`
	Description     string  `json:"description"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	Category        string  `json:"category"`
	Date            string  `json:"date"`
	IsPaid          bool    `json:"is_paid"`
	Rate            string  `json:"rate"`
	ConvertedAmount string  `json:"converted_amount"`
}

// ExpenseTotals are converted totals in the base currency
type ExpenseTotals struct {
	Currency   string            `json:"currency"`
	Total      string            `json:"total"`
	Paid       string            `json:"paid"`
	Unpaid     string            `json:"unpaid"`
	ByCategory map[string]string `json:"by_category"`
}

// ExpenseListResponse envelope
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Totals   ExpenseTotals     `json:"totals"`
}

// TogglePaidResponse returns the flipped expense and the trip's new totals
type TogglePaidResponse struct {
	Expense ExpenseResponse `json:"expense"`
	Totals  ExpenseTotals   `json:"totals"`
}

// TripTotalResponse is one trip's converted total
type TripTotalResponse struct {
	TripID string `json:"trip_id"`
	Title  string `json:"title"`
	Total  string `json:"total"`
}

// DashboardResponse aggregates every trip the user owns
type DashboardResponse struct {
	Currency       string              `json:"currency"`
	Total          string              `json:"total"`
	YearTotal      string              `json:"year_total"`
	Paid           string              `json:"paid"`
	Unpaid         string              `json:"unpaid"`
	ByCategory     map[string]string   `json:"by_category"`
	ByTrip         []TripTotalResponse `json:"by_trip"`
	UpcomingTrips  []TripResponse      `json:"upcoming_trips"`
	RecentExpenses []ExpenseResponse   `json:"recent_expenses"`
}

// ChartSeries is a label/value series for the dashboard charts
type ChartSeries struct {
	Labels []string `json:"labels"`
	Values []string `json:"values"`
}

// ChartDataResponse feeds the dashboard charts
type ChartDataResponse struct {
	Currency   string      `json:"currency"`
	Categories ChartSeries `json:"categories"`
	Trips      ChartSeries `json:"trips"`
}

// PlaceCurrencyResponse is the currency guessed for an address
type PlaceCurrencyResponse struct {
	Query    string  `json:"query"`
	Found    bool    `json:"found"`
	Currency *string `json:"currency"`
}
