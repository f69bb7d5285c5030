// Package finance rolls expenses up into BaseCurrency totals for dashboards.
package finance

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"TRIPPLANNER_BACK-END/internal/currency"
	"TRIPPLANNER_BACK-END/internal/models"
)

// Line is one expense as seen by the aggregation.
type Line struct {
	ExpenseID   uuid.UUID
	TripID      uuid.UUID
	TripTitle   string
	Description string
	Category    string
	Date        time.Time
	Amount      decimal.Decimal
	Currency    currency.Code
	Paid        bool
}

// LineFromExpense builds a Line from a stored expense.
func LineFromExpense(e models.Expense, tripTitle string) Line {
	return Line{
		ExpenseID:   e.ID,
		TripID:      e.TripID,
		TripTitle:   tripTitle,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
		Amount:      e.Amount,
		Currency:    currency.Normalize(e.Currency),
		Paid:        e.IsPaid,
	}
}

// ConvertedLine is a Line with its rate and BaseCurrency value.
type ConvertedLine struct {
	Line
	Rate      decimal.Decimal
	Converted decimal.Decimal
}

// TripTotal is the converted total of one trip.
type TripTotal struct {
	TripID uuid.UUID
	Title  string
	Total  decimal.Decimal
}

// Summary holds every aggregate of one pass. All totals are sums of the
// rounded per-row values, so Total equals the sum of ByCategory and of ByTrip.
type Summary struct {
	Rows       []ConvertedLine
	Total      decimal.Decimal
	YearTotal  decimal.Decimal
	ByCategory map[string]decimal.Decimal
	ByTrip     map[uuid.UUID]TripTotal
	Paid       decimal.Decimal
	Unpaid     decimal.Decimal
}

// Summarize converts every line with cache and accumulates the totals. Rows
// come back sorted by date, then expense id, whatever the input order.
func Summarize(ctx context.Context, lines []Line, cache *currency.RateCache, now time.Time) Summary {
	s := Summary{
		Rows:       make([]ConvertedLine, 0, len(lines)),
		Total:      decimal.Zero,
		YearTotal:  decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
		ByTrip:     make(map[uuid.UUID]TripTotal),
		Paid:       decimal.Zero,
		Unpaid:     decimal.Zero,
	}

	// Expense dates are civil dates stored at UTC midnight, so their year is read
	// as stored. Only now is taken in the configured location.
	year := now.Year()
	for _, l := range lines {
		rate := cache.Rate(ctx, l.Currency)
		value := currency.Convert(l.Amount, rate)
		s.Rows = append(s.Rows, ConvertedLine{Line: l, Rate: rate, Converted: value})

		s.Total = s.Total.Add(value)
		if l.Date.Year() == year {
			s.YearTotal = s.YearTotal.Add(value)
		}

		if cur, ok := s.ByCategory[l.Category]; ok {
			s.ByCategory[l.Category] = cur.Add(value)
		} else {
			s.ByCategory[l.Category] = value
		}

		tt, ok := s.ByTrip[l.TripID]
		if !ok {
			tt = TripTotal{TripID: l.TripID, Title: l.TripTitle, Total: decimal.Zero}
		}
		tt.Total = tt.Total.Add(value)
		s.ByTrip[l.TripID] = tt

		if l.Paid {
			s.Paid = s.Paid.Add(value)
		} else {
			s.Unpaid = s.Unpaid.Add(value)
		}
	}

	sort.SliceStable(s.Rows, func(i, j int) bool {
		if !s.Rows[i].Date.Equal(s.Rows[j].Date) {
			return s.Rows[i].Date.Before(s.Rows[j].Date)
		}
		return s.Rows[i].ExpenseID.String() < s.Rows[j].ExpenseID.String()
	})
	return s
}

// ChartPoint is one label/value pair of a chart series.
type ChartPoint struct {
	Label string
	Value decimal.Decimal
}

// CategoryChart returns ByCategory sorted by value descending, then label.
func (s Summary) CategoryChart() []ChartPoint {
	points := make([]ChartPoint, 0, len(s.ByCategory))
	for label, v := range s.ByCategory {
		points = append(points, ChartPoint{Label: label, Value: v})
	}
	sortPoints(points)
	return points
}

// TripChart returns ByTrip sorted by value descending, then title.
func (s Summary) TripChart() []ChartPoint {
	points := make([]ChartPoint, 0, len(s.ByTrip))
	for _, tt := range s.ByTrip {
		points = append(points, ChartPoint{Label: tt.Title, Value: tt.Total})
	}
	sortPoints(points)
	return points
}

func sortPoints(points []ChartPoint) {
	sort.Slice(points, func(i, j int) bool {
		if c := points[i].Value.Cmp(points[j].Value); c != 0 {
			return c > 0
		}
		return points[i].Label < points[j].Label
	})
}
