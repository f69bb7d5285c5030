package finance

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPPLANNER_BACK-END/internal/currency"
)

type offline struct{}

func (offline) Quote(context.Context, currency.Code) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("offline")
}

func newCache() *currency.RateCache {
	return currency.NewRateCache(currency.NewConverter(offline{}))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarizeExample(t *testing.T) {
	trip := uuid.New()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	lines := []Line{
		{ExpenseID: uuid.New(), TripID: trip, TripTitle: "Europa", Category: "Food", Date: now, Amount: dec("100"), Currency: currency.USD},
		{ExpenseID: uuid.New(), TripID: trip, TripTitle: "Europa", Category: "Food", Date: now, Amount: dec("50"), Currency: currency.USD, Paid: true},
		{ExpenseID: uuid.New(), TripID: trip, TripTitle: "Europa", Category: "Transport", Date: now, Amount: dec("10"), Currency: currency.USD},
	}

	s := Summarize(context.Background(), lines, newCache(), now)

	assert.True(t, s.Total.Equal(dec("960")), "total %s", s.Total)
	assert.True(t, s.ByCategory["Food"].Equal(dec("900")))
	assert.True(t, s.ByCategory["Transport"].Equal(dec("60")))
	assert.True(t, s.Paid.Equal(dec("300")))
	assert.True(t, s.Unpaid.Equal(dec("660")))
	assert.True(t, s.ByTrip[trip].Total.Equal(dec("960")))
	require.Len(t, s.Rows, 3)
	assert.True(t, s.Rows[0].Rate.Equal(dec("6.00")))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(context.Background(), nil, newCache(), time.Now())

	assert.True(t, s.Total.IsZero())
	assert.True(t, s.YearTotal.IsZero())
	assert.True(t, s.Paid.IsZero())
	assert.True(t, s.Unpaid.IsZero())
	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.ByTrip)
	assert.Empty(t, s.Rows)
	assert.Empty(t, s.CategoryChart())
}

func TestSummarizeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	trips := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	categories := []string{"Food", "Hotel", "Transport", "Tours"}

	lines := make([]Line, 0, 200)
	for i := 0; i < 200; i++ {
		lines = append(lines, Line{
			ExpenseID: uuid.New(),
			TripID:    trips[rng.Intn(len(trips))],
			Category:  categories[rng.Intn(len(categories))],
			Date:      now.AddDate(-rng.Intn(3), 0, -rng.Intn(60)),
			Amount:    decimal.New(rng.Int63n(1000000), -2),
			Currency:  currency.Supported[rng.Intn(len(currency.Supported))],
			Paid:      rng.Intn(2) == 0,
		})
	}

	s := Summarize(context.Background(), lines, newCache(), now)

	sumCat := decimal.Zero
	for _, v := range s.ByCategory {
		sumCat = sumCat.Add(v)
	}
	sumTrip := decimal.Zero
	for _, v := range s.ByTrip {
		sumTrip = sumTrip.Add(v.Total)
	}
	assert.True(t, s.Total.Equal(sumCat), "category sum %s vs total %s", sumCat, s.Total)
	assert.True(t, s.Total.Equal(sumTrip), "trip sum %s vs total %s", sumTrip, s.Total)
	assert.True(t, s.Total.Equal(s.Paid.Add(s.Unpaid)))
	assert.True(t, s.YearTotal.LessThanOrEqual(s.Total))

	shuffled := append([]Line(nil), lines...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	again := Summarize(context.Background(), shuffled, newCache(), now)

	assert.True(t, s.Total.Equal(again.Total))
	assert.Equal(t, chartStrings(s.CategoryChart()), chartStrings(again.CategoryChart()))
	for i := range s.Rows {
		assert.Equal(t, s.Rows[i].ExpenseID, again.Rows[i].ExpenseID)
	}
}

func TestYearTotalOnlyCountsCurrentYear(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	lines := []Line{
		{ExpenseID: uuid.New(), Category: "Food", Date: now, Amount: dec("10"), Currency: currency.BRL},
		{ExpenseID: uuid.New(), Category: "Food", Date: now.AddDate(0, 0, -20), Amount: dec("5"), Currency: currency.BRL},
	}

	s := Summarize(context.Background(), lines, newCache(), now)

	assert.True(t, s.YearTotal.Equal(dec("10")))
	assert.True(t, s.Total.Equal(dec("15")))
}

func TestYearTotalKeepsCivilDateWestOfUTC(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, brt)
	lines := []Line{
		{ExpenseID: uuid.New(), Category: "Hotel", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Amount: dec("100"), Currency: currency.BRL},
		{ExpenseID: uuid.New(), Category: "Hotel", Date: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), Amount: dec("40"), Currency: currency.BRL},
	}

	s := Summarize(context.Background(), lines, newCache(), now)

	assert.True(t, s.Total.Equal(dec("140")), s.Total.String())
	assert.True(t, s.YearTotal.Equal(dec("100")), s.YearTotal.String())
}

func TestCharts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	now := time.Now()
	lines := []Line{
		{ExpenseID: uuid.New(), TripID: a, TripTitle: "Chile", Category: "Hotel", Date: now, Amount: dec("10"), Currency: currency.BRL},
		{ExpenseID: uuid.New(), TripID: b, TripTitle: "Peru", Category: "Food", Date: now, Amount: dec("30"), Currency: currency.BRL},
		{ExpenseID: uuid.New(), TripID: a, TripTitle: "Chile", Category: "Bus", Date: now, Amount: dec("10"), Currency: currency.BRL},
	}

	s := Summarize(context.Background(), lines, newCache(), now)

	cats := s.CategoryChart()
	require.Len(t, cats, 3)
	assert.Equal(t, []string{"Food", "Bus", "Hotel"}, []string{cats[0].Label, cats[1].Label, cats[2].Label})

	trips := s.TripChart()
	require.Len(t, trips, 2)
	assert.Equal(t, "Peru", trips[0].Label)
	assert.True(t, trips[1].Value.Equal(dec("20")))
}

func chartStrings(points []ChartPoint) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Label+"="+p.Value.StringFixed(2))
	}
	return out
}
