package enrichment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
)

type keyMap map[string]string

func (k keyMap) ActiveAPIKey(_ context.Context, key string) (string, error) {
	v, ok := k[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func TestGeocodeClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "Rua Augusta, Lisboa", r.URL.Query().Get("address"))
		assert.Equal(t, "maps-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":38.7100429,"lng":-9.1374021}}}]}`))
	}))
	defer srv.Close()

	c := NewGeocodeClient(srv.URL, keyMap{models.APIKeyGoogleMaps: "maps-key"}, time.Second)
	coords, err := c.Geocode(context.Background(), "Rua Augusta, Lisboa")
	require.NoError(t, err)

	assert.Equal(t, "38.710043", coords.Lat.String())
	assert.Equal(t, "-9.137402", coords.Lng.String())
}

func TestGeocodeClientStatuses(t *testing.T) {
	body := `{"status":"ZERO_RESULTS","results":[]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	c := NewGeocodeClient(srv.URL, keyMap{models.APIKeyGoogleMaps: "k"}, time.Second)

	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoResult)

	body = `{"status":"REQUEST_DENIED","results":[]}`
	_, err = c.Geocode(context.Background(), "nowhere")
	assert.ErrorContains(t, err, "REQUEST_DENIED")

	_, err = NewGeocodeClient(srv.URL, keyMap{}, time.Second).Geocode(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestWeatherClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/forecast.json", r.URL.Path)
		assert.Equal(t, "weather-key", q.Get("key"))
		assert.Equal(t, "Lisboa", q.Get("q"))
		assert.Equal(t, "2026-11-02", q.Get("dt"))
		assert.Equal(t, "pt", q.Get("lang"))
		_, _ = w.Write([]byte(`{"forecast":{"forecastday":[{"day":{"avgtemp_c":17.6,
			"condition":{"text":"Sol","icon":"//cdn.weatherapi.com/weather/64x64/day/113.png"}}}]}}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, keyMap{models.APIKeyWeather: "weather-key"}, time.Second)
	f, err := c.Forecast(context.Background(), "Lisboa", "2026-11-02")
	require.NoError(t, err)

	assert.Equal(t, Forecast{Temp: "18", Condition: "Sol", Icon: "https://cdn.weatherapi.com/weather/64x64/day/113.png"}, f)
}

func TestWeatherClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	}))
	defer srv.Close()

	_, err := NewWeatherClient(srv.URL, keyMap{models.APIKeyWeather: "k"}, time.Second).Forecast(context.Background(), "?", "2026-01-01")
	assert.ErrorContains(t, err, "status=400")
}

type fakeGeocoder struct {
	coords Coordinates
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(context.Context, string) (Coordinates, error) {
	f.calls++
	return f.coords, f.err
}

type fakeForecaster struct {
	mu    sync.Mutex
	dates []string
	err   error
}

func (f *fakeForecaster) Forecast(_ context.Context, _ string, date string) (Forecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, date)
	return Forecast{Temp: "25", Condition: "Nublado", Icon: "https://icon"}, f.err
}

type fakeItems struct {
	mu     sync.Mutex
	saved  []uuid.UUID
	listed []models.TripItem
}

func (f *fakeItems) UpdateEnrichment(_ context.Context, it *models.TripItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, it.ID)
	return nil
}

func (f *fakeItems) ListNeedingEnrichment(context.Context, time.Time, time.Duration, int) ([]models.TripItem, error) {
	return f.listed, nil
}

func (f *fakeItems) MarkEnrichmentAttempted(context.Context, []uuid.UUID, time.Time) error {
	return nil
}

// queueItems keeps items by pointer and lists them the way the database
// does: incomplete only, never attempted first, then oldest attempt.
type queueItems struct {
	mu        sync.Mutex
	items     []*models.TripItem
	attempted map[uuid.UUID]time.Time
}

func (q *queueItems) UpdateEnrichment(_ context.Context, it *models.TripItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, stored := range q.items {
		if stored.ID == it.ID {
			*stored = *it
		}
	}
	return nil
}

func (q *queueItems) ListNeedingEnrichment(_ context.Context, _ time.Time, _ time.Duration, limit int) ([]models.TripItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var pending []models.TripItem
	for _, it := range q.items {
		if !it.HasCoordinates() || it.WeatherCondition == nil {
			pending = append(pending, *it)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		ai, aok := q.attempted[pending[i].ID]
		aj, bok := q.attempted[pending[j].ID]
		if aok != bok {
			return !aok
		}
		return ai.Before(aj)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (q *queueItems) MarkEnrichmentAttempted(_ context.Context, ids []uuid.UUID, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		q.attempted[id] = at
	}
	return nil
}

func itemAt(address string, start time.Time) models.TripItem {
	return models.TripItem{ID: uuid.New(), Name: "Museu", LocationAddress: &address, StartDatetime: start}
}

func TestEnrichItemFillsEmptyFieldsOnce(t *testing.T) {
	geo := &fakeGeocoder{coords: Coordinates{Lat: decimal.RequireFromString("-22.9"), Lng: decimal.RequireFromString("-43.2")}}
	weather := &fakeForecaster{}
	items := &fakeItems{}
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	e := NewEnricher(geo, weather, items, loc)

	// 01:30 UTC is still the previous evening in São Paulo
	it := itemAt("Rio de Janeiro", time.Date(2026, 11, 3, 1, 30, 0, 0, time.UTC))
	res := e.EnrichItem(context.Background(), &it)

	assert.Equal(t, Result{Geocoded: true, Weather: true}, res)
	assert.Equal(t, "-22.9", it.LocationLat.Decimal.String())
	assert.Equal(t, "Nublado", *it.WeatherCondition)
	assert.Equal(t, []string{"2026-11-02"}, weather.dates)
	assert.Equal(t, []uuid.UUID{it.ID}, items.saved)

	res = e.EnrichItem(context.Background(), &it)
	assert.False(t, res.Changed())
	assert.Equal(t, 1, geo.calls)
	assert.Len(t, items.saved, 1)
}

func TestEnrichItemSkips(t *testing.T) {
	geo := &fakeGeocoder{err: ErrNoAPIKey}
	weather := &fakeForecaster{err: errors.New("timeout")}
	items := &fakeItems{}
	e := NewEnricher(geo, weather, items, nil)

	it := itemAt("Paris", time.Now())
	assert.False(t, e.EnrichItem(context.Background(), &it).Changed())
	assert.False(t, it.HasCoordinates())
	assert.Nil(t, it.WeatherCondition)
	assert.Empty(t, items.saved)

	noAddress := models.TripItem{ID: uuid.New()}
	assert.False(t, e.EnrichItem(context.Background(), &noAddress).Changed())
	assert.Equal(t, 1, geo.calls)
}

func TestWorkerRunOnce(t *testing.T) {
	start := time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC)
	items := &fakeItems{listed: []models.TripItem{itemAt("Lisboa", start), itemAt("Porto", start), itemAt("Faro", start)}}
	geo := &fakeGeocoder{coords: Coordinates{Lat: decimal.NewFromInt(1), Lng: decimal.NewFromInt(2)}}
	// the fake geocoder is not goroutine safe
	w := NewWorker(items, NewEnricher(geo, &fakeForecaster{}, items, time.UTC), time.Minute, 24*time.Hour, 10)
	w.concurrency = 1

	changed, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, changed)
	assert.Len(t, items.saved, 3)
}

func TestWorkerRotatesPastItemsWithoutWeather(t *testing.T) {
	start := time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC)
	q := &queueItems{attempted: map[uuid.UUID]time.Time{}}
	for _, city := range []string{"Lisboa", "Porto", "Faro"} {
		it := itemAt(city, start)
		q.items = append(q.items, &it)
	}
	geo := &fakeGeocoder{coords: Coordinates{Lat: decimal.NewFromInt(1), Lng: decimal.NewFromInt(2)}}
	noWeather := &fakeForecaster{err: ErrNoAPIKey}
	w := NewWorker(q, NewEnricher(geo, noWeather, q, time.UTC), time.Minute, 24*time.Hour, 2)
	w.concurrency = 1
	clock := start.Add(-time.Hour)
	w.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	changed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.False(t, q.items[2].HasCoordinates())

	changed, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	for _, it := range q.items {
		assert.True(t, it.HasCoordinates(), it.Name)
	}
	assert.Equal(t, 3, geo.calls)
}

func TestWorkerDisabled(t *testing.T) {
	w := NewWorker(&fakeItems{}, nil, 0, time.Hour, 0)
	assert.NoError(t, w.Run(context.Background()))
}
