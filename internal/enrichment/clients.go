// Package enrichment fills itinerary items with coordinates and a weather
// forecast pulled from third-party APIs.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
)

var (
	// ErrNoAPIKey means the provider's key is missing or inactive.
	ErrNoAPIKey = errors.New("api key not configured")
	// ErrNoResult means the provider answered but had nothing for the query.
	ErrNoResult = errors.New("no result")
)

// KeySource reads API keys from api_configurations.
type KeySource interface {
	ActiveAPIKey(ctx context.Context, key string) (string, error)
}

type Option func(*httpDoer)

type httpDoer struct {
	httpClient *http.Client
}

func WithHTTPClient(hc *http.Client) Option {
	return func(d *httpDoer) {
		if hc != nil {
			d.httpClient = hc
		}
	}
}

func newDoer(timeout time.Duration, opts []Option) httpDoer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := httpDoer{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d httpDoer) getJSON(ctx context.Context, provider, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create %s request failed: %w", provider, err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s api failed: %w", provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response failed: %w", provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.L().Warnf("%s response: status=%d body=%s", provider, resp.StatusCode, truncate(string(data), 512))
		return fmt.Errorf("%s http error: status=%d", provider, resp.StatusCode)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s response failed: %w", provider, err)
	}
	return nil
}

func apiKey(ctx context.Context, keys KeySource, name string) (string, error) {
	if keys == nil {
		return "", ErrNoAPIKey
	}
	key, err := keys.ActiveAPIKey(ctx, name)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && strings.TrimSpace(key) == "") {
		return "", ErrNoAPIKey
	}
	return strings.TrimSpace(key), err
}

// Coordinates is a geocoded point, six decimal places.
type Coordinates struct {
	Lat decimal.Decimal
	Lng decimal.Decimal
}

// GeocodeClient resolves addresses with the Google Geocoding API.
type GeocodeClient struct {
	baseURL string
	keys    KeySource
	httpDoer
}

func NewGeocodeClient(baseURL string, keys KeySource, timeout time.Duration, opts ...Option) *GeocodeClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api"
	}
	return &GeocodeClient{baseURL: strings.TrimRight(baseURL, "/"), keys: keys, httpDoer: newDoer(timeout, opts)}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat decimal.Decimal `json:"lat"`
				Lng decimal.Decimal `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *GeocodeClient) Geocode(ctx context.Context, address string) (Coordinates, error) {
	key, err := apiKey(ctx, c.keys, models.APIKeyGoogleMaps)
	if err != nil {
		return Coordinates{}, err
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", key)

	var payload geocodeResponse
	if err := c.getJSON(ctx, "geocode", c.baseURL+"/geocode/json?"+q.Encode(), &payload); err != nil {
		return Coordinates{}, err
	}
	if payload.Status == "ZERO_RESULTS" || (payload.Status == "OK" && len(payload.Results) == 0) {
		return Coordinates{}, ErrNoResult
	}
	if payload.Status != "OK" {
		return Coordinates{}, fmt.Errorf("geocode status %s", payload.Status)
	}

	loc := payload.Results[0].Geometry.Location
	return Coordinates{Lat: loc.Lat.Round(6), Lng: loc.Lng.Round(6)}, nil
}

// Forecast is the day forecast stored on an item.
type Forecast struct {
	Temp      string
	Condition string
	Icon      string
}

// WeatherClient queries WeatherAPI's forecast endpoint.
type WeatherClient struct {
	baseURL string
	keys    KeySource
	httpDoer
}

func NewWeatherClient(baseURL string, keys KeySource, timeout time.Duration, opts ...Option) *WeatherClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "http://api.weatherapi.com/v1"
	}
	return &WeatherClient{baseURL: strings.TrimRight(baseURL, "/"), keys: keys, httpDoer: newDoer(timeout, opts)}
}

type forecastResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				AvgTempC  float64 `json:"avgtemp_c"`
				Condition struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Forecast returns the forecast for location on date (YYYY-MM-DD).
func (c *WeatherClient) Forecast(ctx context.Context, location, date string) (Forecast, error) {
	key, err := apiKey(ctx, c.keys, models.APIKeyWeather)
	if err != nil {
		return Forecast{}, err
	}

	q := url.Values{}
	q.Set("key", key)
	q.Set("q", location)
	q.Set("dt", date)
	q.Set("lang", "pt")

	var payload forecastResponse
	if err := c.getJSON(ctx, "weather", c.baseURL+"/forecast.json?"+q.Encode(), &payload); err != nil {
		return Forecast{}, err
	}
	if len(payload.Forecast.ForecastDay) == 0 {
		return Forecast{}, ErrNoResult
	}

	day := payload.Forecast.ForecastDay[0].Day
	icon := day.Condition.Icon
	if strings.HasPrefix(icon, "//") {
		icon = "https:" + icon
	}
	return Forecast{
		Temp:      strconv.Itoa(int(math.RoundToEven(day.AvgTempC))),
		Condition: day.Condition.Text,
		Icon:      icon,
	}, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
