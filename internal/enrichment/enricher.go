package enrichment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"TRIPPLANNER_BACK-END/internal/metrics"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/timeline"
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

type Forecaster interface {
	Forecast(ctx context.Context, location, date string) (Forecast, error)
}

// ItemWriter persists enrichment columns.
type ItemWriter interface {
	UpdateEnrichment(ctx context.Context, it *models.TripItem) error
}

// Result says which fields a pass filled in.
type Result struct {
	Geocoded bool
	Weather  bool
}

func (r Result) Changed() bool { return r.Geocoded || r.Weather }

type Enricher struct {
	geocoder   Geocoder
	forecaster Forecaster
	items      ItemWriter
	loc        *time.Location
}

func NewEnricher(geocoder Geocoder, forecaster Forecaster, items ItemWriter, loc *time.Location) *Enricher {
	if loc == nil {
		loc = time.UTC
	}
	return &Enricher{geocoder: geocoder, forecaster: forecaster, items: items, loc: loc}
}

// EnrichItem fills only the empty coordinate and weather fields of it and
// saves them. Running it twice is a no-op. Provider failures are logged.
func (e *Enricher) EnrichItem(ctx context.Context, it *models.TripItem) Result {
	var res Result
	address := it.Address()
	if address == "" {
		return res
	}
	entry := log.WithFields(log.Fields{"item_id": it.ID, "address": address})

	if !it.HasCoordinates() && e.geocoder != nil {
		coords, err := e.geocoder.Geocode(ctx, address)
		switch {
		case err == nil:
			it.LocationLat = decimal.NewNullDecimal(coords.Lat)
			it.LocationLng = decimal.NewNullDecimal(coords.Lng)
			res.Geocoded = true
			metrics.ObserveProvider("geocode", metrics.OutcomeOK)
			metrics.ItemsEnriched.WithLabelValues("geocode").Inc()
		case errors.Is(err, ErrNoAPIKey):
			metrics.ObserveProvider("geocode", metrics.OutcomeSkipped)
		default:
			metrics.ObserveProvider("geocode", metrics.OutcomeError)
			entry.Warnf("geocode failed: %v", err)
		}
	}

	if !it.HasWeather() && e.forecaster != nil {
		forecast, err := e.forecaster.Forecast(ctx, address, timeline.DateOf(it.StartDatetime, e.loc))
		switch {
		case err == nil:
			it.WeatherTemp = &forecast.Temp
			it.WeatherCondition = &forecast.Condition
			it.WeatherIcon = &forecast.Icon
			res.Weather = true
			metrics.ObserveProvider("weather", metrics.OutcomeOK)
			metrics.ItemsEnriched.WithLabelValues("weather").Inc()
		case errors.Is(err, ErrNoAPIKey):
			metrics.ObserveProvider("weather", metrics.OutcomeSkipped)
		default:
			metrics.ObserveProvider("weather", metrics.OutcomeError)
			entry.Warnf("weather forecast failed: %v", err)
		}
	}

	if res.Changed() && e.items != nil {
		if err := e.items.UpdateEnrichment(ctx, it); err != nil {
			entry.Errorf("save enrichment failed: %v", err)
		}
	}
	return res
}
