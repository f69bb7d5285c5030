package dto

import "github.com/shopspring/decimal"

// ItemRequest creates or replaces an itinerary item
type ItemRequest struct {
	ItemType        string           `json:"item_type" validate:"required,item_type"`
	Name            string           `json:"name" validate:"required,max=200"`
	StartDatetime   string           `json:"start_datetime" validate:"required"`
	EndDatetime     *string          `json:"end_datetime"`
	LocationAddress *string          `json:"location_address" validate:"omitempty,max=255"`
	LocationLat     *decimal.Decimal `json:"location_lat"`
	LocationLng     *decimal.Decimal `json:"location_lng"`
	Notes           string           `json:"notes" validate:"max=5000"`
	ReminderHours   int              `json:"reminder_hours" validate:"gte=0,lte=720"`
}

// WeatherSnapshot is the cached forecast of an item
type WeatherSnapshot struct {
	Temp      string `json:"temp"`
	Condition string `json:"condition"`
	Icon      string `json:"icon"`
}

// ItemResponse represents an itinerary item
type ItemResponse struct {
	ID              string           `json:"id"`
	TripID          string           `json:"trip_id"`
	ItemType        string           `json:"item_type"`
	Name            string           `json:"name"`
	StartDatetime   string           `json:"start_datetime"`
	EndDatetime     *string          `json:"end_datetime"`
	LocationAddress *string          `json:"location_address"`
	LocationLat     *string          `json:"location_lat"`
	LocationLng     *string          `json:"location_lng"`
	Notes           string           `json:"notes"`
	Weather         *WeatherSnapshot `json:"weather"`
	ReminderHours   int              `json:"reminder_hours"`
	ReminderSent    bool             `json:"reminder_sent"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

// EnrichResponse reports what an enrichment pass filled in
type EnrichResponse struct {
	Item     ItemResponse `json:"item"`
	Geocoded bool         `json:"geocoded"`
	Weather  bool         `json:"weather"`
}

// TripEnrichResponse summarizes enrichment of every item of a trip
type TripEnrichResponse struct {
	Items    int `json:"items"`
	Geocoded int `json:"geocoded"`
	Weather  int `json:"weather"`
}
