package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item types
const (
	ItemFlight     = "FLIGHT"
	ItemHotel      = "HOTEL"
	ItemActivity   = "ACTIVITY"
	ItemRental     = "RENTAL"
	ItemRestaurant = "RESTAURANT"
	ItemNote       = "NOTE"
)

// ItemTypes lists the accepted values of TripItem.ItemType.
var ItemTypes = []string{ItemFlight, ItemHotel, ItemActivity, ItemRental, ItemRestaurant, ItemNote}

// TripItem is one scheduled itinerary entry. StartDatetime is the only required
// temporal anchor; the item belongs to the calendar day of StartDatetime.
type TripItem struct {
	ID               uuid.UUID           `json:"id" db:"id"`
	TripID           uuid.UUID           `json:"trip_id" db:"trip_id"`
	ItemType         string              `json:"item_type" db:"item_type"`
	Name             string              `json:"name" db:"name"`
	StartDatetime    time.Time           `json:"start_datetime" db:"start_datetime"`
	EndDatetime      *time.Time          `json:"end_datetime" db:"end_datetime"`
	LocationAddress  *string             `json:"location_address" db:"location_address"`
	LocationLat      decimal.NullDecimal `json:"location_lat" db:"location_lat"`
	LocationLng      decimal.NullDecimal `json:"location_lng" db:"location_lng"`
	Notes            string              `json:"notes" db:"notes"`
	WeatherTemp      *string             `json:"weather_temp" db:"weather_temp"`
	WeatherCondition *string             `json:"weather_condition" db:"weather_condition"`
	WeatherIcon      *string             `json:"weather_icon" db:"weather_icon"`
	ReminderHours    int                 `json:"reminder_hours" db:"reminder_hours"`
	ReminderSent     bool                `json:"reminder_sent" db:"reminder_sent"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

// Address returns the trimmed location address or "".
func (i TripItem) Address() string {
	if i.LocationAddress == nil {
		return ""
	}
	return *i.LocationAddress
}

// HasCoordinates reports whether both lat and lng are stored.
func (i TripItem) HasCoordinates() bool {
	return i.LocationLat.Valid && i.LocationLng.Valid
}

// HasWeather reports whether a weather snapshot is stored.
func (i TripItem) HasWeather() bool {
	return i.WeatherCondition != nil && *i.WeatherCondition != ""
}

// ReminderDue reports whether the reminder for the item should be sent at now.
func (i TripItem) ReminderDue(now time.Time) bool {
	if i.ReminderHours <= 0 || i.ReminderSent {
		return false
	}
	trigger := i.StartDatetime.Add(-time.Duration(i.ReminderHours) * time.Hour)
	return !now.Before(trigger)
}

// ReminderCandidate is a pending reminder joined with what the e-mail needs.
type ReminderCandidate struct {
	Item       TripItem
	TripTitle  string
	OwnerEmail string
	OwnerName  string
}
