package models

import (
	"time"

	"github.com/google/uuid"
)

// Keys of api_configurations rows
const (
	APIKeyWeather    = "WEATHER_API"
	APIKeyGoogleMaps = "GOOGLE_MAPS"
	APIKeyOpenAI     = "OPENAI_API"
)

// APIKeys lists the accepted values of APIConfiguration.Key.
var APIKeys = []string{APIKeyWeather, APIKeyGoogleMaps, APIKeyOpenAI}

// APIConfiguration stores a third-party API key, editable by superusers only
type APIConfiguration struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	Description *string   `json:"description" db:"description"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EmailConfiguration is the singleton SMTP transport configuration
type EmailConfiguration struct {
	Host             string    `json:"host" db:"host"`
	Port             int       `json:"port" db:"port"`
	Username         string    `json:"username" db:"username"`
	Password         string    `json:"-" db:"password"`
	UseTLS           bool      `json:"use_tls" db:"use_tls"`
	UseSSL           bool      `json:"use_ssl" db:"use_ssl"`
	DefaultFromEmail string    `json:"default_from_email" db:"default_from_email"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
