package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip statuses
const (
	TripPlanning  = "PLANNING"
	TripConfirmed = "CONFIRMED"
	TripCompleted = "COMPLETED"
	TripCanceled  = "CANCELED"
)

// TripStatuses lists the accepted values of Trip.Status.
var TripStatuses = []string{TripPlanning, TripConfirmed, TripCompleted, TripCanceled}

// Trip represents a travel trip owned by a user
type Trip struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Title     string     `json:"title" db:"title"`
	StartDate *time.Time `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date" db:"end_date"`
	Status    string     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// DurationDays is end-start in whole days, or fallback when either date is missing.
func (t Trip) DurationDays(fallback int) int {
	if t.StartDate == nil || t.EndDate == nil {
		return fallback
	}
	return int(t.EndDate.Sub(*t.StartDate).Hours() / 24)
}

// Collaborator roles
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	// RoleOwner is never stored; access checks report it for the trip's user.
	RoleOwner = "owner"
)

// Collaborator grants a non-owner access to a trip
type Collaborator struct {
	TripID    uuid.UUID `json:"trip_id" db:"trip_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
