package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChecklistCategory is used when an item is added without a category.
const DefaultChecklistCategory = "Geral"

// Checklist is the single packing list of a trip
type Checklist struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TripID    uuid.UUID `json:"trip_id" db:"trip_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChecklistItem is one line of a checklist
type ChecklistItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChecklistID uuid.UUID `json:"checklist_id" db:"checklist_id"`
	Category    string    `json:"category" db:"category"`
	Item        string    `json:"item" db:"item"`
	IsChecked   bool      `json:"is_checked" db:"is_checked"`
}
