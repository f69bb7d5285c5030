package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a monetary record attached to a trip and optionally to one item.
// Deleting the item nulls ItemID instead of deleting the expense.
type Expense struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	TripID      uuid.UUID       `json:"trip_id" db:"trip_id"`
	ItemID      *uuid.UUID      `json:"item_id" db:"item_id"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Currency    string          `json:"currency" db:"currency"`
	Category    string          `json:"category" db:"category"`
	Date        time.Time       `json:"date" db:"date"`
	IsPaid      bool            `json:"is_paid" db:"is_paid"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
