package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a file uploaded against an itinerary item (tickets, vouchers)
type Attachment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ItemID      uuid.UUID `json:"item_id" db:"item_id"`
	Title       string    `json:"title" db:"title"`
	FileKey     string    `json:"-" db:"file_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// Photo is an image in a trip's gallery
type Photo struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TripID      uuid.UUID  `json:"trip_id" db:"trip_id"`
	Caption     string     `json:"caption" db:"caption"`
	FileKey     string     `json:"-" db:"file_key"`
	ContentType string     `json:"content_type" db:"content_type"`
	Size        int64      `json:"size" db:"size"`
	TakenAt     *time.Time `json:"taken_at" db:"taken_at"`
	UploadedAt  time.Time  `json:"uploaded_at" db:"uploaded_at"`
}
