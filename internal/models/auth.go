package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Hidden from JSON responses
	DisplayName  *string   `json:"display_name" db:"display_name"`
	AvatarURL    *string   `json:"avatar_url" db:"avatar_url"`
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AuthVerification is a one-time password-reset code
type AuthVerification struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

// Access log actions
const (
	AccessLogin       = "LOGIN"
	AccessLogout      = "LOGOUT"
	AccessLoginFailed = "LOGIN_FAILED"
)

// AccessLog records sign-in activity. UserID is nil for failed attempts on unknown e-mails.
type AccessLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Email     string     `json:"email" db:"email"`
	Action    string     `json:"action" db:"action"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
}
