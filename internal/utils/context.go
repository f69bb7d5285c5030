package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey      contextKey = "user_id"
	emailKey       contextKey = "email"
	isSuperuserKey contextKey = "is_superuser"
)

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, userID uuid.UUID, email string, isSuperuser bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, emailKey, email)
	return context.WithValue(ctx, isSuperuserKey, isSuperuser)
}

// GetUserIDFromContext returns the authenticated user id
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetEmailFromContext returns the authenticated user's email
func GetEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

// IsSuperuserFromContext reports whether the authenticated user is a superuser
func IsSuperuserFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(isSuperuserKey).(bool)
	return v
}
