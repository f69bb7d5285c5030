package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/config"
)

const (
	resetSubject    = "password_reset"
	tokenIssuer     = "trip-planner"
	defaultResetTTL = 10 * time.Minute
)

// ErrInvalidResetToken covers every way a reset token can fail to verify.
var ErrInvalidResetToken = errors.New("invalid reset token")

// ResetTokenClaims binds a reset token to one mailed verification code.
// ResetPassword looks the code up again, so a used code kills the token.
type ResetTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Code   string    `json:"code"`
	jwt.RegisteredClaims
}

// GenerateResetToken signs a short-lived token handed out after the code is verified.
func GenerateResetToken(userID uuid.UUID, email, code string, cfg *config.JWTConfig) (string, error) {
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	now := time.Now()
	claims := ResetTokenClaims{
		UserID: userID,
		Email:  email,
		Code:   code,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   resetSubject,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// ValidateResetToken accepts only HS256 reset tokens from this service.
// Access tokens fail the subject check.
func ValidateResetToken(tokenString string, cfg *config.JWTConfig) (*ResetTokenClaims, error) {
	claims := &ResetTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(resetSubject),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResetToken, err)
	}
	if claims.UserID == uuid.Nil || claims.Code == "" {
		return nil, ErrInvalidResetToken
	}
	return claims, nil
}
