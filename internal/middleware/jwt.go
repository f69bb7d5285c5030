package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/config"
	"TRIPPLANNER_BACK-END/internal/logger"
	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
	"TRIPPLANNER_BACK-END/internal/utils"
)

// JWTClaims represents the claims in the JWT token
type JWTClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	IsSuperuser bool      `json:"is_superuser"`
	jwt.RegisteredClaims
}

// GenerateToken generates a JWT token for the given user
func GenerateToken(userID uuid.UUID, email string, isSuperuser bool, cfg *config.JWTConfig) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:      userID,
		Email:       email,
		IsSuperuser: isSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   "access",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string, cfg *config.JWTConfig) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	// reset tokens share the secret but must not authenticate requests
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.Subject == "access" {
		return claims, nil
	}

	return nil, jwt.ErrTokenMalformed
}

// UserLookup loads the current state of the account behind a token.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware validates JWT tokens in the Authorization header. The
// account is reloaded on every request: disabled or deleted users are
// rejected and the superuser flag comes from the database, not the token.
func AuthMiddleware(cfg *config.JWTConfig, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Authorization header required")
				return
			}

			// Extract token from "Bearer <token>"
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid authorization header format")
				return
			}

			claims, err := ValidateToken(tokenParts[1], cfg)
			if err != nil {
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Account no longer exists")
					return
				}
				logger.LogError("middleware", "AuthMiddleware", "failed to load user", map[string]any{"user_id": claims.UserID}, err)
				utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
				return
			}
			if !user.IsActive {
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Account is disabled")
				return
			}

			ctx := utils.WithUser(r.Context(), user.ID, user.Email, user.IsSuperuser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects callers who are not currently superusers. It must run after AuthMiddleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !utils.IsSuperuserFromContext(r.Context()) {
			utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Superuser access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
