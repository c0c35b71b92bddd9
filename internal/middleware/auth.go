package middleware

import (
	"context"
	"net/http"
	"strings"

	"marketplace/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const OwnerKey contextKey = "owner"

// TokenValidator checks a bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(tokenString string) (*domain.OwnerClaims, error)
}

// OwnerAuthMiddleware requires a valid owner bearer token
func OwnerAuthMiddleware(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, MessageUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, MessageUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, MessageUnauthorized)
				return
			}

			if claims.Role != domain.RoleOwner {
				logger.Warn("Token without owner role",
					zap.String("subject", claims.Subject),
					zap.String("role", claims.Role),
				)
				RespondWithError(w, http.StatusForbidden, MessageUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OwnerKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOwner extracts the authenticated owner from request context
func GetOwner(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(OwnerKey).(string)
	return owner, ok
}
