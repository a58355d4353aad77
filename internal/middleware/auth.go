package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/wishlist/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
)

// Response bodies written by the auth gate.
const (
	msgTokenMissing = "Token is not provided"
	msgUnauthorized = "Unauthorized access"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// WithUserID returns a copy of ctx carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// The Authorization header carries the raw token; a "Bearer " prefix is
// accepted and stripped. A missing token is answered with 403, an invalid
// one with 401. On success the user ID is added to the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r.Header.Get("Authorization"))
			if tokenString == "" {
				http.Error(w, msgTokenMissing, http.StatusForbidden)
				return
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				http.Error(w, msgUnauthorized, http.StatusUnauthorized)
				return
			}

			setLoggedUser(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		header = strings.TrimSpace(header[len("Bearer "):])
	}
	return header
}
