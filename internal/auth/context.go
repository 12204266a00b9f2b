package auth

import (
	"context"

	"github.com/canteen/canteen/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing SessionClaims.
	sessionContextKey contextKey = "session_claims"
)

// ContextWithSession adds the session claims to the context.
func ContextWithSession(ctx context.Context, claims *model.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionContextKey, claims)
}

// SessionFromContext retrieves the session claims from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *model.SessionClaims {
	claims, ok := ctx.Value(sessionContextKey).(*model.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// UserIDFromContext is a convenience function to get the user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	claims := SessionFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
