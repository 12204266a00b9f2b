package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/canteen/canteen/internal/auth"
	"github.com/canteen/canteen/internal/model"
)

// DefaultSessionCookie is the cookie carrying the session token.
const DefaultSessionCookie = "jwt-token"

// MsgAccessDenied is returned for every session failure so callers cannot
// tell a missing token from a forged one.
const MsgAccessDenied = "Access denied. No valid session token provided."

// TokenVerifier turns a session token into its claims.
type TokenVerifier interface {
	Verify(token string) (*model.SessionClaims, error)
}

// SessionConfig holds configuration for the session gate.
type SessionConfig struct {
	Logger     *slog.Logger
	Verifier   TokenVerifier
	CookieName string
}

// Session returns a middleware that requires a valid session cookie.
// On success the claims are attached to the request context.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = DefaultSessionCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(name); err == nil {
				token = c.Value
			}
			if token == "" {
				logSessionFailure(cfg.Logger, r, "missing_token")
				writeSessionError(w)
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				logSessionFailure(cfg.Logger, r, "invalid_token")
				writeSessionError(w)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logSessionFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("session rejected",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func writeSessionError(w http.ResponseWriter) {
	writeMessage(w, http.StatusUnauthorized, MsgAccessDenied)
}

// writeMessage writes the API error body {"message": msg}.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Message string `json:"message"`
	}{msg})
}
