package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/canteen/canteen/internal/auth"
	"github.com/canteen/canteen/internal/handler/dto"
	"github.com/canteen/canteen/internal/middleware"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/service"
	"github.com/canteen/canteen/internal/validation"
)

// UserService is the session behaviour the handler depends on.
type UserService interface {
	SignIn(ctx context.Context, email, password string) (*model.User, string, error)
	Me(ctx context.Context, claims *model.SessionClaims) (*model.User, error)
}

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	// TTL bounds the cookie lifetime; zero means a browser-session cookie.
	TTL time.Duration
}

// UserHandler handles sign-in, sign-out and the current-user lookup.
type UserHandler struct {
	svc    UserService
	cookie SessionCookie
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserService, cookie SessionCookie, logger *slog.Logger) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultSessionCookie
	}
	return &UserHandler{svc: svc, cookie: cookie, logger: logger}
}

// SignIn handles POST /api/users/sign-in.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return
	}

	creds, err := validation.ValidateSignIn(payload)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	user, token, err := h.svc.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.logSignInFailure(r, "unknown_email")
			writeError(w, http.StatusNotFound, "no user with the given email found")
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logSignInFailure(r, "bad_password")
			writeError(w, http.StatusUnauthorized, "password or email not valid")
		default:
			writeInternalError(w, r, h.logger, err)
		}
		return
	}

	http.SetCookie(w, h.sessionCookie(token))
	h.logger.Info("sign_in", "user_id", user.ID, "request_id", middleware.GetRequestID(r.Context()))
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// SignOut handles GET /api/users/sign-out.
func (h *UserHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)

	w.WriteHeader(http.StatusOK)
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, middleware.MsgAccessDenied)
			return
		}
		writeInternalError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) sessionCookie(value string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookie.TTL > 0 {
		cookie.MaxAge = int(h.cookie.TTL.Seconds())
	}
	return cookie
}

func (h *UserHandler) logSignInFailure(r *http.Request, reason string) {
	h.logger.Warn("sign_in_failed",
		"reason", reason,
		"ip", r.RemoteAddr,
		"request_id", middleware.GetRequestID(r.Context()),
	)
}
