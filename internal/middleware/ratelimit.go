package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/canteen/canteen/internal/auth"
	"github.com/canteen/canteen/internal/cache"
	"github.com/canteen/canteen/internal/metrics"
)

// Rate limit scopes, used in logs and metrics.
const (
	ScopeAPI    = "api"
	ScopeSignIn = "sign_in"
)

// RateLimitConfig holds configuration for one rate limiting middleware.
type RateLimitConfig struct {
	Logger   *slog.Logger
	Limiter  cache.Limiter
	Recorder metrics.Recorder
	Enabled  bool
	Limit    cache.Limit
}

// RateLimitAPI limits requests per signed-in user.
// Must be applied after Session.
func RateLimitAPI(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, ScopeAPI, func(r *http.Request) string {
		userID := auth.UserIDFromContext(r.Context())
		if userID == "" {
			return ""
		}
		return cache.UserBucket(userID)
	})
}

// RateLimitSignIn limits sign-in attempts per client IP.
func RateLimitSignIn(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, ScopeSignIn, func(r *http.Request) string {
		return cache.IPBucket(getClientIP(r))
	})
}

func rateLimit(cfg RateLimitConfig, scope string, bucket func(*http.Request) string) func(http.Handler) http.Handler {
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil || cfg.Limit.Unlimited() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := bucket(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.Allow(r.Context(), key, cfg.Limit)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", scope),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				// Fail open.
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.Limit.Burst, result.Remaining, result.ResetAt)

			if !result.Allowed {
				retryAfter := retrySeconds(result.RetryAfter)
				recorder.IncRateLimited(scope)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("scope", scope),
					slog.String("ip", getClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeMessage(w, http.StatusTooManyRequests,
					fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit <= 0 || remaining < 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

// retrySeconds rounds up so clients never retry too early.
func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}

// getClientIP returns the client address without port. chi's RealIP runs
// first, so proxy headers are already folded into RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
