package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canteen/canteen/internal/cache"
	"github.com/canteen/canteen/internal/config"
	"github.com/canteen/canteen/internal/handler"
	"github.com/canteen/canteen/internal/metrics"
	"github.com/canteen/canteen/internal/middleware"
)

type routerDeps struct {
	cfg    *config.Config
	logger *slog.Logger

	root        *handler.Handler
	health      *handler.HealthHandler
	allergenics *handler.AllergenicHandler
	meals       *handler.MealHandler
	menus       *handler.MenuHandler
	users       *handler.UserHandler

	verifier middleware.TokenVerifier
	limiter  cache.Limiter
	recorder metrics.Recorder
	// prometheus is nil when METRICS_ENABLED=false.
	prometheus *metrics.PrometheusRecorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	cfg := d.cfg
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	if d.prometheus != nil {
		r.Use(d.prometheus.Instrument)
	}

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	if d.prometheus != nil {
		r.Method("GET", "/metrics", d.prometheus.Handler())
	}
	r.Get("/", d.root.Hello)

	session := middleware.Session(middleware.SessionConfig{
		Logger:     d.logger,
		Verifier:   d.verifier,
		CookieName: cfg.SessionCookieName,
	})
	apiLimit := middleware.RateLimitAPI(middleware.RateLimitConfig{
		Logger:   d.logger,
		Limiter:  d.limiter,
		Recorder: d.recorder,
		Enabled:  cfg.RateLimitAPIEnabled,
		Limit:    cache.PerMinute(cfg.RateLimitAPIRPM, cfg.RateLimitAPIBurst),
	})
	signInLimit := middleware.RateLimitSignIn(middleware.RateLimitConfig{
		Logger:   d.logger,
		Limiter:  d.limiter,
		Recorder: d.recorder,
		Enabled:  cfg.RateLimitSignInEnabled,
		Limit:    cache.PerSecond(cfg.RateLimitSignInRPS, cfg.RateLimitSignInBurst),
	})

	r.Route("/api", func(r chi.Router) {
		// Session endpoints that must work without a session.
		r.With(signInLimit).Post("/users/sign-in", d.users.SignIn)
		r.Get("/users/sign-out", d.users.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(session)
			r.Use(apiLimit)

			r.Get("/users/me", d.users.Me)

			r.Route("/allergenics", func(r chi.Router) {
				r.Get("/", d.allergenics.List)
				r.Post("/", d.allergenics.Create)
				r.Get("/{id}", d.allergenics.Get)
				r.Put("/{id}", d.allergenics.Update)
				r.Delete("/{id}", d.allergenics.Delete)
			})

			r.Route("/meals", func(r chi.Router) {
				r.Get("/", d.meals.List)
				r.Post("/", d.meals.Create)
				r.Post("/ratings/{id}", d.meals.CreateRating)
				r.Put("/ratings/{id}", d.meals.UpdateRating)
				r.Delete("/ratings/{id}/{userId}", d.meals.DeleteRating)
				r.Get("/{id}", d.meals.Get)
				r.Put("/{id}", d.meals.Update)
				r.Delete("/{id}", d.meals.Delete)
			})

			r.Route("/menus", func(r chi.Router) {
				r.Get("/", d.menus.List)
				r.Post("/", d.menus.Create)
				r.Get("/{id}", d.menus.Get)
				r.Put("/{id}", d.menus.Update)
				r.Delete("/{id}", d.menus.Delete)
			})
		})
	})

	r.NotFound(d.root.NotFound)
	r.MethodNotAllowed(d.root.MethodNotAllowed)

	return r
}
