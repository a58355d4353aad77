// Package server assembles the HTTP surface: routes, middleware chain and
// the listening server.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/wishlist/internal/auth"
	"github.com/mmynk/wishlist/internal/middleware"
	"github.com/mmynk/wishlist/internal/service"
	"github.com/mmynk/wishlist/internal/storage"
)

// healthTimeout bounds the store ping behind /healthz.
const healthTimeout = 2 * time.Second

// Deps are the components the router wires together.
type Deps struct {
	Store       storage.Store
	JWTManager  *auth.JWTManager
	Hasher      *auth.PasswordHasher
	Logger      *slog.Logger
	Registry    *prometheus.Registry
	CORSOrigins []string
}

// NewHandler builds the full handler chain.
// Every route is served both at the root and under /api.
func NewHandler(deps Deps) http.Handler {
	authSvc := service.NewAuthService(
		auth.NewPasswordAuthenticator(deps.Store, deps.Hasher),
		deps.JWTManager,
		deps.Store,
		deps.Logger,
	)
	wishlistSvc := service.NewWishlistService(deps.Store, deps.Logger)

	r := mux.NewRouter()
	r.Use(middleware.NewMetrics(deps.Registry).Middleware)

	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler(deps.Store, deps.Logger)).Methods(http.MethodGet)

	gate := middleware.RequireAuth(deps.JWTManager)
	for _, router := range []*mux.Router{r, r.PathPrefix("/api").Subrouter()} {
		// Public routes
		router.HandleFunc("/signup", authSvc.Signup).Methods(http.MethodPost)
		router.HandleFunc("/login", authSvc.Login).Methods(http.MethodPost)

		// Protected routes
		protected := router.NewRoute().Subrouter()
		protected.Use(gate)
		protected.HandleFunc("/me", authSvc.Me).Methods(http.MethodGet)
		protected.HandleFunc("/wishlists", wishlistSvc.List).Methods(http.MethodGet)
		protected.HandleFunc("/wishlists", wishlistSvc.Create).Methods(http.MethodPost)
		protected.HandleFunc("/wishlists/{id}", wishlistSvc.Delete).Methods(http.MethodDelete)
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})

	return middleware.Logging(deps.Logger)(corsHandler(r))
}

func healthHandler(store storage.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status, body := http.StatusOK, "ok"
		if err := store.Ping(ctx); err != nil {
			logger.Warn("Health check failed", "error", err)
			status, body = http.StatusServiceUnavailable, "unavailable"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(map[string]string{"status": body}); err != nil {
			logger.Warn("Failed to encode response", "error", err)
		}
	}
}
