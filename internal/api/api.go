// Package api sets up the HTTP routes and middleware for GreenPrompt's REST API.
package api

import (
	"net/http"

	"github.com/saad2134/greenprompt/internal/api/handlers"
	"github.com/saad2134/greenprompt/internal/auth"
	"github.com/saad2134/greenprompt/internal/config"
	"github.com/saad2134/greenprompt/internal/db"
	"github.com/saad2134/greenprompt/internal/limiter"
	"github.com/saad2134/greenprompt/internal/ws"
)

// Deps holds all dependencies injected into the API handlers.
type Deps struct {
	DB      *db.DB
	Config  *config.Config
	Hub     *ws.Hub
	Limiter *limiter.Limiter
}

// SetupRoutes registers all HTTP routes on the given ServeMux.
// Uses Go 1.22 method+pattern routing syntax.
func SetupRoutes(mux *http.ServeMux, deps *Deps) {
	h := handlers.New(deps.DB, deps.Config, deps.Hub)

	requireAuth := func(next http.Handler) http.Handler {
		return auth.RequireAPIKey(deps.DB, deps.Config.APIKeySalt, deps.Limiter, next)
	}

	// ── Public routes ────────────────────────────────────────────────────────
	mux.HandleFunc("GET /health", h.Health)

	// ── Estimation ───────────────────────────────────────────────────────────
	mux.Handle("POST /v1/analyze", requireAuth(http.HandlerFunc(h.Analyze)))
	mux.Handle("POST /v1/optimize", requireAuth(http.HandlerFunc(h.Optimize)))
	mux.Handle("POST /v1/benchmark", requireAuth(http.HandlerFunc(h.Benchmark)))
	mux.Handle("POST /v1/recommend", requireAuth(http.HandlerFunc(h.Recommend)))

	// ── Model catalog ────────────────────────────────────────────────────────
	mux.Handle("GET /v1/models", requireAuth(http.HandlerFunc(h.ListModels)))
	mux.Handle("GET /v1/models/{model}", requireAuth(http.HandlerFunc(h.ModelSpecs)))

	// ── Tracking and stats ───────────────────────────────────────────────────
	mux.Handle("POST /v1/track", requireAuth(http.HandlerFunc(h.Track)))
	mux.Handle("GET /v1/stats/user", requireAuth(http.HandlerFunc(h.UserStats)))
	mux.Handle("GET /v1/stats/team/{id}", requireAuth(http.HandlerFunc(h.TeamStats)))
	mux.Handle("GET /v1/leaderboard", requireAuth(http.HandlerFunc(h.Leaderboard)))
	mux.Handle("GET /v1/leaderboard/improved", requireAuth(http.HandlerFunc(h.MostImproved)))
	mux.Handle("GET /v1/timeseries", requireAuth(http.HandlerFunc(h.TimeSeries)))

	// ── Live feed ────────────────────────────────────────────────────────────
	mux.Handle("GET /v1/ws", requireAuth(http.HandlerFunc(deps.Hub.ServeWS)))
}
