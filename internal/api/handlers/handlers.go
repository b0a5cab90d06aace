// Package handlers provides HTTP handler implementations for the GreenPrompt REST API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/saad2134/greenprompt/internal/config"
	"github.com/saad2134/greenprompt/internal/db"
	"github.com/saad2134/greenprompt/internal/ws"
)

// Handler holds all shared dependencies for API handler methods.
type Handler struct {
	db     *db.DB
	config *config.Config
	hub    *ws.Hub
}

// New creates a Handler with all dependencies.
func New(database *db.DB, cfg *config.Config, hub *ws.Hub) *Handler {
	return &Handler{db: database, config: cfg, hub: hub}
}

// Health reports service liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := h.db.Ping(); err != nil {
		dbStatus = "unreachable"
	}
	ok(w, map[string]interface{}{
		"status":    "ok",
		"version":   "1.0.0",
		"database":  dbStatus,
		"timestamp": time.Now().UTC(),
	})
}

// ── Response helpers ──────────────────────────────────────────────────────────

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response{Success: false, Error: msg})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request, name string) string {
	return r.PathValue(name)
}

// queryInt parses an integer query parameter, falling back on absence or junk.
func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

const maxPromptLength = 10000

// validatePrompt returns a client-facing message for an unusable prompt,
// or "" when the prompt is acceptable.
func validatePrompt(prompt string) string {
	if len(prompt) == 0 {
		return "prompt is required"
	}
	if len(prompt) > maxPromptLength {
		return "prompt exceeds maximum length of 10000 characters"
	}
	return ""
}
