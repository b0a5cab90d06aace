package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/saad2134/greenprompt/internal/auth"
	"github.com/saad2134/greenprompt/internal/stats"
)

// validDays bounds the trailing-window query parameter.
func validDays(days int) bool { return days >= 1 && days <= 365 }

// UserStats returns the authenticated owner's usage summary.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if !validDays(days) {
		fail(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}
	owner := auth.OwnerFromContext(r.Context())
	s, err := stats.ForUser(r.Context(), h.db, owner, days)
	if err != nil {
		log.Printf("handlers.UserStats: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	ok(w, s)
}

// TeamStats returns a team's usage summary and member leaderboard.
func (h *Handler) TeamStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if !validDays(days) {
		fail(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}
	teamID := pathID(r, "id")
	s, err := stats.ForTeam(r.Context(), h.db, teamID, days)
	if err != nil {
		if errors.Is(err, stats.ErrTeamNotFound) {
			fail(w, http.StatusNotFound, "team not found: "+teamID)
			return
		}
		log.Printf("handlers.TeamStats: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	ok(w, s)
}

// Leaderboard ranks owners by total energy ascending; organization scope
// ranks an organization's teams instead.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	limit := queryInt(r, "limit", 10)
	if !validDays(days) {
		fail(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}
	if limit < 1 || limit > 100 {
		fail(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	// Bare queries default to global; team and organization scopes carry
	// their ID in team_id.
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "global"
	}
	teamID := r.URL.Query().Get("team_id")
	switch scope {
	case "global":
	case "team":
		if teamID == "" {
			fail(w, http.StatusBadRequest, "team_id is required for team scope")
			return
		}
	case "organization":
		if teamID == "" {
			fail(w, http.StatusBadRequest, "team_id is required for organization scope")
			return
		}
	default:
		fail(w, http.StatusBadRequest, "scope must be one of: global, team, organization")
		return
	}

	entries, err := stats.Leaderboard(r.Context(), h.db, scope, teamID, days, limit)
	if err != nil {
		if errors.Is(err, stats.ErrTeamNotFound) {
			fail(w, http.StatusNotFound, "team not found: "+teamID)
			return
		}
		log.Printf("handlers.Leaderboard: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	ok(w, map[string]interface{}{
		"scope":       scope,
		"period_days": days,
		"entries":     entries,
	})
}

// MostImproved lists owners whose average energy per prompt dropped the most.
func (h *Handler) MostImproved(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if !validDays(days) {
		fail(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}
	teamID := r.URL.Query().Get("team_id")
	improved, err := stats.MostImproved(r.Context(), h.db, teamID, days)
	if err != nil {
		log.Printf("handlers.MostImproved: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	ok(w, map[string]interface{}{
		"period_days": days,
		"entries":     improved,
	})
}

// TimeSeries returns bucketed usage sums for charting.
func (h *Handler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if !validDays(days) {
		fail(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}
	granularity := r.URL.Query().Get("granularity")
	if granularity == "" {
		granularity = "day"
	}
	if granularity != "hour" && granularity != "day" {
		fail(w, http.StatusBadRequest, "granularity must be one of: hour, day")
		return
	}
	// A team_id widens the series from the caller's own runs to the team's.
	owner := auth.OwnerFromContext(r.Context())
	teamID := r.URL.Query().Get("team_id")
	if teamID != "" {
		owner = ""
	}

	points, err := stats.TimeSeries(r.Context(), h.db, owner, teamID, days, granularity)
	if err != nil {
		log.Printf("handlers.TimeSeries: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	scope := "user"
	if teamID != "" {
		scope = "team"
	}
	ok(w, map[string]interface{}{
		"scope":       scope,
		"period_days": days,
		"granularity": granularity,
		"data":        points,
	})
}
