// Package stats aggregates persisted prompt runs into usage reports:
// per-user and per-team totals, leaderboards, time series, and
// savings-versus-baseline comparisons.
package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/saad2134/greenprompt/internal/db"
)

// ErrTeamNotFound is returned for team queries against an unknown team ID.
var ErrTeamNotFound = errors.New("team not found")

// Baseline constants for the savings comparison: an unoptimized prompt is
// assumed to cost 150 J, with fixed carbon/water/cost conversion factors.
const (
	baselineEnergyPerPrompt = 150.0
	co2KgPerJoule           = 0.0004
	waterLitersPerJoule     = 0.5
	costUSDPerJoule         = 0.00001
)

// SavingsComparison contrasts actual usage against the fixed baseline.
type SavingsComparison struct {
	PromptCount          int     `json:"prompt_count"`
	AvgEnergyPerPrompt   float64 `json:"avg_energy_per_prompt"`
	TotalEnergyUsed      float64 `json:"total_energy_used"`
	BaselineEnergy       float64 `json:"baseline_energy"`
	EnergySaved          float64 `json:"energy_saved"`
	SavingsPercent       float64 `json:"savings_percent"`
	CO2PreventedKg       float64 `json:"co2_prevented_kg"`
	WaterSavedLiters     float64 `json:"water_saved_liters"`
	EstimatedCostSavings float64 `json:"estimated_cost_savings"`
}

// UserStats summarizes one owner's runs over a period.
type UserStats struct {
	UserID             string            `json:"user_id"`
	PeriodDays         int               `json:"period_days"`
	TotalEnergyJoules  float64           `json:"total_energy_joules"`
	TotalCarbonKg      float64           `json:"total_carbon_kg"`
	TotalWaterLiters   float64           `json:"total_water_liters"`
	TotalCostUSD       float64           `json:"total_cost_usd"`
	TotalPrompts       int               `json:"total_prompts"`
	AvgEnergyPerPrompt float64           `json:"avg_energy_per_prompt"`
	Savings            SavingsComparison `json:"savings_comparison"`
}

// TeamMember is one owner's slice of a team's usage.
type TeamMember struct {
	UserID            string  `json:"user_id"`
	TotalEnergyJoules float64 `json:"total_energy_joules"`
	PromptCount       int     `json:"prompt_count"`
}

// TeamStats summarizes a team's runs plus a member leaderboard.
type TeamStats struct {
	TeamID            string       `json:"team_id"`
	PeriodDays        int          `json:"period_days"`
	TotalEnergyJoules float64      `json:"total_energy_joules"`
	TotalCarbonKg     float64      `json:"total_carbon_kg"`
	TotalWaterLiters  float64      `json:"total_water_liters"`
	TotalCostUSD      float64      `json:"total_cost_usd"`
	TotalPrompts      int          `json:"total_prompts"`
	Leaderboard       []TeamMember `json:"leaderboard"`
}

// LeaderboardEntry ranks one owner by total energy (lowest first).
// Organization scope fills the team fields instead of user_id.
type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"user_id,omitempty"`
	TeamID             string  `json:"team_id,omitempty"`
	TeamName           string  `json:"team_name,omitempty"`
	TotalEnergyJoules  float64 `json:"total_energy_joules"`
	TotalCarbonKg      float64 `json:"total_carbon_kg"`
	PromptCount        int     `json:"prompt_count"`
	AvgEnergyPerPrompt float64 `json:"avg_energy_per_prompt,omitempty"`
}

// Improvement reports an owner whose average energy per prompt dropped
// between the previous period and the current one.
type Improvement struct {
	UserID             string  `json:"user_id"`
	ImprovementPercent float64 `json:"improvement_percent"`
	PreviousAvgEnergy  float64 `json:"previous_avg_energy"`
	CurrentAvgEnergy   float64 `json:"current_avg_energy"`
}

// TimeSeriesPoint is one time bucket of aggregated usage.
type TimeSeriesPoint struct {
	Timestamp    string  `json:"timestamp"`
	EnergyJoules float64 `json:"energy_joules"`
	CarbonKg     float64 `json:"carbon_kg"`
	CostUSD      float64 `json:"cost_usd"`
	PromptCount  int     `json:"prompt_count"`
}

func sinceClause(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02 15:04:05")
}

// ForUser aggregates an owner's runs over the trailing period and computes
// the savings comparison against the fixed baseline.
func ForUser(ctx context.Context, database *db.DB, owner string, days int) (UserStats, error) {
	s := UserStats{UserID: owner, PeriodDays: days}
	err := database.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(energy_joules),0), COALESCE(SUM(carbon_kg),0),
		       COALESCE(SUM(water_liters),0), COALESCE(SUM(cost_usd),0),
		       COUNT(id), COALESCE(AVG(energy_joules),0)
		FROM prompt_runs WHERE owner=? AND created_at >= ?`,
		owner, sinceClause(days),
	).Scan(&s.TotalEnergyJoules, &s.TotalCarbonKg, &s.TotalWaterLiters,
		&s.TotalCostUSD, &s.TotalPrompts, &s.AvgEnergyPerPrompt)
	if err != nil {
		return UserStats{}, fmt.Errorf("stats.ForUser: %w", err)
	}
	s.Savings = savingsComparison(s.TotalPrompts, s.AvgEnergyPerPrompt)
	return s, nil
}

func savingsComparison(promptCount int, avgEnergy float64) SavingsComparison {
	baseline := float64(promptCount) * baselineEnergyPerPrompt
	actual := float64(promptCount) * avgEnergy
	saved := baseline - actual
	percent := 0.0
	if baseline > 0 {
		percent = saved / baseline * 100
	}
	return SavingsComparison{
		PromptCount:          promptCount,
		AvgEnergyPerPrompt:   round2(avgEnergy),
		TotalEnergyUsed:      round2(actual),
		BaselineEnergy:       round2(baseline),
		EnergySaved:          round2(saved),
		SavingsPercent:       round2(percent),
		CO2PreventedKg:       round4(saved * co2KgPerJoule),
		WaterSavedLiters:     round2(saved * waterLitersPerJoule),
		EstimatedCostSavings: round4(saved * costUSDPerJoule),
	}
}

// ForTeam aggregates a team's runs and its per-member leaderboard,
// members sorted ascending by total energy.
func ForTeam(ctx context.Context, database *db.DB, teamID string, days int) (TeamStats, error) {
	exists, err := database.TeamExists(teamID)
	if err != nil {
		return TeamStats{}, fmt.Errorf("stats.ForTeam: %w", err)
	}
	if !exists {
		return TeamStats{}, ErrTeamNotFound
	}

	since := sinceClause(days)
	s := TeamStats{TeamID: teamID, PeriodDays: days}
	err = database.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(energy_joules),0), COALESCE(SUM(carbon_kg),0),
		       COALESCE(SUM(water_liters),0), COALESCE(SUM(cost_usd),0), COUNT(id)
		FROM prompt_runs WHERE team_id=? AND created_at >= ?`,
		teamID, since,
	).Scan(&s.TotalEnergyJoules, &s.TotalCarbonKg, &s.TotalWaterLiters, &s.TotalCostUSD, &s.TotalPrompts)
	if err != nil {
		return TeamStats{}, fmt.Errorf("stats.ForTeam: totals: %w", err)
	}

	rows, err := database.QueryContext(ctx, `
		SELECT owner, COALESCE(SUM(energy_joules),0), COUNT(id)
		FROM prompt_runs WHERE team_id=? AND created_at >= ?
		GROUP BY owner ORDER BY SUM(energy_joules) ASC`,
		teamID, since,
	)
	if err != nil {
		return TeamStats{}, fmt.Errorf("stats.ForTeam: members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.UserID, &m.TotalEnergyJoules, &m.PromptCount); err != nil {
			return TeamStats{}, fmt.Errorf("stats.ForTeam: scan: %w", err)
		}
		s.Leaderboard = append(s.Leaderboard, m)
	}
	return s, rows.Err()
}

// Leaderboard ranks owners by total energy ascending, globally or within a
// team, or ranks whole teams within an organization. scopeID is the team ID
// for team scope and the organization ID for organization scope. A team
// scope with an unknown team returns ErrTeamNotFound.
func Leaderboard(ctx context.Context, database *db.DB, scope, scopeID string, days, limit int) ([]LeaderboardEntry, error) {
	if scope == "organization" {
		return organizationLeaderboard(ctx, database, scopeID, days, limit)
	}

	query := `
		SELECT owner, COALESCE(SUM(energy_joules),0), COALESCE(SUM(carbon_kg),0),
		       COUNT(id), COALESCE(AVG(energy_joules),0)
		FROM prompt_runs WHERE created_at >= ?`
	args := []interface{}{sinceClause(days)}

	if scope == "team" {
		exists, err := database.TeamExists(scopeID)
		if err != nil {
			return nil, fmt.Errorf("stats.Leaderboard: %w", err)
		}
		if !exists {
			return nil, ErrTeamNotFound
		}
		query += ` AND team_id=?`
		args = append(args, scopeID)
	}
	query += ` GROUP BY owner ORDER BY SUM(energy_joules) ASC LIMIT ?`
	args = append(args, limit)

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stats.Leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.TotalEnergyJoules, &e.TotalCarbonKg,
			&e.PromptCount, &e.AvgEnergyPerPrompt); err != nil {
			return nil, fmt.Errorf("stats.Leaderboard: scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// organizationLeaderboard ranks an organization's teams by summed energy.
func organizationLeaderboard(ctx context.Context, database *db.DB, orgID string, days, limit int) ([]LeaderboardEntry, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT t.id, t.name, COALESCE(SUM(r.energy_joules),0), COALESCE(SUM(r.carbon_kg),0), COUNT(r.id)
		FROM prompt_runs r JOIN teams t ON r.team_id = t.id
		WHERE t.organization_id=? AND r.created_at >= ?
		GROUP BY t.id ORDER BY SUM(r.energy_joules) ASC LIMIT ?`,
		orgID, sinceClause(days), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("stats.organizationLeaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.TeamID, &e.TeamName, &e.TotalEnergyJoules,
			&e.TotalCarbonKg, &e.PromptCount); err != nil {
			return nil, fmt.Errorf("stats.organizationLeaderboard: scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MostImproved compares each owner's average energy per prompt between the
// previous period and the current one, returning up to ten owners whose
// average dropped, sorted by improvement percentage.
func MostImproved(ctx context.Context, database *db.DB, teamID string, days int) ([]Improvement, error) {
	midPoint := sinceClause(days * 2)
	start := sinceClause(days)

	previous, err := avgEnergyByOwner(ctx, database, teamID,
		`created_at >= ? AND created_at < ?`, midPoint, start)
	if err != nil {
		return nil, fmt.Errorf("stats.MostImproved: previous: %w", err)
	}
	current, err := avgEnergyByOwner(ctx, database, teamID, `created_at >= ?`, start)
	if err != nil {
		return nil, fmt.Errorf("stats.MostImproved: current: %w", err)
	}

	var improvements []Improvement
	for owner, prevAvg := range previous {
		curAvg, ok := current[owner]
		if !ok || prevAvg <= 0 || curAvg <= 0 {
			continue
		}
		pct := (prevAvg - curAvg) / prevAvg * 100
		if pct <= 0 {
			continue
		}
		improvements = append(improvements, Improvement{
			UserID:             owner,
			ImprovementPercent: round2(pct),
			PreviousAvgEnergy:  round2(prevAvg),
			CurrentAvgEnergy:   round2(curAvg),
		})
	}
	sort.Slice(improvements, func(i, j int) bool {
		return improvements[i].ImprovementPercent > improvements[j].ImprovementPercent
	})
	if len(improvements) > 10 {
		improvements = improvements[:10]
	}
	return improvements, nil
}

func avgEnergyByOwner(ctx context.Context, database *db.DB, teamID, timeClause string, timeArgs ...interface{}) (map[string]float64, error) {
	query := `SELECT owner, AVG(energy_joules) FROM prompt_runs WHERE ` + timeClause
	args := timeArgs
	if teamID != "" {
		query += ` AND team_id=?`
		args = append(args, teamID)
	}
	query += ` GROUP BY owner`

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var owner string
		var avg float64
		if err := rows.Scan(&owner, &avg); err != nil {
			return nil, err
		}
		out[owner] = avg
	}
	return out, rows.Err()
}

// TimeSeries buckets runs by hour or day, optionally filtered by owner or
// team, and returns per-bucket sums in chronological order.
func TimeSeries(ctx context.Context, database *db.DB, owner, teamID string, days int, granularity string) ([]TimeSeriesPoint, error) {
	bucket := `strftime('%Y-%m-%d', created_at)`
	if granularity == "hour" {
		bucket = `strftime('%Y-%m-%dT%H:00:00', created_at)`
	}

	query := `SELECT ` + bucket + ` AS period,
		COALESCE(SUM(energy_joules),0), COALESCE(SUM(carbon_kg),0),
		COALESCE(SUM(cost_usd),0), COUNT(id)
		FROM prompt_runs WHERE created_at >= ?`
	args := []interface{}{sinceClause(days)}

	switch {
	case owner != "":
		query += ` AND owner=?`
		args = append(args, owner)
	case teamID != "":
		query += ` AND team_id=?`
		args = append(args, teamID)
	}
	query += ` GROUP BY period ORDER BY period ASC`

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stats.TimeSeries: %w", err)
	}
	defer rows.Close()

	var points []TimeSeriesPoint
	for rows.Next() {
		var p TimeSeriesPoint
		if err := rows.Scan(&p.Timestamp, &p.EnergyJoules, &p.CarbonKg, &p.CostUSD, &p.PromptCount); err != nil {
			return nil, fmt.Errorf("stats.TimeSeries: scan: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// TeamEnergyToday sums a team's energy since midnight UTC, for budget checks.
func TeamEnergyToday(ctx context.Context, database *db.DB, teamID string) (float64, error) {
	var total float64
	err := database.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(energy_joules),0) FROM prompt_runs
		WHERE team_id=? AND created_at >= ?`,
		teamID, time.Now().UTC().Format("2006-01-02")+" 00:00:00",
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("stats.TeamEnergyToday: %w", err)
	}
	return total, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
