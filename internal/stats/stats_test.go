package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saad2134/greenprompt/internal/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "stats_test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate())
	t.Cleanup(func() { database.Close() })
	return database
}

func insertRun(t *testing.T, database *db.DB, owner, teamID string, energy, carbon, cost float64, daysAgo int) {
	t.Helper()
	createdAt := time.Now().UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02 15:04:05")
	var team interface{}
	if teamID != "" {
		team = teamID
	}
	_, err := database.Exec(`
		INSERT INTO prompt_runs (owner, team_id, model, energy_joules, carbon_kg, water_liters, cost_usd, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		owner, team, "gpt-4o", energy, carbon, energy*0.5, cost, createdAt)
	require.NoError(t, err)
}

func TestForUser(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	insertRun(t, database, "alice", "", 100, 0.04, 0.002, 1)
	insertRun(t, database, "alice", "", 50, 0.02, 0.001, 2)
	insertRun(t, database, "bob", "", 300, 0.12, 0.006, 1)
	// Outside the 30-day window.
	insertRun(t, database, "alice", "", 999, 0.4, 0.02, 40)

	s, err := ForUser(ctx, database, "alice", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalPrompts)
	assert.InDelta(t, 150.0, s.TotalEnergyJoules, 1e-9)
	assert.InDelta(t, 0.06, s.TotalCarbonKg, 1e-9)
	assert.InDelta(t, 75.0, s.AvgEnergyPerPrompt, 1e-9)
}

func TestForUser_SavingsBaseline(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// Two runs at 100 J each against a 150 J/prompt baseline.
	insertRun(t, database, "alice", "", 100, 0, 0, 1)
	insertRun(t, database, "alice", "", 100, 0, 0, 1)

	s, err := ForUser(ctx, database, "alice", 30)
	require.NoError(t, err)
	assert.InDelta(t, 300.0, s.Savings.BaselineEnergy, 1e-9)
	assert.InDelta(t, 200.0, s.Savings.TotalEnergyUsed, 1e-9)
	assert.InDelta(t, 100.0, s.Savings.EnergySaved, 1e-9)
	assert.InDelta(t, 33.33, s.Savings.SavingsPercent, 0.01)
	assert.InDelta(t, 0.04, s.Savings.CO2PreventedKg, 1e-9)
	assert.InDelta(t, 50.0, s.Savings.WaterSavedLiters, 1e-9)
}

func TestForUser_Empty(t *testing.T) {
	database := openTestDB(t)
	s, err := ForUser(context.Background(), database, "nobody", 30)
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalPrompts)
	assert.InDelta(t, 0.0, s.Savings.SavingsPercent, 1e-9)
}

func TestForTeam(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	_, err := database.Exec(`INSERT INTO teams (id, name) VALUES ('green', 'Green Team')`)
	require.NoError(t, err)

	insertRun(t, database, "alice", "green", 50, 0.02, 0.001, 1)
	insertRun(t, database, "bob", "green", 200, 0.08, 0.004, 1)
	insertRun(t, database, "carol", "", 500, 0.2, 0.01, 1)

	s, err := ForTeam(ctx, database, "green", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalPrompts)
	assert.InDelta(t, 250.0, s.TotalEnergyJoules, 1e-9)
	require.Len(t, s.Leaderboard, 2)
	// Ascending energy: alice first.
	assert.Equal(t, "alice", s.Leaderboard[0].UserID)
	assert.Equal(t, "bob", s.Leaderboard[1].UserID)
}

func TestForTeam_NotFound(t *testing.T) {
	database := openTestDB(t)
	_, err := ForTeam(context.Background(), database, "ghosts", 30)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestLeaderboard_Global(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	insertRun(t, database, "alice", "", 50, 0.02, 0.001, 1)
	insertRun(t, database, "bob", "", 200, 0.08, 0.004, 1)
	insertRun(t, database, "bob", "", 100, 0.04, 0.002, 2)

	entries, err := Leaderboard(ctx, database, "global", "", 30, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "alice", entries[0].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.InDelta(t, 300.0, entries[1].TotalEnergyJoules, 1e-9)
	assert.InDelta(t, 150.0, entries[1].AvgEnergyPerPrompt, 1e-9)
}

func TestLeaderboard_TeamScopeUnknownTeam(t *testing.T) {
	database := openTestDB(t)
	_, err := Leaderboard(context.Background(), database, "team", "ghosts", 30, 10)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestLeaderboard_OrganizationRanksTeams(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	_, err := database.Exec(`
		INSERT INTO teams (id, name, organization_id) VALUES
			('green', 'Green Team', 'acme'),
			('blue', 'Blue Team', 'acme'),
			('red', 'Red Team', 'other')`)
	require.NoError(t, err)

	insertRun(t, database, "alice", "green", 50, 0.02, 0.001, 1)
	insertRun(t, database, "bob", "blue", 200, 0.08, 0.004, 1)
	insertRun(t, database, "bob", "blue", 100, 0.04, 0.002, 2)
	// A different organization's team stays out of the ranking.
	insertRun(t, database, "carol", "red", 10, 0.004, 0.0002, 1)

	entries, err := Leaderboard(ctx, database, "organization", "acme", 30, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "green", entries[0].TeamID)
	assert.Equal(t, "Green Team", entries[0].TeamName)
	assert.Empty(t, entries[0].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "blue", entries[1].TeamID)
	assert.InDelta(t, 300.0, entries[1].TotalEnergyJoules, 1e-9)
	assert.Equal(t, 2, entries[1].PromptCount)
}

func TestMostImproved(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// alice: 200 J avg in the previous period, 100 J now — 50% improvement.
	insertRun(t, database, "alice", "", 200, 0, 0, 40)
	insertRun(t, database, "alice", "", 100, 0, 0, 5)
	// bob regressed.
	insertRun(t, database, "bob", "", 100, 0, 0, 40)
	insertRun(t, database, "bob", "", 300, 0, 0, 5)

	improved, err := MostImproved(ctx, database, "", 30)
	require.NoError(t, err)
	require.Len(t, improved, 1)
	assert.Equal(t, "alice", improved[0].UserID)
	assert.InDelta(t, 50.0, improved[0].ImprovementPercent, 1e-9)
}

func TestTimeSeries_Daily(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	insertRun(t, database, "alice", "", 100, 0.04, 0.002, 2)
	insertRun(t, database, "alice", "", 50, 0.02, 0.001, 2)
	insertRun(t, database, "alice", "", 75, 0.03, 0.0015, 1)

	points, err := TimeSeries(ctx, database, "alice", "", 30, "day")
	require.NoError(t, err)
	require.Len(t, points, 2)
	// Chronological order: the older bucket first.
	assert.InDelta(t, 150.0, points[0].EnergyJoules, 1e-9)
	assert.Equal(t, 2, points[0].PromptCount)
	assert.InDelta(t, 75.0, points[1].EnergyJoules, 1e-9)
	assert.Less(t, points[0].Timestamp, points[1].Timestamp)
}

func TestTeamEnergyToday(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	_, err := database.Exec(`INSERT INTO teams (id, name) VALUES ('green', 'Green Team')`)
	require.NoError(t, err)

	insertRun(t, database, "alice", "green", 120, 0, 0, 0)
	insertRun(t, database, "alice", "green", 80, 0, 0, 3)

	total, err := TeamEnergyToday(ctx, database, "green")
	require.NoError(t, err)
	assert.InDelta(t, 120.0, total, 1e-9)
}
