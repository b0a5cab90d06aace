// Package db provides the SQLite database wrapper and model types for GreenPrompt.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB and provides migration support.
type DB struct {
	*sql.DB
}

// New opens a SQLite connection with WAL mode and foreign keys enabled.
// Driver name is "sqlite" (modernc.org/sqlite, not mattn/go-sqlite3).
func New(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_journal=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("db.New: open: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("db.New: ping: %w", err)
	}
	// Limit to 1 writer at a time to avoid SQLITE_BUSY in WAL mode.
	sqlDB.SetMaxOpenConns(1)
	return &DB{sqlDB}, nil
}

// Migrate runs all CREATE TABLE IF NOT EXISTS migrations exactly once per schema version.
func (d *DB) Migrate() error {
	// Ensure the settings table exists first (holds schema_version).
	if _, err := d.Exec(ddlSettings); err != nil {
		return fmt.Errorf("db.Migrate: settings table: %w", err)
	}

	var version int
	row := d.QueryRow(`SELECT value FROM settings WHERE key='schema_version' LIMIT 1`)
	_ = row.Scan(&version) // Ignore scan error — row may not exist yet (version=0).

	if version >= schemaVersion {
		return nil
	}

	tables := []string{
		ddlAPIKeys,
		ddlPromptRuns,
		ddlTeams,
		ddlPromptRunsOwnerIdx,
		ddlPromptRunsTeamIdx,
		ddlPromptRunsCreatedIdx,
	}
	for _, ddl := range tables {
		if _, err := d.Exec(ddl); err != nil {
			return fmt.Errorf("db.Migrate: %w", err)
		}
	}

	_, err := d.Exec(`INSERT INTO settings (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, schemaVersion)
	if err != nil {
		return fmt.Errorf("db.Migrate: schema_version upsert: %w", err)
	}
	return nil
}

const schemaVersion = 1

// ── Model Types ──────────────────────────────────────────────────────────────

// APIKey is a stored bearer credential. Only the salted hash is persisted.
type APIKey struct {
	ID         int          `json:"id"`
	KeyHash    string       `json:"-"`
	Owner      string       `json:"owner"`
	Name       string       `json:"name"`
	IsActive   bool         `json:"is_active"`
	RateLimit  int          `json:"rate_limit"`
	CreatedAt  time.Time    `json:"created_at"`
	LastUsedAt sql.NullTime `json:"last_used_at,omitempty"`
}

// PromptRun records the estimated (or measured) footprint of one prompt.
type PromptRun struct {
	ID                    int            `json:"id"`
	Owner                 string         `json:"owner"`
	TeamID                sql.NullString `json:"team_id,omitempty"`
	PromptHash            string         `json:"prompt_hash"`
	PromptLength          int            `json:"prompt_length"`
	Model                 string         `json:"model"`
	PromptTokens          int            `json:"prompt_tokens"`
	EstimatedOutputTokens int            `json:"estimated_output_tokens"`
	ActualOutputTokens    sql.NullInt64  `json:"actual_output_tokens,omitempty"`
	EnergyJoules          float64        `json:"energy_joules"`
	CarbonKg              float64        `json:"carbon_kg"`
	WaterLiters           float64        `json:"water_liters"`
	CostUSD               float64        `json:"cost_usd"`
	CreatedAt             time.Time      `json:"created_at"`
}

// Team groups owners for shared stats and energy budgets. Teams may roll up
// into an organization for org-wide leaderboards.
type Team struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	OrganizationID    sql.NullString `json:"organization_id,omitempty"`
	DailyEnergyBudget float64        `json:"daily_energy_budget_joules"`
	CreatedAt         time.Time      `json:"created_at"`
}

// ── DDL Statements ───────────────────────────────────────────────────────────

const ddlSettings = `CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);`

const ddlAPIKeys = `CREATE TABLE IF NOT EXISTS api_keys (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	key_hash     TEXT    NOT NULL UNIQUE,
	owner        TEXT    NOT NULL,
	name         TEXT    NOT NULL DEFAULT '',
	is_active    INTEGER NOT NULL DEFAULT 1,
	rate_limit   INTEGER NOT NULL DEFAULT 1000,
	created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
	last_used_at DATETIME
);`

const ddlPromptRuns = `CREATE TABLE IF NOT EXISTS prompt_runs (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
	owner                   TEXT    NOT NULL,
	team_id                 TEXT,
	prompt_hash             TEXT    NOT NULL DEFAULT '',
	prompt_length           INTEGER NOT NULL DEFAULT 0,
	model                   TEXT    NOT NULL,
	prompt_tokens           INTEGER NOT NULL DEFAULT 0,
	estimated_output_tokens INTEGER NOT NULL DEFAULT 0,
	actual_output_tokens    INTEGER,
	energy_joules           REAL    NOT NULL DEFAULT 0,
	carbon_kg               REAL    NOT NULL DEFAULT 0,
	water_liters            REAL    NOT NULL DEFAULT 0,
	cost_usd                REAL    NOT NULL DEFAULT 0,
	created_at              DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const ddlTeams = `CREATE TABLE IF NOT EXISTS teams (
	id                         TEXT PRIMARY KEY,
	name                       TEXT NOT NULL,
	organization_id            TEXT,
	daily_energy_budget_joules REAL NOT NULL DEFAULT 0,
	created_at                 DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const ddlPromptRunsOwnerIdx = `CREATE INDEX IF NOT EXISTS idx_prompt_runs_owner
	ON prompt_runs(owner, created_at);`

const ddlPromptRunsTeamIdx = `CREATE INDEX IF NOT EXISTS idx_prompt_runs_team
	ON prompt_runs(team_id, created_at);`

const ddlPromptRunsCreatedIdx = `CREATE INDEX IF NOT EXISTS idx_prompt_runs_created
	ON prompt_runs(created_at);`

// ── Helpers ───────────────────────────────────────────────────────────────────

// GetSetting retrieves a settings value by key, returning fallback if not found.
func (d *DB) GetSetting(key, fallback string) string {
	var v string
	if err := d.QueryRow(`SELECT value FROM settings WHERE key=?`, key).Scan(&v); err != nil {
		return fallback
	}
	return v
}

// SetSetting upserts a settings key-value pair.
func (d *DB) SetSetting(key, value string) error {
	_, err := d.Exec(
		`INSERT INTO settings (key, value) VALUES (?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("db.SetSetting: %w", err)
	}
	return nil
}

// InsertPromptRun persists a run and returns its row ID.
func (d *DB) InsertPromptRun(run *PromptRun) (int, error) {
	res, err := d.Exec(`
		INSERT INTO prompt_runs (owner, team_id, prompt_hash, prompt_length, model,
			prompt_tokens, estimated_output_tokens, actual_output_tokens,
			energy_joules, carbon_kg, water_liters, cost_usd)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.Owner, run.TeamID, run.PromptHash, run.PromptLength, run.Model,
		run.PromptTokens, run.EstimatedOutputTokens, run.ActualOutputTokens,
		run.EnergyJoules, run.CarbonKg, run.WaterLiters, run.CostUSD,
	)
	if err != nil {
		return 0, fmt.Errorf("db.InsertPromptRun: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db.InsertPromptRun: last id: %w", err)
	}
	return int(id), nil
}

// TeamExists reports whether a team row is present.
func (d *DB) TeamExists(teamID string) (bool, error) {
	var one int
	err := d.QueryRow(`SELECT 1 FROM teams WHERE id=?`, teamID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("db.TeamExists: %w", err)
	}
	return true, nil
}
