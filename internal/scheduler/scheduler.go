// Package scheduler wraps robfig/cron to run periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/saad2134/greenprompt/internal/db"
	"github.com/saad2134/greenprompt/internal/notify"
	"github.com/saad2134/greenprompt/internal/stats"
)

// Engine manages the cron jobs: nightly retention pruning of old prompt
// runs and a daily team energy budget check.
type Engine struct {
	cron          *cron.Cron
	database      *db.DB
	dispatcher    *notify.Dispatcher
	retentionDays int
}

// New creates a new cron-based Engine. Retention is disabled when
// retentionDays is zero or negative.
func New(database *db.DB, dispatcher *notify.Dispatcher, retentionDays int) *Engine {
	return &Engine{
		cron:          cron.New(),
		database:      database,
		dispatcher:    dispatcher,
		retentionDays: retentionDays,
	}
}

// Start registers the jobs and begins the cron engine. The engine stops
// when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	if e.retentionDays > 0 {
		if _, err := e.cron.AddFunc("@daily", func() { e.pruneOldRuns(ctx) }); err != nil {
			return fmt.Errorf("scheduler.Start: %w", err)
		}
	}
	if _, err := e.cron.AddFunc("0 18 * * *", func() { e.checkTeamBudgets(ctx) }); err != nil {
		return fmt.Errorf("scheduler.Start: %w", err)
	}
	e.cron.Start()
	go func() {
		<-ctx.Done()
		e.cron.Stop()
	}()
	return nil
}

// pruneOldRuns deletes prompt runs older than the retention window.
func (e *Engine) pruneOldRuns(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -e.retentionDays).Format("2006-01-02 15:04:05")
	res, err := e.database.ExecContext(ctx,
		`DELETE FROM prompt_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		log.Printf("scheduler: prune runs: %v", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("scheduler: pruned %d prompt runs older than %d days", n, e.retentionDays)
	}
}

// checkTeamBudgets alerts on teams that exceeded their daily energy budget.
func (e *Engine) checkTeamBudgets(ctx context.Context) {
	rows, err := e.database.QueryContext(ctx,
		`SELECT id, daily_energy_budget_joules FROM teams WHERE daily_energy_budget_joules > 0`)
	if err != nil {
		log.Printf("scheduler: load teams: %v", err)
		return
	}
	defer rows.Close()

	type team struct {
		id     string
		budget float64
	}
	var teams []team
	for rows.Next() {
		var t team
		if err := rows.Scan(&t.id, &t.budget); err != nil {
			log.Printf("scheduler: scan team: %v", err)
			continue
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		log.Printf("scheduler: iterate teams: %v", err)
		return
	}

	for _, t := range teams {
		used, err := stats.TeamEnergyToday(ctx, e.database, t.id)
		if err != nil {
			log.Printf("scheduler: budget check team %s: %v", t.id, err)
			continue
		}
		if used >= t.budget {
			e.dispatcher.BudgetAlert(t.id, used, t.budget)
		}
	}
}
