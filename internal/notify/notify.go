// Package notify provides a notification dispatcher for budget alerts.
package notify

import (
	"fmt"
	"log"
)

// Sender can send a plain text message.
type Sender interface {
	Send(msg string) error
}

// Dispatcher routes notification events to configured adapters.
type Dispatcher struct {
	telegram Sender
}

// New creates a Dispatcher. The telegram sender may be nil (disabled).
func New(telegram Sender) *Dispatcher {
	return &Dispatcher{telegram: telegram}
}

// Send sends a message via all configured adapters.
func (d *Dispatcher) Send(msg string) {
	if d.telegram == nil {
		return
	}
	if err := d.telegram.Send(msg); err != nil {
		log.Printf("notify: telegram send: %v", err)
	}
}

// BudgetAlert sends a formatted team energy budget alert.
func (d *Dispatcher) BudgetAlert(teamID string, usedJoules, budgetJoules float64) {
	pct := 0.0
	if budgetJoules > 0 {
		pct = usedJoules / budgetJoules * 100
	}
	d.Send(fmt.Sprintf("⚡ *Energy budget alert*\n\nTeam: %s\nUsed today: %.1f J of %.1f J (%.0f%%)",
		teamID, usedJoules, budgetJoules, pct))
}
