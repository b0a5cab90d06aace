package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/saad2134/greenprompt/internal/auth"
	"github.com/saad2134/greenprompt/internal/db"
	"github.com/saad2134/greenprompt/internal/energy"
	"github.com/saad2134/greenprompt/internal/ws"
)

type trackRequest struct {
	Prompt             string   `json:"prompt"`
	Model              string   `json:"model"`
	InputTokens        *int     `json:"input_tokens"`
	OutputTokens       *int     `json:"output_tokens"`
	ActualEnergyJoules *float64 `json:"actual_energy_joules"`
	ActualCostUSD      *float64 `json:"actual_cost_usd"`
	TeamID             string   `json:"team_id"`
}

type trackResponse struct {
	ID           int       `json:"id"`
	Owner        string    `json:"owner"`
	Model        string    `json:"model"`
	EnergyJoules float64   `json:"energy_joules"`
	CarbonKg     float64   `json:"carbon_kg"`
	WaterLiters  float64   `json:"water_liters"`
	CostUSD      float64   `json:"cost_usd"`
	CreatedAt    time.Time `json:"created_at"`
}

// Track records a completed prompt run. Measured values, when supplied,
// take precedence over the estimates.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validatePrompt(req.Prompt); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}
	if req.Model == "" {
		fail(w, http.StatusBadRequest, "model is required")
		return
	}
	if req.TeamID != "" {
		exists, err := h.db.TeamExists(req.TeamID)
		if err != nil {
			log.Printf("handlers.Track: team lookup: %v", err)
			fail(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !exists {
			fail(w, http.StatusNotFound, "team not found: "+req.TeamID)
			return
		}
	}

	inputTokens := energy.EstimateTokens(req.Prompt)
	if req.InputTokens != nil {
		inputTokens = *req.InputTokens
	}
	task := energy.DetectTaskType(req.Prompt)
	outputTokens := energy.EstimateOutputTokens(inputTokens, task)
	if req.OutputTokens != nil {
		outputTokens = *req.OutputTokens
	}

	format := energy.DetectOutputFormat(req.Prompt)
	joules := energy.EstimateEnergy(inputTokens, outputTokens, req.Model, format)
	if req.ActualEnergyJoules != nil {
		joules = *req.ActualEnergyJoules
	}
	footprint := energy.CalculateCarbonFootprint(joules, h.config.DefaultRegion)
	costUSD := energy.CostForTokens(inputTokens+outputTokens, req.Model).CostUSD
	if req.ActualCostUSD != nil {
		costUSD = *req.ActualCostUSD
	}

	owner := auth.OwnerFromContext(r.Context())
	run := &db.PromptRun{
		Owner:                 owner,
		PromptHash:            auth.FingerprintPrompt(req.Prompt),
		PromptLength:          len(req.Prompt),
		Model:                 req.Model,
		PromptTokens:          inputTokens,
		EstimatedOutputTokens: outputTokens,
		EnergyJoules:          joules,
		CarbonKg:              footprint.CO2Kg,
		WaterLiters:           footprint.WaterLiters,
		CostUSD:               costUSD,
	}
	if req.TeamID != "" {
		run.TeamID = sql.NullString{String: req.TeamID, Valid: true}
	}
	if req.OutputTokens != nil {
		run.ActualOutputTokens = sql.NullInt64{Int64: int64(*req.OutputTokens), Valid: true}
	}

	id, err := h.db.InsertPromptRun(run)
	if err != nil {
		log.Printf("handlers.Track: insert run: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.BroadcastRun(ws.TypeRunTracked, owner, req.TeamID, req.Model, joules, footprint.CO2Kg, costUSD)

	ok(w, trackResponse{
		ID:           id,
		Owner:        owner,
		Model:        req.Model,
		EnergyJoules: joules,
		CarbonKg:     footprint.CO2Kg,
		WaterLiters:  footprint.WaterLiters,
		CostUSD:      costUSD,
		CreatedAt:    time.Now().UTC(),
	})
}
