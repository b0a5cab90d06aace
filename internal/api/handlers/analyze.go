package handlers

import (
	"log"
	"net/http"

	"github.com/saad2134/greenprompt/internal/auth"
	"github.com/saad2134/greenprompt/internal/db"
	"github.com/saad2134/greenprompt/internal/energy"
	"github.com/saad2134/greenprompt/internal/ws"
)

type analyzeRequest struct {
	Prompt       string `json:"prompt"`
	Model        string `json:"model"`
	MaxTokens    *int   `json:"max_tokens"`
	OutputFormat string `json:"output_format"`
	Region       string `json:"region"`
}

type analyzeResponse struct {
	InputTokens           int                    `json:"input_tokens"`
	EstimatedOutputTokens int                    `json:"estimated_output_tokens"`
	EnergyJoules          float64                `json:"energy_joules"`
	CarbonKg              float64                `json:"carbon_kg"`
	WaterLiters           float64                `json:"water_liters"`
	EstimatedCostUSD      float64                `json:"estimated_cost_usd"`
	TaskType              string                 `json:"task_type"`
	OutputFormat          string                 `json:"output_format"`
	Confidence            float64                `json:"confidence"`
	ModelInfo             map[string]interface{} `json:"model_info"`
}

// Analyze estimates the energy, carbon, water and cost footprint of a prompt
// and persists the run for the authenticated owner.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validatePrompt(req.Prompt); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}
	if req.MaxTokens != nil && (*req.MaxTokens < 1 || *req.MaxTokens > 32768) {
		fail(w, http.StatusBadRequest, "max_tokens must be between 1 and 32768")
		return
	}
	model := req.Model
	if model == "" {
		model = "gpt-4o"
	}
	region := req.Region
	if region == "" {
		region = h.config.DefaultRegion
	}

	inputTokens := energy.EstimateTokens(req.Prompt)
	task := energy.DetectTaskType(req.Prompt)
	format := energy.OutputFormat(req.OutputFormat)
	if format == "" {
		format = energy.DetectOutputFormat(req.Prompt)
	}

	outputTokens := energy.EstimateOutputTokens(inputTokens, task)
	if req.MaxTokens != nil {
		outputTokens = *req.MaxTokens
	}

	joules := energy.EstimateEnergy(inputTokens, outputTokens, model, format)
	footprint := energy.CalculateCarbonFootprint(joules, region)
	cost := energy.CostForTokens(inputTokens+outputTokens, model)

	profile, known := energy.LookupModel(model)
	confidence := 0.9
	if !known {
		confidence = 0.7
	}

	owner := auth.OwnerFromContext(r.Context())
	run := &db.PromptRun{
		Owner:                 owner,
		PromptHash:            auth.FingerprintPrompt(req.Prompt),
		PromptLength:          len(req.Prompt),
		Model:                 model,
		PromptTokens:          inputTokens,
		EstimatedOutputTokens: outputTokens,
		EnergyJoules:          joules,
		CarbonKg:              footprint.CO2Kg,
		WaterLiters:           footprint.WaterLiters,
		CostUSD:               cost.CostUSD,
	}
	if _, err := h.db.InsertPromptRun(run); err != nil {
		log.Printf("handlers.Analyze: insert run: %v", err)
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.BroadcastRun(ws.TypeRunAnalyzed, owner, "", model, joules, footprint.CO2Kg, cost.CostUSD)

	ok(w, analyzeResponse{
		InputTokens:           inputTokens,
		EstimatedOutputTokens: outputTokens,
		EnergyJoules:          joules,
		CarbonKg:              footprint.CO2Kg,
		WaterLiters:           footprint.WaterLiters,
		EstimatedCostUSD:      cost.CostUSD,
		TaskType:              string(task),
		OutputFormat:          string(format),
		Confidence:            confidence,
		ModelInfo: map[string]interface{}{
			"model":            model,
			"known":            known,
			"energy_per_token": profile.EnergyPerToken,
			"accuracy":         profile.Accuracy,
		},
	})
}

type optimizeRequest struct {
	Prompt string `json:"prompt"`
}

type optimizeResponse struct {
	OriginalPrompt     string              `json:"original_prompt"`
	OptimizedPrompt    string              `json:"optimized_prompt"`
	Suggestions        []energy.Suggestion `json:"suggestions"`
	TotalSavingsJoules float64             `json:"total_savings_joules"`
	TotalSavingsPct    float64             `json:"total_savings_percent"`
	CarbonSavingsKg    float64             `json:"carbon_savings_kg"`
	CostSavingsUSD     float64             `json:"cost_savings_usd"`
	EstimatedNewTokens int                 `json:"estimated_new_tokens"`
}

// Optimize rewrites a prompt for lower energy use and reports the savings.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validatePrompt(req.Prompt); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}

	optimized, suggestions := energy.OptimizePrompt(req.Prompt)
	savings := energy.TotalSavings(suggestions)
	footprint := energy.CalculateCarbonFootprint(savings, h.config.DefaultRegion)
	cost := energy.CalculateCost(savings, "")

	ok(w, optimizeResponse{
		OriginalPrompt:     req.Prompt,
		OptimizedPrompt:    optimized,
		Suggestions:        suggestions,
		TotalSavingsJoules: savings,
		TotalSavingsPct:    energy.TotalSavingsPercent(suggestions),
		CarbonSavingsKg:    footprint.CO2Kg,
		CostSavingsUSD:     cost.CostUSD,
		EstimatedNewTokens: energy.EstimateTokens(optimized),
	})
}
