package energy

import (
	"math"
	"strings"
)

// Output-length multipliers per task type, applied to the input token count.
var outputMultipliers = map[TaskType]float64{
	TaskAnalysis:       2.5,
	TaskGeneration:     3.0,
	TaskClassification: 0.5,
	TaskSummarization:  0.3,
	TaskStandard:       1.5,
}

// minOutputTokens models the minimum completion length any model produces.
const minOutputTokens = 50

// costJoulesPerToken is the flat conversion used by CalculateCost to derive
// an approximate token count back out of an energy figure. It deliberately
// stays at 0.5 regardless of which model produced the energy value; callers
// that know the real token counts should use CostForTokens instead.
const costJoulesPerToken = 0.5

// EstimateOutputTokens projects the completion length for a prompt's task type.
func EstimateOutputTokens(inputTokens int, task TaskType) int {
	mult, ok := outputMultipliers[task]
	if !ok {
		mult = outputMultipliers[TaskStandard]
	}
	out := int(math.Floor(float64(inputTokens) * mult))
	if out < minOutputTokens {
		out = minOutputTokens
	}
	return out
}

// EstimateEnergy returns the estimated joules for a request: total tokens
// times the model's per-token energy, minus the output-format discount.
// Model lookup is case-insensitive and falls back to DefaultProfile.
func EstimateEnergy(inputTokens, outputTokens int, model string, format OutputFormat) float64 {
	profile, _ := LookupModel(model)
	discount := FormatDiscount(format)
	return float64(inputTokens+outputTokens) * profile.EnergyPerToken * (1 - discount)
}

// CarbonFootprint is the environmental cost derived from an energy figure.
type CarbonFootprint struct {
	CO2Kg        float64 `json:"co2_kg"`
	WaterLiters  float64 `json:"water_liters"`
	EnergyJoules float64 `json:"energy_joules"`
}

// CalculateCarbonFootprint converts joules into CO2 and cooling water for a
// region's grid mix. Region lookup is case-insensitive with a default factor.
func CalculateCarbonFootprint(energyJoules float64, region string) CarbonFootprint {
	return CarbonFootprint{
		CO2Kg:        round6(energyJoules * CarbonFactor(region) / 1000),
		WaterLiters:  round2(energyJoules * waterLitersPerJoule),
		EnergyJoules: energyJoules,
	}
}

// CostEstimate is a monetary cost derived from token volume and pricing.
type CostEstimate struct {
	CostUSD  float64 `json:"estimated_cost_usd"`
	Currency string  `json:"currency"`
	Provider string  `json:"provider"`
}

// CalculateCost approximates USD cost from an energy figure by converting
// back to tokens at a flat 0.5 J/token and applying the provider's price.
func CalculateCost(energyJoules float64, provider string) CostEstimate {
	approxTokens := energyJoules / costJoulesPerToken
	return costFor(approxTokens, provider)
}

// CostForTokens prices a known token count directly, avoiding the lossy
// energy-to-token round trip in CalculateCost.
func CostForTokens(tokens int, provider string) CostEstimate {
	return costFor(float64(tokens), provider)
}

func costFor(tokens float64, provider string) CostEstimate {
	price := PricePerThousandTokens(provider)
	return CostEstimate{
		CostUSD:  round6(tokens / 1000 * price),
		Currency: "USD",
		Provider: strings.ToLower(provider),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
