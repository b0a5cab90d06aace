package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateOutputTokens(t *testing.T) {
	// Short prompts hit the minimum completion floor.
	assert.Equal(t, 50, EstimateOutputTokens(8, TaskStandard))
	assert.Equal(t, 50, EstimateOutputTokens(0, TaskSummarization))

	assert.Equal(t, 250, EstimateOutputTokens(100, TaskAnalysis))
	assert.Equal(t, 300, EstimateOutputTokens(100, TaskGeneration))
	assert.Equal(t, 50, EstimateOutputTokens(100, TaskClassification))
	assert.Equal(t, 150, EstimateOutputTokens(100, TaskStandard))
	// Fractional products floor down: 101*0.3 = 30.3 -> 30 -> min 50; 201*0.3 = 60.3 -> 60.
	assert.Equal(t, 60, EstimateOutputTokens(201, TaskSummarization))
}

func TestEstimateEnergy(t *testing.T) {
	// 100 tokens on gpt-4o (1.2 J/token), prose: no discount.
	assert.InDelta(t, 120.0, EstimateEnergy(50, 50, "gpt-4o", FormatProse), 1e-9)
	// json gets the 25% discount.
	assert.InDelta(t, 90.0, EstimateEnergy(50, 50, "gpt-4o", FormatJSON), 1e-9)
	// Unknown model falls back to the 1.5 J/token default profile.
	assert.InDelta(t, 150.0, EstimateEnergy(50, 50, "some-unknown-model", FormatProse), 1e-9)
	// Lookup is case-insensitive.
	assert.Equal(t, EstimateEnergy(10, 10, "GPT-4o", FormatProse), EstimateEnergy(10, 10, "gpt-4o", FormatProse))
}

func TestEstimateEnergy_Monotonic(t *testing.T) {
	prev := 0.0
	for tokens := 0; tokens <= 1000; tokens += 100 {
		e := EstimateEnergy(tokens, 50, "claude-3-haiku", FormatBullets)
		assert.GreaterOrEqual(t, e, prev)
		prev = e
	}
}

func TestCalculateCarbonFootprint(t *testing.T) {
	fp := CalculateCarbonFootprint(1000, "eu-west")
	assert.InDelta(t, 0.25, fp.CO2Kg, 1e-9)
	assert.InDelta(t, 500.0, fp.WaterLiters, 1e-9)
	assert.InDelta(t, 1000.0, fp.EnergyJoules, 1e-9)

	// Unknown region uses the default factor.
	def := CalculateCarbonFootprint(500, "atlantis")
	assert.InDelta(t, 0.2, def.CO2Kg, 1e-9)
	assert.InDelta(t, 250.0, def.WaterLiters, 1e-9)

	// Case-insensitive region lookup.
	assert.Equal(t, CalculateCarbonFootprint(100, "EU-WEST"), CalculateCarbonFootprint(100, "eu-west"))
}

func TestCalculateCarbonFootprint_LinearInEnergy(t *testing.T) {
	a := CalculateCarbonFootprint(200, "us-east")
	b := CalculateCarbonFootprint(400, "us-east")
	assert.InDelta(t, a.CO2Kg*2, b.CO2Kg, 1e-9)
	assert.InDelta(t, a.WaterLiters*2, b.WaterLiters, 1e-9)
}

func TestCalculateCost_DefaultFallback(t *testing.T) {
	// 500 J / 0.5 J-per-token = 1000 tokens at the flat default price.
	cost := CalculateCost(500, "openai")
	assert.InDelta(t, 0.001, cost.CostUSD, 1e-9)
	assert.Equal(t, "USD", cost.Currency)
	assert.Equal(t, "openai", cost.Provider)

	unknown := CalculateCost(500, "acme-cloud")
	assert.InDelta(t, 0.001, unknown.CostUSD, 1e-9)
}

func TestCalculateCost_LongestMatchWins(t *testing.T) {
	// "gpt-4o" must win over the shorter "gpt-4" key.
	cost := CalculateCost(500, "openai/gpt-4o")
	assert.InDelta(t, 0.0075, cost.CostUSD, 1e-9)

	mini := CalculateCost(500, "openai/gpt-4o-mini")
	assert.InDelta(t, 0.0006, mini.CostUSD, 1e-9)
}

func TestCostForTokens(t *testing.T) {
	cost := CostForTokens(2000, "anthropic/claude-3-haiku")
	assert.InDelta(t, 0.0015, cost.CostUSD, 1e-9)
}

func TestCostBareModelName(t *testing.T) {
	// A bare model name matches across provider tables.
	cost := CostForTokens(1000, "gpt-4o")
	assert.InDelta(t, 0.0075, cost.CostUSD, 1e-9)
}

func TestCostEqualLengthKeysTieBreak(t *testing.T) {
	// "claude-3-opus" and "gpt-3.5-turbo" are the same length; the
	// lexicographically smaller key must win regardless of table order.
	cost := CostForTokens(1000, "claude-3-opus-vs-gpt-3.5-turbo")
	assert.InDelta(t, 0.045, cost.CostUSD, 1e-9)
}

func TestCostDeterminism(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, CalculateCost(123.4, "openai/gpt-4"), CalculateCost(123.4, "openai/gpt-4"))
	}
}
