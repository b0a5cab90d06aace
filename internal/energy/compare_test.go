package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareModels_SortedAndRanked(t *testing.T) {
	models := []string{"gpt-4", "claude-3-haiku", "gpt-4o", "llama-3-8b"}
	results := CompareModels(models, "Explain the concept of photosynthesis in 3 sentences.")
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, r.EstimatedEnergyJoules, results[i-1].EstimatedEnergyJoules)
		}
	}
	// Lowest energy-per-token model wins.
	assert.Equal(t, "llama-3-8b", results[0].Model)
	assert.Equal(t, "gpt-4", results[3].Model)
}

func TestCompareModels_SharedTokenCounts(t *testing.T) {
	results := CompareModels([]string{"gpt-4o", "gpt-4"}, "What is 2+2?")
	require.Len(t, results, 2)
	assert.Equal(t, results[0].EstimatedTokens, results[1].EstimatedTokens)
}

func TestCompareModels_EfficiencyScore(t *testing.T) {
	results := CompareModels([]string{"claude-3-haiku"}, "hello")
	require.Len(t, results, 1)
	// accuracy / (energy_per_token / 0.5) = 0.86 / 0.6
	assert.InDelta(t, 1.43, results[0].EfficiencyScore, 1e-9)
}

func TestRunBenchmark_Standard(t *testing.T) {
	res, err := RunBenchmark("", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "standard", res.Type)
	assert.Equal(t, []string{"simple", "standard", "complex", "creative", "technical", "analytical"}, res.Categories)
	require.Len(t, res.Results, 6)

	simple := res.Results["simple"]
	assert.Equal(t, "What is 2+2?", simple.Prompt)
	assert.Equal(t, 8, simple.PromptTokens)
	assert.Len(t, simple.Models, 10)
}

func TestRunBenchmark_Custom(t *testing.T) {
	res, err := RunBenchmark("Write a haiku", []string{"gpt-4o", "claude-3-haiku"}, true)
	require.NoError(t, err)
	assert.Equal(t, "custom", res.Type)
	assert.Equal(t, "Write a haiku", res.Prompt)
	assert.Len(t, res.Models, 2)
	assert.Empty(t, res.Results)
}

func TestRunBenchmark_NoBranch(t *testing.T) {
	_, err := RunBenchmark("", nil, false)
	assert.ErrorIs(t, err, ErrNoBenchmark)
}

func TestSpecs(t *testing.T) {
	spec, found := Specs("claude-3-haiku")
	require.True(t, found)
	assert.InDelta(t, 0.3, spec.JoulesPerToken, 1e-9)
	assert.InDelta(t, 300.0, spec.EnergyPer1kTokens, 1e-9)
	assert.Equal(t, "small", spec.Category)

	_, found = Specs("not-a-real-model")
	assert.False(t, found)

	// Case-insensitive.
	upper, found := Specs("GPT-4")
	require.True(t, found)
	assert.Equal(t, "large", upper.Category)
}

func TestListModels(t *testing.T) {
	list := ListModels()
	assert.Equal(t, 15, list.TotalModels)
	assert.Len(t, list.Supported, 15)
	assert.Contains(t, list.ByCategory["small_efficient"], "claude-3-haiku")
	assert.Contains(t, list.ByCategory["medium_balanced"], "gpt-4o")
	assert.Contains(t, list.ByCategory["large_capable"], "mistral-large")
}

func TestRecommendModel_AccuracyPriority(t *testing.T) {
	rec, err := RecommendModel(Requirements{Priority: "accuracy", MinAccuracy: 0.85})
	require.NoError(t, err)
	// Highest accuracy above the floor, not the most efficient.
	assert.Equal(t, "claude-3-opus", rec.Model)
	assert.InDelta(t, 0.96, rec.Specs.Accuracy, 1e-9)
	assert.LessOrEqual(t, len(rec.Alternatives), 3)
}

func TestRecommendModel_EfficiencyPriority(t *testing.T) {
	rec, err := RecommendModel(Requirements{Priority: "efficiency", MinAccuracy: 0.85})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-haiku", rec.Model)
}

func TestRecommendModel_EnergyCeiling(t *testing.T) {
	maxEnergy := 0.4
	rec, err := RecommendModel(Requirements{Priority: "balanced", MinAccuracy: 0.85, MaxEnergy: &maxEnergy})
	require.NoError(t, err)
	profile, _ := LookupModel(rec.Model)
	assert.LessOrEqual(t, profile.EnergyPerToken, maxEnergy)
}

func TestRecommendModel_NoMatch(t *testing.T) {
	_, err := RecommendModel(Requirements{Priority: "balanced", MinAccuracy: 0.999})
	assert.ErrorIs(t, err, ErrNoMatch)
}
