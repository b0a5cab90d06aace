package energy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func suggestionKinds(suggestions []Suggestion) []string {
	kinds := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

func TestOptimizePrompt_PhraseReplacement(t *testing.T) {
	optimized, suggestions := OptimizePrompt("Could you please explain recursion")
	assert.Equal(t, "briefly explain recursion", optimized)
	assert.Contains(t, suggestionKinds(suggestions), "phrase_replacement")

	var s Suggestion
	for _, cand := range suggestions {
		if cand.Kind == "phrase_replacement" {
			s = cand
		}
	}
	// tokens("could you please") = 5 runs * 0.5
	assert.InDelta(t, 2.5, s.EnergySavingsJoules, 1e-9)
	assert.InDelta(t, 15, s.EnergySavingsPercent, 1e-9)
	assert.InDelta(t, 0.85, s.Confidence, 1e-9)
}

func TestOptimizePrompt_OnlyFirstPhraseReplaced(t *testing.T) {
	optimized, suggestions := OptimizePrompt("I would like you to explain this as an expert")
	count := 0
	for _, s := range suggestions {
		if s.Kind == "phrase_replacement" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	// The second phrase survives the rewrite.
	assert.Contains(t, strings.ToLower(optimized), "as an expert")
}

func TestOptimizePrompt_PolitenessRemoval(t *testing.T) {
	optimized, suggestions := OptimizePrompt("Please summarize this article")
	assert.Equal(t, "summarize this article", optimized)
	assert.Contains(t, suggestionKinds(suggestions), "politeness_removal")

	for _, s := range suggestions {
		if s.Kind == "politeness_removal" {
			// tokens("Please ") = 2 runs * 0.5
			assert.InDelta(t, 1.0, s.EnergySavingsJoules, 1e-9)
			assert.InDelta(t, 0.95, s.Confidence, 1e-9)
		}
	}
}

func TestOptimizePrompt_FlagsWithoutRewriting(t *testing.T) {
	prompt := "Explain quantum computing in detail and think step by step"
	optimized, suggestions := OptimizePrompt(prompt)
	assert.Equal(t, prompt, optimized)
	kinds := suggestionKinds(suggestions)
	assert.Contains(t, kinds, "vagueness_removal")
	assert.Contains(t, kinds, "chain_of_thought_removal")
}

func TestOptimizePrompt_MissingConstraintExcludedFromTotal(t *testing.T) {
	_, suggestions := OptimizePrompt("Tell me about climate change")
	assert.Contains(t, suggestionKinds(suggestions), "missing_constraints")

	// The nudge is advisory: its 10 J claim stays out of the aggregate.
	assert.InDelta(t, 0.0, TotalSavings(suggestions), 1e-9)

	_, constrained := OptimizePrompt("Tell me about climate change as json")
	assert.NotContains(t, suggestionKinds(constrained), "missing_constraints")
}

func TestOptimizePrompt_VerbosityTrim(t *testing.T) {
	long := strings.Repeat("explain the background of this topic and ", 20)
	assert.Greater(t, len(long), 500)
	_, suggestions := OptimizePrompt(long)
	assert.Contains(t, suggestionKinds(suggestions), "verbosity_trim")

	for _, s := range suggestions {
		if s.Kind == "verbosity_trim" {
			assert.InDelta(t, float64(EstimateTokens(long))*0.1, s.EnergySavingsJoules, 1e-9)
		}
	}
}

func TestOptimizePrompt_RewriteRulesIdempotent(t *testing.T) {
	optimized, _ := OptimizePrompt("Please could you please describe the ocean")
	again, suggestions := OptimizePrompt(optimized)
	assert.Equal(t, optimized, again)
	kinds := suggestionKinds(suggestions)
	assert.NotContains(t, kinds, "phrase_replacement")
	assert.NotContains(t, kinds, "politeness_removal")
}

func TestTotalSavings(t *testing.T) {
	suggestions := []Suggestion{
		{EnergySavingsJoules: 15, CountsTowardTotal: true},
		{EnergySavingsJoules: 10, CountsTowardTotal: false},
		{EnergySavingsJoules: 25, CountsTowardTotal: true},
	}
	assert.InDelta(t, 40.0, TotalSavings(suggestions), 1e-9)
}
