package energy

import "strings"

// Suggestion is one heuristic rewrite proposal with its claimed savings.
type Suggestion struct {
	Kind                 string  `json:"type"`
	OriginalText         string  `json:"original_text"`
	SuggestedText        string  `json:"suggested_text"`
	EnergySavingsJoules  float64 `json:"energy_savings_joules"`
	EnergySavingsPercent float64 `json:"energy_savings_percent"`
	Confidence           float64 `json:"confidence"`
	Reason               string  `json:"reason"`

	// CountsTowardTotal is false for advisory suggestions whose savings are
	// speculative (they ask the user to add text rather than remove it) and
	// are therefore kept out of the aggregate.
	CountsTowardTotal bool `json:"-"`
}

// Phrases that inflate prompts without improving answers, checked in order.
var highEnergyPhrases = []string{
	"it would be great if you could",
	"in as much detail as possible",
	"i would like you to",
	"comprehensive and detailed",
	"could you please",
	"as an expert",
}

// Compact substitutes tried in order; the first one not already present wins.
var lowEnergyPhrases = []string{"briefly", "concisely", "in short"}

// Words indicating the prompt already constrains its output shape or length.
var constraintMarkers = []string{"json", "bullet", "list", "table", "max_tokens", "limit"}

// OptimizePrompt applies the rewrite rules in order and returns the rewritten
// prompt plus every triggered suggestion. Only the phrase-replacement and
// politeness rules mutate the text; the rest are advisory flags.
func OptimizePrompt(prompt string) (string, []Suggestion) {
	optimized := prompt
	lower := strings.ToLower(prompt)
	var suggestions []Suggestion

	// 1. Replace the first high-energy phrase with a compact substitute.
	for _, phrase := range highEnergyPhrases {
		idx := strings.Index(strings.ToLower(optimized), phrase)
		if idx < 0 {
			continue
		}
		replacement := ""
		for _, low := range lowEnergyPhrases {
			if !strings.Contains(strings.ToLower(optimized), low) {
				replacement = low
				break
			}
		}
		optimized = optimized[:idx] + replacement + optimized[idx+len(phrase):]
		suggestions = append(suggestions, Suggestion{
			Kind:                 "phrase_replacement",
			OriginalText:         phrase,
			SuggestedText:        replacement,
			EnergySavingsJoules:  float64(EstimateTokens(phrase)) * 0.5,
			EnergySavingsPercent: 15,
			Confidence:           0.85,
			Reason:               "verbose phrasing adds tokens without changing the answer",
			CountsTowardTotal:    true,
		})
		break
	}

	// 2. Strip a leading "Please ".
	if len(optimized) >= 7 && strings.EqualFold(optimized[:7], "please ") {
		suggestions = append(suggestions, Suggestion{
			Kind:                 "politeness_removal",
			OriginalText:         optimized[:7],
			SuggestedText:        "",
			EnergySavingsJoules:  float64(EstimateTokens("Please ")) * 0.5,
			EnergySavingsPercent: 5,
			Confidence:           0.95,
			Reason:               "models do not answer better for politeness tokens",
			CountsTowardTotal:    true,
		})
		optimized = optimized[7:]
	}

	// 3. Flag vague scope qualifiers.
	if strings.Contains(lower, "in detail") || strings.Contains(lower, "in depth") {
		suggestions = append(suggestions, Suggestion{
			Kind:                 "vagueness_removal",
			OriginalText:         "in detail / in depth",
			SuggestedText:        "name the specific aspects you need",
			EnergySavingsJoules:  15,
			EnergySavingsPercent: 10,
			Confidence:           0.80,
			Reason:               "open-ended detail requests produce long completions",
			CountsTowardTotal:    true,
		})
	}

	// 4. Flag explicit chain-of-thought requests.
	if strings.Contains(lower, "think step by step") {
		suggestions = append(suggestions, Suggestion{
			Kind:                 "chain_of_thought_removal",
			OriginalText:         "think step by step",
			SuggestedText:        "",
			EnergySavingsJoules:  25,
			EnergySavingsPercent: 12,
			Confidence:           0.70,
			Reason:               "step-by-step reasoning multiplies output tokens",
			CountsTowardTotal:    true,
		})
	}

	// 5. Nudge when no output constraint is present. Advisory only: adding a
	// constraint would grow the prompt, so the claimed savings stay out of
	// the aggregate.
	hasConstraint := false
	for _, marker := range constraintMarkers {
		if strings.Contains(lower, marker) {
			hasConstraint = true
			break
		}
	}
	if !hasConstraint {
		suggestions = append(suggestions, Suggestion{
			Kind:                 "missing_constraints",
			OriginalText:         "",
			SuggestedText:        "add an output constraint such as a format or length limit",
			EnergySavingsJoules:  10,
			EnergySavingsPercent: 8,
			Confidence:           0.75,
			Reason:               "unconstrained prompts invite maximal completions",
			CountsTowardTotal:    false,
		})
	}

	// 6. Flag very long prompts.
	if len(prompt) > 500 && EstimateTokens(prompt) > 100 {
		suggestions = append(suggestions, Suggestion{
			Kind:                 "verbosity_trim",
			OriginalText:         "",
			SuggestedText:        "trim background that does not change the question",
			EnergySavingsJoules:  float64(EstimateTokens(prompt)) * 0.1,
			EnergySavingsPercent: 10,
			Confidence:           0.65,
			Reason:               "long prompts cost input tokens on every call",
			CountsTowardTotal:    true,
		})
	}

	return strings.TrimSpace(optimized), suggestions
}

// TotalSavings sums the claimed joule savings of all counted suggestions.
func TotalSavings(suggestions []Suggestion) float64 {
	var total float64
	for _, s := range suggestions {
		if s.CountsTowardTotal {
			total += s.EnergySavingsJoules
		}
	}
	return total
}

// TotalSavingsPercent sums the claimed percentage savings of counted suggestions.
func TotalSavingsPercent(suggestions []Suggestion) float64 {
	var total float64
	for _, s := range suggestions {
		if s.CountsTowardTotal {
			total += s.EnergySavingsPercent
		}
	}
	if total > 100 {
		total = 100
	}
	return total
}
