package energy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoBenchmark is returned when neither a custom prompt nor the standard
// suite is requested.
var ErrNoBenchmark = errors.New("no prompt provided and standard benchmarks disabled")

// ErrNoMatch is returned when no catalog model satisfies the requirements.
var ErrNoMatch = errors.New("no models match the specified requirements")

// ModelComparison scores one model against a fixed prompt.
type ModelComparison struct {
	Model                 string          `json:"model"`
	EstimatedEnergyJoules float64         `json:"estimated_energy_joules"`
	EstimatedTokens       int             `json:"estimated_tokens"`
	EstimatedAccuracy     float64         `json:"estimated_accuracy"`
	EfficiencyScore       float64         `json:"efficiency_score"`
	Rank                  int             `json:"rank"`
	CarbonFootprint       CarbonFootprint `json:"carbon_footprint"`
}

// CompareModels scores each candidate model against the prompt and returns
// the results sorted ascending by estimated energy, ranked 1..N.
// Token counts are computed once and shared across candidates.
func CompareModels(models []string, prompt string) []ModelComparison {
	inputTokens := EstimateTokens(prompt)
	task := DetectTaskType(prompt)
	format := DetectOutputFormat(prompt)
	outputTokens := EstimateOutputTokens(inputTokens, task)

	results := make([]ModelComparison, 0, len(models))
	for _, name := range models {
		profile, _ := LookupModel(name)
		joules := EstimateEnergy(inputTokens, outputTokens, name, format)
		results = append(results, ModelComparison{
			Model:                 name,
			EstimatedEnergyJoules: round2(joules),
			EstimatedTokens:       inputTokens + outputTokens,
			EstimatedAccuracy:     profile.Accuracy,
			EfficiencyScore:       round2(profile.Accuracy / (profile.EnergyPerToken / 0.5)),
			CarbonFootprint:       CalculateCarbonFootprint(joules, ""),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EstimatedEnergyJoules < results[j].EstimatedEnergyJoules
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// The standard benchmark suite: one representative prompt per category.
var benchmarkPrompts = []struct {
	Category string
	Prompt   string
}{
	{"simple", "What is 2+2?"},
	{"standard", "Explain the concept of photosynthesis in 3 sentences."},
	{"complex", "Analyze the economic impact of renewable energy on developing nations, considering factors like job creation, infrastructure costs, and long-term environmental benefits."},
	{"creative", "Write a short story about a robot learning to paint."},
	{"technical", "Implement a Python function to calculate Fibonacci numbers using dynamic programming."},
	{"analytical", "Compare and contrast the leadership styles of Winston Churchill and Nelson Mandela."},
}

// BenchmarkCategory is one standard category's comparison result.
type BenchmarkCategory struct {
	Prompt       string            `json:"prompt"`
	PromptTokens int               `json:"prompt_tokens"`
	Models       []ModelComparison `json:"models"`
}

// BenchmarkResult is either a standard multi-category run or a single custom run.
type BenchmarkResult struct {
	Type         string                       `json:"benchmark_type"`
	Prompt       string                       `json:"prompt,omitempty"`
	PromptTokens int                          `json:"prompt_tokens,omitempty"`
	Categories   []string                     `json:"categories,omitempty"`
	Results      map[string]BenchmarkCategory `json:"results,omitempty"`
	Models       []ModelComparison            `json:"models,omitempty"`
}

// RunBenchmark compares models either against the standard prompt suite
// (no custom prompt, includeStandard true) or against one custom prompt.
// A nil/empty model list defaults to the first ten catalog models.
func RunBenchmark(prompt string, models []string, includeStandard bool) (BenchmarkResult, error) {
	if len(models) == 0 {
		models = ModelNames()
		if len(models) > 10 {
			models = models[:10]
		}
	}

	if prompt == "" && includeStandard {
		res := BenchmarkResult{
			Type:    "standard",
			Results: make(map[string]BenchmarkCategory, len(benchmarkPrompts)),
		}
		for _, bp := range benchmarkPrompts {
			res.Categories = append(res.Categories, bp.Category)
			res.Results[bp.Category] = BenchmarkCategory{
				Prompt:       bp.Prompt,
				PromptTokens: EstimateTokens(bp.Prompt),
				Models:       CompareModels(models, bp.Prompt),
			}
		}
		return res, nil
	}

	if prompt != "" {
		return BenchmarkResult{
			Type:         "custom",
			Prompt:       prompt,
			PromptTokens: EstimateTokens(prompt),
			Models:       CompareModels(models, prompt),
		}, nil
	}

	return BenchmarkResult{}, ErrNoBenchmark
}

// ModelSpec describes one catalog model's static coefficients.
type ModelSpec struct {
	Model               string  `json:"model"`
	JoulesPerToken      float64 `json:"estimated_joules_per_token"`
	Accuracy            float64 `json:"estimated_accuracy"`
	EnergyPer1kTokens   float64 `json:"energy_per_1k_tokens"`
	CarbonPer1kTokensKg float64 `json:"carbon_per_1k_tokens_kg"`
	Category            string  `json:"category"`
}

// Specs returns a model's coefficients, or found=false for unknown models.
func Specs(model string) (ModelSpec, bool) {
	profile, found := LookupModel(model)
	if !found {
		return ModelSpec{}, false
	}
	per1k := profile.EnergyPerToken * 1000
	return ModelSpec{
		Model:               model,
		JoulesPerToken:      profile.EnergyPerToken,
		Accuracy:            profile.Accuracy,
		EnergyPer1kTokens:   round2(per1k),
		CarbonPer1kTokensKg: round6(per1k * defaultCarbonFactor / 1000 / 1000),
		Category:            energyTier(profile.EnergyPerToken),
	}, true
}

func energyTier(joulesPerToken float64) string {
	switch {
	case joulesPerToken < 0.5:
		return "small"
	case joulesPerToken < 1.5:
		return "medium"
	default:
		return "large"
	}
}

// ModelList groups the catalog by energy tier.
type ModelList struct {
	Supported   []string            `json:"supported_models"`
	ByCategory  map[string][]string `json:"by_category"`
	TotalModels int                 `json:"total_models"`
}

// ListModels returns every catalog model grouped by energy tier.
func ListModels() ModelList {
	byCategory := map[string][]string{
		"small_efficient": {},
		"medium_balanced": {},
		"large_capable":   {},
	}
	names := ModelNames()
	for _, name := range names {
		profile, _ := LookupModel(name)
		switch energyTier(profile.EnergyPerToken) {
		case "small":
			byCategory["small_efficient"] = append(byCategory["small_efficient"], name)
		case "medium":
			byCategory["medium_balanced"] = append(byCategory["medium_balanced"], name)
		default:
			byCategory["large_capable"] = append(byCategory["large_capable"], name)
		}
	}
	return ModelList{Supported: names, ByCategory: byCategory, TotalModels: len(names)}
}

// Requirements filters and orders recommendation candidates.
type Requirements struct {
	Priority    string   `json:"priority"` // efficiency | accuracy | balanced
	MinAccuracy float64  `json:"min_accuracy"`
	MaxBudget   *float64 `json:"max_budget,omitempty"` // USD per 1000 tokens
	MaxEnergy   *float64 `json:"max_energy,omitempty"` // joules per token ceiling
}

// RecommendedSpecs is the winning model's coefficient summary.
type RecommendedSpecs struct {
	EnergyPerToken  float64 `json:"energy_per_token"`
	Accuracy        float64 `json:"accuracy"`
	EfficiencyScore float64 `json:"efficiency_score"`
}

// Alternative is a runner-up recommendation.
type Alternative struct {
	Model           string  `json:"model"`
	EfficiencyScore float64 `json:"efficiency_score"`
}

// Recommendation is the best-fit model plus up to three runners-up.
type Recommendation struct {
	Model        string           `json:"recommended_model"`
	Reasoning    string           `json:"reasoning"`
	Specs        RecommendedSpecs `json:"model_specs"`
	Alternatives []Alternative    `json:"alternatives"`
}

// budgetCostPerToken is the coarse USD-per-joule approximation used only for
// the recommendation budget filter; real pricing goes through CalculateCost.
const budgetCostPerToken = 0.00001

// RecommendModel filters the catalog by the requirements and returns the top
// candidate for the requested priority. Returns ErrNoMatch when nothing passes.
func RecommendModel(req Requirements) (Recommendation, error) {
	type candidate struct {
		profile    ModelProfile
		efficiency float64
	}

	var candidates []candidate
	for _, name := range ModelNames() {
		profile, _ := LookupModel(name)
		if profile.Accuracy < req.MinAccuracy {
			continue
		}
		if req.MaxBudget != nil {
			cost := profile.EnergyPerToken * 1000 * budgetCostPerToken
			if cost > *req.MaxBudget {
				continue
			}
		}
		if req.MaxEnergy != nil && profile.EnergyPerToken > *req.MaxEnergy {
			continue
		}
		candidates = append(candidates, candidate{
			profile:    profile,
			efficiency: profile.Accuracy / profile.EnergyPerToken,
		})
	}
	if len(candidates) == 0 {
		return Recommendation{}, ErrNoMatch
	}

	if req.Priority == "accuracy" {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].profile.Accuracy > candidates[j].profile.Accuracy
		})
	} else {
		// efficiency and balanced both rank by efficiency score.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].efficiency > candidates[j].efficiency
		})
	}

	best := candidates[0]
	rec := Recommendation{
		Model:     strings.ToLower(best.profile.Name),
		Reasoning: fmt.Sprintf("Best match for %s priority with accuracy >= %.2f", req.Priority, req.MinAccuracy),
		Specs: RecommendedSpecs{
			EnergyPerToken:  best.profile.EnergyPerToken,
			Accuracy:        best.profile.Accuracy,
			EfficiencyScore: round2(best.efficiency),
		},
	}
	for _, c := range candidates[1:] {
		if len(rec.Alternatives) == 3 {
			break
		}
		rec.Alternatives = append(rec.Alternatives, Alternative{
			Model:           strings.ToLower(c.profile.Name),
			EfficiencyScore: round2(c.efficiency),
		})
	}
	return rec, nil
}
