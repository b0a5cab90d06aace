// Package energy estimates the energy, carbon, and monetary cost of running
// prompts through LLM inference, and suggests rewrites that reduce it.
// All functions are pure and safe for concurrent use: the coefficient tables
// are parsed once at init and never mutated afterwards.
package energy

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed coefficients.yaml
var coefficientsYAML []byte

// ModelProfile holds the static estimation coefficients for one model.
type ModelProfile struct {
	Name           string  `yaml:"name" json:"model"`
	EnergyPerToken float64 `yaml:"energy_per_token" json:"energy_per_token"`
	Accuracy       float64 `yaml:"accuracy" json:"accuracy"`
}

type priceEntry struct {
	Match       string  `yaml:"match"`
	PerThousand float64 `yaml:"per_1000_tokens"`
}

type coefficientTables struct {
	Models          []ModelProfile          `yaml:"models"`
	Pricing         map[string][]priceEntry `yaml:"pricing"`
	Regions         map[string]float64      `yaml:"regions"`
	FormatDiscounts map[string]float64      `yaml:"format_discounts"`
}

// DefaultProfile is used for model names not present in the catalog.
var DefaultProfile = ModelProfile{EnergyPerToken: 1.5, Accuracy: 0.90}

const (
	// defaultCarbonFactor is the kg-CO2-per-1000-joules factor for unknown regions.
	defaultCarbonFactor = 0.4
	// defaultPricePer1000 is the flat fallback price when no pricing entry matches.
	defaultPricePer1000 = 0.001
	// waterLitersPerJoule converts energy to datacenter cooling water, region-independent.
	waterLitersPerJoule = 0.5
)

var (
	tablesData coefficientTables
	modelIndex map[string]ModelProfile
	modelNames []string
	allPrices  []priceEntry
)

func init() {
	if err := yaml.Unmarshal(coefficientsYAML, &tablesData); err != nil {
		panic("energy: parse coefficients.yaml: " + err.Error())
	}
	modelIndex = make(map[string]ModelProfile, len(tablesData.Models))
	modelNames = make([]string, 0, len(tablesData.Models))
	for _, m := range tablesData.Models {
		modelIndex[strings.ToLower(m.Name)] = m
		modelNames = append(modelNames, strings.ToLower(m.Name))
	}
	// Longest-match preference for pricing lookups. Equal-length keys tie-break
	// lexicographically so lookups are deterministic across processes.
	byMatch := func(entries []priceEntry) func(i, j int) bool {
		return func(i, j int) bool {
			if len(entries[i].Match) != len(entries[j].Match) {
				return len(entries[i].Match) > len(entries[j].Match)
			}
			return entries[i].Match < entries[j].Match
		}
	}
	for _, entries := range tablesData.Pricing {
		sort.SliceStable(entries, byMatch(entries))
		allPrices = append(allPrices, entries...)
	}
	sort.SliceStable(allPrices, byMatch(allPrices))
}

// LookupModel returns the profile for a model name (case-insensitive).
// Unknown names return DefaultProfile with the queried name and found=false.
func LookupModel(name string) (ModelProfile, bool) {
	if m, ok := modelIndex[strings.ToLower(name)]; ok {
		return m, true
	}
	p := DefaultProfile
	p.Name = name
	return p, false
}

// ModelNames returns all catalog model names in catalog order.
func ModelNames() []string {
	out := make([]string, len(modelNames))
	copy(out, modelNames)
	return out
}

// PricePerThousandTokens resolves a USD price per 1000 tokens for a
// provider/model string such as "openai" or "anthropic/claude-3-haiku".
// The provider table is selected by name, then the longest pricing key
// contained in the string wins. Bare model names are matched across all
// provider tables; no key match falls back to the flat default price.
func PricePerThousandTokens(providerModel string) float64 {
	s := strings.ToLower(providerModel)

	entries, ok := tablesData.Pricing[s]
	if !ok {
		for name, e := range tablesData.Pricing {
			if strings.Contains(s, name) {
				entries, ok = e, true
				break
			}
		}
	}
	if !ok {
		// Bare model names carry no provider; match across all tables.
		entries = allPrices
	}
	for _, e := range entries {
		if strings.Contains(s, e.Match) {
			return e.PerThousand
		}
	}
	return defaultPricePer1000
}

// CarbonFactor returns the kg-CO2-per-1000-joules factor for a region
// (case-insensitive), or the default factor for unknown regions.
func CarbonFactor(region string) float64 {
	if f, ok := tablesData.Regions[strings.ToLower(region)]; ok {
		return f
	}
	return defaultCarbonFactor
}

// FormatDiscount returns the fractional energy discount for an output format.
func FormatDiscount(format OutputFormat) float64 {
	return tablesData.FormatDiscounts[string(format)]
}
