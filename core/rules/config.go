package rules

import (
	"slices"

	"github.com/huangsam/voicepersona/core/algo"
)

// Config holds every numeric constant the checks rely on.
type Config struct {
	ForbiddenFormalWords     []string
	HookRatioTarget          int     // percent of hook matches that should come from primary hooks
	HookRatioTolerance       int     // percentage points
	BridgeFrequencyMin       float64 // bridge occurrences per 100 words
	VocabularyUsageMin       int     // percent of the fingerprint
	SignatureElementMin      int
	MaxDeviationFromOriginal int     // percent of the expected word count
	ShortSentenceMax         float64 // words per sentence
	ComplexSentenceMin       float64 // words per sentence
	HighEnergyMin            float64 // caps words and exclamations per 100 words
	LowEnergyMax             float64 // caps words and exclamations per 100 words
	DistributionTolerance    int     // percentage points around 100
	MinThreshold             int
	MaxThreshold             int
	MinLength                int // seconds
	MaxLength                int // seconds
	WordsPerSecond           int
}

// DefaultConfig returns the stock rule constants.
func DefaultConfig() Config {
	return Config{
		ForbiddenFormalWords:     slices.Clone(algo.FormalConnectives),
		HookRatioTarget:          80,
		HookRatioTolerance:       20,
		BridgeFrequencyMin:       2,
		VocabularyUsageMin:       30,
		SignatureElementMin:      1,
		MaxDeviationFromOriginal: 20,
		ShortSentenceMax:         12,
		ComplexSentenceMin:       8,
		HighEnergyMin:            1,
		LowEnergyMax:             5,
		DistributionTolerance:    5,
		MinThreshold:             75,
		MaxThreshold:             95,
		MinLength:                15,
		MaxLength:                60,
		WordsPerSecond:           3,
	}
}

// Overrides is the user-facing form of Config. Nil scalars keep the base value and
// list fields are appended to the base list.
type Overrides struct {
	ForbiddenFormalWords     []string `mapstructure:"forbidden-formal-words"`
	HookRatioTarget          *int     `mapstructure:"hook-ratio-target"`
	HookRatioTolerance       *int     `mapstructure:"hook-ratio-tolerance"`
	BridgeFrequencyMin       *float64 `mapstructure:"bridge-frequency-min"`
	VocabularyUsageMin       *int     `mapstructure:"vocabulary-usage-min"`
	SignatureElementMin      *int     `mapstructure:"signature-element-min"`
	MaxDeviationFromOriginal *int     `mapstructure:"max-deviation-from-original"`
	ShortSentenceMax         *float64 `mapstructure:"short-sentence-max"`
	ComplexSentenceMin       *float64 `mapstructure:"complex-sentence-min"`
	HighEnergyMin            *float64 `mapstructure:"high-energy-min"`
	LowEnergyMax             *float64 `mapstructure:"low-energy-max"`
	DistributionTolerance    *int     `mapstructure:"distribution-tolerance"`
}

// Merge applies the overrides to base field by field.
func Merge(base Config, o Overrides) Config {
	res := base
	res.ForbiddenFormalWords = algo.Dedupe(slices.Concat(base.ForbiddenFormalWords, o.ForbiddenFormalWords))
	set(&res.HookRatioTarget, o.HookRatioTarget)
	set(&res.HookRatioTolerance, o.HookRatioTolerance)
	set(&res.BridgeFrequencyMin, o.BridgeFrequencyMin)
	set(&res.VocabularyUsageMin, o.VocabularyUsageMin)
	set(&res.SignatureElementMin, o.SignatureElementMin)
	set(&res.MaxDeviationFromOriginal, o.MaxDeviationFromOriginal)
	set(&res.ShortSentenceMax, o.ShortSentenceMax)
	set(&res.ComplexSentenceMin, o.ComplexSentenceMin)
	set(&res.HighEnergyMin, o.HighEnergyMin)
	set(&res.LowEnergyMax, o.LowEnergyMax)
	set(&res.DistributionTolerance, o.DistributionTolerance)
	return res
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
