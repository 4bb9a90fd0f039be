// Package rules validates generation parameters and generated scripts against
// a fixed set of never and always rules.
package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/huangsam/voicepersona/core/algo"
	"github.com/huangsam/voicepersona/schema"
)

// Rule kinds.
const (
	Never  = "never"
	Always = "always"
)

// Rule IDs.
const (
	FormalLanguageRule     = "formal-language"
	StructureDeviationRule = "structure-deviation"
	OmitSignatureRule      = "omit-signature"
	EnergyMismatchRule     = "energy-mismatch"
	EmptyContentRule       = "empty-content"
	RepeatSentencesRule    = "repeat-sentences"
	GenericOpeningRule     = "generic-opening"
	ShoutingRule           = "shouting"

	HookRatioRule       = "hook-ratio"
	BridgeFrequencyRule = "bridge-frequency"
	VocabularyUsageRule = "vocabulary-usage"
	LengthWindowRule    = "length-window"
	DistributionSumRule = "distribution-sum"
	ThresholdRangeRule  = "threshold-range"
	LengthRangeRule     = "length-range"
	HookAllocationRule  = "hook-allocation"
)

// Rule is one qualitative rule backed by a numeric check.
type Rule struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// NeverRules are the things a script must never do.
var NeverRules = []Rule{
	{FormalLanguageRule, Never, "Never use formal connectives the creator does not use"},
	{StructureDeviationRule, Never, "Never drift from the creator's sentence structure"},
	{OmitSignatureRule, Never, "Never omit the creator's signature elements"},
	{EnergyMismatchRule, Never, "Never mismatch the creator's energy level"},
	{EmptyContentRule, Never, "Never produce empty content"},
	{RepeatSentencesRule, Never, "Never repeat a sentence verbatim"},
	{GenericOpeningRule, Never, "Never open with a generic greeting the creator does not use"},
	{ShoutingRule, Never, "Never write most of the script in capitals"},
}

// AlwaysRules are the things a script or its parameters must always do.
var AlwaysRules = []Rule{
	{HookRatioRule, Always, "Always keep the primary to secondary hook ratio"},
	{BridgeFrequencyRule, Always, "Always hit the documented bridge frequency"},
	{VocabularyUsageRule, Always, "Always use a share of the vocabulary fingerprint"},
	{LengthWindowRule, Always, "Always stay close to the optimal length"},
	{DistributionSumRule, Always, "Always keep the sentence distribution summing to 100"},
	{ThresholdRangeRule, Always, "Always keep the authenticity threshold within bounds"},
	{LengthRangeRule, Always, "Always keep the optimal length within bounds"},
	{HookAllocationRule, Always, "Always allocate every hook to the primary or secondary slot"},
}

var ruleKinds = func() map[string]string {
	kinds := make(map[string]string, len(NeverRules)+len(AlwaysRules))
	for _, r := range NeverRules {
		kinds[r.ID] = r.Kind
	}
	for _, r := range AlwaysRules {
		kinds[r.ID] = r.Kind
	}
	return kinds
}()

// genericOpenings are stock greetings that flag an opening as generic.
var genericOpenings = []string{
	"hello everyone",
	"in this video",
	"welcome to my channel",
	"today i will",
	"today we will",
}

// StructuralConstraints are the measurable targets a generator should aim for.
type StructuralConstraints struct {
	TargetWords          int                         `json:"targetWords"`
	MinWords             int                         `json:"minWords"`
	MaxWords             int                         `json:"maxWords"`
	SentenceDistribution schema.SentenceDistribution `json:"sentenceDistribution"`
	HookRatio            schema.HookRatio            `json:"hookRatio"`
	MinBridgesPer100     float64                     `json:"minBridgesPer100Words"`
	MinVocabularyWords   int                         `json:"minVocabularyWords"`
}

// GenerationConstraints summarizes what a script must and must not contain.
type GenerationConstraints struct {
	RequiredElements      []string              `json:"requiredElements"`
	ForbiddenElements     []string              `json:"forbiddenElements"`
	StructuralConstraints StructuralConstraints `json:"structuralConstraints"`
}

// Engine runs the rule checks with a given configuration.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine.
func NewEngine(cfg Config) *Engine {
	if cfg.WordsPerSecond <= 0 {
		cfg.WordsPerSecond = DefaultConfig().WordsPerSecond
	}
	return &Engine{cfg: cfg}
}

// Config returns the configuration in use.
func (e *Engine) Config() Config {
	return e.cfg
}

// collector accumulates violations in check order.
type collector []schema.Violation

func (c *collector) add(ruleID, format string, args ...any) {
	*c = append(*c, schema.Violation{RuleID: ruleID, Kind: ruleKinds[ruleID], Message: fmt.Sprintf(format, args...)})
}

func (c collector) result() schema.ValidationResult {
	violations := []schema.Violation(c)
	if violations == nil {
		violations = []schema.Violation{}
	}
	return schema.ValidationResult{Valid: len(violations) == 0, Violations: violations}
}

// ValidateGenerationParameters checks the parameters of a persona. Patterns are optional.
func (e *Engine) ValidateGenerationParameters(params schema.GenerationParameters, profile schema.VoiceProfile, patterns *schema.SpeechPatterns) schema.ValidationResult {
	var c collector

	if sum := params.SentenceDistribution.Sum(); abs(sum-100) > e.cfg.DistributionTolerance {
		c.add(DistributionSumRule, "sentence distribution sums to %d%%, expected 100%% +/- %d", sum, e.cfg.DistributionTolerance)
	}
	if t := params.AuthenticityThreshold; t < e.cfg.MinThreshold || t > e.cfg.MaxThreshold {
		c.add(ThresholdRangeRule, "authenticity threshold %d outside [%d, %d]", t, e.cfg.MinThreshold, e.cfg.MaxThreshold)
	}
	if l := params.OptimalLength; l < e.cfg.MinLength || l > e.cfg.MaxLength {
		c.add(LengthRangeRule, "optimal length %ds outside [%d, %d]", l, e.cfg.MinLength, e.cfg.MaxLength)
	}
	ratio := params.HookRatio
	if ratio.Primary < 0 || ratio.Secondary < 0 || ratio.Primary+ratio.Secondary != len(profile.Hooks) {
		c.add(HookAllocationRule, "hook ratio %d/%d does not cover %d hooks", ratio.Primary, ratio.Secondary, len(profile.Hooks))
	} else if ratio.Primary < ratio.Secondary {
		c.add(HookAllocationRule, "hook ratio %d/%d favors secondary hooks", ratio.Primary, ratio.Secondary)
	}

	dist := params.SentenceDistribution
	switch structureOf(profile, patterns) {
	case schema.ShortStructure:
		if dist.Short < dist.Long {
			c.add(StructureDeviationRule, "short-sentence persona with distribution %d/%d/%d favoring long sentences", dist.Short, dist.Medium, dist.Long)
		}
	case schema.ComplexStructure:
		if dist.Long < dist.Short {
			c.add(StructureDeviationRule, "complex-sentence persona with distribution %d/%d/%d favoring short sentences", dist.Short, dist.Medium, dist.Long)
		}
	}

	return c.result()
}

// ValidateGeneratedContent checks a script against the persona. Patterns are optional
// and enable the energy check. Every violation found is returned.
func (e *Engine) ValidateGeneratedContent(content string, profile schema.VoiceProfile, params schema.GenerationParameters, patterns *schema.SpeechPatterns) schema.ValidationResult {
	var c collector

	words := algo.Words(content)
	if len(words) == 0 {
		c.add(EmptyContentRule, "content is empty")
		return c.result()
	}
	wordCount := float64(len(words))

	if found := e.formalWords(content, profile.VocabularyFingerprint); len(found) > 0 {
		c.add(FormalLanguageRule, "formal language not in the creator's vocabulary: %s", strings.Join(found, ", "))
	}

	avg := algo.AverageSentenceLength(content)
	switch structureOf(profile, patterns) {
	case schema.ShortStructure:
		if avg > e.cfg.ShortSentenceMax {
			c.add(StructureDeviationRule, "average sentence length %.1f words exceeds %.0f for a short-sentence persona", avg, e.cfg.ShortSentenceMax)
		}
	case schema.ComplexStructure:
		if avg < e.cfg.ComplexSentenceMin {
			c.add(StructureDeviationRule, "average sentence length %.1f words is below %.0f for a complex-sentence persona", avg, e.cfg.ComplexSentenceMin)
		}
	}

	if len(profile.SignatureElements) > 0 {
		if n := countPresent(content, profile.SignatureElements); n < e.cfg.SignatureElementMin {
			c.add(OmitSignatureRule, "found %d signature elements, expected at least %d", n, e.cfg.SignatureElementMin)
		}
	}

	if patterns != nil {
		energy := float64(algo.CountCapsWords(content)+algo.CountExclamations(content)) / wordCount * 100
		switch patterns.Baseline.TypicalEnergy {
		case schema.HighEnergy:
			if energy < e.cfg.HighEnergyMin {
				c.add(EnergyMismatchRule, "energy %.1f per 100 words is too low for a high-energy persona", energy)
			}
		case schema.LowEnergy:
			if energy > e.cfg.LowEnergyMax {
				c.add(EnergyMismatchRule, "energy %.1f per 100 words is too high for a low-energy persona", energy)
			}
		}
	}

	if dup := repeatedSentence(content); dup != "" {
		c.add(RepeatSentencesRule, "sentence repeated: %q", dup)
	}

	if opening := genericOpening(content, profile.Hooks); opening != "" {
		c.add(GenericOpeningRule, "generic opening %q", opening)
	}

	if len(words) >= 4 && float64(algo.CountCapsWords(content))/wordCount > 0.5 {
		c.add(ShoutingRule, "more than half of the words are in capitals")
	}

	e.checkHookRatio(&c, content, profile, params)

	if len(profile.Bridges) > 0 {
		actual := 0
		for phrase := range profile.Bridges {
			actual += algo.CountOccurrences(content, phrase)
		}
		expected := e.cfg.BridgeFrequencyMin * wordCount / 100
		if float64(actual) < expected/2 {
			c.add(BridgeFrequencyRule, "found %d bridge phrases, expected about %.1f", actual, expected)
		}
	}

	if fp := profile.VocabularyFingerprint; len(fp) > 0 {
		used := countPresent(content, fp)
		if pct := used * 100 / len(fp); pct < e.cfg.VocabularyUsageMin {
			c.add(VocabularyUsageRule, "uses %d%% of the vocabulary fingerprint, expected at least %d%%", pct, e.cfg.VocabularyUsageMin)
		}
	}

	if target := params.OptimalLength * e.cfg.WordsPerSecond; target > 0 {
		deviation := math.Abs(wordCount-float64(target)) * 100 / float64(target)
		if deviation > float64(e.cfg.MaxDeviationFromOriginal) {
			c.add(LengthWindowRule, "%d words deviates %.0f%% from the expected %d", len(words), deviation, target)
		}
	}

	return c.result()
}

func (e *Engine) checkHookRatio(c *collector, content string, profile schema.VoiceProfile, params schema.GenerationParameters) {
	primary, secondary := splitHooks(profile.Hooks, params.HookRatio)
	primaryHits := countPresent(content, primary)
	total := primaryHits + countPresent(content, secondary)
	if total == 0 {
		return
	}
	ratio := primaryHits * 100 / total
	if abs(ratio-e.cfg.HookRatioTarget) > e.cfg.HookRatioTolerance {
		c.add(HookRatioRule, "primary hooks make up %d%% of hook matches, target %d%%", ratio, e.cfg.HookRatioTarget)
	}
}

// formalWords returns the forbidden words present in content and absent from the vocabulary.
func (e *Engine) formalWords(content string, vocabulary []string) []string {
	known := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		known[algo.Fold(v)] = struct{}{}
	}
	var found []string
	for _, w := range e.cfg.ForbiddenFormalWords {
		if _, ok := known[algo.Fold(w)]; ok {
			continue
		}
		if algo.ContainsPhrase(content, w) {
			found = append(found, w)
		}
	}
	return found
}

// GetGenerationConstraints lists what a generator must include and avoid for a persona.
func (e *Engine) GetGenerationConstraints(profile schema.VoiceProfile, params schema.GenerationParameters) GenerationConstraints {
	primary, _ := splitHooks(profile.Hooks, params.HookRatio)

	var required []string
	required = append(required, primary...)
	required = append(required, profile.SignatureElements[:min(e.cfg.SignatureElementMin, len(profile.SignatureElements))]...)

	known := make(map[string]struct{}, len(profile.VocabularyFingerprint))
	for _, v := range profile.VocabularyFingerprint {
		known[algo.Fold(v)] = struct{}{}
	}
	forbidden := []string{}
	for _, w := range e.cfg.ForbiddenFormalWords {
		if _, ok := known[algo.Fold(w)]; !ok {
			forbidden = append(forbidden, w)
		}
	}

	target := params.OptimalLength * e.cfg.WordsPerSecond
	slack := target * e.cfg.MaxDeviationFromOriginal / 100
	minVocab := (len(profile.VocabularyFingerprint)*e.cfg.VocabularyUsageMin + 99) / 100

	return GenerationConstraints{
		RequiredElements:  algo.Dedupe(required),
		ForbiddenElements: forbidden,
		StructuralConstraints: StructuralConstraints{
			TargetWords:          target,
			MinWords:             target - slack,
			MaxWords:             target + slack,
			SentenceDistribution: params.SentenceDistribution,
			HookRatio:            params.HookRatio,
			MinBridgesPer100:     e.cfg.BridgeFrequencyMin,
			MinVocabularyWords:   minVocab,
		},
	}
}

// splitHooks divides the hooks into the primary and secondary slices of a ratio.
func splitHooks(hooks []string, ratio schema.HookRatio) ([]string, []string) {
	n := schema.Clamp(ratio.Primary, 0, len(hooks))
	return hooks[:n], hooks[n:]
}

// PrimaryHooks returns the hooks allocated to the primary slot.
func PrimaryHooks(profile schema.VoiceProfile, params schema.GenerationParameters) []string {
	primary, _ := splitHooks(profile.Hooks, params.HookRatio)
	return primary
}

// structureOf prefers the extracted baseline and falls back to the profile's sentence patterns.
func structureOf(profile schema.VoiceProfile, patterns *schema.SpeechPatterns) schema.SentenceStructure {
	if patterns != nil && patterns.Baseline.SentenceStructure != "" {
		return patterns.Baseline.SentenceStructure
	}
	joined := strings.ToLower(strings.Join(profile.SentencePatterns, " "))
	switch {
	case strings.Contains(joined, "short"):
		return schema.ShortStructure
	case strings.Contains(joined, "complex"):
		return schema.ComplexStructure
	default:
		return schema.VariedStructure
	}
}

func countPresent(content string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if algo.ContainsPhrase(content, p) {
			n++
		}
	}
	return n
}

func repeatedSentence(content string) string {
	seen := make(map[string]struct{})
	for _, s := range algo.SplitSentences(content) {
		key := strings.Join(algo.Tokenize(s), " ")
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			return s
		}
		seen[key] = struct{}{}
	}
	return ""
}

func genericOpening(content string, hooks []string) string {
	sentences := algo.SplitSentences(content)
	if len(sentences) == 0 {
		return ""
	}
	first := algo.Fold(sentences[0])
	for _, g := range genericOpenings {
		if !strings.HasPrefix(first, g) {
			continue
		}
		for _, h := range hooks {
			if strings.Contains(algo.Fold(h), g) {
				return ""
			}
		}
		return g
	}
	return ""
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
