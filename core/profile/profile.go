// Package profile turns extracted speech patterns into a VoiceProfile and the
// GenerationParameters that drive script generation.
package profile

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/voicepersona/core/algo"
	"github.com/huangsam/voicepersona/schema"
)

// Profile caps and weights.
const (
	MaxHooks             = 15
	MaxSignatureElements = 20
	MaxFingerprint       = 30

	minHookLength        = 3 // hooks of 2 characters or fewer are dropped
	excitedHooks         = 3 // top excited markers promoted to hooks
	minFingerprintCount  = 3
	minFingerprintLength = 4

	transitionWeight = 10
	bridgeWeight     = 8
	insertionWeight  = 6

	dynamicEnergyVariation = 2.0
)

// Generation parameter bounds.
const (
	MinOptimalLength = 15
	MaxOptimalLength = 60
	MinThreshold     = 75
	MaxThreshold     = 95
	baseThreshold    = 85
)

// fingerprintStopwords are frequent words of four or more letters that say nothing about a voice.
var fingerprintStopwords = map[string]struct{}{}

func init() {
	for w := range strings.FieldsSeq(`about after also been before being could didn't does doesn't don't even from
		going gonna have here just know like make more much really should some than that that's their them then there
		these they thing think this those very want were what when where which while will with would your`) {
		fingerprintStopwords[w] = struct{}{}
	}
}

// CreateProfile synthesizes the voice of a creator from their videos and the extracted patterns.
// The same input always yields the same profile.
func CreateProfile(videos []schema.VideoAnalysisData, patterns schema.SpeechPatterns, matrix schema.PatternMappingMatrix) schema.VoiceProfile {
	text := algo.CombineTranscripts(videos)
	return schema.VoiceProfile{
		Hooks:                 hooks(patterns, matrix),
		Bridges:               bridges(patterns, matrix),
		EnergyWave:            energyWave(text, patterns),
		SentencePatterns:      sentencePatterns(text, patterns),
		SignatureElements:     signatureElements(patterns),
		VocabularyFingerprint: fingerprint(text),
		RhythmPattern:         rhythmPattern(text, patterns),
	}
}

func hooks(patterns schema.SpeechPatterns, matrix schema.PatternMappingMatrix) []string {
	var candidates []string
	candidates = append(candidates, patterns.SignatureElements.Catchphrases.Opening...)
	candidates = append(candidates, matrix.PrimaryHook.Examples...)
	markers := patterns.EmotionalStates.Excited.MarkerPhrases
	candidates = append(candidates, markers[:min(excitedHooks, len(markers))]...)

	res := make([]string, 0, MaxHooks)
	for _, h := range algo.Dedupe(candidates) {
		if utf8.RuneCountInString(strings.TrimSpace(h)) < minHookLength {
			continue
		}
		res = append(res, h)
		if len(res) == MaxHooks {
			break
		}
	}
	return res
}

// bridges weights each source list in descending order; later sources overwrite earlier keys.
func bridges(patterns schema.SpeechPatterns, matrix schema.PatternMappingMatrix) map[string]int {
	res := make(map[string]int)
	addWeighted := func(items []string, start int) {
		for i, it := range items {
			res[it] = max(1, start-i)
		}
	}
	addWeighted(patterns.EmotionalStates.Explaining.TransitionWords, transitionWeight)
	addWeighted(matrix.BridgePhrase.Examples, bridgeWeight)
	addWeighted(patterns.SignatureElements.RandomInsertions, insertionWeight)
	return res
}

func energyWave(text string, patterns schema.SpeechPatterns) string {
	sentences := algo.Sentences(text)
	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		scores[i] = float64(algo.CountCapsWords(s) + 2*algo.CountExclamations(s))
	}

	var wave string
	switch {
	case algo.CoefficientOfVariation(scores) > dynamicEnergyVariation:
		wave = "Dynamic energy waves with sharp spikes and drops"
	case patterns.Baseline.TypicalEnergy == schema.HighEnergy:
		wave = "Sustained high energy with constant emphasis"
	case patterns.Baseline.TypicalEnergy == schema.MediumEnergy:
		wave = "Moderate energy with occasional peaks"
	default:
		wave = "Calm, even delivery with minimal emphasis"
	}
	return fmt.Sprintf("%s. %s. %s", wave, patterns.Baseline.EnergyDescription, patterns.EmotionalStates.Excited.PatternChanges)
}

func sentencePatterns(text string, patterns schema.SpeechPatterns) []string {
	var res []string
	switch patterns.Baseline.SentenceStructure {
	case schema.ShortStructure:
		res = append(res, "Predominantly short, punchy sentences")
	case schema.ComplexStructure:
		res = append(res, "Long, complex sentences with layered clauses")
	default:
		res = append(res, "Varied sentence lengths mixing punchy and medium statements")
	}

	if n := len(algo.SplitSentences(text)); n > 0 {
		if float64(algo.CountExclamations(text))/float64(n) > 0.2 {
			res = append(res, "Frequent exclamation emphasis")
		}
		if float64(algo.CountQuestions(text))/float64(n) > 0.1 {
			res = append(res, "Regular use of question hooks")
		}
	}
	return append(res, fmt.Sprintf("Averages %.1f words per sentence", algo.AverageSentenceLength(text)))
}

func signatureElements(patterns schema.SpeechPatterns) []string {
	sig := patterns.SignatureElements
	var all []string
	all = append(all, sig.FillerPatterns...)
	all = append(all, sig.RandomInsertions...)
	all = append(all, sig.Catchphrases.Opening...)
	all = append(all, sig.Catchphrases.Closing...)
	res := algo.Dedupe(all)
	return res[:min(MaxSignatureElements, len(res))]
}

func fingerprint(text string) []string {
	counts := make(map[string]int)
	for _, tok := range algo.Tokenize(text) {
		if utf8.RuneCountInString(tok) < minFingerprintLength {
			continue
		}
		if _, ok := fingerprintStopwords[tok]; ok {
			continue
		}
		counts[tok]++
	}
	return algo.RankTerms(counts, minFingerprintCount, MaxFingerprint)
}

func rhythmPattern(text string, patterns schema.SpeechPatterns) string {
	avg := algo.AverageSentenceLength(text)
	pace := "conversational pace"
	switch {
	case avg == 0:
	case avg < 8:
		pace = "fast-paced delivery"
	case avg > 15:
		pace = "slow, deliberate delivery"
	}
	rhythm := patterns.Baseline.DefaultRhythm
	if rhythm == "" {
		rhythm = "steady rhythm"
	}
	return fmt.Sprintf("%s with %s (%.1f words per sentence)", pace, rhythm, avg)
}

// CreateGenerationParameters derives the generation tunables of a profile.
func CreateGenerationParameters(profile schema.VoiceProfile, patterns schema.SpeechPatterns, videos []schema.VideoAnalysisData) schema.GenerationParameters {
	durations := make([]float64, len(videos))
	for i, v := range videos {
		durations[i] = v.Duration
	}
	optimal := schema.Clamp(int(math.Round(algo.Mean(durations))), MinOptimalLength, MaxOptimalLength)

	threshold := baseThreshold
	if len(profile.Hooks) > 10 {
		threshold += 5
	}
	if len(profile.Bridges) > 8 {
		threshold += 3
	}
	if len(profile.SignatureElements) > 6 {
		threshold += 2
	}
	if patterns.Baseline.SentenceStructure == schema.VariedStructure {
		threshold -= 3
	}

	return schema.GenerationParameters{
		OptimalLength:         optimal,
		AuthenticityThreshold: schema.Clamp(threshold, MinThreshold, MaxThreshold),
		PatternRotation:       rotation(profile),
		HookRatio:             hookRatio(len(profile.Hooks)),
		SentenceDistribution:  Distribution(profile.SentencePatterns),
	}
}

// hookRatio gives 60% of the hooks, rounded up, to the primary slot.
func hookRatio(n int) schema.HookRatio {
	primary := (6*n + 9) / 10
	return schema.HookRatio{Primary: primary, Secondary: n - primary}
}

// Distribution picks the sentence-length triple described by the sentence patterns.
func Distribution(sentencePatterns []string) schema.SentenceDistribution {
	joined := strings.ToLower(strings.Join(sentencePatterns, " "))
	switch {
	case strings.Contains(joined, "short"):
		return schema.SentenceDistribution{Short: 50, Medium: 30, Long: 20}
	case strings.Contains(joined, "complex"):
		return schema.SentenceDistribution{Short: 20, Medium: 30, Long: 50}
	default:
		return schema.SentenceDistribution{Short: 30, Medium: 40, Long: 30}
	}
}

func rotation(profile schema.VoiceProfile) schema.PatternRotation {
	switch {
	case len(profile.Hooks) > 12:
		return schema.WeightedRotation
	case len(profile.SignatureElements) > 8:
		return schema.SequentialRotation
	default:
		return schema.RandomRotation
	}
}
