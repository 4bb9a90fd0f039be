// Package extract mines recurring linguistic markers from creator transcripts.
package extract

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/voicepersona/core/algo"
	"github.com/huangsam/voicepersona/schema"
)

// Default extractor settings.
const (
	DefaultMinFrequency  = 2
	DefaultContextWindow = 40

	maxCategoryExamples = 10
	maxElementExamples  = 5
	maxInsertions       = 10
	maxFillers          = 10
	maxCatchphrases     = 5
	catchphraseWords    = 8
)

// Energy thresholds per 1000 characters of transcript.
const (
	highEnergyScore   = 8.0
	mediumEnergyScore = 3.0
)

// Config tunes the Extractor.
type Config struct {
	Sensitivity             schema.Sensitivity
	MinFrequency            int
	ContextWindow           int
	EnableEmotionalAnalysis bool
}

// DefaultConfig returns the extractor defaults.
func DefaultConfig() Config {
	return Config{
		Sensitivity:             schema.MediumSensitivity,
		MinFrequency:            DefaultMinFrequency,
		ContextWindow:           DefaultContextWindow,
		EnableEmotionalAnalysis: true,
	}
}

// Extractor turns transcripts into SpeechPatterns and a PatternMappingMatrix.
// It holds no state between calls; identical input yields identical output.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an Extractor, filling zero values with defaults.
func NewExtractor(cfg Config) *Extractor {
	if _, ok := schema.ValidSensitivities[cfg.Sensitivity]; !ok {
		cfg.Sensitivity = schema.MediumSensitivity
	}
	if cfg.MinFrequency < 1 {
		cfg.MinFrequency = DefaultMinFrequency
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = DefaultContextWindow
	}
	return &Extractor{cfg: cfg}
}

// ExtractPatterns builds the linguistic summary of the given videos.
func (e *Extractor) ExtractPatterns(videos []schema.VideoAnalysisData) schema.SpeechPatterns {
	text := algo.CombineTranscripts(videos)
	baseline := e.baseline(text)

	emotional := defaultEmotionalStates()
	if e.cfg.EnableEmotionalAnalysis {
		emotional = e.emotionalStates(text, baseline)
	}

	return schema.SpeechPatterns{
		Baseline:          baseline,
		EmotionalStates:   emotional,
		SignatureElements: e.signatureElements(videos, text),
	}
}

// ExtractPatternMatrix counts each named pattern element against the combined transcript.
func (e *Extractor) ExtractPatternMatrix(videos []schema.VideoAnalysisData) schema.PatternMappingMatrix {
	text := algo.CombineTranscripts(videos)
	totalWords := len(algo.Words(text))

	rows := make(map[schema.ElementName]schema.PatternElement, len(schema.AllElementNames))
	for _, name := range schema.AllElementNames {
		matches := e.scan(elementGroups[name], text)
		rows[name] = schema.PatternElement{
			Element:   name,
			Frequency: describeFrequency(totalWords, len(matches)),
			Examples:  examples(matches, maxElementExamples),
			Context:   e.describeContext(name, text, matches),
		}
	}

	return schema.PatternMappingMatrix{
		PrimaryHook:       rows[schema.PrimaryHookElement],
		BridgePhrase:      rows[schema.BridgePhraseElement],
		EnergyEscalator:   rows[schema.EnergyEscalatorElement],
		PersonalReference: rows[schema.PersonalReferenceElement],
		AudienceAddress:   rows[schema.AudienceAddressElement],
		QuestionPattern:   rows[schema.QuestionPatternElement],
	}
}

// baseline classifies sentence structure, energy and rhythm.
func (e *Extractor) baseline(text string) schema.Baseline {
	lengths := algo.SentenceLengths(text)
	avg := algo.Mean(lengths)

	structure := schema.VariedStructure
	switch {
	case len(lengths) == 0:
	case avg < 8:
		structure = schema.ShortStructure
	case avg > 15:
		structure = schema.ComplexStructure
	}

	caps := algo.CountCapsWords(text)
	exclamations := algo.CountExclamations(text)
	score := EnergyScore(text)

	rhythm := "steady rhythm"
	if algo.CoefficientOfVariation(lengths) > 0.3 {
		rhythm = "variable pacing"
	}

	return schema.Baseline{
		DefaultRhythm:     rhythm,
		TypicalEnergy:     ClassifyEnergy(score),
		EnergyDescription: fmt.Sprintf("Energy score %.1f per 1000 characters (%d emphasized words, %d exclamations)", score, caps, exclamations),
		SentenceStructure: structure,
	}
}

// EnergyScore is the count of ALL-CAPS words plus exclamation marks per 1000 characters (runes).
func EnergyScore(text string) float64 {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	raw := algo.CountCapsWords(text) + algo.CountExclamations(text)
	return float64(raw) / float64(n) * 1000
}

// ClassifyEnergy buckets an EnergyScore.
func ClassifyEnergy(score float64) schema.EnergyLevel {
	switch {
	case score >= highEnergyScore:
		return schema.HighEnergy
	case score >= mediumEnergyScore:
		return schema.MediumEnergy
	default:
		return schema.LowEnergy
	}
}

// emotionalStates describes the excited and explaining states.
func (e *Extractor) emotionalStates(text string, baseline schema.Baseline) schema.EmotionalStates {
	excited := e.scan(excitedGroup, text)
	escalators := e.scan(energyGroup, text)
	markers := algo.Dedupe(append(examples(excited, maxCategoryExamples), examples(escalators, maxCategoryExamples)...))
	if len(markers) > maxCategoryExamples {
		markers = markers[:maxCategoryExamples]
	}

	sentences := len(algo.SplitSentences(text))
	exclamationRate := 0.0
	if sentences > 0 {
		exclamationRate = float64(algo.CountExclamations(text)) / float64(sentences)
	}

	changes := "Emphasis through word choice rather than punctuation"
	switch {
	case exclamationRate > 0.3:
		changes = "Shorter bursts with frequent exclamations"
	case algo.CountCapsWords(text) > 0:
		changes = "Emphasis through capitalized words"
	}

	spike := "No clear escalation markers"
	if len(escalators) > 0 {
		spike = fmt.Sprintf("Escalates with phrases like %q", escalators[0].text)
	}

	structure := schema.CircularStructure
	if len(e.scan(sequenceGroup, text)) >= 2 {
		structure = schema.StepByStepStructure
	}

	var management string
	switch baseline.SentenceStructure {
	case schema.ShortStructure:
		management = "Breaks ideas into short standalone statements"
	case schema.ComplexStructure:
		management = "Layers ideas inside long sentences"
	default:
		management = "Mixes quick statements with longer explanations"
	}

	return schema.EmotionalStates{
		Excited: schema.ExcitedState{
			PatternChanges: changes,
			MarkerPhrases:  markers,
			EnergySpike:    spike,
		},
		Explaining: schema.ExplainingState{
			Structure:            structure,
			TransitionWords:      examples(e.scan(transitionGroup, text), maxCategoryExamples),
			ComplexityManagement: management,
		},
	}
}

// defaultEmotionalStates is returned when emotional analysis is disabled.
func defaultEmotionalStates() schema.EmotionalStates {
	return schema.EmotionalStates{
		Excited: schema.ExcitedState{
			PatternChanges: "Not analyzed",
			MarkerPhrases:  []string{},
			EnergySpike:    "Not analyzed",
		},
		Explaining: schema.ExplainingState{
			Structure:            schema.StepByStepStructure,
			TransitionWords:      []string{},
			ComplexityManagement: "Not analyzed",
		},
	}
}

// signatureElements mines n-grams, fillers and catchphrases.
func (e *Extractor) signatureElements(videos []schema.VideoAnalysisData, text string) schema.SignatureElements {
	fillerCounts := make(map[string]int)
	for _, m := range e.scan(fillerGroup, text) {
		fillerCounts[m.text]++
	}

	var openings, closings []string
	for _, v := range videos {
		sentences := algo.SplitSentences(v.Transcript)
		if len(sentences) == 0 {
			continue
		}
		openings = append(openings, sentences[0])
		closings = append(closings, sentences[len(sentences)-1])
	}

	return schema.SignatureElements{
		RandomInsertions: nonNil(algo.RankTerms(ngramCounts(algo.Tokenize(text)), e.cfg.MinFrequency, maxInsertions)),
		FillerPatterns:   nonNil(algo.RankTerms(fillerCounts, 1, maxFillers)),
		Catchphrases: schema.Catchphrases{
			Opening: catchphrases(openings),
			Closing: catchphrases(closings),
		},
	}
}

// ngramCounts counts 2 to 4 word n-grams that are not made only of stopwords.
func ngramCounts(tokens []string) map[string]int {
	counts := make(map[string]int)
	for n := 2; n <= 4; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i : i+n]
			if allStopwords(gram) {
				continue
			}
			counts[strings.Join(gram, " ")]++
		}
	}
	return counts
}

func allStopwords(tokens []string) bool {
	for _, t := range tokens {
		if !algo.IsStopword(t) {
			return false
		}
	}
	return true
}

// catchphrases keeps sentences that carry a keyword seen at least twice across all sentences.
func catchphrases(sentences []string) []string {
	counts := make(map[string]int)
	for _, s := range sentences {
		for _, tok := range algo.Tokenize(s) {
			if len(tok) > 2 && !algo.IsStopword(tok) {
				counts[tok]++
			}
		}
	}

	var phrases []string
	for _, s := range sentences {
		for _, tok := range algo.Tokenize(s) {
			if counts[tok] >= 2 && len(tok) > 2 && !algo.IsStopword(tok) {
				words := strings.Fields(s)
				if len(words) > catchphraseWords {
					words = words[:catchphraseWords]
				}
				phrases = append(phrases, algo.Fold(strings.Join(words, " ")))
				break
			}
		}
	}

	phrases = algo.Dedupe(phrases)
	if len(phrases) > maxCatchphrases {
		phrases = phrases[:maxCatchphrases]
	}
	return phrases
}

// match is one regex hit in the combined transcript.
type match struct {
	text string
	pos  int // byte offset of the hit in the source text
	end  int
}

// scan runs every enabled pattern of a family and returns the hits in text order.
func (e *Extractor) scan(g group, text string) []match {
	var matches []match
	for _, re := range patternsFor(g, e.cfg.Sensitivity) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hit := strings.TrimSpace(algo.Fold(text[loc[0]:loc[1]]))
			if hit != "" {
				matches = append(matches, match{text: hit, pos: loc[0], end: loc[1]})
			}
		}
	}
	slices.SortStableFunc(matches, func(a, b match) int {
		if c := cmp.Compare(a.pos, b.pos); c != 0 {
			return c
		}
		return cmp.Compare(a.text, b.text)
	})
	return matches
}

// examples returns up to limit distinct hits in text order.
func examples(matches []match, limit int) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, m := range matches {
		if _, ok := seen[m.text]; ok {
			continue
		}
		seen[m.text] = struct{}{}
		out = append(out, m.text)
		if len(out) == limit {
			break
		}
	}
	return out
}

// describeFrequency renders the rate of an element as human-readable text.
func describeFrequency(totalWords, count int) string {
	if count == 0 {
		return "Rarely used"
	}
	return fmt.Sprintf("Every %d words", max(1, totalWords/count))
}

// describeContext combines the element description with a snippet around its first hit.
func (e *Extractor) describeContext(name schema.ElementName, text string, matches []match) string {
	desc := elementContexts[name]
	if len(matches) == 0 {
		return desc
	}
	// The window is counted in runes so the snippet never splits a character.
	start, end := matches[0].pos, matches[0].end
	for i := 0; i < e.cfg.ContextWindow && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	for i := 0; i < e.cfg.ContextWindow && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	snippet := strings.Join(strings.Fields(text[start:end]), " ")
	return fmt.Sprintf("%s, e.g. %q", desc, snippet)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
